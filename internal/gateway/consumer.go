// Package gateway consumes inbound chat messages and routes each one to the
// keyword command adapter or to the keyword matcher.
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/commands"
	"github.com/nextlevelbuilder/autoreply/internal/matcher"
	"github.com/nextlevelbuilder/autoreply/internal/permissions"
)

const tracerName = "github.com/nextlevelbuilder/autoreply/internal/gateway"

// Routing outcomes, recorded on the inbound span.
const (
	RouteCommand   = "command"
	RouteMatch     = "match"
	RouteDuplicate = "duplicate"
	RouteIgnored   = "ignored"
)

// Consumer handles inbound messages one at a time.
type Consumer struct {
	bus     *bus.MessageBus
	adapter *commands.Adapter
	matcher *matcher.Matcher
	policy  *permissions.Policy
	dedupe  *bus.DedupeCache
	tracer  trace.Tracer
}

// NewConsumer wires the routing targets. dedupe may be nil.
func NewConsumer(mb *bus.MessageBus, adapter *commands.Adapter, m *matcher.Matcher, policy *permissions.Policy, dedupe *bus.DedupeCache) *Consumer {
	return &Consumer{
		bus:     mb,
		adapter: adapter,
		matcher: m,
		policy:  policy,
		dedupe:  dedupe,
		tracer:  otel.Tracer(tracerName),
	}
}

// Run consumes until ctx is cancelled or the bus is closed.
func (c *Consumer) Run(ctx context.Context) {
	slog.Info("gateway consumer started")
	for {
		msg, ok := c.bus.ConsumeInbound(ctx)
		if !ok {
			slog.Info("gateway consumer stopped")
			return
		}
		c.Handle(ctx, msg)
	}
}

// Handle routes one message and returns the route taken.
func (c *Consumer) Handle(ctx context.Context, msg bus.InboundMessage) string {
	ctx, span := c.tracer.Start(ctx, "gateway.inbound", trace.WithAttributes(
		attribute.String("channel", msg.Channel),
		attribute.Bool("targeted", msg.Targeted),
	))
	defer span.End()

	route, replies := c.route(ctx, msg)
	span.SetAttributes(
		attribute.String("route", route),
		attribute.Int("replies", replies),
	)
	return route
}

func (c *Consumer) route(ctx context.Context, msg bus.InboundMessage) (string, int) {
	if c.dedupe != nil && c.dedupe.IsDuplicate(msg) {
		slog.Debug("duplicate inbound message dropped", "channel", msg.Channel, "id", msg.ID)
		return RouteDuplicate, 0
	}

	if isCommandCandidate(msg) {
		if req, ok := commands.ParseFor(msg.Content, msg.Metadata[bus.MetaBotName]); ok {
			role := c.policy.RoleFor(msg.Channel, msg.SenderID)
			text := c.adapter.Handle(ctx, req, role)
			c.bus.PublishOutbound(bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				ReplyTo: msg.ID,
				Content: text,
			})
			slog.Info("keyword command",
				"channel", msg.Channel,
				"sender", msg.SenderID,
				"command", commands.CommandName(req),
				"role", role.String(),
			)
			return RouteCommand, 1
		}
	}

	if !msg.Targeted {
		return RouteIgnored, 0
	}
	return RouteMatch, c.matcher.Handle(ctx, msg)
}

// isCommandCandidate reports whether msg may carry a command: it is addressed
// to the bot, or starts with the "/" command prefix.
func isCommandCandidate(msg bus.InboundMessage) bool {
	if msg.Targeted {
		return true
	}
	return strings.HasPrefix(strings.TrimLeftFunc(msg.Content, unicode.IsSpace), "/")
}
