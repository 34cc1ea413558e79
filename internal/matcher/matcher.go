// Package matcher turns targeted chat messages into keyword replies.
package matcher

import (
	"context"
	"log/slog"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/keywords"
	"github.com/nextlevelbuilder/autoreply/internal/metrics"
)

// Publisher is the outbound side of the message bus.
type Publisher interface {
	PublishOutbound(msg bus.OutboundMessage)
}

// Matcher matches inbound messages against a keyword index and publishes
// one outbound message per reply.
type Matcher struct {
	index       *keywords.Index
	out         Publisher
	metrics     *metrics.Metrics
	replyPrefix string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithReplyPrefix prepends prefix to every reply.
func WithReplyPrefix(prefix string) Option {
	return func(m *Matcher) { m.replyPrefix = prefix }
}

// WithMetrics counts match outcomes.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Matcher) { m.metrics = mt }
}

func New(index *keywords.Index, out Publisher, opts ...Option) *Matcher {
	m := &Matcher{index: index, out: out}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle publishes the replies for msg and returns how many were sent.
// Untargeted messages and messages matching nothing produce no output.
func (m *Matcher) Handle(ctx context.Context, msg bus.InboundMessage) int {
	if !msg.Targeted {
		return 0
	}

	res := m.index.MatchResult(msg.Content)
	m.metrics.ObserveMatch(string(res.Outcome))
	if len(res.Replies) == 0 {
		return 0
	}

	for _, reply := range res.Replies {
		m.out.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			ReplyTo: msg.ID,
			Content: m.replyPrefix + reply,
		})
	}

	slog.DebugContext(ctx, "keyword replies sent",
		"channel", msg.Channel,
		"chat_id", msg.ChatID,
		"outcome", res.Outcome,
		"keywords", res.Keywords,
	)
	return len(res.Replies)
}
