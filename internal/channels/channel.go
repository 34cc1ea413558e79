// Package channels connects chat platforms to the message bus.
//
// A channel publishes every inbound text message with its Targeted flag set
// by the platform's own rules (direct message, mention, reply to the bot), and
// delivers outbound replies back to the chat they came from.
package channels

import (
	"context"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
)

// Channel names.
const (
	NameTelegram = "telegram"
	NameDiscord  = "discord"
	NameSlack    = "slack"
	NameConsole  = "console"
)

// Channel is one chat platform connection.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// BaseChannel carries what every channel needs: its name and the bus.
type BaseChannel struct {
	name string
	bus  *bus.MessageBus
}

func NewBaseChannel(name string, mb *bus.MessageBus) *BaseChannel {
	return &BaseChannel{name: name, bus: mb}
}

func (c *BaseChannel) Name() string { return c.name }

func (c *BaseChannel) Bus() *bus.MessageBus { return c.bus }

// Publish stamps msg with the channel name and queues it on the bus.
// Empty content is dropped.
func (c *BaseChannel) Publish(msg bus.InboundMessage) {
	if msg.Content == "" {
		return
	}
	msg.Channel = c.name
	c.bus.PublishInbound(msg)
}
