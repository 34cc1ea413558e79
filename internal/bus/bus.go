package bus

import (
	"context"
	"sync"
)

const defaultBuffer = 100

// MessageBus routes messages between channels and the gateway.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	closeOnce sync.Once
}

func New() *MessageBus {
	return NewWithBuffer(defaultBuffer)
}

// NewWithBuffer creates a bus whose queues hold size messages each.
func NewWithBuffer(size int) *MessageBus {
	if size < 0 {
		size = 0
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, size),
		outbound: make(chan OutboundMessage, size),
	}
}

// PublishInbound queues an inbound message from a channel.
// Blocks while the queue is full.
func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	mb.inbound <- msg
}

// ConsumeInbound blocks until an inbound message is available or ctx is cancelled.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg, ok := <-mb.inbound:
		return msg, ok
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound queues an outbound message to a channel.
func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.outbound <- msg
}

// SubscribeOutbound blocks until an outbound message is available or ctx is cancelled.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg, ok := <-mb.outbound:
		return msg, ok
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// Close shuts down the message bus. Publishing after Close panics.
func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		close(mb.inbound)
		close(mb.outbound)
	})
}
