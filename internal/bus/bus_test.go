package bus

import (
	"context"
	"testing"
	"time"
)

func TestMessageBus_InboundOutbound(t *testing.T) {
	mb := New()
	ctx := context.Background()

	mb.PublishInbound(InboundMessage{ID: "1", Channel: "console", Content: "hi", Targeted: true})
	in, ok := mb.ConsumeInbound(ctx)
	if !ok || in.Content != "hi" || !in.Targeted {
		t.Fatalf("ConsumeInbound = %+v, %v", in, ok)
	}

	mb.PublishOutbound(OutboundMessage{Channel: "console", Content: "hello"})
	out, ok := mb.SubscribeOutbound(ctx)
	if !ok || out.Content != "hello" {
		t.Fatalf("SubscribeOutbound = %+v, %v", out, ok)
	}
}

func TestMessageBus_ConsumeCancelled(t *testing.T) {
	mb := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := mb.ConsumeInbound(ctx); ok {
		t.Error("ConsumeInbound on cancelled ctx returned ok")
	}
	if _, ok := mb.SubscribeOutbound(ctx); ok {
		t.Error("SubscribeOutbound on cancelled ctx returned ok")
	}
}

func TestMessageBus_CloseUnblocks(t *testing.T) {
	mb := NewWithBuffer(0)
	done := make(chan bool)
	go func() {
		_, ok := mb.ConsumeInbound(context.Background())
		done <- ok
	}()

	mb.Close()
	mb.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("ConsumeInbound after Close returned ok")
		}
	case <-time.After(time.Second):
		t.Fatal("ConsumeInbound did not return after Close")
	}
}

func TestDedupeCache(t *testing.T) {
	d := NewDedupeCache(time.Minute, 10)
	msg := InboundMessage{ID: "42", Channel: "telegram", ChatID: "c1"}

	if d.IsDuplicate(msg) {
		t.Error("first delivery reported as duplicate")
	}
	if !d.IsDuplicate(msg) {
		t.Error("redelivery not reported as duplicate")
	}

	other := msg
	other.ChatID = "c2"
	if d.IsDuplicate(other) {
		t.Error("same id in another chat reported as duplicate")
	}

	if d.IsDuplicate(InboundMessage{Channel: "console"}) || d.IsDuplicate(InboundMessage{Channel: "console"}) {
		t.Error("messages without id must never be duplicates")
	}
}

func TestDedupeCache_Expires(t *testing.T) {
	d := NewDedupeCache(30*time.Millisecond, 10)
	msg := InboundMessage{ID: "1", Channel: "discord"}

	d.IsDuplicate(msg)
	time.Sleep(100 * time.Millisecond)
	if d.IsDuplicate(msg) {
		t.Error("entry did not expire")
	}
}
