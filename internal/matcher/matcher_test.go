package matcher

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/keywords"
	"github.com/nextlevelbuilder/autoreply/internal/store"
)

type nopStore struct{}

func (nopStore) LoadKeywords(context.Context) ([]store.KeywordEntry, error) { return nil, nil }
func (nopStore) SaveKeywords(context.Context, []store.KeywordEntry) error   { return nil }
func (nopStore) Close() error                                               { return nil }

type recorder struct {
	msgs []bus.OutboundMessage
}

func (r *recorder) PublishOutbound(msg bus.OutboundMessage) { r.msgs = append(r.msgs, msg) }

func newIndex(t *testing.T, pairs ...string) *keywords.Index {
	t.Helper()
	ix := keywords.New(context.Background(), nopStore{})
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, err := ix.Add(context.Background(), pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("Add(%q): %v", pairs[i], err)
		}
	}
	return ix
}

func TestHandle_SubstringRepliesInOrder(t *testing.T) {
	rec := &recorder{}
	m := New(newIndex(t, "hi", "H", "hello", "HELLO"), rec)

	n := m.Handle(context.Background(), bus.InboundMessage{
		ID: "m1", Channel: "telegram", ChatID: "c1", Content: "Hi Hello", Targeted: true,
	})
	if n != 2 || len(rec.msgs) != 2 {
		t.Fatalf("sent %d (%d recorded), want 2", n, len(rec.msgs))
	}
	want := []string{"H", "HELLO"}
	for i, msg := range rec.msgs {
		if msg.Content != want[i] {
			t.Errorf("reply %d = %q, want %q", i, msg.Content, want[i])
		}
		if msg.Channel != "telegram" || msg.ChatID != "c1" || msg.ReplyTo != "m1" {
			t.Errorf("reply %d routed to %+v", i, msg)
		}
	}
}

func TestHandle_ExactMatchIsSingle(t *testing.T) {
	rec := &recorder{}
	m := New(newIndex(t, "hi", "H", "hi there", "T"), rec)

	if n := m.Handle(context.Background(), bus.InboundMessage{Content: " HI ", Targeted: true}); n != 1 {
		t.Fatalf("sent %d, want 1", n)
	}
	if rec.msgs[0].Content != "H" {
		t.Errorf("reply = %q, want H", rec.msgs[0].Content)
	}
}

func TestHandle_UntargetedIsIgnored(t *testing.T) {
	rec := &recorder{}
	m := New(newIndex(t, "hi", "H"), rec)

	if n := m.Handle(context.Background(), bus.InboundMessage{Content: "hi", Targeted: false}); n != 0 {
		t.Errorf("sent %d for untargeted message", n)
	}
	if len(rec.msgs) != 0 {
		t.Errorf("recorded %d messages", len(rec.msgs))
	}
}

func TestHandle_NoMatchIsSilent(t *testing.T) {
	rec := &recorder{}
	m := New(newIndex(t, "hi", "H"), rec)

	if n := m.Handle(context.Background(), bus.InboundMessage{Content: "good morning", Targeted: true}); n != 0 {
		t.Errorf("sent %d, want 0", n)
	}
}

func TestHandle_ReplyPrefix(t *testing.T) {
	rec := &recorder{}
	m := New(newIndex(t, "hi", "there"), rec, WithReplyPrefix(" "))

	m.Handle(context.Background(), bus.InboundMessage{Content: "hi", Targeted: true})
	if len(rec.msgs) != 1 || rec.msgs[0].Content != " there" {
		t.Errorf("msgs = %+v", rec.msgs)
	}
}
