package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
)

func TestConsole_ReadsTargetedLines(t *testing.T) {
	mb := bus.NewWithBuffer(10)
	in := strings.NewReader("hi\n\n  \n添加自定义回复 a|line1\\nline2\r\n")
	c := New(in, &bytes.Buffer{}, mb)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("console never reached EOF")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, ok := mb.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("no first message")
	}
	if first.Content != "hi" || first.Channel != "console" || first.SenderID != "local" || !first.Targeted {
		t.Errorf("first = %+v", first)
	}
	if first.ID == "" {
		t.Error("message id is empty")
	}

	second, ok := mb.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("no second message")
	}
	if second.Content != "添加自定义回复 a|line1\nline2" {
		t.Errorf("second content = %q", second.Content)
	}
	if second.ID == first.ID {
		t.Error("message ids repeat")
	}
}

func TestConsole_Send(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, bus.New())

	if err := c.Send(context.Background(), bus.OutboundMessage{Content: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.String() != "hello\n" {
		t.Errorf("out = %q", out.String())
	}
}
