// Package console is a local channel over an io.Reader/io.Writer pair,
// used by the chat command to talk to the bot from a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
)

const (
	chatID = "console"
	sender = "local"
)

// Channel reads one message per input line. Every line is targeted.
type Channel struct {
	*channels.BaseChannel
	in  io.Reader
	out io.Writer

	mu       sync.Mutex
	done     chan struct{}
	doneOnce sync.Once
}

func New(in io.Reader, out io.Writer, mb *bus.MessageBus) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel(channels.NameConsole, mb),
		in:          in,
		out:         out,
		done:        make(chan struct{}),
	}
}

// Start begins reading input in the background.
func (c *Channel) Start(ctx context.Context) error {
	go c.read(ctx)
	return nil
}

// Stop marks the channel finished. A blocked read on the input is abandoned.
func (c *Channel) Stop(context.Context) error {
	c.finish()
	return nil
}

// Done is closed once input reaches EOF or the channel is stopped.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) Send(_ context.Context, msg bus.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, msg.Content)
	return err
}

func (c *Channel) read(ctx context.Context) {
	defer c.finish()

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Literal "\n" lets a single line carry a multi-line reply.
		line = strings.ReplaceAll(line, `\n`, "\n")

		c.Publish(bus.InboundMessage{
			ID:         uuid.NewString(),
			SenderID:   sender,
			SenderName: sender,
			ChatID:     chatID,
			Content:    line,
			Targeted:   true,
		})
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("console input error", "error", err)
	}
}

func (c *Channel) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}
