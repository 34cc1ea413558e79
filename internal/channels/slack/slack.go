// Package slack is the Slack channel, using Socket Mode.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
)

const (
	threadCacheSize = 1024
	threadCacheTTL  = time.Hour
)

var userMentionRe = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

// Channel receives app mentions and direct messages over Socket Mode.
type Channel struct {
	*channels.BaseChannel
	api    *slack.Client
	client *socketmode.Client
	botID  string

	// inbound message ts -> thread root ts that replies should go to
	threads *expirable.LRU[string, string]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New needs a bot token (xoxb-) and an app-level token (xapp-).
func New(botToken, appToken string, mb *bus.MessageBus) *Channel {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Channel{
		BaseChannel: channels.NewBaseChannel(channels.NameSlack, mb),
		api:         api,
		client:      socketmode.New(api),
		threads:     expirable.NewLRU[string, string](threadCacheSize, nil, threadCacheTTL),
	}
}

func (c *Channel) Start(ctx context.Context) error {
	auth, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	c.botID = auth.UserID

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	go func() {
		if err := c.client.RunContext(runCtx); err != nil && runCtx.Err() == nil {
			slog.Error("slack socket mode stopped", "error", err)
		}
	}()
	go func() {
		defer close(done)
		c.consume(runCtx)
	}()

	slog.Info("slack bot connected", "user", auth.User, "team", auth.Team)
	return nil
}

func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Content, false)}
	if root, ok := c.threads.Get(msg.ReplyTo); ok && root != "" {
		opts = append(opts, slack.MsgOptionTS(root))
	}
	if _, _, err := c.api.PostMessageContext(ctx, msg.ChatID, opts...); err != nil {
		return fmt.Errorf("slack post message: %w", err)
	}
	return nil
}

func (c *Channel) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.client.Events:
			if !ok {
				return
			}
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			if evt.Request != nil {
				c.client.Ack(*evt.Request)
			}
			apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			c.handleEvent(apiEvent)
		}
	}
}

func (c *Channel) handleEvent(ev slackevents.EventsAPIEvent) {
	switch inner := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		root := inner.ThreadTimeStamp
		if root == "" {
			root = inner.TimeStamp
		}
		c.publish(inner.User, inner.Channel, inner.TimeStamp, root, inner.Text)
	case *slackevents.MessageEvent:
		if inner.BotID != "" || inner.SubType != "" || inner.User == c.botID {
			return
		}
		// Channel mentions also arrive as app_mention; only DMs are taken here.
		if inner.ChannelType != "im" {
			return
		}
		c.publish(inner.User, inner.Channel, inner.TimeStamp, inner.ThreadTimeStamp, inner.Text)
	}
}

// publish queues a targeted message; replies to it go to thread root when set.
func (c *Channel) publish(user, channel, ts, root, text string) {
	c.threads.Add(ts, root)
	c.Publish(bus.InboundMessage{
		ID:       ts,
		SenderID: user,
		ChatID:   channel,
		Content:  stripMentions(text),
		Targeted: true,
		Metadata: map[string]string{"thread_ts": root},
	})
}

// stripMentions removes <@U…> user mentions.
func stripMentions(text string) string {
	return strings.TrimSpace(userMentionRe.ReplaceAllString(text, ""))
}
