// Package telegram is the Telegram channel, using long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
)

// maxMessageLen is the safe limit for one Telegram message (hard limit 4096).
const maxMessageLen = 4000

const pollTimeoutSeconds = 30

// Channel receives updates by long polling and sends plain-text replies.
type Channel struct {
	*channels.BaseChannel
	bot *telego.Bot

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(token string, mb *bus.MessageBus) (*Channel, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Channel{
		BaseChannel: channels.NewBaseChannel(channels.NameTelegram, mb),
		bot:         bot,
	}, nil
}

func (c *Channel) Start(ctx context.Context) error {
	me, err := c.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        pollTimeoutSeconds,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("telegram long polling: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	slog.Info("telegram bot connected", "username", me.Username)
	go func() {
		defer close(done)
		for update := range updates {
			if update.Message == nil {
				continue
			}
			c.handleMessage(update.Message, me.Username)
		}
	}()
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
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		slog.Warn("telegram polling did not stop in time")
	}
	return nil
}

func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", msg.ChatID, err)
	}
	replyTo, _ := strconv.Atoi(msg.ReplyTo)

	for i, chunk := range chunkText(msg.Content, maxMessageLen) {
		params := tu.Message(tu.ID(chatID), chunk)
		if i == 0 && replyTo > 0 {
			params.ReplyParameters = &telego.ReplyParameters{
				MessageID:                replyTo,
				AllowSendingWithoutReply: true,
			}
		}
		if _, err := c.bot.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

func (c *Channel) handleMessage(m *telego.Message, botUsername string) {
	if m.From == nil || m.From.IsBot || m.Text == "" {
		return
	}

	isPrivate := m.Chat.Type == telego.ChatTypePrivate
	mentioned := hasMention(m.Text, botUsername)
	repliedToBot := m.ReplyToMessage != nil && m.ReplyToMessage.From != nil &&
		strings.EqualFold(m.ReplyToMessage.From.Username, botUsername)

	content := m.Text
	if mentioned {
		content = stripMention(content, botUsername)
	}

	c.Publish(bus.InboundMessage{
		ID:         strconv.Itoa(m.MessageID),
		SenderID:   strconv.FormatInt(m.From.ID, 10),
		SenderName: m.From.Username,
		ChatID:     strconv.FormatInt(m.Chat.ID, 10),
		Content:    content,
		Targeted:   isPrivate || mentioned || repliedToBot,
		Metadata: map[string]string{
			"chat_type":     m.Chat.Type,
			bus.MetaBotName: botUsername,
		},
	})
}
