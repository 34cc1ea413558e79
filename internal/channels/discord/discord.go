// Package discord is the Discord channel, using the gateway websocket.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
)

// maxMessageLen is Discord's per-message content limit.
const maxMessageLen = 2000

// Channel listens for guild and direct messages.
type Channel struct {
	*channels.BaseChannel
	session *discordgo.Session
	botID   string
	remove  func()
}

func New(token string, mb *bus.MessageBus) (*Channel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	return &Channel{
		BaseChannel: channels.NewBaseChannel(channels.NameDiscord, mb),
		session:     session,
	}, nil
}

func (c *Channel) Start(_ context.Context) error {
	c.remove = c.session.AddHandler(c.onMessageCreate)
	if err := c.session.Open(); err != nil {
		c.remove()
		return fmt.Errorf("open discord session: %w", err)
	}
	if c.session.State != nil && c.session.State.User != nil {
		c.botID = c.session.State.User.ID
		slog.Info("discord bot connected", "username", c.session.State.User.Username)
	}
	return nil
}

func (c *Channel) Stop(_ context.Context) error {
	if c.remove != nil {
		c.remove()
		c.remove = nil
	}
	return c.session.Close()
}

func (c *Channel) Send(_ context.Context, msg bus.OutboundMessage) error {
	content := msg.Content
	if len(content) > maxMessageLen {
		content = truncate(content, maxMessageLen)
	}
	send := &discordgo.MessageSend{Content: content}
	if msg.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyTo,
			ChannelID: msg.ChatID,
		}
	}
	if _, err := c.session.ChannelMessageSendComplex(msg.ChatID, send); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}

func (c *Channel) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Content == "" {
		return
	}

	isDM := m.GuildID == ""
	mentioned := false
	for _, u := range m.Mentions {
		if u != nil && u.ID == c.botID {
			mentioned = true
			break
		}
	}

	content := m.Content
	if mentioned {
		content = stripMention(content, c.botID)
	}

	c.Publish(bus.InboundMessage{
		ID:         m.ID,
		SenderID:   m.Author.ID,
		SenderName: m.Author.Username,
		ChatID:     m.ChannelID,
		Content:    content,
		Targeted:   isDM || mentioned,
		Metadata: map[string]string{
			"guild_id": m.GuildID,
		},
	})
}

// stripMention removes <@id> and <@!id> mentions of the bot.
func stripMention(text, botID string) string {
	if botID == "" {
		return strings.TrimSpace(text)
	}
	re := regexp.MustCompile(`<@!?` + regexp.QuoteMeta(botID) + `>`)
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}

func truncate(s string, limit int) string {
	for limit > 0 && limit < len(s) && (s[limit]&0xC0) == 0x80 {
		limit--
	}
	return s[:limit]
}
