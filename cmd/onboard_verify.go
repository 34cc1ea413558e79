package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mymmrac/telego"
	"github.com/slack-go/slack"

	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/config"
)

const verifyTimeout = 10 * time.Second

var errMissingCredentials = errors.New("missing credentials")

// verifyChannel asks the platform who the configured bot is. It returns the
// bot's display name on success.
func verifyChannel(ctx context.Context, name string, cfg *config.Config) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	ch := cfg.Channels
	switch name {
	case channels.NameTelegram:
		if ch.Telegram.Token == "" {
			return "", errMissingCredentials
		}
		bot, err := telego.NewBot(ch.Telegram.Token)
		if err != nil {
			return "", fmt.Errorf("telegram token: %w", err)
		}
		me, err := bot.GetMe(ctx)
		if err != nil {
			return "", fmt.Errorf("telegram getMe: %w", err)
		}
		return "@" + me.Username, nil

	case channels.NameDiscord:
		if ch.Discord.Token == "" {
			return "", errMissingCredentials
		}
		session, err := discordgo.New("Bot " + ch.Discord.Token)
		if err != nil {
			return "", fmt.Errorf("discord session: %w", err)
		}
		me, err := session.User("@me", discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("discord users/@me: %w", err)
		}
		return me.Username, nil

	case channels.NameSlack:
		if ch.Slack.BotToken == "" || ch.Slack.AppToken == "" {
			return "", errMissingCredentials
		}
		if !strings.HasPrefix(ch.Slack.AppToken, "xapp-") {
			return "", errors.New("slack app token must start with xapp-")
		}
		auth, err := slack.New(ch.Slack.BotToken).AuthTestContext(ctx)
		if err != nil {
			return "", fmt.Errorf("slack auth.test: %w", err)
		}
		return auth.User + " (" + auth.Team + ")", nil
	}
	return "", fmt.Errorf("unknown channel %q", name)
}

// verifyEnabledChannels checks every enabled channel and prints one line each.
// It returns the names that failed.
func verifyEnabledChannels(ctx context.Context, cfg *config.Config) []string {
	var failed []string
	for _, e := range channelEntries(cfg) {
		if !e.Enabled {
			continue
		}
		who, err := verifyChannel(ctx, e.Name, cfg)
		if err != nil {
			fmt.Printf("    %-12s FAILED: %s\n", e.Name+":", err)
			failed = append(failed, e.Name)
			continue
		}
		fmt.Printf("    %-12s OK (%s)\n", e.Name+":", who)
	}
	return failed
}
