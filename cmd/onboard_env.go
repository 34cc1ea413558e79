package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/autoreply/internal/config"
)

type envVar struct {
	Key   string
	Value string
}

// splitSecrets returns a copy of cfg with credentials cleared, plus the
// AUTOREPLY_* variables that carry them. Tokens of disabled channels are
// dropped so sourcing the env file does not re-enable them.
func splitSecrets(cfg *config.Config) (*config.Config, []envVar) {
	public := *cfg
	var vars []envVar
	add := func(key string, value *string) {
		if *value != "" {
			vars = append(vars, envVar{key, *value})
		}
		*value = ""
	}

	add("AUTOREPLY_POSTGRES_DSN", &public.Storage.PostgresDSN)
	add("AUTOREPLY_REDIS_URL", &public.Storage.RedisURL)

	ch := &public.Channels
	if !ch.Telegram.Enabled {
		ch.Telegram.Token = ""
	}
	if !ch.Discord.Enabled {
		ch.Discord.Token = ""
	}
	if !ch.Slack.Enabled {
		ch.Slack.BotToken, ch.Slack.AppToken = "", ""
	}
	add("AUTOREPLY_TELEGRAM_TOKEN", &ch.Telegram.Token)
	add("AUTOREPLY_DISCORD_TOKEN", &ch.Discord.Token)
	add("AUTOREPLY_SLACK_BOT_TOKEN", &ch.Slack.BotToken)
	add("AUTOREPLY_SLACK_APP_TOKEN", &ch.Slack.AppToken)

	return &public, vars
}

// writeEnvFile writes vars as shell exports readable only by the owner.
func writeEnvFile(path string, vars []envVar) error {
	var b strings.Builder
	b.WriteString("# autoreply secrets, generated by `autoreply onboard`\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "export %s=%s\n", v.Key, shellQuote(v.Value))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
