package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/config"
)

func TestSplitSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.PostgresDSN = "postgres://u:p@db/x"
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = "tg-token"
	cfg.Channels.Discord.Token = "stale-discord"

	public, vars := splitSecrets(cfg)

	if public.Storage.PostgresDSN != "" || public.Channels.Telegram.Token != "" || public.Channels.Discord.Token != "" {
		t.Errorf("secrets left in public config: %+v", public)
	}
	if !public.Channels.Telegram.Enabled {
		t.Error("enabled flag lost")
	}
	if cfg.Channels.Telegram.Token != "tg-token" {
		t.Error("original config modified")
	}

	got := map[string]string{}
	for _, v := range vars {
		got[v.Key] = v.Value
	}
	if len(got) != 2 || got["AUTOREPLY_POSTGRES_DSN"] != "postgres://u:p@db/x" || got["AUTOREPLY_TELEGRAM_TOKEN"] != "tg-token" {
		t.Errorf("vars = %v", got)
	}
}

func TestWriteEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), envFileName)
	err := writeEnvFile(path, []envVar{
		{"AUTOREPLY_TELEGRAM_TOKEN", "123:abc"},
		{"AUTOREPLY_REDIS_URL", "redis://it's"},
	})
	if err != nil {
		t.Fatalf("writeEnvFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"export AUTOREPLY_TELEGRAM_TOKEN='123:abc'\n",
		`export AUTOREPLY_REDIS_URL='redis://it'\''s'` + "\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("env file missing %q:\n%s", want, content)
		}
	}
	info, _ := os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestValidateAdminList(t *testing.T) {
	if err := validateAdminList(" telegram:42, *:7 ,"); err != nil {
		t.Errorf("valid list rejected: %v", err)
	}
	if err := validateAdminList(""); err != nil {
		t.Errorf("empty list rejected: %v", err)
	}
	for _, bad := range []string{"telegram", "telegram:", ":42"} {
		if err := validateAdminList(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
	if got := splitList(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
}

func TestVerifyChannel_Offline(t *testing.T) {
	cfg := config.Default()
	ctx := context.Background()

	for _, name := range []string{channels.NameTelegram, channels.NameDiscord, channels.NameSlack} {
		if _, err := verifyChannel(ctx, name, cfg); !errors.Is(err, errMissingCredentials) {
			t.Errorf("%s: err = %v, want missing credentials", name, err)
		}
	}

	cfg.Channels.Slack.BotToken = "xoxb-1"
	cfg.Channels.Slack.AppToken = "xoxb-2"
	if _, err := verifyChannel(ctx, channels.NameSlack, cfg); err == nil || !strings.Contains(err.Error(), "xapp-") {
		t.Errorf("slack app token prefix not checked: %v", err)
	}
	if _, err := verifyChannel(ctx, "irc", cfg); err == nil {
		t.Error("unknown channel accepted")
	}
}
