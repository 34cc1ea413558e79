package cmd

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/autoreply/internal/config"
)

func TestRedactConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Channels.Telegram.Token = "123456:ABCDEFGHIJ"
	cfg.Channels.Slack.AppToken = "short"
	cfg.Storage.PostgresDSN = "postgres://user:pass@db/autoreply"
	cfg.Telemetry.Headers = map[string]string{"authorization": "Bearer secret-value"}

	raw := redactConfig(cfg)

	channels := raw["channels"].(map[string]any)
	tg := channels["telegram"].(map[string]any)
	if got := tg["token"]; got != "1234****GHIJ" {
		t.Errorf("telegram token = %v", got)
	}
	slack := channels["slack"].(map[string]any)
	if got := slack["app_token"]; got != "****" {
		t.Errorf("slack app token = %v", got)
	}
	storage := raw["storage"].(map[string]any)
	if got := storage["postgres_dsn"]; got != "post****eply" {
		t.Errorf("postgres dsn = %v", got)
	}
	headers := raw["telemetry"].(map[string]any)["headers"].(map[string]any)
	if got := headers["authorization"]; got != "Bear****alue" {
		t.Errorf("header = %v", got)
	}
	if got := storage["backend"]; got != "file" {
		t.Errorf("non-secret field changed: %v", got)
	}
}

func TestRenderConfig(t *testing.T) {
	raw := redactConfig(config.Default())

	js, err := renderConfig(raw, "json")
	if err != nil || !strings.Contains(js, `"backend": "file"`) {
		t.Errorf("json = %q, %v", js, err)
	}
	y, err := renderConfig(raw, "yaml")
	if err != nil || !strings.Contains(y, "backend: file") {
		t.Errorf("yaml = %q, %v", y, err)
	}
	if _, err := renderConfig(raw, "toml"); err == nil {
		t.Error("unknown format accepted")
	}
}
