package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/config"
)

const envFileName = ".env.local"

func onboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup wizard: storage, channels, admins",
		Run: func(cmd *cobra.Command, args []string) {
			runOnboard()
		},
	}
}

func runOnboard() {
	fmt.Println("autoreply setup")
	fmt.Println()

	cfgPath := resolveConfigPath()
	cfg, err := onboardBase(cfgPath)
	if err == nil {
		err = onboardWizard(cfg)
	}
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("Cancelled.")
		return
	}
	if err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config is not valid: %v\n", err)
		os.Exit(1)
	}

	public, secrets := splitSecrets(cfg)
	if err := config.Save(cfgPath, public); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config saved to %s (no secrets)\n", cfgPath)

	envPath := filepath.Join(filepath.Dir(cfgPath), envFileName)
	if len(secrets) > 0 {
		if err := writeEnvFile(envPath, secrets); err != nil {
			fmt.Printf("Error saving secrets: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Secrets saved to %s\n", envPath)
	}

	fmt.Println()
	fmt.Printf("  Store:     %s (%s)\n", cfg.Storage.Backend, storeLocation(cfg))
	for _, e := range channelEntries(cfg) {
		if e.Enabled {
			fmt.Printf("  %-10s enabled\n", e.Name+":")
		}
	}
	fmt.Printf("  Admins:    %d\n", len(cfg.Permissions.Admins))
	fmt.Println()
	fmt.Println("To start the bot:")
	fmt.Println()
	if len(secrets) > 0 {
		fmt.Printf("  source %s && autoreply serve\n", envPath)
	} else {
		fmt.Println("  autoreply serve")
	}
	fmt.Println()
}

// onboardBase returns the config the wizard starts from: the existing file
// when the user wants it, otherwise defaults.
func onboardBase(cfgPath string) (*config.Config, error) {
	if _, err := os.Stat(cfgPath); err != nil {
		return config.Default(), nil
	}
	fmt.Printf("Found existing config at %s\n", cfgPath)
	useExisting, err := promptConfirm("Use existing config as base?", true)
	if err != nil {
		return nil, err
	}
	if !useExisting {
		return config.Default(), nil
	}
	loaded, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("Warning: could not load existing config: %v\n", err)
		return config.Default(), nil
	}
	return loaded, nil
}

func onboardWizard(cfg *config.Config) error {
	var err error

	if cfg.DataDir, err = promptString("Data directory", "Where the keyword file or SQLite database lives", cfg.DataDir, nil); err != nil {
		return err
	}

	backends := []SelectOption[string]{
		{"JSON file (default)", config.BackendFile},
		{"SQLite", config.BackendSQLite},
		{"PostgreSQL", config.BackendPostgres},
		{"Redis", config.BackendRedis},
	}
	if cfg.Storage.Backend, err = promptSelect("Keyword store", backends, cfg.Storage.Backend); err != nil {
		return err
	}
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		cfg.Storage.PostgresDSN, err = promptSecret("PostgreSQL DSN", cfg.Storage.PostgresDSN)
	case config.BackendRedis:
		cfg.Storage.RedisURL, err = promptSecret("Redis URL", cfg.Storage.RedisURL)
	}
	if err != nil {
		return err
	}

	if err := onboardChannels(cfg); err != nil {
		return err
	}

	admins, err := promptString("Admin senders",
		`Comma-separated "<channel>:<sender id>"; "*:<id>" matches any channel`,
		strings.Join(cfg.Permissions.Admins, ","), validateAdminList)
	if err != nil {
		return err
	}
	cfg.Permissions.Admins = splitList(admins)

	listen, err := promptString("Metrics listen address", `e.g. ":9090"; "off" disables /metrics`, cfg.Metrics.Listen, nil)
	if err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(listen), "off") {
		listen = ""
	}
	cfg.Metrics.Listen = strings.TrimSpace(listen)

	if anyChannelEnabled(cfg) {
		verify, err := promptConfirm("Verify channel credentials now?", true)
		if err != nil {
			return err
		}
		if verify {
			fmt.Println()
			if failed := verifyEnabledChannels(context.Background(), cfg); len(failed) > 0 {
				fmt.Printf("Continuing; fix %s before running serve.\n", strings.Join(failed, ", "))
			}
			fmt.Println()
		}
	}
	return nil
}

func onboardChannels(cfg *config.Config) error {
	ch := &cfg.Channels
	options := []SelectOption[string]{
		{"Telegram (long polling)", channels.NameTelegram},
		{"Discord (gateway)", channels.NameDiscord},
		{"Slack (Socket Mode)", channels.NameSlack},
	}
	var enabled []string
	for _, e := range channelEntries(cfg) {
		if e.Enabled {
			enabled = append(enabled, e.Name)
		}
	}

	selected, err := promptMultiSelect("Channels", "Space to toggle, Enter to confirm", options, enabled)
	if err != nil {
		return err
	}
	on := make(map[string]bool, len(selected))
	for _, name := range selected {
		on[name] = true
	}

	ch.Telegram.Enabled = on[channels.NameTelegram]
	ch.Discord.Enabled = on[channels.NameDiscord]
	ch.Slack.Enabled = on[channels.NameSlack]

	if ch.Telegram.Enabled {
		if ch.Telegram.Token, err = promptSecret("Telegram bot token", ch.Telegram.Token); err != nil {
			return err
		}
	}
	if ch.Discord.Enabled {
		if ch.Discord.Token, err = promptSecret("Discord bot token", ch.Discord.Token); err != nil {
			return err
		}
	}
	if ch.Slack.Enabled {
		if ch.Slack.BotToken, err = promptSecret("Slack bot token (xoxb-)", ch.Slack.BotToken); err != nil {
			return err
		}
		if ch.Slack.AppToken, err = promptSecret("Slack app-level token (xapp-)", ch.Slack.AppToken); err != nil {
			return err
		}
	}
	return nil
}

func anyChannelEnabled(cfg *config.Config) bool {
	for _, e := range channelEntries(cfg) {
		if e.Enabled {
			return true
		}
	}
	return false
}

func validateAdminList(s string) error {
	for _, a := range splitList(s) {
		ch, id, ok := strings.Cut(a, ":")
		if !ok || ch == "" || id == "" {
			return fmt.Errorf("%q is not <channel>:<sender id>", a)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
