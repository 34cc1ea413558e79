package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/channels/discord"
	"github.com/nextlevelbuilder/autoreply/internal/channels/slack"
	"github.com/nextlevelbuilder/autoreply/internal/channels/telegram"
	"github.com/nextlevelbuilder/autoreply/internal/config"
	"github.com/nextlevelbuilder/autoreply/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot on every enabled chat channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfgPath := resolveConfigPath()
	cfg := mustLoadConfig()
	level := setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(ctx, cfg.Telemetry, Version)
	defer flushTracing(shutdownTracing)

	rt := newPipeline(ctx, cfg, mustOpenKeywordStore(ctx, cfg))
	defer rt.stop()

	registered, err := registerChannels(rt.channels, cfg, rt.bus)
	if err != nil {
		return err
	}
	if registered == 0 {
		return fmt.Errorf("no chat channel enabled in %s (try \"autoreply chat\" for a local session)", cfgPath)
	}

	if err := rt.start(ctx); err != nil {
		return err
	}

	cw, err := config.NewWatcher(cfgPath)
	if err != nil {
		slog.Warn("config hot reload unavailable", "error", err)
	} else {
		cw.OnChange(func(newCfg *config.Config) {
			rt.applyConfig(newCfg)
			if !verbose {
				level.Set(parseLevel(newCfg.Log.Level))
			}
		})
		if err := cw.Start(); err != nil {
			slog.Warn("config hot reload unavailable", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	slog.Info("autoreply running", "version", Version, "channels", rt.channels.Names())
	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// registerChannels adds every enabled platform channel and returns how many.
func registerChannels(m *channels.Manager, cfg *config.Config, mb *bus.MessageBus) (int, error) {
	n := 0
	if tc := cfg.Channels.Telegram; tc.Enabled {
		ch, err := telegram.New(tc.Token, mb)
		if err != nil {
			return 0, err
		}
		m.Register(ch)
		n++
	}
	if dc := cfg.Channels.Discord; dc.Enabled {
		ch, err := discord.New(dc.Token, mb)
		if err != nil {
			return 0, err
		}
		m.Register(ch)
		n++
	}
	if sc := cfg.Channels.Slack; sc.Enabled {
		m.Register(slack.New(sc.BotToken, sc.AppToken, mb))
		n++
	}
	return n, nil
}

func flushTracing(shutdown tracing.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("tracing shutdown", "error", err)
	}
}
