package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/commands"
	"github.com/nextlevelbuilder/autoreply/internal/config"
	"github.com/nextlevelbuilder/autoreply/internal/gateway"
	"github.com/nextlevelbuilder/autoreply/internal/keywords"
	"github.com/nextlevelbuilder/autoreply/internal/matcher"
	"github.com/nextlevelbuilder/autoreply/internal/metrics"
	"github.com/nextlevelbuilder/autoreply/internal/permissions"
	"github.com/nextlevelbuilder/autoreply/internal/store"
	"github.com/nextlevelbuilder/autoreply/internal/store/file"
)

const (
	dedupeTTL  = 10 * time.Minute
	dedupeSize = 10000
)

// pipeline is the wired message pipeline shared by serve and chat.
type pipeline struct {
	cfg      *config.Config
	store    store.KeywordStore
	index    *keywords.Index
	bus      *bus.MessageBus
	metrics  *metrics.Metrics
	policy   *permissions.Policy
	channels *channels.Manager
	consumer *gateway.Consumer

	recordWatcher *file.Watcher
}

func newPipeline(ctx context.Context, cfg *config.Config, ks store.KeywordStore) *pipeline {
	m := metrics.New()
	mb := bus.New()

	ix := keywords.New(ctx, ks,
		keywords.WithMatchCache(cfg.Matcher.CacheSize),
		keywords.WithMetrics(m),
	)
	policy := permissions.NewPolicy(permissions.Rules{
		Admins:          cfg.Permissions.Admins,
		TrustedChannels: cfg.Permissions.TrustedChannels,
	})
	mt := matcher.New(ix, mb,
		matcher.WithReplyPrefix(cfg.Matcher.ReplyPrefix),
		matcher.WithMetrics(m),
	)

	rt := &pipeline{
		cfg:      cfg,
		store:    ks,
		index:    ix,
		bus:      mb,
		metrics:  m,
		policy:   policy,
		channels: channels.NewManager(mb),
		consumer: gateway.NewConsumer(mb, commands.NewAdapter(ix, m), mt, policy, bus.NewDedupeCache(dedupeTTL, dedupeSize)),
	}
	slog.Info("keyword index loaded", "backend", cfg.Storage.Backend, "location", storeLocation(cfg), "keywords", ix.Len())
	return rt
}

// start launches the consumer, channels, metrics listener and record watcher.
func (rt *pipeline) start(ctx context.Context) error {
	go rt.consumer.Run(ctx)

	if err := rt.channels.StartAll(ctx); err != nil {
		return err
	}

	if addr := rt.cfg.Metrics.Listen; addr != "" {
		go func() {
			if err := rt.metrics.Serve(ctx, addr); err != nil {
				slog.Error("metrics listener failed", "addr", addr, "error", err)
			}
		}()
	}

	if fs, ok := rt.store.(*file.KeywordStore); ok && rt.cfg.WatchEnabled() {
		w, err := file.NewWatcher(fs, func() {
			if err := rt.index.Reload(ctx); err != nil {
				slog.Warn("keyword record reload failed, keeping current map", "error", err)
				return
			}
			slog.Info("keyword record reloaded", "keywords", rt.index.Len())
		})
		if err != nil {
			return fmt.Errorf("keyword record watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("keyword record watcher: %w", err)
		}
		rt.recordWatcher = w
	}
	return nil
}

// applyConfig takes the hot-reloadable parts of a new config.
func (rt *pipeline) applyConfig(cfg *config.Config) {
	rt.policy.Update(permissions.Rules{
		Admins:          cfg.Permissions.Admins,
		TrustedChannels: cfg.Permissions.TrustedChannels,
	})
	slog.Info("permissions updated from config", "admins", len(cfg.Permissions.Admins))
}

func (rt *pipeline) stop() {
	if rt.recordWatcher != nil {
		rt.recordWatcher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rt.channels.StopAll(ctx)

	if err := rt.store.Close(); err != nil {
		slog.Warn("closing keyword store", "error", err)
	}
}
