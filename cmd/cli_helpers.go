package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nextlevelbuilder/autoreply/internal/config"
	"github.com/nextlevelbuilder/autoreply/internal/store"
	"github.com/nextlevelbuilder/autoreply/internal/store/file"
	"github.com/nextlevelbuilder/autoreply/internal/store/pg"
	"github.com/nextlevelbuilder/autoreply/internal/store/redis"
	"github.com/nextlevelbuilder/autoreply/internal/store/sqlite"
)

// mustLoadConfig loads the resolved config file or exits with a message.
func mustLoadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// openKeywordStore opens the backend selected by storage.backend.
func openKeywordStore(ctx context.Context, cfg *config.Config) (store.KeywordStore, error) {
	var (
		s   store.KeywordStore
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err = sqlite.NewKeywordStore(cfg.SQLitePath())
	case config.BackendPostgres:
		s, err = pg.NewPGKeywordStore(ctx, cfg.Storage.PostgresDSN)
	case config.BackendRedis:
		s, err = redis.NewKeywordStore(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisKey)
	default:
		s, err = file.NewKeywordStore(cfg.KeywordFilePath())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// storeLocation describes where the keyword record lives, for logs and output.
// Connection strings are not printed because they carry credentials.
func storeLocation(cfg *config.Config) string {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return cfg.SQLitePath()
	case config.BackendPostgres:
		return "postgres"
	case config.BackendRedis:
		return "redis key " + cfg.Storage.RedisKey
	default:
		return cfg.KeywordFilePath()
	}
}

func mustOpenKeywordStore(ctx context.Context, cfg *config.Config) store.KeywordStore {
	s, err := openKeywordStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s keyword store: %s\n", cfg.Storage.Backend, err)
		os.Exit(1)
	}
	slog.Debug("keyword store opened", "backend", cfg.Storage.Backend, "location", storeLocation(cfg))
	return s
}
