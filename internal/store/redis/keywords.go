// Package redis keeps the keyword record under a single Redis key, in the same
// ordered JSON layout the file backend writes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "autoreply:keywords"

// KeywordStore implements store.KeywordStore on Redis.
type KeywordStore struct {
	client goredis.UniversalClient
	key    string
}

// NewKeywordStore parses a redis:// URL, connects and pings the server.
func NewKeywordStore(ctx context.Context, url, key string) (*KeywordStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("keyword store opened", "backend", store.BackendRedis, "addr", opts.Addr)
	return NewKeywordStoreWithClient(client, key), nil
}

// NewKeywordStoreWithClient wraps an existing client.
func NewKeywordStoreWithClient(client goredis.UniversalClient, key string) *KeywordStore {
	if key == "" {
		key = DefaultKey
	}
	return &KeywordStore{client: client, key: key}
}

func (s *KeywordStore) LoadKeywords(ctx context.Context) ([]store.KeywordEntry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	entries, err := store.UnmarshalKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.key, err)
	}
	return entries, nil
}

// SaveKeywords overwrites the key with a full snapshot; SET is atomic.
func (s *KeywordStore) SaveKeywords(ctx context.Context, entries []store.KeywordEntry) error {
	if err := store.ValidateEntries(entries); err != nil {
		return err
	}
	data, err := store.MarshalKeywords(entries)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

func (s *KeywordStore) Close() error {
	return s.client.Close()
}
