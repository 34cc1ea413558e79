package store

import "context"

// KeywordEntry is one keyword → reply pair.
// Keyword is trimmed and lowercased; Reply is kept verbatim.
type KeywordEntry struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Reply   string `json:"reply" yaml:"reply"`
}

// KeywordStore persists the ordered keyword map as a single snapshot.
//
// LoadKeywords returns (nil, nil) when no record exists yet.
// SaveKeywords replaces the whole record; entries are written in slice order.
type KeywordStore interface {
	LoadKeywords(ctx context.Context) ([]KeywordEntry, error)
	SaveKeywords(ctx context.Context, entries []KeywordEntry) error
	Close() error
}

// Backend names accepted by storage.backend.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)
