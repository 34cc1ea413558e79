package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

// DefaultFileName is the record name used when only a data directory is configured.
const DefaultFileName = "keyword_reply_config.json"

const (
	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600
)

// KeywordStore keeps the keyword map in one JSON file.
// Writes go through a temp file and rename, so readers never see a torn record.
type KeywordStore struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// Option customizes a KeywordStore.
type Option func(*KeywordStore)

// WithPerms overrides the directory and file modes used on save.
func WithPerms(dir, file os.FileMode) Option {
	return func(s *KeywordStore) {
		if dir != 0 {
			s.dirPerm = dir
		}
		if file != 0 {
			s.filePerm = file
		}
	}
}

func NewKeywordStore(path string, opts ...Option) (*KeywordStore, error) {
	if path == "" {
		return nil, fmt.Errorf("keyword store path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve keyword store path: %w", err)
	}
	s := &KeywordStore{
		path:     abs,
		dirPerm:  defaultDirPerm,
		filePerm: defaultFilePerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the absolute record path.
func (s *KeywordStore) Path() string { return s.path }

func (s *KeywordStore) LoadKeywords(_ context.Context) ([]store.KeywordEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	entries, err := store.UnmarshalKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *KeywordStore) SaveKeywords(_ context.Context, entries []store.KeywordEntry) error {
	if err := store.ValidateEntries(entries); err != nil {
		return err
	}
	data, err := store.MarshalKeywords(entries)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data, s.dirPerm, s.filePerm)
}

func (s *KeywordStore) Close() error { return nil }

func writeAtomic(path string, content []byte, dirPerm, filePerm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", path, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp for %s: %w", path, err)
	}

	// Best effort: persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
