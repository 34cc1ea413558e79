// Package sqlite stores the keyword map in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

// KeywordStore implements store.KeywordStore on SQLite.
// Order is kept in an explicit position column.
type KeywordStore struct {
	db *sql.DB
}

// NewKeywordStore opens (or creates) the database at dbPath and applies the schema.
func NewKeywordStore(dbPath string) (*KeywordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &KeywordStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("keyword store opened", "backend", store.BackendSQLite, "path", dbPath)
	return s, nil
}

func (s *KeywordStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS keyword_replies (
			keyword TEXT PRIMARY KEY,
			reply TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_keyword_replies_position ON keyword_replies(position)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

func (s *KeywordStore) LoadKeywords(ctx context.Context) ([]store.KeywordEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword, reply FROM keyword_replies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var entries []store.KeywordEntry
	for rows.Next() {
		var e store.KeywordEntry
		if err := rows.Scan(&e.Keyword, &e.Reply); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveKeywords replaces the table content in one transaction.
func (s *KeywordStore) SaveKeywords(ctx context.Context, entries []store.KeywordEntry) error {
	if err := store.ValidateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keyword_replies`); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO keyword_replies (keyword, reply, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Keyword, e.Reply, i); err != nil {
			return fmt.Errorf("insert %q: %w", e.Keyword, err)
		}
	}
	return tx.Commit()
}

func (s *KeywordStore) Close() error {
	return s.db.Close()
}
