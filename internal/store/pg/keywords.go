// Package pg stores the keyword map in Postgres.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

const schema = `CREATE TABLE IF NOT EXISTS keyword_replies (
	keyword  TEXT PRIMARY KEY,
	reply    TEXT NOT NULL,
	position INTEGER NOT NULL
)`

// PGKeywordStore implements store.KeywordStore backed by Postgres.
type PGKeywordStore struct {
	db *sql.DB
}

// NewPGKeywordStore connects to dsn and makes sure the table exists.
func NewPGKeywordStore(ctx context.Context, dsn string) (*PGKeywordStore, error) {
	db, err := openDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create keyword_replies: %w", err)
	}
	return &PGKeywordStore{db: db}, nil
}

func (s *PGKeywordStore) LoadKeywords(ctx context.Context) ([]store.KeywordEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT keyword, reply FROM keyword_replies ORDER BY position")
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

// SaveKeywords replaces all rows inside one transaction, so concurrent
// readers see either the old or the new snapshot.
func (s *PGKeywordStore) SaveKeywords(ctx context.Context, entries []store.KeywordEntry) error {
	if err := store.ValidateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM keyword_replies"); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO keyword_replies (keyword, reply, position) VALUES ($1, $2, $3)",
			e.Keyword, e.Reply, i,
		); err != nil {
			return fmt.Errorf("insert %q: %w", e.Keyword, err)
		}
	}
	return tx.Commit()
}

func (s *PGKeywordStore) Close() error {
	return s.db.Close()
}

// openDB opens a small pgx-backed pool; the store issues at most one
// transaction at a time.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	slog.Debug("postgres keyword store connected")
	return db, nil
}
