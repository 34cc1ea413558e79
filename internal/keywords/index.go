// Package keywords owns the in-memory keyword → reply map.
//
// The map is case-insensitive (keywords are trimmed and lowercased), keeps
// insertion order, and is written back to its store after every mutation.
// On the chat path store failures are logged and swallowed: the in-memory map
// stays the source of truth for the life of the process. Offline tools use
// Open and WithSaveErrors to see those failures instead.
//
// Matching is two-tier. A message that equals a keyword after normalization
// gets exactly that keyword's reply. Otherwise every keyword contained in the
// message contributes its reply, in insertion order.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextlevelbuilder/autoreply/internal/metrics"
	"github.com/nextlevelbuilder/autoreply/internal/store"
)

var (
	ErrEmptyKeyword = errors.New("keyword is empty")
	ErrNotFound     = errors.New("keyword not found")
	ErrSave         = errors.New("keyword save failed")
)

// Outcome describes which matching tier produced a result.
type Outcome string

const (
	OutcomeExact     Outcome = "exact"
	OutcomeSubstring Outcome = "substring"
	OutcomeNone      Outcome = "none"
)

// Result is the outcome of matching one message.
// Keywords and Replies are parallel slices.
type Result struct {
	Outcome  Outcome
	Keywords []string
	Replies  []string
}

// Index is the keyword map. All methods are safe for concurrent use;
// mutations and their persistence run under one lock.
type Index struct {
	mu      sync.Mutex
	store   store.KeywordStore
	order   []string
	replies map[string]string
	cache   *lru.Cache[string, Result]
	metrics *metrics.Metrics

	saveErrors bool
}

// Option configures an Index.
type Option func(*Index)

// WithMatchCache memoizes Match results for up to size distinct messages.
// The cache is purged on every mutation and reload.
func WithMatchCache(size int) Option {
	return func(ix *Index) {
		if size <= 0 {
			return
		}
		c, err := lru.New[string, Result](size)
		if err != nil {
			slog.Warn("keyword match cache disabled", "size", size, "error", err)
			return
		}
		ix.cache = c
	}
}

// WithSaveErrors makes Add, Remove and Import return the store's save error
// (wrapped in ErrSave) in addition to logging it. The in-memory change stays.
func WithSaveErrors() Option {
	return func(ix *Index) { ix.saveErrors = true }
}

// WithMetrics records store failures and the keyword count.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ix *Index) { ix.metrics = m }
}

// New builds an index and loads the persisted map from s.
// Load failures leave the index empty; they are never returned.
func New(ctx context.Context, s store.KeywordStore, opts ...Option) *Index {
	ix := emptyIndex(s, opts)
	order, replies, err := ix.load(ctx)
	if err != nil {
		slog.Error("keyword config load failed, starting empty", "error", err)
		ix.metrics.ObserveStoreError("load")
	} else {
		ix.order, ix.replies = order, replies
	}
	ix.metrics.SetKeywords(len(ix.order))
	slog.Debug("keyword index ready", "keywords", len(ix.order))
	return ix
}

// Open is New for callers that must not continue from an empty map: an
// unreadable record is returned as an error, so a later save cannot
// overwrite it.
func Open(ctx context.Context, s store.KeywordStore, opts ...Option) (*Index, error) {
	ix := emptyIndex(s, opts)
	order, replies, err := ix.load(ctx)
	if err != nil {
		ix.metrics.ObserveStoreError("load")
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	ix.order, ix.replies = order, replies
	ix.metrics.SetKeywords(len(ix.order))
	return ix, nil
}

func emptyIndex(s store.KeywordStore, opts []Option) *Index {
	ix := &Index{
		store:   s,
		replies: make(map[string]string),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Add stores reply under the normalized keyword and persists the map.
// Overwriting an existing keyword keeps its position.
func (ix *Index) Add(ctx context.Context, keyword, reply string) (store.KeywordEntry, error) {
	key := Normalize(keyword)
	if key == "" {
		return store.KeywordEntry{}, ErrEmptyKeyword
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.replies[key]; !exists {
		ix.order = append(ix.order, key)
	}
	ix.replies[key] = reply
	entry := store.KeywordEntry{Keyword: key, Reply: reply}
	return entry, ix.changedLocked(ctx)
}

// Remove deletes the normalized keyword and persists the map.
// It returns the keyword that was removed.
func (ix *Index) Remove(ctx context.Context, keyword string) (string, error) {
	key := Normalize(keyword)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.replies[key]; !exists {
		return key, ErrNotFound
	}
	delete(ix.replies, key)
	for i, k := range ix.order {
		if k == key {
			ix.order = append(ix.order[:i], ix.order[i+1:]...)
			break
		}
	}
	return key, ix.changedLocked(ctx)
}

// Import adds entries in order with Add's normalization and persists once.
// With replace, the existing map is dropped first. Entries whose keyword is
// empty are skipped. It returns how many entries were applied.
func (ix *Index) Import(ctx context.Context, entries []store.KeywordEntry, replace bool) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if replace {
		ix.order = nil
		ix.replies = make(map[string]string, len(entries))
	}
	applied := 0
	for _, e := range entries {
		key := Normalize(e.Keyword)
		if key == "" {
			continue
		}
		if _, exists := ix.replies[key]; !exists {
			ix.order = append(ix.order, key)
		}
		ix.replies[key] = e.Reply
		applied++
	}
	return applied, ix.changedLocked(ctx)
}

// List returns a copy of all entries in insertion order.
func (ix *Index) List() []store.KeywordEntry {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.snapshotLocked()
}

// Len returns the number of keywords.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.order)
}

// Match returns the replies triggered by message.
func (ix *Index) Match(message string) []string {
	return ix.MatchResult(message).Replies
}

// MatchResult is Match with the matching tier and the keywords that fired.
func (ix *Index) MatchResult(message string) Result {
	msg := Normalize(message)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.cache != nil {
		if r, ok := ix.cache.Get(msg); ok {
			return r.clone()
		}
	}

	r := ix.matchLocked(msg)
	if ix.cache != nil {
		ix.cache.Add(msg, r.clone())
	}
	return r
}

func (ix *Index) matchLocked(msg string) Result {
	if reply, ok := ix.replies[msg]; ok {
		return Result{
			Outcome:  OutcomeExact,
			Keywords: []string{msg},
			Replies:  []string{reply},
		}
	}

	r := Result{Outcome: OutcomeNone}
	for _, k := range ix.order {
		if strings.Contains(msg, k) {
			r.Keywords = append(r.Keywords, k)
			r.Replies = append(r.Replies, ix.replies[k])
		}
	}
	if len(r.Replies) > 0 {
		r.Outcome = OutcomeSubstring
	}
	return r
}

// Reload replaces the map with the persisted record. Unlike New, a failed
// load keeps the current map and returns the error. The read happens under
// the index lock so it cannot interleave with a mutation's save.
func (ix *Index) Reload(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	order, replies, err := ix.load(ctx)
	if err != nil {
		ix.metrics.ObserveStoreError("load")
		return err
	}
	ix.order, ix.replies = order, replies
	if ix.cache != nil {
		ix.cache.Purge()
	}
	ix.metrics.SetKeywords(len(ix.order))
	return nil
}

// load reads the store and re-applies the map rules: keywords are
// normalized, empty ones dropped, duplicates collapse onto the first position.
func (ix *Index) load(ctx context.Context) ([]string, map[string]string, error) {
	entries, err := ix.store.LoadKeywords(ctx)
	if err != nil {
		return nil, nil, err
	}

	order := make([]string, 0, len(entries))
	replies := make(map[string]string, len(entries))
	for _, e := range entries {
		key := Normalize(e.Keyword)
		if key == "" {
			slog.Warn("skipping empty keyword in stored record")
			continue
		}
		if _, exists := replies[key]; !exists {
			order = append(order, key)
		}
		replies[key] = e.Reply
	}
	return order, replies, nil
}

// changedLocked runs after every mutation: drop cached matches and persist.
// The save error is returned only with WithSaveErrors.
func (ix *Index) changedLocked(ctx context.Context) error {
	if ix.cache != nil {
		ix.cache.Purge()
	}
	ix.metrics.SetKeywords(len(ix.order))

	err := ix.store.SaveKeywords(ctx, ix.snapshotLocked())
	if err == nil {
		return nil
	}
	slog.Error("keyword config save failed", "error", err)
	ix.metrics.ObserveStoreError("save")
	if ix.saveErrors {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

func (ix *Index) snapshotLocked() []store.KeywordEntry {
	entries := make([]store.KeywordEntry, len(ix.order))
	for i, k := range ix.order {
		entries[i] = store.KeywordEntry{Keyword: k, Reply: ix.replies[k]}
	}
	return entries
}

func (r Result) clone() Result {
	return Result{
		Outcome:  r.Outcome,
		Keywords: append([]string(nil), r.Keywords...),
		Replies:  append([]string(nil), r.Replies...),
	}
}
