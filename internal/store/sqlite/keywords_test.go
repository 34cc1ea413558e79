package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

func TestKeywordStore_CRUD(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "keywords.db")

	s, err := NewKeywordStore(dbPath)
	if err != nil {
		t.Fatalf("NewKeywordStore: %v", err)
	}
	defer s.Close()

	entries, err := s.LoadKeywords(ctx)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh store has %d entries", len(entries))
	}

	in := []store.KeywordEntry{
		{Keyword: "zz", Reply: "first"},
		{Keyword: "aa", Reply: "second\nline"},
		{Keyword: "中文", Reply: "三"},
	}
	if err := s.SaveKeywords(ctx, in); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}

	out, err := s.LoadKeywords(ctx)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("LoadKeywords = %+v, want %+v", out, in)
	}

	// A smaller snapshot replaces the previous one.
	if err := s.SaveKeywords(ctx, in[1:2]); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}
	out, err = s.LoadKeywords(ctx)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if !reflect.DeepEqual(in[1:2], out) {
		t.Errorf("LoadKeywords = %+v, want %+v", out, in[1:2])
	}
}

func TestKeywordStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "keywords.db")

	s, err := NewKeywordStore(dbPath)
	if err != nil {
		t.Fatalf("NewKeywordStore: %v", err)
	}
	in := []store.KeywordEntry{{Keyword: "b", Reply: "2"}, {Keyword: "a", Reply: "1"}}
	if err := s.SaveKeywords(ctx, in); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}
	s.Close()

	s2, err := NewKeywordStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	out, err := s2.LoadKeywords(ctx)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("after reopen = %+v, want %+v", out, in)
	}
}

func TestKeywordStore_SaveRejectsDuplicates(t *testing.T) {
	s, err := NewKeywordStore(filepath.Join(t.TempDir(), "keywords.db"))
	if err != nil {
		t.Fatalf("NewKeywordStore: %v", err)
	}
	defer s.Close()

	err = s.SaveKeywords(context.Background(), []store.KeywordEntry{
		{Keyword: "a", Reply: "1"},
		{Keyword: "a", Reply: "2"},
	})
	if err == nil {
		t.Fatal("expected duplicate keyword error")
	}
}
