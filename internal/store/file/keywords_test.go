package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

func newTestStore(t *testing.T) *KeywordStore {
	t.Helper()
	s, err := NewKeywordStore(filepath.Join(t.TempDir(), "data", DefaultFileName))
	if err != nil {
		t.Fatalf("NewKeywordStore: %v", err)
	}
	return s
}

func TestKeywordStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.LoadKeywords(context.Background())
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestKeywordStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := []store.KeywordEntry{
		{Keyword: "hello", Reply: "world"},
		{Keyword: "早上好", Reply: "  早安\n☀️"},
		{Keyword: "a", Reply: ""},
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

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != defaultFilePerm {
		t.Errorf("file mode = %o, want %o", perm, defaultFilePerm)
	}
}

func TestKeywordStore_SaveIsByteStable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SaveKeywords(ctx, []store.KeywordEntry{
		{Keyword: "z", Reply: "last"},
		{Keyword: "ä", Reply: "umlaut"},
	}); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}
	first, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	entries, err := s.LoadKeywords(ctx)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if err := s.SaveKeywords(ctx, entries); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}
	second, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("record changed on save(load()):\n%s\nvs\n%s", first, second)
	}
}

func TestKeywordStore_LoadCorrupt(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadKeywords(context.Background()); err == nil {
		t.Fatal("expected error for corrupt record")
	}
}

func TestKeywordStore_SaveRejectsUnnormalized(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveKeywords(context.Background(), []store.KeywordEntry{{Keyword: "Hi", Reply: "x"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, statErr := os.Stat(s.Path()); !os.IsNotExist(statErr) {
		t.Errorf("record should not be written on validation error, stat err = %v", statErr)
	}
}

func TestKeywordStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.SaveKeywords(ctx, []store.KeywordEntry{{Keyword: "k", Reply: "v"}}); err != nil {
			t.Fatalf("SaveKeywords: %v", err)
		}
	}

	files, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name() != DefaultFileName {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name())
		}
		t.Errorf("dir entries = %v, want only %s", names, DefaultFileName)
	}
}

func TestWatcher_ReportsExternalWrite(t *testing.T) {
	s := newTestStore(t)

	var calls atomic.Int32
	w, err := NewWatcher(s, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := s.SaveKeywords(context.Background(), []store.KeywordEntry{{Keyword: "k", Reply: "v"}}); err != nil {
		t.Fatalf("SaveKeywords: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Fatal("watcher did not report the change")
	}
}
