// Package fswatch runs a callback once a single file has stopped changing.
package fswatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used by callers that have no opinion.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches the parent directory of a file and calls fn after events
// for that file settle for the debounce window. Watching the directory keeps
// working when the file is replaced by rename, which drops a watch placed on
// the old inode.
type Watcher struct {
	path     string
	debounce time.Duration
	fn       func()
	fs       *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a stopped watcher. fn runs on a timer goroutine, never
// concurrently with itself for bursts shorter than the debounce window.
func New(path string, debounce time.Duration, fn func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		fn:       fn,
		fs:       fs,
		done:     make(chan struct{}),
	}, nil
}

// Start creates the parent directory if needed and begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	go w.loop()
	return nil
}

// Stop halts the watcher and cancels a pending callback. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		close(w.done)
		w.fs.Close()
	})
}

func (w *Watcher) loop() {
	name := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("file watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if !stopped {
		w.fn()
	}
}
