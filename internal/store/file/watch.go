package file

import (
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/autoreply/internal/fswatch"
)

// Watcher reports changes to the keyword record made by other processes,
// e.g. `autoreply keywords add` while the gateway is running. The gateway's
// own saves are reported too; reloading an identical record is harmless.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	fw       *fswatch.Watcher
}

// NewWatcher creates a watcher for the store's record. onChange runs after
// events settle for the debounce window.
func NewWatcher(s *KeywordStore, onChange func()) (*Watcher, error) {
	return &Watcher{
		path:     s.Path(),
		onChange: onChange,
		debounce: fswatch.DefaultDebounce,
	}, nil
}

func (kw *Watcher) Start() error {
	fw, err := fswatch.New(kw.path, kw.debounce, func() {
		slog.Debug("keyword record changed", "path", kw.path)
		kw.onChange()
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		fw.Stop()
		return err
	}
	kw.fw = fw
	slog.Info("keyword record watcher started", "path", kw.path)
	return nil
}

// Stop halts the watcher. Safe to call more than once.
func (kw *Watcher) Stop() {
	if kw.fw != nil {
		kw.fw.Stop()
	}
}
