package config

import (
	"crypto/sha256"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nextlevelbuilder/autoreply/internal/fswatch"
)

// ChangeHandler receives the newly loaded config.
type ChangeHandler func(cfg *Config)

// Watcher reloads the config file when its content changes and passes the
// result to the registered handlers. A reload that fails to parse or validate
// is logged and the previous config stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	handlers []ChangeHandler
	digest   [sha256.Size]byte

	fw *fswatch.Watcher
}

func NewWatcher(configPath string) (*Watcher, error) {
	if configPath == "" {
		return nil, errors.New("config watcher: empty path")
	}
	return &Watcher{path: configPath, debounce: fswatch.DefaultDebounce}, nil
}

func (cw *Watcher) OnChange(handler ChangeHandler) {
	cw.mu.Lock()
	cw.handlers = append(cw.handlers, handler)
	cw.mu.Unlock()
}

// Start begins watching. Saves that leave the bytes unchanged do not reload.
func (cw *Watcher) Start() error {
	if data, err := os.ReadFile(cw.path); err == nil {
		cw.digest = sha256.Sum256(data)
	}

	fw, err := fswatch.New(cw.path, cw.debounce, cw.reload)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		fw.Stop()
		return err
	}
	cw.fw = fw
	slog.Info("config watcher started", "path", cw.path)
	return nil
}

func (cw *Watcher) Stop() {
	if cw.fw != nil {
		cw.fw.Stop()
	}
}

func (cw *Watcher) reload() {
	data, err := os.ReadFile(cw.path)
	if err != nil {
		slog.Warn("config file unreadable, keeping previous config", "path", cw.path, "error", err)
		return
	}
	sum := sha256.Sum256(data)

	cw.mu.Lock()
	unchanged := sum == cw.digest
	cw.mu.Unlock()
	if unchanged {
		slog.Debug("config file touched without changes", "path", cw.path)
		return
	}

	cfg, err := Load(cw.path)
	if err != nil {
		slog.Error("config reload failed, keeping previous config", "path", cw.path, "error", err)
		return
	}

	cw.mu.Lock()
	cw.digest = sum
	handlers := append([]ChangeHandler(nil), cw.handlers...)
	cw.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
	slog.Info("config reloaded", "path", cw.path)
}
