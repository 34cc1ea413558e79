package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nextlevelbuilder/autoreply/internal/bus"
)

// Manager owns the registered channels and delivers outbound messages.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	order    []string
	bus      *bus.MessageBus

	dispatchDone chan struct{}
}

func NewManager(mb *bus.MessageBus) *Manager {
	return &Manager{
		channels: make(map[string]Channel),
		bus:      mb,
	}
}

// Register adds ch. A second channel with the same name replaces the first.
func (m *Manager) Register(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.channels[ch.Name()]; !exists {
		m.order = append(m.order, ch.Name())
	}
	m.channels[ch.Name()] = ch
}

// Get returns the channel registered under name.
func (m *Manager) Get(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// Names lists registered channels in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// StartAll starts the outbound dispatcher and every channel. A channel that
// fails to start is logged and skipped; StartAll fails only when none started.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	if m.dispatchDone == nil {
		m.dispatchDone = make(chan struct{})
		go m.dispatchOutbound(ctx, m.dispatchDone)
	}
	m.mu.Unlock()

	var errs []error
	started := 0
	for _, name := range m.Names() {
		ch, _ := m.Get(name)
		if err := ch.Start(ctx); err != nil {
			slog.Error("failed to start channel", "channel", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		started++
		slog.Info("channel started", "channel", name)
	}

	if started == 0 && len(errs) > 0 {
		return fmt.Errorf("no channel started: %w", errors.Join(errs...))
	}
	return nil
}

// StopAll stops every channel in reverse registration order.
func (m *Manager) StopAll(ctx context.Context) {
	names := m.Names()
	for i := len(names) - 1; i >= 0; i-- {
		ch, _ := m.Get(names[i])
		if err := ch.Stop(ctx); err != nil {
			slog.Warn("failed to stop channel", "channel", names[i], "error", err)
		}
	}
}

// Wait blocks until the outbound dispatcher exits (ctx cancelled or bus closed).
func (m *Manager) Wait() {
	m.mu.RLock()
	done := m.dispatchDone
	m.mu.RUnlock()
	if done != nil {
		<-done
	}
}

func (m *Manager) dispatchOutbound(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}

		// Platforms reject blank text; a keyword stored with an empty reply
		// matches but is never delivered.
		if strings.TrimSpace(msg.Content) == "" {
			slog.Debug("blank outbound message dropped", "channel", msg.Channel, "chat_id", msg.ChatID)
			continue
		}
		ch, found := m.Get(msg.Channel)
		if !found {
			slog.Warn("outbound message for unknown channel", "channel", msg.Channel)
			continue
		}
		if err := ch.Send(ctx, msg); err != nil {
			slog.Error("failed to send message", "channel", msg.Channel, "chat_id", msg.ChatID, "error", err)
		}
	}
}
