package session

// manager.go keeps wizard sessions in memory, keyed by a random id.
//
// Sessions expire after TTL without activity. Expired sessions are invisible
// to Get and Dispatch immediately, and are removed from memory by Sweep,
// which StartSweeper runs on a ticker until its context is cancelled.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session lives when no TTL is configured.
const DefaultTTL = 24 * time.Hour

type entry struct {
	state     State
	updatedAt time.Time
}

// Manager stores sessions. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl           time.Duration
	defaultFormat string
	now           func() time.Time
}

// NewManager creates an empty manager. New sessions start on defaultFormat.
func NewManager(ttl time.Duration, defaultFormat string) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions:      make(map[string]*entry),
		ttl:           ttl,
		defaultFormat: defaultFormat,
		now:           time.Now,
	}
}

// DefaultFormat is the format new and reset sessions start on.
func (m *Manager) DefaultFormat() string {
	return m.defaultFormat
}

// Create starts a new session and returns its id and initial state.
func (m *Manager) Create() (string, State) {
	id := uuid.NewString()
	st := Initial(m.defaultFormat)

	m.mu.Lock()
	m.sessions[id] = &entry{state: st, updatedAt: m.now()}
	m.mu.Unlock()

	return id, st
}

// Get returns the session's current state.
func (m *Manager) Get(id string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	return e.state, nil
}

// Dispatch applies actions in order and returns the resulting state.
func (m *Manager) Dispatch(id string, actions ...Action) (State, error) {
	return m.Update(id, func(s State) (State, error) {
		for _, a := range actions {
			s = Reduce(s, a)
		}
		return s, nil
	})
}

// Update replaces the session's state with fn's result. If fn fails the
// session is left unchanged and the error is returned.
func (m *Manager) Update(id string, fn func(State) (State, error)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}

	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	e.updatedAt = m.now()
	return next, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of sessions held, including expired ones not yet swept.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper removes expired sessions every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "interval", interval.String(), "ttl", m.ttl.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if removed := m.Sweep(); removed > 0 {
				slog.Info("expired sessions removed",
					"removed", removed,
					"remaining", m.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

// lookup must be called with m.mu held.
func (m *Manager) lookup(id string) (*entry, error) {
	e, ok := m.sessions[id]
	if !ok || m.expired(e) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

func (m *Manager) expired(e *entry) bool {
	return m.now().Sub(e.updatedAt) > m.ttl
}
