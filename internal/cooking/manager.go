package cooking

import (
	"errors"
	"sync"
	"time"

	"github.com/souschef-app/backend/internal/model"
)

var ErrSessionNotFound = errors.New("cooking session not found")

// Manager owns the live cooking sessions and the single one-second ticker
// that drives their timers. Sessions are in-memory UI state: they die with
// the process, which is fine for a guided-cooking view.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	done     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a Manager and starts its ticker goroutine
func NewManager() *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Manager) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			for _, s := range m.sessions {
				s.Tick()
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the ticker goroutine. Safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Create starts a new session for a recipe
func (m *Manager) Create(recipe model.Recipe) *Session {
	s := NewSession(recipe)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// With runs fn against the named session while holding the manager lock, so
// UI events and timer ticks never interleave
func (m *Manager) With(id string, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	fn(s)
	return nil
}

// Delete ends a session. Idempotent.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
