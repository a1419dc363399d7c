package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

type managerEntry struct {
	session  *Session
	lastSeen time.Time
}

// Manager keeps live sessions in memory, keyed by session id.
type Manager struct {
	deps Deps
	opts Options

	mu       sync.RWMutex
	sessions map[string]*managerEntry
}

// NewManager creates a Manager whose sessions share deps and opts.
func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{
		deps:     deps,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*managerEntry),
	}
}

// Create starts a new, not yet logged-in session.
func (m *Manager) Create() *Session {
	s := New(m.deps, m.opts)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &managerEntry{session: s, lastSeen: m.opts.Now()}
	return s
}

// Get returns the session for id and marks it active. Sessions idle past
// the TTL are treated as gone; their pending activity is not flushed here,
// Sweep does that.
func (m *Manager) Get(id string) (*Session, bool) {
	now := m.opts.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.expired(entry, now) {
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

// Delete removes a session without flushing it.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) expired(e *managerEntry, now time.Time) bool {
	return m.opts.TTL > 0 && now.Sub(e.lastSeen) > m.opts.TTL
}

// Sweep logs out and forgets idle and closed sessions. It returns how many
// were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.opts.Now()

	m.mu.RLock()
	var ids []string
	for id, e := range m.sessions {
		if m.expired(e, now) || e.session.Closed() {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	// Re-check under the write lock: a Get may have revived an entry.
	var stale []*Session
	m.mu.Lock()
	for _, id := range ids {
		e, ok := m.sessions[id]
		if !ok {
			continue
		}
		if m.expired(e, now) || e.session.Closed() {
			stale = append(stale, e.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		if s.Closed() {
			continue
		}
		if _, err := s.Logout(ctx); err != nil && !errors.Is(err, ErrNotLoggedIn) {
			m.opts.Logger.Warn("failed to close idle session", "session_id", s.ID, "error", err)
		}
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.opts.Logger.Debug("swept sessions", "removed", n)
			}
		}
	}
}

// Shutdown logs out every live session, flushing pending activity.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, e := range m.sessions {
		all = append(all, e.session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		if s.Closed() {
			continue
		}
		if _, err := s.Logout(ctx); err != nil && !errors.Is(err, ErrNotLoggedIn) {
			m.opts.Logger.Warn("failed to close session on shutdown", "session_id", s.ID, "error", err)
		}
	}
}
