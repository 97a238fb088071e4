package session

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Manager owns all open sessions. When full, creating a session evicts the one
// idle the longest.
type Manager struct {
	clock     clockwork.Clock
	metrics   *observability.Metrics
	cacheSize int
	maxCount  int
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. A nil clock uses real time.
func NewManager(clock clockwork.Clock, metrics *observability.Metrics, cacheSize, maxSessions int, ttl time.Duration) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Manager{
		clock:     clock,
		metrics:   metrics,
		cacheSize: cacheSize,
		maxCount:  maxSessions,
		ttl:       ttl,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a session with filter f.
func (m *Manager) Create(f domain.Filter, opts domain.ResolveOptions) *Session {
	now := m.clock.Now()
	s := newSession(uuid.NewString(), f, opts, m.cacheSize, m.metrics, now)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxCount {
		m.evictOldest()
	}
	m.sessions[s.id] = s
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s
}

// Get returns a session and marks it used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch(m.clock.Now())
	return s, true
}

// Delete closes a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return true
}

// Sweep closes sessions idle longer than the TTL and returns how many it closed.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return removed
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictOldest removes the least recently used session. Caller holds mu.
func (m *Manager) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		used := s.idleSince()
		if oldestID == "" || used.Before(oldest) {
			oldestID, oldest = id, used
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.Sweep()
		}
	}
}
