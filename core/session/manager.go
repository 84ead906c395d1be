package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyagent/tripmend/core/metrics"
	"github.com/voyagent/tripmend/core/model"
)

// Manager holds the live sessions. Sessions share nothing: each carries its
// own TripState, pending gate and candidate pool.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
	gauge    metrics.PendingGauge
}

// NewManager creates a session manager. gauge may be nil.
func NewManager(deps Deps, gauge metrics.PendingGauge) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		gauge:    gauge,
	}
}

// Create opens a new session over the given plan and returns it.
func (m *Manager) Create(plan model.DayPlan, dayStart time.Time, dailyBudget float64, pool []model.Candidate) (*Session, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	s := New(uuid.New().String(), plan, dayStart, dailyBudget, pool, m.deps)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PendingSessions returns how many sessions are blocked on an unresolved
// decision, and feeds the gauge when one is configured.
func (m *Manager) PendingSessions() int {
	m.mu.RLock()
	var n int
	for _, s := range m.sessions {
		if s.HasPending() {
			n++
		}
	}
	m.mu.RUnlock()

	if m.gauge != nil {
		if err := m.gauge.RecordPendingCount(n); err != nil && m.deps.Log != nil {
			m.deps.Log.Errorf("record pending count: %v", err)
		}
	}
	return n
}
