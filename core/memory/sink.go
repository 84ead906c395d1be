// Package memory defines the disruption-memory collaborator contract: one
// record per resolved disruption, read later by a reporting collaborator.
package memory

import (
	"sync"
	"time"
)

// Entry is the record written for one resolved disruption.
type Entry struct {
	SessionID    string    `json:"session_id"`
	TriggerTime  time.Time `json:"trigger_time"`
	Level        string    `json:"level"`
	ActionTaken  string    `json:"action_taken"`
	UserResponse string    `json:"user_response,omitempty"`
}

// Sink receives disruption-memory entries. Implementations must treat the
// stream as append-only.
type Sink interface {
	Record(e Entry) error
}

// NopSink discards entries.
type NopSink struct{}

func (NopSink) Record(Entry) error { return nil }

// InMemorySink keeps entries for tests and the diagnostic summary.
type InMemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewInMemorySink returns an empty sink.
func NewInMemorySink() *InMemorySink { return &InMemorySink{} }

func (s *InMemorySink) Record(e Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of everything recorded so far.
func (s *InMemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}
