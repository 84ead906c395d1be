// Package audit persists one append-only record per guardrail rejection and
// per executed action, with the before/after state hashes that make a
// mutation traceable.
package audit

import (
	"context"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// Record captures one engine decision and its execution outcome.
type Record struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session_id"`
	Timestamp  time.Time    `json:"timestamp"`
	EventType  string       `json:"event_type"`
	Action     model.Action `json:"action"`
	BeforeHash string       `json:"before_hash"`
	AfterHash  string       `json:"after_hash"`
	Executed   bool         `json:"executed"`
	Blocked    string       `json:"blocked,omitempty"`
	Strategy   string       `json:"strategy,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start     time.Time
	End       time.Time
	SessionID string
	Kind      model.ActionKind
	HasKind   bool
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards all records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
