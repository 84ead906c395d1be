package events

import (
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// DecisionEvent is published when a classifier returns an action.
type DecisionEvent struct {
	SessionID string
	Action    model.Action
	Source    string // "engine" or the specialist name
}

// GuardrailEvent is published when an action is blocked before execution.
type GuardrailEvent struct {
	SessionID string
	Action    model.Action
	Violation string
}

// RepairEvent reports the outcome of one repair cascade run.
type RepairEvent struct {
	SessionID string
	Stop      string
	Strategy  string
	Succeeded bool
	Err       error
}

// ReplanEvent reports a bounded day reoptimization.
type ReplanEvent struct {
	SessionID     string
	Stops         int
	Deprioritized bool
}

// PendingEvent reports a decision queued for the user or its resolution.
type PendingEvent struct {
	SessionID  string
	Stop       string
	Resolved   bool
	Resolution string
	Time       time.Time
}
