package metrics

import "time"

// DecisionResult represents one classifier decision to be recorded.
type DecisionResult struct {
	SessionID string
	Source    string // "engine" or specialist name
	Kind      string
	Target    string
	Blocked   bool
	Time      time.Time
}

// MetricsSink records decision results for observability purposes.
type MetricsSink interface {
	RecordDecision(results []DecisionResult) error
}

// RepairOutcome captures one repair cascade run.
type RepairOutcome struct {
	SessionID string
	Stop      string
	Strategy  string
	Succeeded bool
	Time      time.Time
}

// RepairRecorder is implemented by sinks able to record repair outcomes.
type RepairRecorder interface {
	RecordRepair(outcomes []RepairOutcome) error
}

// ReplanOutcome captures one bounded day reoptimization.
type ReplanOutcome struct {
	SessionID     string
	Stops         int
	Deprioritized bool
	Time          time.Time
}

// ReplanRecorder records bounded reoptimizations.
type ReplanRecorder interface {
	RecordReplan(r ReplanOutcome) error
}

// PendingGauge is implemented by sinks tracking unresolved pending decisions.
type PendingGauge interface {
	RecordPendingCount(sessions int) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision([]DecisionResult) error { return nil }
func (NopSink) RecordRepair([]RepairOutcome) error    { return nil }
func (NopSink) RecordReplan(ReplanOutcome) error      { return nil }
func (NopSink) RecordPendingCount(int) error          { return nil }
