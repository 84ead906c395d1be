package model

import "time"

// ActionKind enumerates the bounded corrective actions the engine may
// request. An Action is a request; it never touches state itself.
type ActionKind int

const (
	NoAction ActionKind = iota
	RequestUserDecision
	DeferPoi
	ReplacePoi
	RelaxConstraint
	ReoptimizeDay
)

// String returns a human-readable representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case NoAction:
		return "no_action"
	case RequestUserDecision:
		return "request_user_decision"
	case DeferPoi:
		return "defer_poi"
	case ReplacePoi:
		return "replace_poi"
	case RelaxConstraint:
		return "relax_constraint"
	case ReoptimizeDay:
		return "reoptimize_day"
	default:
		return "unknown"
	}
}

// DeferParams carries the parameters of a DeferPoi action.
type DeferParams struct {
	Cause      DisruptionCause `json:"cause"`
	AllowShift bool            `json:"allow_shift"`
	UserSkip   bool            `json:"user_skip"`
}

// ReplaceParams carries the parameters of a ReplacePoi action.
type ReplaceParams struct {
	Cause        DisruptionCause `json:"cause"`
	CategoryHint string          `json:"category_hint,omitempty"`
}

// RelaxParams carries the parameters of a RelaxConstraint action.
type RelaxParams struct {
	Constraint string        `json:"constraint"`
	Old        time.Duration `json:"old"`
	New        time.Duration `json:"new"`
}

// ReoptimizeParams carries the parameters of a ReoptimizeDay action.
type ReoptimizeParams struct {
	DeprioritizeOutdoor bool `json:"deprioritize_outdoor"`
}

// Action is the immutable outcome of one decision cycle. Exactly the field
// matching Kind is set; the others are nil. Annotations are copied verbatim
// from the triggering event metadata for audit and guardrail inspection and
// are never parsed for decisions. Reasoning is audit-only free text.
type Action struct {
	Kind        ActionKind        `json:"kind"`
	Target      string            `json:"target,omitempty"`
	Targets     []string          `json:"targets,omitempty"`
	Reasoning   string            `json:"reasoning,omitempty"`
	Defer       *DeferParams      `json:"defer,omitempty"`
	Replace     *ReplaceParams    `json:"replace,omitempty"`
	Relax       *RelaxParams      `json:"relax,omitempty"`
	Reoptimize  *ReoptimizeParams `json:"reoptimize,omitempty"`
	Annotations map[string]any    `json:"annotations,omitempty"`
}

// RepairResult is the output of the schedule repair engine.
type RepairResult struct {
	Plan                DayPlan  `json:"plan"`
	Modified            []string `json:"modified"` // at most two stop names
	InvariantsSatisfied bool     `json:"invariants_satisfied"`
	Strategy            string   `json:"strategy"`
	ErrorCode           string   `json:"error_code,omitempty"`
	Diagnostics         []string `json:"diagnostics,omitempty"`
}
