package session

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/classify"
	"github.com/voyagent/tripmend/core/model"
)

// Resolution is the user's answer to a pending decision.
type Resolution int

const (
	ResolutionApprove Resolution = iota
	ResolutionReject
	ResolutionModify
)

// String returns the wire name of the resolution.
func (r Resolution) String() string {
	switch r {
	case ResolutionApprove:
		return "APPROVE"
	case ResolutionReject:
		return "REJECT"
	case ResolutionModify:
		return "MODIFY"
	default:
		return "unknown"
	}
}

// ParseResolution maps a wire name to its Resolution.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "APPROVE":
		return ResolutionApprove, nil
	case "REJECT":
		return ResolutionReject, nil
	case "MODIFY":
		return ResolutionModify, nil
	default:
		return 0, fmt.Errorf("unknown resolution %q", s)
	}
}

// PendingDecision is the one unresolved question a session may hold. While
// set, the session performs no automatic replanning. There is no expiry: the
// gate stays closed until the user resolves it, and CreatedAt is recorded so
// callers can surface how long it has been open.
type PendingDecision struct {
	ID           string                `json:"id"`
	Stop         string                `json:"stop"`
	Cause        model.DisruptionCause `json:"cause"`
	Reason       string                `json:"reason"`
	Level        string                `json:"level,omitempty"`
	Recommended  string                `json:"recommended,omitempty"`
	Alternatives []model.Candidate     `json:"alternatives,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`

	action   model.Action
	readings model.ConditionReadings
}

// approvedAction translates the stored question into the concrete edit that
// APPROVE executes. The specialist's recommendation picks replace over defer;
// the default answer to "this stop is disrupted" is to defer it.
func (p *PendingDecision) approvedAction() model.Action {
	if p.Recommended == classify.RecommendReplace {
		hint := ""
		if p.Cause == model.CauseWeather {
			hint = "indoor"
		}
		return model.Action{
			Kind:      model.ReplacePoi,
			Target:    p.Stop,
			Replace:   &model.ReplaceParams{Cause: p.Cause, CategoryHint: hint},
			Reasoning: "user approved: " + p.Reason,
		}
	}
	return model.Action{
		Kind:      model.DeferPoi,
		Target:    p.Stop,
		Defer:     &model.DeferParams{Cause: p.Cause, AllowShift: true},
		Reasoning: "user approved: " + p.Reason,
	}
}

// modifiedAction builds the edit for MODIFY: replace the stop with the
// user's chosen alternative.
func (p *PendingDecision) modifiedAction(choice model.Candidate) model.Action {
	return model.Action{
		Kind:      model.ReplacePoi,
		Target:    p.Stop,
		Replace:   &model.ReplaceParams{Cause: p.Cause},
		Reasoning: fmt.Sprintf("user chose %s over %s", choice.Name, p.Stop),
	}
}
