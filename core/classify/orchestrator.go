package classify

import (
	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// Specialist names the closed set of narrow classifiers.
type Specialist int

const (
	SpecialistNone Specialist = iota
	SpecialistDisruption
	SpecialistPlanning
	SpecialistBudget
	SpecialistPreference
	SpecialistMemory
	SpecialistExplanation
)

// String returns the specialist name.
func (s Specialist) String() string {
	switch s {
	case SpecialistNone:
		return "NONE"
	case SpecialistDisruption:
		return "Disruption"
	case SpecialistPlanning:
		return "Planning"
	case SpecialistBudget:
		return "Budget"
	case SpecialistPreference:
		return "Preference"
	case SpecialistMemory:
		return "Memory"
	case SpecialistExplanation:
		return "Explanation"
	default:
		return "unknown"
	}
}

// Orchestrator routes an explicit event to exactly one specialist, or falls
// back to the threshold checks of the decision engine when no event type is
// given.
type Orchestrator struct {
	log         logger.Logger
	disruption  *DisruptionSpecialist
	planning    *PlanningSpecialist
	budget      *BudgetSpecialist
	preference  *PreferenceSpecialist
	memory      *MemorySpecialist
	explanation *ExplanationSpecialist
}

// NewOrchestrator builds the router and its specialists.
func NewOrchestrator(log logger.Logger) *Orchestrator {
	return &Orchestrator{
		log:         log,
		disruption:  &DisruptionSpecialist{log: log},
		planning:    &PlanningSpecialist{log: log},
		budget:      &BudgetSpecialist{log: log},
		preference:  &PreferenceSpecialist{log: log},
		memory:      &MemorySpecialist{log: log},
		explanation: &ExplanationSpecialist{log: log},
	}
}

// Route maps the event type to a specialist. With EventNone the same
// threshold checks as the decision engine ladder decide between Disruption
// and NONE.
func (o *Orchestrator) Route(ev model.Event, obs model.Observation) Specialist {
	switch ev.Type {
	case model.EventCrowdReport, model.EventWeatherAlert, model.EventTrafficAlert, model.EventUserReport:
		return SpecialistDisruption
	case model.EventReplanRequest:
		return SpecialistPlanning
	case model.EventBudgetCheck:
		return SpecialistBudget
	case model.EventPreferenceChange:
		return SpecialistPreference
	case model.EventMemoryCheckpoint:
		return SpecialistMemory
	case model.EventExplainRequest:
		return SpecialistExplanation
	case model.EventNone:
		if o.thresholdsTripped(obs) {
			return SpecialistDisruption
		}
		return SpecialistNone
	default:
		return SpecialistNone
	}
}

// Classify routes the event and runs the selected specialist. A NONE route
// yields NoAction.
func (o *Orchestrator) Classify(ev model.Event, obs model.Observation) model.Action {
	sp := o.Route(ev, obs)
	o.log.Debugf("routed %s to %s", ev.Type, sp)
	switch sp {
	case SpecialistDisruption:
		return o.disruption.Classify(ev, obs)
	case SpecialistPlanning:
		return o.planning.Classify(ev, obs)
	case SpecialistBudget:
		return o.budget.Classify(ev, obs)
	case SpecialistPreference:
		return o.preference.Classify(ev, obs)
	case SpecialistMemory:
		return o.memory.Classify(ev, obs)
	case SpecialistExplanation:
		return o.explanation.Classify(ev, obs)
	default:
		return model.Action{Kind: model.NoAction, Reasoning: "nothing actionable"}
	}
}

func (o *Orchestrator) thresholdsTripped(obs model.Observation) bool {
	if obs.Readings.WeatherSeverity >= WeatherModerate {
		return true
	}
	if obs.Readings.CrowdLevel > obs.Thresholds.Crowd {
		return true
	}
	if obs.Readings.TrafficLevel > obs.Thresholds.Traffic {
		return true
	}
	return false
}
