package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// Planning strategies and scopes.
const (
	PlanFullPlan    = "FULL_PLAN"
	PlanLocalRepair = "LOCAL_REPAIR"
	PlanReorder     = "REORDER"
	PlanNoChange    = "NO_CHANGE"

	ScopeDay = "DAY"
	ScopePoi = "POI"
)

// PlanningSpecialist selects a repair strategy and scope from disruption
// count and remaining-time pressure.
type PlanningSpecialist struct {
	log logger.Logger
}

// Classify maps the pressure picture onto the closed strategy vocabulary.
func (p *PlanningSpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	strategy, scope := p.assess(ev, obs)
	p.log.Debugf("planning strategy %s scope %s", strategy, scope)
	ann := mergeAnnotations(ev.Metadata, map[string]any{
		"strategy": strategy,
		"scope":    scope,
	})

	switch strategy {
	case PlanFullPlan, PlanReorder:
		return model.Action{
			Kind: model.ReoptimizeDay,
			Reoptimize: &model.ReoptimizeParams{
				DeprioritizeOutdoor: obs.Readings.WeatherSeverity >= WeatherModerate,
			},
			Reasoning:   fmt.Sprintf("%s at %s scope after %d disruptions", strategy, scope, obs.DisruptionCount),
			Annotations: ann,
		}
	case PlanLocalRepair:
		target := ev.Stop
		if target == "" && obs.NextStop != nil {
			target = obs.NextStop.Name
		}
		return model.Action{
			Kind:   model.DeferPoi,
			Target: target,
			Defer: &model.DeferParams{
				Cause:      model.CauseUser,
				AllowShift: true,
			},
			Reasoning:   fmt.Sprintf("local repair of %s", target),
			Annotations: ann,
		}
	default:
		return model.Action{Kind: model.NoAction, Reasoning: "no plan change warranted", Annotations: ann}
	}
}

func (p *PlanningSpecialist) assess(ev model.Event, obs model.Observation) (string, string) {
	switch {
	case obs.DisruptionCount >= ReoptimizeDisruptionCount:
		return PlanFullPlan, ScopeDay
	case obs.MinutesToDayEnd() < EndOfDayPressure.Minutes() && obs.RemainingStops > 1:
		return PlanReorder, ScopeDay
	case ev.Stop != "" || obs.DisruptionCount > 0:
		return PlanLocalRepair, ScopePoi
	default:
		return PlanNoChange, ScopeDay
	}
}
