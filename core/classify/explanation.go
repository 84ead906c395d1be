package classify

import (
	"fmt"
	"strings"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// ExplanationSpecialist composes a short status summary strictly from
// Observation fields. It always returns NoAction.
type ExplanationSpecialist struct {
	log logger.Logger
}

// Classify builds a 2-4 sentence summary with no fabricated facts.
func (e *ExplanationSpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	var b strings.Builder
	fmt.Fprintf(&b, "It is %s with %d stops remaining today.", obs.Time.Format("15:04"), obs.RemainingStops)
	if obs.NextStop != nil {
		fmt.Fprintf(&b, " The next stop is %s at %s.", obs.NextStop.Name, obs.NextStop.Arrival.Format("15:04"))
	}
	fmt.Fprintf(&b, " Conditions: crowd %.0f%%, %s weather (severity %.0f%%), traffic %.0f%%.",
		obs.Readings.CrowdLevel*100, obs.Readings.Weather, obs.Readings.WeatherSeverity*100, obs.Readings.TrafficLevel*100)
	if obs.DailyBudget > 0 {
		fmt.Fprintf(&b, " %.0f%% of the daily budget is spent.", obs.SpendRatio()*100)
	}
	summary := b.String()
	e.log.Debugf("explanation composed (%d chars)", len(summary))

	return model.Action{
		Kind:        model.NoAction,
		Reasoning:   summary,
		Annotations: mergeAnnotations(ev.Metadata, map[string]any{"summary": summary}),
	}
}
