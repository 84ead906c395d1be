package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// DecisionEngine is the rule-based disruption classifier. Decide is a pure
// function of one Observation snapshot; the only side effect is the audit
// log line emitted before returning.
type DecisionEngine struct {
	log logger.Logger
}

// NewDecisionEngine creates a classifier with the given session logger.
func NewDecisionEngine(log logger.Logger) *DecisionEngine {
	return &DecisionEngine{log: log}
}

// Decide evaluates the fixed priority ladder, first match wins.
func (e *DecisionEngine) Decide(obs model.Observation) model.Action {
	act := e.evaluate(obs)
	e.log.Debugw("decision", map[string]any{
		"action":      act.Kind.String(),
		"target":      act.Target,
		"crowd":       obs.Readings.CrowdLevel,
		"weather":     obs.Readings.WeatherSeverity,
		"traffic":     obs.Readings.TrafficLevel,
		"disruptions": obs.DisruptionCount,
	})
	return act
}

func (e *DecisionEngine) evaluate(obs model.Observation) model.Action {
	next := obs.NextStop

	// 1. Unsafe weather: replace an outdoor next stop outright. Indoor
	// stops take no weather action at all.
	if obs.Readings.WeatherSeverity >= WeatherSevere {
		if next != nil && next.Activity.IsOutdoor() {
			return model.Action{
				Kind:   model.ReplacePoi,
				Target: next.Name,
				Replace: &model.ReplaceParams{
					Cause:        model.CauseWeather,
					CategoryHint: "indoor",
				},
				Reasoning: fmt.Sprintf("severe %s (%.2f) at outdoor stop %s", obs.Readings.Weather, obs.Readings.WeatherSeverity, next.Name),
			}
		}
	} else if obs.Readings.WeatherSeverity >= WeatherModerate && next != nil && next.Activity.IsOutdoor() {
		// 2. Moderate weather: push the outdoor stop to a later slot.
		return model.Action{
			Kind:   model.DeferPoi,
			Target: next.Name,
			Defer: &model.DeferParams{
				Cause:      model.CauseWeather,
				AllowShift: true,
			},
			Reasoning: fmt.Sprintf("moderate %s (%.2f) at outdoor stop %s", obs.Readings.Weather, obs.Readings.WeatherSeverity, next.Name),
		}
	}

	// 3. Crowding: a high-value stop is worth shifting, a low-value one is
	// the user's call.
	if next != nil && obs.Readings.CrowdLevel > obs.Thresholds.Crowd {
		if next.ValueScore() >= ValueCutoff {
			return model.Action{
				Kind:   model.DeferPoi,
				Target: next.Name,
				Defer: &model.DeferParams{
					Cause:      model.CauseCrowd,
					AllowShift: true,
				},
				Reasoning: fmt.Sprintf("crowd %.2f over %.2f at high-value stop %s", obs.Readings.CrowdLevel, obs.Thresholds.Crowd, next.Name),
			}
		}
		return model.Action{
			Kind:      model.RequestUserDecision,
			Target:    next.Name,
			Reasoning: fmt.Sprintf("crowd %.2f over %.2f at low-value stop %s", obs.Readings.CrowdLevel, obs.Thresholds.Crowd, next.Name),
		}
	}

	// 4. Traffic: same value split, but low-value stops are replaced with
	// something closer instead of asking.
	if next != nil && obs.Readings.TrafficLevel > obs.Thresholds.Traffic {
		if next.ValueScore() >= ValueCutoff {
			return model.Action{
				Kind:   model.DeferPoi,
				Target: next.Name,
				Defer: &model.DeferParams{
					Cause:      model.CauseTraffic,
					AllowShift: true,
				},
				Reasoning: fmt.Sprintf("traffic %.2f over %.2f toward high-value stop %s", obs.Readings.TrafficLevel, obs.Thresholds.Traffic, next.Name),
			}
		}
		return model.Action{
			Kind:   model.ReplacePoi,
			Target: next.Name,
			Replace: &model.ReplaceParams{
				Cause: model.CauseTraffic,
			},
			Reasoning: fmt.Sprintf("traffic %.2f over %.2f toward low-value stop %s", obs.Readings.TrafficLevel, obs.Thresholds.Traffic, next.Name),
		}
	}

	// 5. Repeated disruptions: a local edit no longer pays, reoptimize the
	// remaining day instead.
	if obs.DisruptionCount >= ReoptimizeDisruptionCount {
		return model.Action{
			Kind: model.ReoptimizeDay,
			Reoptimize: &model.ReoptimizeParams{
				DeprioritizeOutdoor: obs.Readings.WeatherSeverity >= WeatherModerate,
			},
			Reasoning: fmt.Sprintf("%d disruptions logged today", obs.DisruptionCount),
		}
	}

	// 6. End-of-day pressure: widen the travel ceiling instead of editing.
	if obs.MinutesToDayEnd() < EndOfDayPressure.Minutes() && obs.RemainingStops > 1 {
		old := obs.Thresholds.TravelCeiling
		return model.Action{
			Kind: model.RelaxConstraint,
			Relax: &model.RelaxParams{
				Constraint: "travel_ceiling",
				Old:        old,
				New:        old + TravelCeilingWiden,
			},
			Reasoning: fmt.Sprintf("%.0f min left with %d stops remaining", obs.MinutesToDayEnd(), obs.RemainingStops),
		}
	}

	return model.Action{Kind: model.NoAction, Reasoning: "all readings within thresholds"}
}
