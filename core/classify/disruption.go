package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// Severity levels of the disruption specialist.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Recommended actions of the disruption specialist.
const (
	RecommendIgnore  = "IGNORE"
	RecommendAskUser = "ASK_USER"
	RecommendDefer   = "DEFER"
	RecommendReplace = "REPLACE"
)

// DisruptionSpecialist grades a reported disruption. MEDIUM and HIGH always
// escalate to the user; the underlying recommendation is carried as a
// structured annotation, never auto-applied.
type DisruptionSpecialist struct {
	log logger.Logger
}

// Classify grades severity and maps it to the closed action vocabulary.
func (d *DisruptionSpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	severity := ev.Severity
	inferred := severity == 0
	if inferred {
		severity = maxReading(obs.Readings)
	}
	target := ev.Stop
	if target == "" && obs.NextStop != nil {
		target = obs.NextStop.Name
	}

	level, recommended := SeverityLow, RecommendIgnore
	switch {
	case severity >= WeatherSevere:
		level, recommended = SeverityHigh, RecommendReplace
	case severity >= WeatherModerate:
		level, recommended = SeverityMedium, RecommendDefer
		if inferred {
			// A grade derived from readings carries no reported severity;
			// offer the choice rather than a deferral.
			recommended = RecommendAskUser
		}
	}
	d.log.Debugw("disruption graded", map[string]any{
		"severity": severity, "level": level, "recommended": recommended, "stop": target,
	})

	ann := mergeAnnotations(ev.Metadata, map[string]any{
		"severity_level": level,
		"recommended":    recommended,
	})
	if level == SeverityLow {
		return model.Action{
			Kind:        model.NoAction,
			Target:      target,
			Reasoning:   fmt.Sprintf("severity %.2f below the actionable band", severity),
			Annotations: ann,
		}
	}
	return model.Action{
		Kind:        model.RequestUserDecision,
		Target:      target,
		Reasoning:   fmt.Sprintf("%s disruption at %s, escalating to the user", level, target),
		Annotations: ann,
	}
}

func maxReading(r model.ConditionReadings) float64 {
	max := r.CrowdLevel
	if r.WeatherSeverity > max {
		max = r.WeatherSeverity
	}
	if r.TrafficLevel > max {
		max = r.TrafficLevel
	}
	return max
}

func mergeAnnotations(meta map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(meta)+len(extra))
	for k, v := range meta {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
