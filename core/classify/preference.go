package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// PreferenceSpecialist extracts preference deltas strictly from the
// triggering event; it never invents values missing from the metadata.
type PreferenceSpecialist struct {
	log logger.Logger
}

// Classify emits a ReoptimizeDay only when the pace actually changed or at
// least one interest was named.
func (p *PreferenceSpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	interests := stringSlice(ev.Metadata, "interests")
	pace, paceChanged := stringValue(ev.Metadata, "pace_preference")
	tolerance := map[string]any{}
	for _, k := range []string{"crowd", "weather", "traffic"} {
		if v, ok := floatValue(ev.Metadata, "tolerance_"+k); ok {
			tolerance[k] = v
		}
	}
	p.log.Debugw("preference extracted", map[string]any{
		"interests": interests, "pace": pace, "tolerance": tolerance,
	})

	ann := mergeAnnotations(ev.Metadata, map[string]any{
		"interests":             interests,
		"pace_preference":       pace,
		"environment_tolerance": tolerance,
	})
	if !paceChanged && len(interests) == 0 {
		return model.Action{
			Kind:        model.NoAction,
			Reasoning:   "no pace change and no interests named",
			Annotations: ann,
		}
	}
	return model.Action{
		Kind:        model.ReoptimizeDay,
		Reoptimize:  &model.ReoptimizeParams{},
		Reasoning:   fmt.Sprintf("preferences changed: pace=%q interests=%d", pace, len(interests)),
		Annotations: ann,
	}
}

func stringSlice(meta map[string]any, key string) []string {
	raw, ok := meta[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(meta map[string]any, key string) (string, bool) {
	if v, ok := meta[key].(string); ok && v != "" {
		return v, true
	}
	return "", false
}

func floatValue(meta map[string]any, key string) (float64, bool) {
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
