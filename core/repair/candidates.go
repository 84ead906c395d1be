package repair

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/travel"
)

// rankNearby filters the candidate pool to the cluster radius around the
// disrupted stop and orders it for substitution: same-category candidates
// first, each group by rating over distance, higher first. Outdoor
// candidates are excluded when the disruption is weather-caused.
func (e *Engine) rankNearby(pool []model.Candidate, disrupted model.RoutePoint, cause model.DisruptionCause, categoryHint string, exclude map[string]struct{}) []model.Candidate {
	var kept []model.Candidate
	var scores []float64
	for _, c := range pool {
		if _, skip := exclude[c.Name]; skip {
			continue
		}
		if cause == model.CauseWeather && c.Activity.IsOutdoor() {
			continue
		}
		if categoryHint == "indoor" && c.Activity.IsOutdoor() {
			continue
		}
		dist := travel.DistanceKm(disrupted.Lat, disrupted.Lon, c.Lat, c.Lon)
		if dist > e.cfg.ClusterRadiusKm {
			continue
		}
		kept = append(kept, c)
		scores = append(scores, c.Rating/math.Max(dist, 0.1))
	}
	if len(kept) == 0 {
		return nil
	}

	inds := make([]int, len(scores))
	floats.Argsort(scores, inds)

	sameCat := make([]model.Candidate, 0, len(kept))
	var otherCat []model.Candidate
	// Argsort is ascending; walk it backwards for best-first.
	for i := len(inds) - 1; i >= 0; i-- {
		c := kept[inds[i]]
		if c.Category != "" && c.Category == categoryOf(disrupted) {
			sameCat = append(sameCat, c)
		} else {
			otherCat = append(otherCat, c)
		}
	}
	return append(sameCat, otherCat...)
}

// Alternatives returns the ranked substitution candidates for a stop without
// editing the plan. It backs the pending-decision surface, where the user
// picks the edit instead of the cascade.
func (e *Engine) Alternatives(plan model.DayPlan, pool []model.Candidate, stopName string, cause model.DisruptionCause, categoryHint string, view model.StateView, max int) []model.Candidate {
	idx := plan.Find(stopName)
	if idx < 0 {
		return nil
	}
	ranked := e.rankNearby(pool, plan.Stops[idx], cause, categoryHint, planNames(plan, view))
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

func categoryOf(p model.RoutePoint) string {
	return p.Activity.String()
}

// estimateCrowdAt applies exponential decay to the triggering crowd reading:
// crowding relaxes by the configured fraction every 30 minutes of delay.
func (e *Engine) estimateCrowdAt(crowd float64, delayMinutes float64) float64 {
	if delayMinutes <= 0 {
		return crowd
	}
	return crowd * math.Pow(1-e.cfg.CrowdDecayPer30Min, delayMinutes/30)
}
