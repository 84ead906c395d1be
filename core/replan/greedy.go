package replan

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/travel"
)

// outdoorPenalty scales down the score of weather-exposed candidates when
// the caller asks to deprioritize them.
const outdoorPenalty = 0.3

// GreedyReplanner builds the remaining day by repeatedly taking the highest
// value-per-travel-minute candidate that still fits before day end. Locked
// stops of the current plan are preserved verbatim.
type GreedyReplanner struct {
	Travel       travel.TimeProvider
	TravelBuffer time.Duration
	Log          logger.Logger
}

// NewGreedyReplanner returns a replanner with the default travel buffer.
func NewGreedyReplanner(tp travel.TimeProvider, log logger.Logger) *GreedyReplanner {
	return &GreedyReplanner{Travel: tp, TravelBuffer: 10 * time.Minute, Log: log}
}

// Replan implements Replanner.
func (g *GreedyReplanner) Replan(view model.StateView, pool []model.Candidate, constraints Constraints, deprioritizeOutdoor bool) (model.DayPlan, error) {
	now := view.Clock()
	current := view.CurrentPlan()
	out := current.Clone()
	if !constraints.DayEnd.IsZero() {
		out.DayEnd = constraints.DayEnd
	}

	// Keep the locked prefix, rebuild everything after it.
	kept := 0
	for _, s := range out.Stops {
		if s.Departure.After(now) {
			break
		}
		kept++
	}
	out.Stops = out.Stops[:kept]

	used := make(map[string]struct{}, kept)
	for _, s := range out.Stops {
		used[s.Name] = struct{}{}
	}
	for _, v := range view.VisitedStops() {
		used[v] = struct{}{}
	}
	for _, v := range view.SkippedStops() {
		used[v] = struct{}{}
	}

	lat, lon := view.Position()
	clock := now
	if kept > 0 {
		last := out.Stops[kept-1]
		lat, lon, clock = last.Lat, last.Lon, last.Departure
	}
	budget := constraints.Budget

	for {
		if constraints.MaxStops > 0 && len(out.Stops) >= constraints.MaxStops {
			break
		}
		next, ok := g.pickNext(pool, used, lat, lon, clock, out.DayEnd, constraints, budget, deprioritizeOutdoor)
		if !ok {
			break
		}
		out.Stops = append(out.Stops, next)
		used[next.Name] = struct{}{}
		lat, lon, clock = next.Lat, next.Lon, next.Departure
		budget -= next.Cost
	}

	if len(out.Stops) == 0 && len(pool) > 0 {
		return model.DayPlan{}, fmt.Errorf("replan produced zero stops from %d candidates", len(pool))
	}
	g.Log.Infof("replanned day with %d stops (deprioritize_outdoor=%t)", len(out.Stops), deprioritizeOutdoor)
	return out, nil
}

func (g *GreedyReplanner) pickNext(pool []model.Candidate, used map[string]struct{}, lat, lon float64, clock, dayEnd time.Time, constraints Constraints, budget float64, deprioritizeOutdoor bool) (model.RoutePoint, bool) {
	var feasible []model.RoutePoint
	var scores []float64
	for _, c := range pool {
		if _, taken := used[c.Name]; taken {
			continue
		}
		travelMin := g.Travel.TravelTimeMinutes(lat, lon, c.Lat, c.Lon)
		if constraints.TravelCeiling > 0 && travelMin > constraints.TravelCeiling.Minutes() {
			continue
		}
		if constraints.Budget > 0 && c.Cost > budget {
			continue
		}
		rp := c.ToRoutePoint()
		rp.Arrival = clock.Add(time.Duration(travelMin*float64(time.Minute)) + g.TravelBuffer)
		rp.Departure = rp.Arrival.Add(rp.VisitDuration)
		if !dayEnd.IsZero() && rp.Departure.After(dayEnd) {
			continue
		}
		score := rp.ValueScore() / (travelMin/30 + 1)
		if deprioritizeOutdoor && c.Activity.IsOutdoor() {
			score *= outdoorPenalty
		}
		feasible = append(feasible, rp)
		scores = append(scores, score)
	}
	if len(feasible) == 0 {
		return model.RoutePoint{}, false
	}
	inds := make([]int, len(scores))
	floats.Argsort(scores, inds)
	return feasible[inds[len(inds)-1]], true
}
