package repair

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// recomputeTimings walks the plan forward from the edit point, assigning
// arrival = previous departure + travel + buffer and departure = arrival +
// visit duration. Stops whose departure would exceed the hard day end are
// truncated, not errored. The locked prefix (departure at or before now) is
// never touched; the walk starts after it regardless of the requested index.
func (e *Engine) recomputeTimings(plan model.DayPlan, from int, now time.Time) model.DayPlan {
	out := plan.Clone()
	start := lockedEnd(out, now)
	if from > start {
		start = from
	}
	for i := start; i < len(out.Stops); i++ {
		var prevDep time.Time
		var prevLat, prevLon float64
		if i == 0 {
			prevDep = now
			// No prior stop: charge no travel leg, only the buffer.
			prevLat, prevLon = out.Stops[0].Lat, out.Stops[0].Lon
		} else {
			prev := out.Stops[i-1]
			prevDep = prev.Departure
			prevLat, prevLon = prev.Lat, prev.Lon
		}
		cur := &out.Stops[i]
		travelMin := e.travel.TravelTimeMinutes(prevLat, prevLon, cur.Lat, cur.Lon)
		cur.Arrival = prevDep.Add(time.Duration(travelMin*float64(time.Minute)) + e.cfg.TravelBuffer)
		cur.Departure = cur.Arrival.Add(cur.VisitDuration)
		if !out.DayEnd.IsZero() && cur.Departure.After(out.DayEnd) {
			out.Stops = out.Stops[:i]
			break
		}
	}
	return out
}

// idleGapDiagnostics reports stops preceded by an idle wait longer than the
// configured threshold. A long gap is worth surfacing but never invalid.
func (e *Engine) idleGapDiagnostics(plan model.DayPlan) []string {
	var diags []string
	for i := 1; i < len(plan.Stops); i++ {
		prev, cur := plan.Stops[i-1], plan.Stops[i]
		travelMin := e.travel.TravelTimeMinutes(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		earliest := prev.Departure.Add(time.Duration(travelMin*float64(time.Minute)) + e.cfg.TravelBuffer)
		if gap := cur.Arrival.Sub(earliest); gap > e.cfg.IdleGapDiagnostic {
			diags = append(diags, fmt.Sprintf("idle gap of %.0f minutes before %s", gap.Minutes(), cur.Name))
		}
	}
	return diags
}

// lockedEnd returns the index of the first stop that has not yet departed.
func lockedEnd(plan model.DayPlan, now time.Time) int {
	for i, s := range plan.Stops {
		if s.Departure.After(now) {
			return i
		}
	}
	return len(plan.Stops)
}
