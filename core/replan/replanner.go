// Package replan defines the bounded day reoptimization collaborator and a
// greedy default implementation. The engine only depends on the Replanner
// signature and the guarantee that the returned plan is internally
// time-consistent.
package replan

import (
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// Constraints bounds one reoptimization run.
type Constraints struct {
	DayEnd        time.Time
	TravelCeiling time.Duration
	MaxStops      int
	Budget        float64
}

// Replanner produces a bounded, time-feasible ordered stop list from a live
// position, clock and candidate pool.
type Replanner interface {
	Replan(view model.StateView, pool []model.Candidate, constraints Constraints, deprioritizeOutdoor bool) (model.DayPlan, error)
}
