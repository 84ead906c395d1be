package repair

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/travel"
)

// Strategy labels carried on RepairResult.
const (
	StrategyShiftLater     = "shift_later"
	StrategySwapWithNext   = "swap_with_next"
	StrategyReplaceNearby  = "replace_nearby"
	StrategyDeferToNextDay = "defer_to_next_day"
)

// Request describes one repair: which stop was disrupted, by what, and which
// edits the caller allows.
type Request struct {
	DisruptedStop  string
	Plan           model.DayPlan
	Pool           []model.Candidate
	Cause          model.DisruptionCause
	AllowShift     bool
	AllowReplace   bool
	UserSkip       bool
	CategoryHint   string
	CrowdLevel     float64
	CrowdThreshold float64
}

// Engine tries the ordered repair cascade until a strategy yields a
// candidate that survives timing recompute, meal validation and the state
// invariants.
type Engine struct {
	cfg    Config
	travel travel.TimeProvider
	log    logger.Logger
}

// NewEngine creates a repair engine.
func NewEngine(cfg Config, tp travel.TimeProvider, log logger.Logger) *Engine {
	cfg.SetDefaults()
	return &Engine{cfg: cfg, travel: tp, log: log}
}

type attempt struct {
	strategy string
	plan     model.DayPlan
	modified []string
	inserted *model.RoutePoint
	// shiftedTo is the index the disrupted stop moved to, for the crowd
	// re-estimation of ShiftLater slots. -1 when not applicable.
	shiftedTo int
}

// Repair runs the cascade. The base edit removes the disrupted stop from the
// working plan; ShiftLater and SwapWithNext re-insert it later, ReplaceNearby
// substitutes a pool candidate, and DeferToNextDay accepts the removal. The
// first strategy whose candidate validates wins.
func (e *Engine) Repair(req Request, view model.StateView) (model.RepairResult, error) {
	now := view.Clock()
	idx := req.Plan.Find(req.DisruptedStop)
	if idx < 0 {
		return model.RepairResult{ErrorCode: "unknown_stop"}, fmt.Errorf("%w: %s", ErrUnknownStop, req.DisruptedStop)
	}
	disrupted := req.Plan.Stops[idx]
	if !disrupted.Departure.After(now) || containsName(view.VisitedStops(), req.DisruptedStop) {
		return model.RepairResult{ErrorCode: "stop_locked"}, fmt.Errorf("%w: %s", ErrStopLocked, req.DisruptedStop)
	}

	base := req.Plan.Clone()
	base.Stops = append(base.Stops[:idx:idx], base.Stops[idx+1:]...)

	var lastErr error
	for _, att := range e.attempts(req, base, disrupted, idx, view) {
		result, err := e.validate(req, att, disrupted, now, view)
		if err != nil {
			lastErr = err
			e.log.Debugf("strategy %s rejected: %v", att.strategy, err)
			continue
		}
		e.log.Infof("repair of %s succeeded with %s", req.DisruptedStop, att.strategy)
		return result, nil
	}

	// Unreachable by construction: the defer fallback accepts an empty or
	// shrunk plan. Reaching here means an upstream contract was broken.
	return model.RepairResult{ErrorCode: "cascade_exhausted"},
		fmt.Errorf("%w: repair cascade exhausted for %s: %v", ErrSchedulerLogic, req.DisruptedStop, lastErr)
}

// attempts builds the ordered candidate list for the cascade.
func (e *Engine) attempts(req Request, base model.DayPlan, disrupted model.RoutePoint, idx int, view model.StateView) []attempt {
	var atts []attempt

	if req.AllowShift && !req.UserSkip {
		for _, offset := range []int{1, 2} {
			to := idx + offset
			if to > len(base.Stops) {
				break
			}
			plan := base.Clone()
			plan.Stops = insertStop(plan.Stops, to, disrupted)
			atts = append(atts, attempt{
				strategy:  StrategyShiftLater,
				plan:      plan,
				modified:  []string{disrupted.Name},
				shiftedTo: to,
			})
		}
	}

	if req.AllowShift && !req.UserSkip && idx+1 < len(req.Plan.Stops) {
		plan := base.Clone()
		next := req.Plan.Stops[idx+1]
		// base already dropped the disrupted stop, so the follower sits at
		// idx; swapping means re-inserting the disrupted stop right after.
		plan.Stops = insertStop(plan.Stops, idx+1, disrupted)
		atts = append(atts, attempt{
			strategy: StrategySwapWithNext,
			plan:     plan,
			modified: []string{disrupted.Name, next.Name},
		})
	}

	if req.AllowReplace && !req.UserSkip {
		exclude := planNames(req.Plan, view)
		for _, cand := range e.rankNearby(req.Pool, disrupted, req.Cause, req.CategoryHint, exclude) {
			rp := cand.ToRoutePoint()
			plan := base.Clone()
			plan.Stops = insertStop(plan.Stops, idx, rp)
			atts = append(atts, attempt{
				strategy: StrategyReplaceNearby,
				plan:     plan,
				modified: []string{disrupted.Name, rp.Name},
				inserted: &plan.Stops[idx],
			})
		}
	}

	atts = append(atts, attempt{
		strategy: StrategyDeferToNextDay,
		plan:     base.Clone(),
		modified: []string{disrupted.Name},
	})
	return atts
}

// validate recomputes timing, applies the meal rules and checks invariants
// for one candidate. ShiftLater slots additionally re-estimate crowding at
// the new time for crowd-caused disruptions.
func (e *Engine) validate(req Request, att attempt, disrupted model.RoutePoint, now time.Time, view model.StateView) (model.RepairResult, error) {
	plan := e.recomputeTimings(att.plan, firstChanged(req.Plan, att.plan), now)

	if att.strategy == StrategyShiftLater && req.Cause == model.CauseCrowd {
		i := plan.Find(disrupted.Name)
		if i < 0 {
			return model.RepairResult{}, fmt.Errorf("%w: shifted stop truncated", ErrInvariant)
		}
		delay := plan.Stops[i].Arrival.Sub(disrupted.Arrival).Minutes()
		if est := e.estimateCrowdAt(req.CrowdLevel, delay); est >= req.CrowdThreshold {
			return model.RepairResult{}, fmt.Errorf("%w: crowd still %.2f at shifted slot", ErrInvariant, est)
		}
	}

	requireLunch, requireDinner := mealRequirements(req.Plan, plan, disrupted, att.strategy)
	if err := e.validateMeals(&plan, now, requireLunch, requireDinner); err != nil {
		return model.RepairResult{}, err
	}
	truncatedTail := len(att.plan.Stops) - len(plan.Stops)
	if err := checkInvariants(req.Plan, plan, now, view.VisitedStops(), disrupted, att.inserted, req.UserSkip, truncatedTail, e.cfg.ClusterRadiusKm); err != nil {
		return model.RepairResult{}, err
	}

	return model.RepairResult{
		Plan:                plan,
		Modified:            att.modified,
		InvariantsSatisfied: true,
		Strategy:            att.strategy,
		Diagnostics:         e.idleGapDiagnostics(plan),
	}, nil
}

// mealRequirements demands a meal's presence only when the edit kept it: the
// defer fallback may legitimately drop the meal it removed.
func mealRequirements(original, candidate model.DayPlan, disrupted model.RoutePoint, strategy string) (bool, bool) {
	hadLunch, hadDinner := hasMeals(original)
	requireLunch, requireDinner := hadLunch, hadDinner
	if strategy == StrategyDeferToNextDay || strategy == StrategyReplaceNearby {
		if disrupted.Activity == model.ActivityLunch {
			requireLunch = false
		}
		if disrupted.Activity == model.ActivityDinner {
			requireDinner = false
		}
	}
	// Timing truncation may drop a tail meal; absence from the candidate is
	// then a truncation fact, not a rule for the validator to re-check.
	gotLunch, gotDinner := hasMeals(candidate)
	if !gotLunch && truncated(original, candidate, model.ActivityLunch, disrupted.Name) {
		requireLunch = false
	}
	if !gotDinner && truncated(original, candidate, model.ActivityDinner, disrupted.Name) {
		requireDinner = false
	}
	return requireLunch, requireDinner
}

func hasMeals(plan model.DayPlan) (lunch, dinner bool) {
	for _, s := range plan.Stops {
		switch s.Activity {
		case model.ActivityLunch:
			lunch = true
		case model.ActivityDinner:
			dinner = true
		}
	}
	return lunch, dinner
}

// truncated reports whether a meal of the given type was present in the
// original but fell off the candidate's tail for a reason other than being
// the disrupted stop itself.
func truncated(original, candidate model.DayPlan, meal model.ActivityType, disrupted string) bool {
	for _, s := range original.Stops {
		if s.Activity == meal && s.Name != disrupted && candidate.Find(s.Name) < 0 {
			return true
		}
	}
	return false
}

// firstChanged returns the first index at which the candidate diverges from
// the original plan, bounding the timing recompute to the edit point.
func firstChanged(original, candidate model.DayPlan) int {
	n := len(original.Stops)
	if len(candidate.Stops) < n {
		n = len(candidate.Stops)
	}
	for i := 0; i < n; i++ {
		if original.Stops[i].Name != candidate.Stops[i].Name {
			return i
		}
	}
	return n
}

func insertStop(stops []model.RoutePoint, at int, s model.RoutePoint) []model.RoutePoint {
	if at >= len(stops) {
		return append(stops, s)
	}
	out := append(stops[:at:at], s)
	return append(out, stops[at:]...)
}

func planNames(plan model.DayPlan, view model.StateView) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range plan.Stops {
		out[s.Name] = struct{}{}
	}
	for _, v := range view.VisitedStops() {
		out[v] = struct{}{}
	}
	for _, v := range view.SkippedStops() {
		out[v] = struct{}{}
	}
	return out
}

func containsName(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
