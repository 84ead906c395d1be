package repair

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// validateMeals enforces the meal rules on a candidate plan, adjusting it in
// place where the rules allow:
//
//   - at most one lunch and one dinner; requireLunch/requireDinner demand
//     their presence (the defer fallback may legitimately drop the meal it
//     removed, so presence is only required when the edit kept it);
//   - no two meals scheduled adjacently;
//   - a meal starting before its window opens is pushed forward if it still
//     fits, with the following stops re-timed, rather than rejected;
//   - a meal must start no earlier than the mandatory gap after the prior
//     stop's departure and no later than its window close.
func (e *Engine) validateMeals(plan *model.DayPlan, now time.Time, requireLunch, requireDinner bool) error {
	lunches, dinners := 0, 0
	for i, s := range plan.Stops {
		if !s.Activity.IsMeal() {
			continue
		}
		switch s.Activity {
		case model.ActivityLunch:
			lunches++
		case model.ActivityDinner:
			dinners++
		}
		if i > 0 && plan.Stops[i-1].Activity.IsMeal() {
			return fmt.Errorf("%w: %s and %s are adjacent meals", ErrMealConstraint, plan.Stops[i-1].Name, s.Name)
		}
	}
	if lunches > 1 {
		return fmt.Errorf("%w: %d lunch stops", ErrMealConstraint, lunches)
	}
	if dinners > 1 {
		return fmt.Errorf("%w: %d dinner stops", ErrMealConstraint, dinners)
	}
	if requireLunch && lunches == 0 {
		return fmt.Errorf("%w: lunch missing from plan", ErrMealConstraint)
	}
	if requireDinner && dinners == 0 {
		return fmt.Errorf("%w: dinner missing from plan", ErrMealConstraint)
	}

	for i := 0; i < len(plan.Stops); i++ {
		s := plan.Stops[i]
		if !s.Activity.IsMeal() || !s.Departure.After(now) {
			continue
		}
		open, close := e.mealWindow(*plan, s.Activity)
		start := s.Arrival
		if i > 0 {
			if gapStart := plan.Stops[i-1].Departure.Add(e.cfg.MealGap); gapStart.After(start) {
				start = gapStart
			}
		}
		if start.Before(open) {
			start = open
		}
		if start.After(close) {
			return fmt.Errorf("%w: %s cannot start before %s closes its window", ErrMealConstraint, s.Name, s.Activity)
		}
		if !start.Equal(s.Arrival) {
			plan.Stops[i].Arrival = start
			plan.Stops[i].Departure = start.Add(s.VisitDuration)
			if !plan.DayEnd.IsZero() && plan.Stops[i].Departure.After(plan.DayEnd) {
				return fmt.Errorf("%w: pushed %s past day end", ErrMealConstraint, s.Name)
			}
			// The push moved this stop; everything after it re-times.
			*plan = e.recomputeTimings(*plan, i+1, now)
		}
	}
	return nil
}

// mealWindow returns the open and close instants of the meal window on the
// plan date.
func (e *Engine) mealWindow(plan model.DayPlan, activity model.ActivityType) (time.Time, time.Time) {
	midnight := time.Date(plan.Date.Year(), plan.Date.Month(), plan.Date.Day(), 0, 0, 0, 0, plan.Date.Location())
	if activity == model.ActivityLunch {
		return midnight.Add(e.cfg.LunchOpen), midnight.Add(e.cfg.LunchClose)
	}
	return midnight.Add(e.cfg.DinnerOpen), midnight.Add(e.cfg.DinnerClose)
}
