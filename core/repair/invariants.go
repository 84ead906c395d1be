package repair

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/travel"
)

// checkInvariants validates a candidate plan against the original. Any
// violation rejects the candidate and advances the cascade to the next
// strategy.
//
// The rules, in check order:
//  1. visited stops are never reintroduced or altered;
//  2. stops whose departure is at or before the clock are locked, unchanged
//     in content and timing;
//  3. meals already taken fall under the same locked rule and stay immutable;
//  4. the deliberate edit changes the stop count by at most one, except for
//     an explicit user skip; stops the timing recompute truncated at day end
//     are not counted against the edit;
//  5. no duplicate stop names;
//  6. no duplicate meal events;
//  7. stops other than the disrupted one keep their relative order;
//  8. a newly inserted stop lies within the cluster radius of the disrupted
//     stop's location.
func checkInvariants(original, candidate model.DayPlan, now time.Time, visited []string, disrupted model.RoutePoint, inserted *model.RoutePoint, userSkip bool, truncatedTail int, radiusKm float64) error {
	visitedSet := make(map[string]struct{}, len(visited))
	for _, v := range visited {
		visitedSet[v] = struct{}{}
	}
	origByName := make(map[string]model.RoutePoint, len(original.Stops))
	for _, s := range original.Stops {
		origByName[s.Name] = s
	}

	seen := make(map[string]struct{}, len(candidate.Stops))
	lunches, dinners := 0, 0
	for _, s := range candidate.Stops {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate stop %s", ErrInvariant, s.Name)
		}
		seen[s.Name] = struct{}{}
		switch s.Activity {
		case model.ActivityLunch:
			lunches++
		case model.ActivityDinner:
			dinners++
		}
		if _, wasVisited := visitedSet[s.Name]; wasVisited {
			orig, inPlan := origByName[s.Name]
			if !inPlan {
				return fmt.Errorf("%w: visited stop %s reintroduced", ErrInvariant, s.Name)
			}
			if s != orig {
				return fmt.Errorf("%w: visited stop %s altered", ErrInvariant, s.Name)
			}
		}
	}
	if lunches > 1 || dinners > 1 {
		return fmt.Errorf("%w: duplicate meal events", ErrInvariant)
	}

	// Locked stops (departed, meals taken included) must survive unchanged.
	candByName := make(map[string]model.RoutePoint, len(candidate.Stops))
	for _, s := range candidate.Stops {
		candByName[s.Name] = s
	}
	for _, s := range original.Stops {
		if s.Departure.After(now) {
			continue
		}
		got, ok := candByName[s.Name]
		if !ok {
			return fmt.Errorf("%w: locked stop %s removed", ErrInvariant, s.Name)
		}
		if got != s {
			return fmt.Errorf("%w: locked stop %s modified", ErrInvariant, s.Name)
		}
	}

	if !userSkip {
		// Add back day-end truncations so only the edit itself is measured:
		// the defer fallback must always be accepted, however short the
		// remaining day is.
		if diff := len(candidate.Stops) - len(original.Stops) + truncatedTail; diff > 1 || diff < -1 {
			return fmt.Errorf("%w: stop count changed by %d", ErrInvariant, diff)
		}
	}

	if err := checkRelativeOrder(original, candidate, disrupted.Name, inserted); err != nil {
		return err
	}

	if inserted != nil {
		if d := travel.DistanceKm(disrupted.Lat, disrupted.Lon, inserted.Lat, inserted.Lon); d > radiusKm {
			return fmt.Errorf("%w: inserted stop %s is %.1f km from %s (limit %.1f)", ErrInvariant, inserted.Name, d, disrupted.Name, radiusKm)
		}
	}
	return nil
}

// checkRelativeOrder verifies that, ignoring the disrupted stop and any
// inserted one, the candidate preserves the original stop order.
func checkRelativeOrder(original, candidate model.DayPlan, disrupted string, inserted *model.RoutePoint) error {
	ref := make([]string, 0, len(original.Stops))
	for _, s := range original.Stops {
		if s.Name != disrupted {
			ref = append(ref, s.Name)
		}
	}
	got := make([]string, 0, len(candidate.Stops))
	for _, s := range candidate.Stops {
		if s.Name == disrupted {
			continue
		}
		if inserted != nil && s.Name == inserted.Name {
			continue
		}
		got = append(got, s.Name)
	}
	// Candidates may truncate the tail but never reorder what remains.
	j := 0
	for _, name := range got {
		found := false
		for j < len(ref) {
			if ref[j] == name {
				found = true
				j++
				break
			}
			j++
		}
		if !found {
			return fmt.Errorf("%w: stop %s out of order", ErrInvariant, name)
		}
	}
	return nil
}
