package classify

import "time"

// Fixed decision constants. Thresholds for crowd and traffic come from the
// session Thresholds; everything else is pinned here.
const (
	// WeatherSevere is the severity at or above which an outdoor next stop
	// is replaced outright.
	WeatherSevere = 0.75
	// WeatherModerate is the severity at or above which an outdoor next
	// stop is deferred to a later slot.
	WeatherModerate = 0.40
	// ValueCutoff splits high-value stops (worth waiting for, defer) from
	// low-value ones (ask the user or replace).
	ValueCutoff = 0.65
	// ReoptimizeDisruptionCount triggers a bounded day reoptimization once
	// this many disruptions are logged for the day.
	ReoptimizeDisruptionCount = 3
	// EndOfDayPressure is the remaining-day span below which, with more
	// than one stop left, the travel ceiling is relaxed instead of edited.
	EndOfDayPressure = 60 * time.Minute
	// TravelCeilingWiden is the increment applied by a RelaxConstraint.
	TravelCeilingWiden = 15 * time.Minute
)
