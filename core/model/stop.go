package model

import (
	"fmt"
	"time"
)

// ActivityType classifies a stop in a day plan.
type ActivityType int

const (
	ActivitySightseeing ActivityType = iota
	ActivityMuseum
	ActivityPark
	ActivityShopping
	ActivityCafe
	ActivityLunch
	ActivityDinner
)

// String returns a human-readable representation of the activity type.
func (t ActivityType) String() string {
	switch t {
	case ActivitySightseeing:
		return "sightseeing"
	case ActivityMuseum:
		return "museum"
	case ActivityPark:
		return "park"
	case ActivityShopping:
		return "shopping"
	case ActivityCafe:
		return "cafe"
	case ActivityLunch:
		return "lunch"
	case ActivityDinner:
		return "dinner"
	default:
		return "unknown"
	}
}

// IsMeal reports whether the activity is a lunch or dinner stop.
func (t ActivityType) IsMeal() bool {
	return t == ActivityLunch || t == ActivityDinner
}

// IsOutdoor reports whether the activity is weather-exposed.
func (t ActivityType) IsOutdoor() bool {
	return t == ActivitySightseeing || t == ActivityPark
}

// RoutePoint is one scheduled stop of a day plan.
type RoutePoint struct {
	Name          string        `json:"name"`
	Lat           float64       `json:"lat"`
	Lon           float64       `json:"lon"`
	Activity      ActivityType  `json:"activity"`
	Arrival       time.Time     `json:"arrival"`
	Departure     time.Time     `json:"departure"`
	VisitDuration time.Duration `json:"visit_duration"`
	Cost          float64       `json:"cost"`
	Rating        float64       `json:"rating"`     // 0..5
	Popularity    float64       `json:"popularity"` // 0..1
}

// Validate checks that the stop definition is sound.
func (p RoutePoint) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("stop name must not be empty")
	}
	if p.VisitDuration < 0 {
		return fmt.Errorf("stop %s: visit duration must not be negative", p.Name)
	}
	return nil
}

// ValueScore returns the normalized worth of the stop in [0,1], weighting
// rating over raw popularity.
func (p RoutePoint) ValueScore() float64 {
	score := 0.7*(p.Rating/5.0) + 0.3*p.Popularity
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// DayPlan is the ordered stop list for one day.
type DayPlan struct {
	Date   time.Time    `json:"date"`
	DayEnd time.Time    `json:"day_end"`
	Stops  []RoutePoint `json:"stops"`
}

// Clone returns a deep copy of the plan.
func (d DayPlan) Clone() DayPlan {
	out := d
	out.Stops = append([]RoutePoint(nil), d.Stops...)
	return out
}

// Find returns the index of the stop with the given name, or -1.
func (d DayPlan) Find(name string) int {
	for i, s := range d.Stops {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks timing continuity: each stop departs before the next
// arrives and the last departure does not exceed the day end.
func (d DayPlan) Validate() error {
	for i := range d.Stops {
		if err := d.Stops[i].Validate(); err != nil {
			return err
		}
		if i > 0 && d.Stops[i].Arrival.Before(d.Stops[i-1].Departure) {
			return fmt.Errorf("stop %s arrives before %s departs", d.Stops[i].Name, d.Stops[i-1].Name)
		}
	}
	if n := len(d.Stops); n > 0 && !d.DayEnd.IsZero() && d.Stops[n-1].Departure.After(d.DayEnd) {
		return fmt.Errorf("stop %s departs after day end", d.Stops[n-1].Name)
	}
	return nil
}

// Candidate is a pool entry the repair engine or replanner may schedule.
type Candidate struct {
	Name           string        `json:"name"`
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Activity       ActivityType  `json:"activity"`
	Category       string        `json:"category"`
	VisitDuration  time.Duration `json:"visit_duration"`
	Cost           float64       `json:"cost"`
	Rating         float64       `json:"rating"`
	Popularity     float64       `json:"popularity"`
	EstimatedCrowd float64       `json:"estimated_crowd"`
}

// ToRoutePoint converts the candidate to an unscheduled stop. Arrival and
// departure are assigned by the timing recompute.
func (c Candidate) ToRoutePoint() RoutePoint {
	return RoutePoint{
		Name:          c.Name,
		Lat:           c.Lat,
		Lon:           c.Lon,
		Activity:      c.Activity,
		VisitDuration: c.VisitDuration,
		Cost:          c.Cost,
		Rating:        c.Rating,
		Popularity:    c.Popularity,
	}
}
