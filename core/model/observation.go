package model

import "time"

// WeatherCondition describes the current weather reading.
type WeatherCondition int

const (
	WeatherClear WeatherCondition = iota
	WeatherCloudy
	WeatherRain
	WeatherStorm
	WeatherHeat
)

// String returns a human-readable representation of the condition.
func (w WeatherCondition) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherCloudy:
		return "cloudy"
	case WeatherRain:
		return "rain"
	case WeatherStorm:
		return "storm"
	case WeatherHeat:
		return "heat"
	default:
		return "unknown"
	}
}

// ConditionReadings carries the live environment readings for one decision
// cycle. Zero values mean "no reading".
type ConditionReadings struct {
	CrowdLevel      float64          `json:"crowd_level"` // 0..1
	Weather         WeatherCondition `json:"weather"`
	WeatherSeverity float64          `json:"weather_severity"` // 0..1
	TrafficLevel    float64          `json:"traffic_level"`    // 0..1
}

// Thresholds are the session constraint ceilings applied to readings.
type Thresholds struct {
	Crowd   float64 `json:"crowd"`
	Traffic float64 `json:"traffic"`
	// TravelCeiling caps acceptable inter-stop travel; RelaxConstraint
	// widens it under end-of-day pressure.
	TravelCeiling time.Duration `json:"travel_ceiling"`
}

// DefaultThresholds returns the fixed session defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Crowd: 0.70, Traffic: 0.60, TravelCeiling: 45 * time.Minute}
}

// Observation is the immutable snapshot one decision cycle works from. It is
// built once from TripState plus live readings and never re-fetched
// mid-decision, so a decision is deterministic given one snapshot.
type Observation struct {
	Time            time.Time
	Lat             float64
	Lon             float64
	Readings        ConditionReadings
	Thresholds      Thresholds
	NextStop        *RoutePoint
	RemainingStops  int
	DisruptionCount int
	DayEnd          time.Time
	DayStart        time.Time
	BudgetSpent     float64
	DailyBudget     float64
	HungerLevel     float64
	FatigueLevel    float64
}

// Snapshot builds the Observation for one decision cycle.
func Snapshot(view StateView, readings ConditionReadings, thresholds Thresholds, nextStop *RoutePoint) Observation {
	lat, lon := view.Position()
	plan := view.CurrentPlan()
	remaining := 0
	now := view.Clock()
	for _, s := range plan.Stops {
		if s.Departure.After(now) {
			remaining++
		}
	}
	if nextStop == nil {
		for i := range plan.Stops {
			if plan.Stops[i].Departure.After(now) {
				st := plan.Stops[i]
				nextStop = &st
				break
			}
		}
	}
	return Observation{
		Time:            now,
		Lat:             lat,
		Lon:             lon,
		Readings:        readings,
		Thresholds:      thresholds,
		NextStop:        nextStop,
		RemainingStops:  remaining,
		DisruptionCount: len(view.DisruptionsToday()),
		DayEnd:          view.DayEndTime(),
		DayStart:        view.DayStartTime(),
		BudgetSpent:     view.SpentTotal(),
		DailyBudget:     view.Budget(),
		HungerLevel:     view.HungerLevel(),
		FatigueLevel:    view.FatigueLevel(),
	}
}

// MinutesToDayEnd returns the remaining minutes in the day, never negative.
func (o Observation) MinutesToDayEnd() float64 {
	if o.DayEnd.IsZero() || !o.DayEnd.After(o.Time) {
		return 0
	}
	return o.DayEnd.Sub(o.Time).Minutes()
}

// DayElapsedRatio returns the fraction of the day already elapsed in [0,1].
func (o Observation) DayElapsedRatio() float64 {
	if o.DayEnd.IsZero() || !o.DayEnd.After(o.DayStart) {
		return 0
	}
	r := o.Time.Sub(o.DayStart).Seconds() / o.DayEnd.Sub(o.DayStart).Seconds()
	return clamp01(r)
}

// SpendRatio returns spent/daily budget in [0,∞), 0 when no budget is set.
func (o Observation) SpendRatio() float64 {
	if o.DailyBudget <= 0 {
		return 0
	}
	return o.BudgetSpent / o.DailyBudget
}
