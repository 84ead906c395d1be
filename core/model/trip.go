package model

import (
	"fmt"
	"time"
)

// DisruptionCause identifies what triggered a disruption.
type DisruptionCause int

const (
	CauseCrowd DisruptionCause = iota
	CauseWeather
	CauseTraffic
	CauseUser
)

// String returns a human-readable representation of the cause.
func (c DisruptionCause) String() string {
	switch c {
	case CauseCrowd:
		return "crowd"
	case CauseWeather:
		return "weather"
	case CauseTraffic:
		return "traffic"
	case CauseUser:
		return "user"
	default:
		return "unknown"
	}
}

// DisruptionRecord is one append-only entry of the disruption log.
type DisruptionRecord struct {
	Time     time.Time       `json:"time"`
	Cause    DisruptionCause `json:"cause"`
	Severity float64         `json:"severity"`
	Stop     string          `json:"stop,omitempty"`
	Action   string          `json:"action"`
}

// TripState holds the live state of one trip session. It has exactly one
// writer (the execution dispatcher, via the mutation methods below); all
// other components read it through the StateView interface.
type TripState struct {
	Now         time.Time
	Lat         float64
	Lon         float64
	Plan        DayPlan
	Visited     []string
	Skipped     []string
	Deferred    []string
	Hunger      float64 // 0..1
	Fatigue     float64 // 0..1
	BudgetSpent map[string]float64
	DailyBudget float64
	DayStart    time.Time
	Disruptions []DisruptionRecord
	ReplanCount int
	Thresholds  Thresholds
}

// NewTripState creates the session state from a generated itinerary.
func NewTripState(plan DayPlan, dayStart time.Time, dailyBudget float64) *TripState {
	return &TripState{
		Now:         dayStart,
		Plan:        plan.Clone(),
		BudgetSpent: make(map[string]float64),
		DailyBudget: dailyBudget,
		DayStart:    dayStart,
		Thresholds:  DefaultThresholds(),
	}
}

// RelaxTravelCeiling widens the per-leg travel ceiling and returns the
// previous value.
func (s *TripState) RelaxTravelCeiling(ceiling time.Duration) time.Duration {
	old := s.Thresholds.TravelCeiling
	s.Thresholds.TravelCeiling = ceiling
	return old
}

// StateView is the read-only borrow handed to classifiers, guardrails and
// the repair engine.
type StateView interface {
	Clock() time.Time
	Position() (lat, lon float64)
	CurrentPlan() DayPlan
	VisitedStops() []string
	SkippedStops() []string
	DeferredStops() []string
	HungerLevel() float64
	FatigueLevel() float64
	SpentTotal() float64
	Budget() float64
	DisruptionsToday() []DisruptionRecord
	DayStartTime() time.Time
	DayEndTime() time.Time
}

func (s *TripState) Clock() time.Time             { return s.Now }
func (s *TripState) Position() (float64, float64) { return s.Lat, s.Lon }
func (s *TripState) CurrentPlan() DayPlan         { return s.Plan.Clone() }
func (s *TripState) VisitedStops() []string       { return append([]string(nil), s.Visited...) }
func (s *TripState) SkippedStops() []string       { return append([]string(nil), s.Skipped...) }
func (s *TripState) DeferredStops() []string      { return append([]string(nil), s.Deferred...) }
func (s *TripState) HungerLevel() float64         { return s.Hunger }
func (s *TripState) FatigueLevel() float64        { return s.Fatigue }
func (s *TripState) Budget() float64              { return s.DailyBudget }
func (s *TripState) DayStartTime() time.Time      { return s.DayStart }
func (s *TripState) DayEndTime() time.Time        { return s.Plan.DayEnd }

// SpentTotal returns the sum over all budget categories.
func (s *TripState) SpentTotal() float64 {
	var total float64
	for _, v := range s.BudgetSpent {
		total += v
	}
	return total
}

// DisruptionsToday returns a copy of the disruption log.
func (s *TripState) DisruptionsToday() []DisruptionRecord {
	return append([]DisruptionRecord(nil), s.Disruptions...)
}

// AdvanceTo moves the clock and position to the given stop arrival.
func (s *TripState) AdvanceTo(t time.Time, lat, lon float64) {
	if t.After(s.Now) {
		elapsed := t.Sub(s.Now).Hours()
		// Hunger builds with time awake, fatigue with time on foot.
		s.Hunger = clamp01(s.Hunger + 0.12*elapsed)
		s.Fatigue = clamp01(s.Fatigue + 0.08*elapsed)
		s.Now = t
	}
	s.Lat, s.Lon = lat, lon
}

// MarkVisited records a completed stop and its cost.
func (s *TripState) MarkVisited(name, category string, cost float64) error {
	if containsString(s.Visited, name) {
		return fmt.Errorf("stop %s already visited", name)
	}
	s.Visited = append(s.Visited, name)
	if cost > 0 {
		s.RecordSpend(category, cost)
	}
	if i := s.Plan.Find(name); i >= 0 && s.Plan.Stops[i].Activity.IsMeal() {
		s.Hunger = 0
	}
	return nil
}

// SkipStop records a user-initiated skip.
func (s *TripState) SkipStop(name string) {
	if !containsString(s.Skipped, name) {
		s.Skipped = append(s.Skipped, name)
	}
}

// DeferStop records a stop pushed to a later day.
func (s *TripState) DeferStop(name string) {
	if !containsString(s.Deferred, name) {
		s.Deferred = append(s.Deferred, name)
	}
}

// RecordSpend adds an amount to a budget category.
func (s *TripState) RecordSpend(category string, amount float64) {
	if s.BudgetSpent == nil {
		s.BudgetSpent = make(map[string]float64)
	}
	s.BudgetSpent[category] += amount
}

// LogDisruption appends to the session disruption log.
func (s *TripState) LogDisruption(rec DisruptionRecord) {
	s.Disruptions = append(s.Disruptions, rec)
}

// SetPlan replaces the current day plan.
func (s *TripState) SetPlan(plan DayPlan) {
	s.Plan = plan.Clone()
}

// NoteReplan increments the bounded-reoptimization counter.
func (s *TripState) NoteReplan() {
	s.ReplanCount++
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
