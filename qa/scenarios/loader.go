// Package scenarios replays YAML-described trip days end to end: a plan, a
// candidate pool and a scripted step list of advances, condition checks,
// events and resolutions, with expectations on the resulting session state.
package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voyagent/tripmend/core/model"
)

type StopDef struct {
	Name         string    `yaml:"name"`
	Activity     string    `yaml:"activity"`
	Lat          float64   `yaml:"lat"`
	Lon          float64   `yaml:"lon"`
	Arrival      time.Time `yaml:"arrival"`
	Departure    time.Time `yaml:"departure"`
	VisitMinutes int       `yaml:"visit_minutes"`
	Cost         float64   `yaml:"cost"`
	Rating       float64   `yaml:"rating"`
	Popularity   float64   `yaml:"popularity"`
}

func (s StopDef) ToModel() model.RoutePoint {
	return model.RoutePoint{
		Name:          s.Name,
		Activity:      parseActivity(s.Activity),
		Lat:           s.Lat,
		Lon:           s.Lon,
		Arrival:       s.Arrival,
		Departure:     s.Departure,
		VisitDuration: time.Duration(s.VisitMinutes) * time.Minute,
		Cost:          s.Cost,
		Rating:        s.Rating,
		Popularity:    s.Popularity,
	}
}

type CandidateDef struct {
	Name         string  `yaml:"name"`
	Activity     string  `yaml:"activity"`
	Category     string  `yaml:"category"`
	Lat          float64 `yaml:"lat"`
	Lon          float64 `yaml:"lon"`
	VisitMinutes int     `yaml:"visit_minutes"`
	Cost         float64 `yaml:"cost"`
	Rating       float64 `yaml:"rating"`
	Popularity   float64 `yaml:"popularity"`
}

func (c CandidateDef) ToModel() model.Candidate {
	return model.Candidate{
		Name:          c.Name,
		Activity:      parseActivity(c.Activity),
		Category:      c.Category,
		Lat:           c.Lat,
		Lon:           c.Lon,
		VisitDuration: time.Duration(c.VisitMinutes) * time.Minute,
		Cost:          c.Cost,
		Rating:        c.Rating,
		Popularity:    c.Popularity,
	}
}

type PlanDef struct {
	Date   time.Time `yaml:"date"`
	DayEnd time.Time `yaml:"day_end"`
	Stops  []StopDef `yaml:"stops"`
}

func (p PlanDef) ToModel() model.DayPlan {
	plan := model.DayPlan{Date: p.Date, DayEnd: p.DayEnd}
	for _, s := range p.Stops {
		plan.Stops = append(plan.Stops, s.ToModel())
	}
	return plan
}

// Step is one scripted call against the session surface. Exactly one field
// is set per step.
type Step struct {
	Advance *AdvanceStep `yaml:"advance,omitempty"`
	Check   *CheckStep   `yaml:"check,omitempty"`
	Event   *EventStep   `yaml:"event,omitempty"`
	Resolve *ResolveStep `yaml:"resolve,omitempty"`
}

type AdvanceStep struct {
	Stop    string    `yaml:"stop"`
	Arrival time.Time `yaml:"arrival"`
	Lat     float64   `yaml:"lat"`
	Lon     float64   `yaml:"lon"`
	Cost    float64   `yaml:"cost"`
}

type CheckStep struct {
	Crowd           float64 `yaml:"crowd"`
	Weather         string  `yaml:"weather"`
	WeatherSeverity float64 `yaml:"weather_severity"`
	Traffic         float64 `yaml:"traffic"`
	NextStop        string  `yaml:"next_stop"`
}

func (c CheckStep) Readings() model.ConditionReadings {
	return model.ConditionReadings{
		CrowdLevel:      c.Crowd,
		Weather:         parseWeather(c.Weather),
		WeatherSeverity: c.WeatherSeverity,
		TrafficLevel:    c.Traffic,
	}
}

type EventStep struct {
	Type     string         `yaml:"type"`
	Stop     string         `yaml:"stop"`
	Severity float64        `yaml:"severity"`
	Text     string         `yaml:"text"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

func (e EventStep) ToModel() model.Event {
	return model.Event{
		Type:     model.ParseEventType(e.Type),
		Stop:     e.Stop,
		Severity: e.Severity,
		Text:     e.Text,
		Metadata: e.Metadata,
	}
}

type ResolveStep struct {
	Resolution  string `yaml:"resolution"`
	ActionIndex int    `yaml:"action_index"`
}

// Expected is checked once after the last step.
type Expected struct {
	Pending      bool     `yaml:"pending"`
	Visited      []string `yaml:"visited,omitempty"`
	Deferred     []string `yaml:"deferred,omitempty"`
	Skipped      []string `yaml:"skipped,omitempty"`
	PlanContains []string `yaml:"plan_contains,omitempty"`
	PlanMissing  []string `yaml:"plan_missing,omitempty"`
	Replans      int      `yaml:"replans"`
	Disruptions  int      `yaml:"disruptions"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	DayStart    time.Time      `yaml:"day_start"`
	DailyBudget float64        `yaml:"daily_budget"`
	Plan        PlanDef        `yaml:"plan"`
	Pool        []CandidateDef `yaml:"pool,omitempty"`
	Steps       []Step         `yaml:"steps"`
	Expected    Expected       `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func parseActivity(s string) model.ActivityType {
	switch s {
	case "museum":
		return model.ActivityMuseum
	case "park":
		return model.ActivityPark
	case "shopping":
		return model.ActivityShopping
	case "cafe":
		return model.ActivityCafe
	case "lunch":
		return model.ActivityLunch
	case "dinner":
		return model.ActivityDinner
	default:
		return model.ActivitySightseeing
	}
}

func parseWeather(s string) model.WeatherCondition {
	switch s {
	case "cloudy":
		return model.WeatherCloudy
	case "rain":
		return model.WeatherRain
	case "storm":
		return model.WeatherStorm
	case "heat":
		return model.WeatherHeat
	default:
		return model.WeatherClear
	}
}
