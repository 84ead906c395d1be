package classify

import (
	"reflect"
	"testing"
	"time"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/infra/logger"
)

func testObs(mutate func(*model.Observation)) model.Observation {
	day := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	next := model.RoutePoint{
		Name:       "Old Town Walk",
		Activity:   model.ActivitySightseeing,
		Arrival:    day.Add(15 * time.Hour),
		Rating:     4.8,
		Popularity: 0.8,
	}
	obs := model.Observation{
		Time:           day.Add(14*time.Hour + 30*time.Minute),
		Thresholds:     model.DefaultThresholds(),
		NextStop:       &next,
		RemainingStops: 3,
		DayStart:       day.Add(9 * time.Hour),
		DayEnd:         day.Add(21 * time.Hour),
		DailyBudget:    200,
	}
	if mutate != nil {
		mutate(&obs)
	}
	return obs
}

func lowValueStop() *model.RoutePoint {
	return &model.RoutePoint{
		Name:       "Flea Market",
		Activity:   model.ActivityShopping,
		Rating:     2.0,
		Popularity: 0.1,
	}
}

func TestDecideSevereWeatherReplacesOutdoorStop(t *testing.T) {
	obs := testObs(func(o *model.Observation) {
		o.Readings.Weather = model.WeatherStorm
		o.Readings.WeatherSeverity = 0.8
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.ReplacePoi {
		t.Fatalf("expected ReplacePoi, got %s", act.Kind)
	}
	if act.Target != "Old Town Walk" {
		t.Errorf("unexpected target %s", act.Target)
	}
	if act.Replace == nil || act.Replace.Cause != model.CauseWeather || act.Replace.CategoryHint != "indoor" {
		t.Errorf("unexpected replace params %+v", act.Replace)
	}
}

func TestDecideSevereWeatherIndoorStopIsNoAction(t *testing.T) {
	obs := testObs(func(o *model.Observation) {
		o.Readings.Weather = model.WeatherStorm
		o.Readings.WeatherSeverity = 0.8
		o.NextStop = &model.RoutePoint{Name: "City Museum", Activity: model.ActivityMuseum, Rating: 4.5}
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.NoAction {
		t.Fatalf("expected NoAction for indoor stop, got %s", act.Kind)
	}
}

func TestDecideModerateWeatherDefersOutdoorStop(t *testing.T) {
	obs := testObs(func(o *model.Observation) {
		o.Readings.Weather = model.WeatherRain
		o.Readings.WeatherSeverity = 0.5
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.DeferPoi {
		t.Fatalf("expected DeferPoi, got %s", act.Kind)
	}
	if act.Defer == nil || act.Defer.Cause != model.CauseWeather || !act.Defer.AllowShift {
		t.Errorf("unexpected defer params %+v", act.Defer)
	}
}

func TestDecideCrowdSplitsOnValue(t *testing.T) {
	high := testObs(func(o *model.Observation) { o.Readings.CrowdLevel = 0.9 })
	act := NewDecisionEngine(logger.NopLogger{}).Decide(high)
	if act.Kind != model.DeferPoi {
		t.Fatalf("high-value stop: expected DeferPoi, got %s", act.Kind)
	}
	if act.Defer.Cause != model.CauseCrowd {
		t.Errorf("unexpected cause %s", act.Defer.Cause)
	}

	low := testObs(func(o *model.Observation) {
		o.Readings.CrowdLevel = 0.9
		o.NextStop = lowValueStop()
	})
	act = NewDecisionEngine(logger.NopLogger{}).Decide(low)
	if act.Kind != model.RequestUserDecision {
		t.Fatalf("low-value stop: expected RequestUserDecision, got %s", act.Kind)
	}
	if act.Target != "Flea Market" {
		t.Errorf("unexpected target %s", act.Target)
	}
}

func TestDecideCrowdAtThresholdIsNoAction(t *testing.T) {
	obs := testObs(func(o *model.Observation) { o.Readings.CrowdLevel = 0.70 })
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.NoAction {
		t.Fatalf("threshold is exclusive, got %s", act.Kind)
	}
}

func TestDecideTrafficSplitsOnValue(t *testing.T) {
	high := testObs(func(o *model.Observation) { o.Readings.TrafficLevel = 0.8 })
	act := NewDecisionEngine(logger.NopLogger{}).Decide(high)
	if act.Kind != model.DeferPoi {
		t.Fatalf("high-value stop: expected DeferPoi, got %s", act.Kind)
	}
	if act.Defer.Cause != model.CauseTraffic {
		t.Errorf("unexpected cause %s", act.Defer.Cause)
	}

	low := testObs(func(o *model.Observation) {
		o.Readings.TrafficLevel = 0.8
		o.NextStop = lowValueStop()
	})
	act = NewDecisionEngine(logger.NopLogger{}).Decide(low)
	if act.Kind != model.ReplacePoi {
		t.Fatalf("low-value stop: expected ReplacePoi, got %s", act.Kind)
	}
	if act.Replace.Cause != model.CauseTraffic || act.Replace.CategoryHint != "" {
		t.Errorf("unexpected replace params %+v", act.Replace)
	}
}

func TestDecideRepeatedDisruptionsReoptimize(t *testing.T) {
	obs := testObs(func(o *model.Observation) { o.DisruptionCount = 3 })
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.ReoptimizeDay {
		t.Fatalf("expected ReoptimizeDay, got %s", act.Kind)
	}
	if act.Reoptimize.DeprioritizeOutdoor {
		t.Error("outdoor should not be deprioritized in clear weather")
	}

	wet := testObs(func(o *model.Observation) {
		o.DisruptionCount = 3
		o.Readings.WeatherSeverity = 0.5
		o.NextStop = &model.RoutePoint{Name: "City Museum", Activity: model.ActivityMuseum}
	})
	act = NewDecisionEngine(logger.NopLogger{}).Decide(wet)
	if act.Kind != model.ReoptimizeDay || !act.Reoptimize.DeprioritizeOutdoor {
		t.Fatalf("expected outdoor-deprioritized reoptimize, got %+v", act)
	}
}

func TestDecideEndOfDayRelaxesTravelCeiling(t *testing.T) {
	obs := testObs(func(o *model.Observation) {
		o.Time = o.DayEnd.Add(-30 * time.Minute)
		o.RemainingStops = 2
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.RelaxConstraint {
		t.Fatalf("expected RelaxConstraint, got %s", act.Kind)
	}
	if act.Relax.Constraint != "travel_ceiling" {
		t.Errorf("unexpected constraint %s", act.Relax.Constraint)
	}
	if act.Relax.Old != 45*time.Minute || act.Relax.New != 60*time.Minute {
		t.Errorf("unexpected widen %v -> %v", act.Relax.Old, act.Relax.New)
	}
}

func TestDecideEndOfDaySingleStopIsNoAction(t *testing.T) {
	obs := testObs(func(o *model.Observation) {
		o.Time = o.DayEnd.Add(-30 * time.Minute)
		o.RemainingStops = 1
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.NoAction {
		t.Fatalf("one stop left should not relax, got %s", act.Kind)
	}
}

func TestDecideLadderOrder(t *testing.T) {
	// Severe weather outranks a crowd reading on the same snapshot.
	obs := testObs(func(o *model.Observation) {
		o.Readings.WeatherSeverity = 0.8
		o.Readings.CrowdLevel = 0.95
	})
	act := NewDecisionEngine(logger.NopLogger{}).Decide(obs)
	if act.Kind != model.ReplacePoi {
		t.Fatalf("weather should win, got %s", act.Kind)
	}
}

func TestDecideDeterministic(t *testing.T) {
	obs := testObs(func(o *model.Observation) { o.Readings.CrowdLevel = 0.9 })
	eng := NewDecisionEngine(logger.NopLogger{})
	a, b := eng.Decide(obs), eng.Decide(obs)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same snapshot produced different actions:\n%+v\n%+v", a, b)
	}
}

func TestDecideCalmIsNoAction(t *testing.T) {
	act := NewDecisionEngine(logger.NopLogger{}).Decide(testObs(nil))
	if act.Kind != model.NoAction {
		t.Fatalf("expected NoAction, got %s", act.Kind)
	}
}
