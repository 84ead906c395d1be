package replan

import (
	"testing"
	"time"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/travel"
	"github.com/voyagent/tripmend/infra/logger"
)

var testDay = time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func newReplanner() *GreedyReplanner {
	return NewGreedyReplanner(travel.HaversineEstimator{}, logger.NopLogger{})
}

func testView(stops []model.RoutePoint, dayStart time.Time) *model.TripState {
	plan := model.DayPlan{Date: testDay, DayEnd: at(21, 0), Stops: stops}
	return model.NewTripState(plan, dayStart, 200)
}

func TestReplanPrefersValuePerTravelMinute(t *testing.T) {
	view := testView(nil, at(10, 0))
	pool := []model.Candidate{
		{Name: "Corner Cafe", Activity: model.ActivityCafe, Rating: 3.0, VisitDuration: 30 * time.Minute},
		{Name: "Grand Museum", Activity: model.ActivityMuseum, Rating: 5.0, Popularity: 0.9, VisitDuration: time.Hour},
	}
	plan, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0)}, false)
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if len(plan.Stops) != 2 {
		t.Fatalf("expected both candidates scheduled, got %d", len(plan.Stops))
	}
	if plan.Stops[0].Name != "Grand Museum" {
		t.Errorf("higher-value candidate not first: %s", plan.Stops[0].Name)
	}
	for i := 1; i < len(plan.Stops); i++ {
		if plan.Stops[i].Arrival.Before(plan.Stops[i-1].Departure) {
			t.Errorf("stop %s overlaps its predecessor", plan.Stops[i].Name)
		}
	}
}

func TestReplanKeepsLockedPrefix(t *testing.T) {
	stops := []model.RoutePoint{
		{Name: "Old Town Walk", Activity: model.ActivitySightseeing, Arrival: at(10, 0), Departure: at(11, 0), VisitDuration: time.Hour, Rating: 4.8},
		{Name: "Flea Market", Activity: model.ActivityShopping, Arrival: at(11, 10), Departure: at(12, 10), VisitDuration: time.Hour, Rating: 2.0},
	}
	view := testView(stops, at(11, 5))
	pool := []model.Candidate{
		{Name: "City Museum", Activity: model.ActivityMuseum, Rating: 4.5, VisitDuration: time.Hour},
	}
	plan, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0)}, false)
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if plan.Stops[0].Name != "Old Town Walk" {
		t.Fatalf("locked stop dropped: %v", plan.Stops)
	}
	if plan.Stops[0] != stops[0] {
		t.Error("locked stop altered")
	}
	if plan.Find("Flea Market") >= 0 {
		t.Error("unlocked tail survived the rebuild")
	}
	if plan.Find("City Museum") < 0 {
		t.Error("candidate not scheduled")
	}
}

func TestReplanHonorsBudgetAndDayEnd(t *testing.T) {
	view := testView(nil, at(19, 0))
	pool := []model.Candidate{
		{Name: "Pricey Gallery", Activity: model.ActivityMuseum, Rating: 5.0, Cost: 150, VisitDuration: time.Hour},
		{Name: "Harbor View", Activity: model.ActivitySightseeing, Rating: 4.0, VisitDuration: time.Hour},
		{Name: "Night Tour", Activity: model.ActivitySightseeing, Rating: 4.5, VisitDuration: 3 * time.Hour},
	}
	plan, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0), Budget: 100}, false)
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if plan.Find("Pricey Gallery") >= 0 {
		t.Error("over-budget candidate scheduled")
	}
	if plan.Find("Night Tour") >= 0 {
		t.Error("candidate past day end scheduled")
	}
	if plan.Find("Harbor View") < 0 {
		t.Error("feasible candidate dropped")
	}
}

func TestReplanDeprioritizesOutdoor(t *testing.T) {
	view := testView(nil, at(10, 0))
	pool := []model.Candidate{
		{Name: "Botanic Garden", Activity: model.ActivityPark, Rating: 4.8, Popularity: 0.9, VisitDuration: time.Hour},
		{Name: "City Museum", Activity: model.ActivityMuseum, Rating: 4.0, Popularity: 0.5, VisitDuration: time.Hour},
	}
	plan, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0)}, true)
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if plan.Stops[0].Name != "City Museum" {
		t.Fatalf("outdoor candidate won despite penalty: %s", plan.Stops[0].Name)
	}
}

func TestReplanMaxStops(t *testing.T) {
	view := testView(nil, at(10, 0))
	pool := []model.Candidate{
		{Name: "A", Rating: 4.0, VisitDuration: 30 * time.Minute},
		{Name: "B", Rating: 4.0, VisitDuration: 30 * time.Minute},
		{Name: "C", Rating: 4.0, VisitDuration: 30 * time.Minute},
	}
	plan, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0), MaxStops: 2}, false)
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if len(plan.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(plan.Stops))
	}
}

func TestReplanZeroStopsWithPoolIsError(t *testing.T) {
	view := testView(nil, at(20, 55))
	pool := []model.Candidate{
		{Name: "Long Tour", Rating: 4.0, VisitDuration: 3 * time.Hour},
	}
	if _, err := newReplanner().Replan(view, pool, Constraints{DayEnd: at(21, 0)}, false); err == nil {
		t.Fatal("expected error when nothing can be scheduled from a non-empty pool")
	}
}
