package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/infra/logger"
)

func TestDisruptionSeverityBands(t *testing.T) {
	cases := []struct {
		severity    float64
		kind        model.ActionKind
		level       string
		recommended string
	}{
		{0.2, model.NoAction, SeverityLow, RecommendIgnore},
		{0.5, model.RequestUserDecision, SeverityMedium, RecommendDefer},
		{0.8, model.RequestUserDecision, SeverityHigh, RecommendReplace},
	}
	sp := &DisruptionSpecialist{log: logger.NopLogger{}}
	for _, c := range cases {
		act := sp.Classify(model.Event{Type: model.EventUserReport, Stop: "Flea Market", Severity: c.severity}, testObs(nil))
		if act.Kind != c.kind {
			t.Errorf("severity %.1f: kind %s, want %s", c.severity, act.Kind, c.kind)
		}
		if act.Annotations["severity_level"] != c.level || act.Annotations["recommended"] != c.recommended {
			t.Errorf("severity %.1f: annotations %v", c.severity, act.Annotations)
		}
	}
}

func TestDisruptionFallsBackToReadingsAndNextStop(t *testing.T) {
	sp := &DisruptionSpecialist{log: logger.NopLogger{}}
	obs := testObs(func(o *model.Observation) { o.Readings.TrafficLevel = 0.8 })
	act := sp.Classify(model.Event{Type: model.EventTrafficAlert}, obs)
	if act.Kind != model.RequestUserDecision {
		t.Fatalf("expected escalation from readings, got %s", act.Kind)
	}
	if act.Target != "Old Town Walk" {
		t.Errorf("expected next stop as target, got %s", act.Target)
	}
	if act.Annotations["recommended"] != RecommendReplace {
		t.Errorf("expected REPLACE at high inferred severity, got %v", act.Annotations["recommended"])
	}

	// An inferred MEDIUM grade asks instead of recommending a deferral.
	obs = testObs(func(o *model.Observation) { o.Readings.TrafficLevel = 0.5 })
	act = sp.Classify(model.Event{Type: model.EventTrafficAlert}, obs)
	if act.Kind != model.RequestUserDecision {
		t.Fatalf("expected escalation, got %s", act.Kind)
	}
	if act.Annotations["recommended"] != RecommendAskUser {
		t.Errorf("expected ASK_USER for inferred medium severity, got %v", act.Annotations["recommended"])
	}
}

func TestBudgetStatuses(t *testing.T) {
	sp := &BudgetSpecialist{log: logger.NopLogger{}}

	over := testObs(func(o *model.Observation) { o.BudgetSpent = 190 })
	act := sp.Classify(model.Event{Type: model.EventBudgetCheck}, over)
	if act.Kind != model.NoAction {
		t.Fatalf("budget check must not edit the plan, got %s", act.Kind)
	}
	if act.Annotations["status"] != BudgetOverrun || act.Annotations["budget_action"] != BudgetCheaper {
		t.Errorf("unexpected overrun annotations %v", act.Annotations)
	}

	// 14:30 of a 09:00-21:00 day is ~46% elapsed: not yet underutilized.
	early := testObs(func(o *model.Observation) { o.BudgetSpent = 20 })
	act = sp.Classify(model.Event{Type: model.EventBudgetCheck}, early)
	if act.Annotations["status"] != BudgetOK {
		t.Errorf("unexpected status %v", act.Annotations["status"])
	}

	late := testObs(func(o *model.Observation) {
		o.BudgetSpent = 20
		o.Time = o.DayStart.Add(9 * time.Hour)
	})
	act = sp.Classify(model.Event{Type: model.EventBudgetCheck}, late)
	if act.Annotations["status"] != BudgetUnderutilized || act.Annotations["budget_action"] != BudgetRebalance {
		t.Errorf("unexpected underutilized annotations %v", act.Annotations)
	}
}

func TestPlanningStrategies(t *testing.T) {
	sp := &PlanningSpecialist{log: logger.NopLogger{}}
	ev := model.Event{Type: model.EventReplanRequest}

	full := testObs(func(o *model.Observation) { o.DisruptionCount = 3 })
	act := sp.Classify(ev, full)
	if act.Kind != model.ReoptimizeDay || act.Annotations["strategy"] != PlanFullPlan {
		t.Fatalf("expected full-plan reoptimize, got %+v", act)
	}

	pressure := testObs(func(o *model.Observation) {
		o.Time = o.DayEnd.Add(-30 * time.Minute)
		o.RemainingStops = 2
	})
	act = sp.Classify(ev, pressure)
	if act.Kind != model.ReoptimizeDay || act.Annotations["strategy"] != PlanReorder {
		t.Fatalf("expected reorder, got %+v", act)
	}

	local := testObs(func(o *model.Observation) { o.DisruptionCount = 1 })
	act = sp.Classify(ev, local)
	if act.Kind != model.DeferPoi || act.Annotations["scope"] != ScopePoi {
		t.Fatalf("expected local repair, got %+v", act)
	}
	if act.Defer == nil || act.Defer.Cause != model.CauseUser {
		t.Errorf("unexpected defer params %+v", act.Defer)
	}

	idle := testObs(nil)
	act = sp.Classify(ev, idle)
	if act.Kind != model.NoAction || act.Annotations["strategy"] != PlanNoChange {
		t.Fatalf("expected no change, got %+v", act)
	}
}

func TestPreferenceRequiresActualDelta(t *testing.T) {
	sp := &PreferenceSpecialist{log: logger.NopLogger{}}
	obs := testObs(nil)

	silent := sp.Classify(model.Event{Type: model.EventPreferenceChange}, obs)
	if silent.Kind != model.NoAction {
		t.Fatalf("empty metadata must not reoptimize, got %s", silent.Kind)
	}

	ev := model.Event{
		Type: model.EventPreferenceChange,
		Metadata: map[string]any{
			"pace_preference": "relaxed",
			"interests":       []any{"art", "food"},
			"tolerance_crowd": 0.4,
		},
	}
	act := sp.Classify(ev, obs)
	if act.Kind != model.ReoptimizeDay {
		t.Fatalf("expected ReoptimizeDay, got %s", act.Kind)
	}
	if got := act.Annotations["interests"].([]string); len(got) != 2 {
		t.Errorf("unexpected interests %v", got)
	}
	tol := act.Annotations["environment_tolerance"].(map[string]any)
	if tol["crowd"] != 0.4 {
		t.Errorf("unexpected tolerance %v", tol)
	}
}

func TestMemoryRetentionBands(t *testing.T) {
	sp := &MemorySpecialist{log: logger.NopLogger{}}
	ev := model.Event{Type: model.EventMemoryCheckpoint}

	none := sp.Classify(ev, testObs(nil))
	if none.Annotations["store"] != false || none.Annotations["memory_type"] != nil {
		t.Errorf("unexpected annotations %v", none.Annotations)
	}

	short := sp.Classify(ev, testObs(func(o *model.Observation) { o.DisruptionCount = 1 }))
	if short.Annotations["store"] != true || short.Annotations["memory_type"] != MemoryShortTerm {
		t.Errorf("unexpected annotations %v", short.Annotations)
	}

	long := sp.Classify(ev, testObs(func(o *model.Observation) { o.DisruptionCount = 4 }))
	if long.Annotations["memory_type"] != MemoryLongTerm {
		t.Errorf("unexpected annotations %v", long.Annotations)
	}
}

func TestExplanationSummarizesSnapshot(t *testing.T) {
	sp := &ExplanationSpecialist{log: logger.NopLogger{}}
	obs := testObs(func(o *model.Observation) {
		o.Readings.CrowdLevel = 0.5
		o.BudgetSpent = 50
	})
	act := sp.Classify(model.Event{Type: model.EventExplainRequest}, obs)
	if act.Kind != model.NoAction {
		t.Fatalf("explanation must not act, got %s", act.Kind)
	}
	summary := act.Annotations["summary"].(string)
	for _, want := range []string{"Old Town Walk", "crowd 50%", "25% of the daily budget"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
}
