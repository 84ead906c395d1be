package classify

import (
	"testing"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/infra/logger"
)

func TestRouteCoversEveryEventType(t *testing.T) {
	cases := map[model.EventType]Specialist{
		model.EventCrowdReport:      SpecialistDisruption,
		model.EventWeatherAlert:     SpecialistDisruption,
		model.EventTrafficAlert:     SpecialistDisruption,
		model.EventUserReport:       SpecialistDisruption,
		model.EventReplanRequest:    SpecialistPlanning,
		model.EventBudgetCheck:      SpecialistBudget,
		model.EventPreferenceChange: SpecialistPreference,
		model.EventMemoryCheckpoint: SpecialistMemory,
		model.EventExplainRequest:   SpecialistExplanation,
	}
	o := NewOrchestrator(logger.NopLogger{})
	obs := testObs(nil)
	for ev, want := range cases {
		if got := o.Route(model.Event{Type: ev}, obs); got != want {
			t.Errorf("event %s routed to %s, want %s", ev, got, want)
		}
	}
}

func TestRouteNoEventFallsBackToThresholds(t *testing.T) {
	o := NewOrchestrator(logger.NopLogger{})

	calm := testObs(nil)
	if got := o.Route(model.Event{}, calm); got != SpecialistNone {
		t.Fatalf("calm readings routed to %s", got)
	}

	crowded := testObs(func(obs *model.Observation) { obs.Readings.CrowdLevel = 0.9 })
	if got := o.Route(model.Event{}, crowded); got != SpecialistDisruption {
		t.Fatalf("tripped crowd routed to %s", got)
	}

	wet := testObs(func(obs *model.Observation) { obs.Readings.WeatherSeverity = 0.5 })
	if got := o.Route(model.Event{}, wet); got != SpecialistDisruption {
		t.Fatalf("moderate weather routed to %s", got)
	}
}

func TestClassifyNoneRouteIsNoAction(t *testing.T) {
	o := NewOrchestrator(logger.NopLogger{})
	act := o.Classify(model.Event{}, testObs(nil))
	if act.Kind != model.NoAction {
		t.Fatalf("expected NoAction, got %s", act.Kind)
	}
}

func TestClassifyDisruptionEventEscalates(t *testing.T) {
	o := NewOrchestrator(logger.NopLogger{})
	ev := model.Event{Type: model.EventCrowdReport, Stop: "Flea Market", Severity: 0.6}
	act := o.Classify(ev, testObs(nil))
	if act.Kind != model.RequestUserDecision {
		t.Fatalf("expected RequestUserDecision, got %s", act.Kind)
	}
	if act.Target != "Flea Market" {
		t.Errorf("unexpected target %s", act.Target)
	}
	if act.Annotations["severity_level"] != SeverityMedium {
		t.Errorf("unexpected level %v", act.Annotations["severity_level"])
	}
}
