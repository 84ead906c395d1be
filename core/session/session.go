// Package session owns one TripState per trip and exposes the stable outward
// surface: advance, check-conditions, resolve, event and summary. Each call
// runs one full decision cycle to completion under the session lock, so
// signals are processed strictly in arrival order and TripState keeps a
// single writer.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyagent/tripmend/core/classify"
	"github.com/voyagent/tripmend/core/events"
	"github.com/voyagent/tripmend/core/executor"
	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/memory"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/internal/eventbus"
)

var (
	// ErrNoPending is returned by Resolve when the gate is open.
	ErrNoPending = errors.New("no pending decision")
	// ErrBadChoice is returned by Resolve on an out-of-range action index.
	ErrBadChoice = errors.New("action index out of range")
)

// Deps bundles the collaborators a Session needs. Dispatcher, Engine and
// Orchestrator are required; Memory, Bus, Pending and Log may be nil. A zero
// Thresholds value falls back to the model defaults.
type Deps struct {
	Dispatcher   *executor.Dispatcher
	Engine       *classify.DecisionEngine
	Orchestrator *classify.Orchestrator
	Memory       memory.Sink
	Bus          *eventbus.Bus
	// Pending carries the pending-decision lifecycle to consumers that only
	// care about that one event shape, such as the MQTT feed.
	Pending    *eventbus.TypedBus[events.PendingEvent]
	Log        logger.Logger
	Thresholds model.Thresholds
}

// Outcome is what one surface call produced: the classified action, a newly
// opened (or still blocking) pending decision, and the updated plan when
// state was edited. At most one of Pending and Plan is set.
type Outcome struct {
	Action  model.Action
	Pending *PendingDecision
	Plan    *model.DayPlan
	Blocked string
}

// Session is one live trip. All methods are safe for concurrent use; they
// serialize on the internal mutex, which is what gives the strict
// arrival-order processing guarantee.
type Session struct {
	id    string
	state *model.TripState
	pool  []model.Candidate
	deps  Deps

	mu      sync.Mutex
	pending *PendingDecision
}

// New creates a session over a freshly generated day plan.
func New(id string, plan model.DayPlan, dayStart time.Time, dailyBudget float64, pool []model.Candidate, deps Deps) *Session {
	if deps.Memory == nil {
		deps.Memory = memory.NopSink{}
	}
	state := model.NewTripState(plan, dayStart, dailyBudget)
	if deps.Thresholds != (model.Thresholds{}) {
		state.Thresholds = deps.Thresholds
	}
	return &Session{
		id:    id,
		state: state,
		pool:  append([]model.Candidate(nil), pool...),
		deps:  deps,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// HasPending reports whether the decision gate is closed.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Advance marks arrival at a stop: clock, position, budget and the
// visited set move forward through the TripState mutation API.
func (s *Session) Advance(stop string, arrival time.Time, lat, lon, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := "misc"
	if i := s.state.Plan.Find(stop); i >= 0 {
		category = s.state.Plan.Stops[i].Activity.String()
	}
	s.state.AdvanceTo(arrival, lat, lon)
	if err := s.state.MarkVisited(stop, category, cost); err != nil {
		return fmt.Errorf("advance to %s: %w", stop, err)
	}
	return nil
}

// CheckConditions runs one decision cycle over live readings. While a
// pending decision is unresolved it is returned unchanged and no automatic
// replanning happens.
func (s *Session) CheckConditions(ctx context.Context, readings model.ConditionReadings, nextStop string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return Outcome{Pending: s.pending}, nil
	}

	obs := model.Snapshot(s.state, readings, s.state.Thresholds, s.findStop(nextStop))
	act := s.deps.Engine.Decide(obs)
	return s.execute(ctx, "check_conditions", act, readings)
}

// Event routes an explicit signal through the orchestrator. Mutating
// specialists are gated like CheckConditions; read-only ones (budget,
// memory, explanation) pass through even while a decision is pending.
func (s *Session) Event(ctx context.Context, ev model.Event) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings := readingsFromEvent(ev)
	obs := model.Snapshot(s.state, readings, s.state.Thresholds, s.findStop(ev.Stop))

	if s.pending != nil {
		switch s.deps.Orchestrator.Route(ev, obs) {
		case classify.SpecialistDisruption, classify.SpecialistPlanning, classify.SpecialistPreference:
			return Outcome{Pending: s.pending}, nil
		}
	}

	act := s.deps.Orchestrator.Classify(ev, obs)
	return s.execute(ctx, ev.Type.String(), act, readings)
}

// Resolve answers the pending decision. APPROVE executes the recommended
// edit, MODIFY executes the chosen alternative, REJECT just reopens the
// gate. Every resolution is recorded in the disruption memory.
func (s *Session) Resolve(ctx context.Context, resolution Resolution, actionIndex int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd := s.pending
	if pd == nil {
		return Outcome{}, ErrNoPending
	}

	var act model.Action
	switch resolution {
	case ResolutionReject:
		s.closePending(pd, resolution, "none")
		return Outcome{Action: model.Action{Kind: model.NoAction, Reasoning: "user rejected"}}, nil
	case ResolutionApprove:
		act = pd.approvedAction()
	case ResolutionModify:
		if actionIndex < 0 || actionIndex >= len(pd.Alternatives) {
			return Outcome{}, fmt.Errorf("%w: %d of %d", ErrBadChoice, actionIndex, len(pd.Alternatives))
		}
		act = pd.modifiedAction(pd.Alternatives[actionIndex])
	default:
		return Outcome{}, fmt.Errorf("unknown resolution %d", resolution)
	}

	pool := s.pool
	if resolution == ResolutionModify {
		pool = []model.Candidate{pd.Alternatives[actionIndex]}
	}
	res, err := s.deps.Dispatcher.Dispatch(ctx, s.id, "resolve", act, s.state, pool, pd.readings)
	if err != nil {
		s.closePending(pd, resolution, "failed")
		return Outcome{}, err
	}

	taken := act.Kind.String()
	if res.Repair != nil {
		taken = res.Repair.Strategy
	}
	s.closePending(pd, resolution, taken)

	out := Outcome{Action: res.Action, Blocked: res.Blocked}
	if res.Executed {
		plan := s.state.CurrentPlan()
		out.Plan = &plan
	}
	return out, nil
}

// Summary returns the diagnostic view of the session.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		SessionID:   s.id,
		Now:         s.state.Clock(),
		Plan:        s.state.CurrentPlan(),
		Visited:     s.state.VisitedStops(),
		Skipped:     s.state.SkippedStops(),
		Deferred:    s.state.DeferredStops(),
		Hunger:      s.state.HungerLevel(),
		Fatigue:     s.state.FatigueLevel(),
		Spent:       s.state.SpentTotal(),
		DailyBudget: s.state.Budget(),
		Thresholds:  s.state.Thresholds,
		Disruptions: s.state.DisruptionsToday(),
		ReplanCount: s.state.ReplanCount,
		Pending:     s.pending,
	}
}

// Summary is the JSON diagnostic surface of one session.
type Summary struct {
	SessionID   string                   `json:"session_id"`
	Now         time.Time                `json:"now"`
	Plan        model.DayPlan            `json:"plan"`
	Visited     []string                 `json:"visited"`
	Skipped     []string                 `json:"skipped"`
	Deferred    []string                 `json:"deferred"`
	Hunger      float64                  `json:"hunger"`
	Fatigue     float64                  `json:"fatigue"`
	Spent       float64                  `json:"spent"`
	DailyBudget float64                  `json:"daily_budget"`
	Thresholds  model.Thresholds         `json:"thresholds"`
	Disruptions []model.DisruptionRecord `json:"disruptions"`
	ReplanCount int                      `json:"replan_count"`
	Pending     *PendingDecision         `json:"pending,omitempty"`
}

// execute routes one classified action through the dispatcher and opens the
// pending gate when the action asks the user.
func (s *Session) execute(ctx context.Context, eventType string, act model.Action, readings model.ConditionReadings) (Outcome, error) {
	res, err := s.deps.Dispatcher.Dispatch(ctx, s.id, eventType, act, s.state, s.pool, readings)
	if err != nil {
		return Outcome{Action: act}, err
	}

	out := Outcome{Action: res.Action, Blocked: res.Blocked}
	if act.Kind == model.RequestUserDecision && res.Blocked == "" {
		pd := &PendingDecision{
			ID:           uuid.New().String(),
			Stop:         act.Target,
			Cause:        dominantCause(readings),
			Reason:       act.Reasoning,
			Level:        annotationString(act, "severity_level"),
			Recommended:  annotationString(act, "recommended"),
			Alternatives: res.Alternatives,
			CreatedAt:    s.state.Clock(),
			action:       act,
			readings:     readings,
		}
		s.pending = pd
		out.Pending = pd
		s.publishPending(events.PendingEvent{SessionID: s.id, Stop: pd.Stop, Time: pd.CreatedAt})
		return out, nil
	}
	if res.Executed && planEditing(act.Kind) {
		plan := s.state.CurrentPlan()
		out.Plan = &plan
	}
	return out, nil
}

// closePending clears the gate and records the resolution in the disruption
// memory sink.
func (s *Session) closePending(pd *PendingDecision, resolution Resolution, taken string) {
	s.pending = nil
	entry := memory.Entry{
		SessionID:    s.id,
		TriggerTime:  pd.CreatedAt,
		Level:        pd.Level,
		ActionTaken:  taken,
		UserResponse: resolution.String(),
	}
	if err := s.deps.Memory.Record(entry); err != nil && s.deps.Log != nil {
		s.deps.Log.Errorf("memory record: %v", err)
	}
	s.publishPending(events.PendingEvent{
		SessionID:  s.id,
		Stop:       pd.Stop,
		Resolved:   true,
		Resolution: resolution.String(),
		Time:       s.state.Clock(),
	})
}

func (s *Session) findStop(name string) *model.RoutePoint {
	if name == "" {
		return nil
	}
	if i := s.state.Plan.Find(name); i >= 0 {
		st := s.state.Plan.Stops[i]
		return &st
	}
	return nil
}

func (s *Session) publish(e eventbus.Event) {
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(e)
	}
}

// publishPending mirrors pending-decision events onto the typed bus so MQTT
// consumers see resolutions made through any surface, not just their own.
func (s *Session) publishPending(e events.PendingEvent) {
	s.publish(e)
	if s.deps.Pending != nil {
		s.deps.Pending.Publish(e)
	}
}

func planEditing(kind model.ActionKind) bool {
	switch kind {
	case model.DeferPoi, model.ReplacePoi, model.ReoptimizeDay:
		return true
	default:
		return false
	}
}

// readingsFromEvent projects an explicit event onto condition readings so
// the snapshot carries the reported severity.
func readingsFromEvent(ev model.Event) model.ConditionReadings {
	var r model.ConditionReadings
	switch ev.Type {
	case model.EventCrowdReport:
		r.CrowdLevel = ev.Severity
	case model.EventWeatherAlert:
		r.WeatherSeverity = ev.Severity
	case model.EventTrafficAlert:
		r.TrafficLevel = ev.Severity
	}
	return r
}

func dominantCause(r model.ConditionReadings) model.DisruptionCause {
	cause, max := model.CauseUser, 0.0
	if r.CrowdLevel > max {
		cause, max = model.CauseCrowd, r.CrowdLevel
	}
	if r.WeatherSeverity > max {
		cause, max = model.CauseWeather, r.WeatherSeverity
	}
	if r.TrafficLevel > max {
		cause = model.CauseTraffic
	}
	return cause
}

func annotationString(act model.Action, key string) string {
	if v, ok := act.Annotations[key].(string); ok {
		return v
	}
	return ""
}
