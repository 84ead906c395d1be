// Package executor is the single mutation gateway of the engine. Every
// Action, whatever classifier produced it, passes through Dispatch: the
// guardrail check runs first, the state hash is taken before and after, and
// exactly one audit record is appended per call. No other component writes
// TripState.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voyagent/tripmend/core/audit"
	"github.com/voyagent/tripmend/core/events"
	"github.com/voyagent/tripmend/core/guardrail"
	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/metrics"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/repair"
	"github.com/voyagent/tripmend/core/replan"
	"github.com/voyagent/tripmend/internal/eventbus"
)

// defaultMaxAlternatives caps the ranked candidate list returned on a
// pending user decision.
const defaultMaxAlternatives = 3

// Result reports what one Dispatch call did. Executed and Blocked are
// mutually exclusive; a read-only outcome (no action, pending decision)
// leaves both the plan and the hashes untouched.
type Result struct {
	Executed     bool
	Blocked      string
	Action       model.Action
	Repair       *model.RepairResult
	Alternatives []model.Candidate
	BeforeHash   string
	AfterHash    string
}

// Dispatcher routes validated actions to the repair engine, the replanner or
// the session thresholds, applies the resulting mutation and records it.
type Dispatcher struct {
	repair    *repair.Engine
	replanner replan.Replanner
	store     audit.Store
	sink      metrics.MetricsSink
	bus       *eventbus.Bus
	log       logger.Logger

	maxAlternatives int
}

// NewDispatcher creates the execution dispatcher. The bus may be nil when no
// observer cares about execution events.
func NewDispatcher(rep *repair.Engine, rp replan.Replanner, store audit.Store, sink metrics.MetricsSink, bus *eventbus.Bus, log logger.Logger) *Dispatcher {
	if store == nil {
		store = audit.NopStore{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Dispatcher{
		repair:          rep,
		replanner:       rp,
		store:           store,
		sink:            sink,
		bus:             bus,
		log:             log,
		maxAlternatives: defaultMaxAlternatives,
	}
}

// Dispatch validates and executes one action against the session state.
// state is the only value mutated; the returned Result mirrors the audit
// record that was appended.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, eventType string, act model.Action, state *model.TripState, pool []model.Candidate, readings model.ConditionReadings) (Result, error) {
	res := Result{Action: act, BeforeHash: StateHash(state)}
	d.publish(events.DecisionEvent{SessionID: sessionID, Action: act, Source: eventType})

	if violation := guardrail.Validate(act); violation != "" {
		res.Blocked = violation
		res.AfterHash = res.BeforeHash
		guardrailBlocks.Inc()
		d.publish(events.GuardrailEvent{SessionID: sessionID, Action: act, Violation: violation})
		d.log.Warnf("guardrail blocked %s on %q: %s", act.Kind, act.Target, violation)
		return res, d.record(ctx, sessionID, eventType, state, res)
	}

	var err error
	switch act.Kind {
	case model.NoAction:
		res.Executed = true
	case model.RequestUserDecision:
		res.Alternatives = d.alternatives(act, state, pool)
	case model.DeferPoi, model.ReplacePoi:
		err = d.runRepair(sessionID, act, state, pool, readings, &res)
	case model.RelaxConstraint:
		d.relax(act, state, &res)
	case model.ReoptimizeDay:
		err = d.runReplan(sessionID, act, state, pool, &res)
	default:
		err = fmt.Errorf("unknown action kind %d", act.Kind)
	}
	if err != nil {
		return res, err
	}

	res.AfterHash = StateHash(state)
	actionsExecuted.WithLabelValues(act.Kind.String()).Inc()
	d.log.Infow("action applied", map[string]any{
		"session": sessionID,
		"kind":    act.Kind.String(),
		"target":  act.Target,
		"before":  res.BeforeHash[:8],
		"after":   res.AfterHash[:8],
	})
	return res, d.record(ctx, sessionID, eventType, state, res)
}

// alternatives builds the read-only ranked candidate list for a pending
// user decision. Nothing is mutated.
func (d *Dispatcher) alternatives(act model.Action, state *model.TripState, pool []model.Candidate) []model.Candidate {
	cause := model.CauseUser
	if c, ok := act.Annotations["cause"].(model.DisruptionCause); ok {
		cause = c
	}
	return d.repair.Alternatives(state.CurrentPlan(), pool, act.Target, cause, "", state, d.maxAlternatives)
}

// runRepair hands a single-stop fix to the cascade and applies the winning
// plan. A scheduler logic error aborts without mutating state.
func (d *Dispatcher) runRepair(sessionID string, act model.Action, state *model.TripState, pool []model.Candidate, readings model.ConditionReadings, res *Result) error {
	req := repair.Request{
		DisruptedStop:  act.Target,
		Plan:           state.CurrentPlan(),
		Pool:           pool,
		CrowdLevel:     readings.CrowdLevel,
		CrowdThreshold: state.Thresholds.Crowd,
	}
	switch act.Kind {
	case model.DeferPoi:
		req.Cause = act.Defer.Cause
		req.AllowShift = act.Defer.AllowShift
		req.UserSkip = act.Defer.UserSkip
	case model.ReplacePoi:
		req.Cause = act.Replace.Cause
		req.AllowReplace = true
		req.CategoryHint = act.Replace.CategoryHint
	}

	outcome, err := d.repair.Repair(req, state)
	if err != nil {
		d.publish(events.RepairEvent{SessionID: sessionID, Stop: act.Target, Succeeded: false, Err: err})
		d.recordRepair(sessionID, act.Target, outcome.Strategy, false, state.Clock())
		return fmt.Errorf("repair %s: %w", act.Target, err)
	}

	state.SetPlan(outcome.Plan)
	if outcome.Plan.Find(act.Target) < 0 {
		// The winning edit dropped the stop from today.
		if req.UserSkip {
			state.SkipStop(act.Target)
		} else {
			state.DeferStop(act.Target)
		}
	}
	state.LogDisruption(model.DisruptionRecord{
		Time:     state.Clock(),
		Cause:    req.Cause,
		Severity: severityFor(req.Cause, readings),
		Stop:     act.Target,
		Action:   outcome.Strategy,
	})

	res.Executed = true
	res.Repair = &outcome
	repairStrategies.WithLabelValues(outcome.Strategy).Inc()
	d.publish(events.RepairEvent{SessionID: sessionID, Stop: act.Target, Strategy: outcome.Strategy, Succeeded: true})
	d.recordRepair(sessionID, act.Target, outcome.Strategy, true, state.Clock())
	return nil
}

// relax applies a constraint relaxation. Only the travel ceiling is
// relaxable; the old value is kept on the action for the audit trail.
func (d *Dispatcher) relax(act model.Action, state *model.TripState, res *Result) {
	if act.Relax == nil || act.Relax.Constraint != "travel_ceiling" {
		res.Blocked = fmt.Sprintf("constraint %q is not relaxable", relaxName(act))
		guardrailBlocks.Inc()
		return
	}
	old := state.RelaxTravelCeiling(act.Relax.New)
	act.Relax.Old = old
	res.Action = act
	res.Executed = true
	d.log.Infof("travel ceiling relaxed from %s to %s", old, act.Relax.New)
}

// runReplan delegates to the replanner and installs the new plan. An empty
// plan from a non-empty pool is the replanner breaking its contract.
func (d *Dispatcher) runReplan(sessionID string, act model.Action, state *model.TripState, pool []model.Candidate, res *Result) error {
	constraints := replan.Constraints{
		DayEnd:        state.DayEndTime(),
		TravelCeiling: state.Thresholds.TravelCeiling,
		Budget:        state.Budget() - state.SpentTotal(),
	}
	deprioritize := act.Reoptimize != nil && act.Reoptimize.DeprioritizeOutdoor

	plan, err := d.replanner.Replan(state, pool, constraints, deprioritize)
	if err != nil {
		return fmt.Errorf("replan: %w", err)
	}
	if len(plan.Stops) == 0 && len(pool) > 0 {
		return fmt.Errorf("%w: replanner produced empty plan from %d candidates", repair.ErrSchedulerLogic, len(pool))
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: replanner plan invalid: %v", repair.ErrSchedulerLogic, err)
	}

	state.SetPlan(plan)
	state.NoteReplan()
	res.Executed = true
	replansExecuted.Inc()
	d.publish(events.ReplanEvent{SessionID: sessionID, Stops: len(plan.Stops), Deprioritized: deprioritize})
	if rr, ok := d.sink.(metrics.ReplanRecorder); ok {
		if err := rr.RecordReplan(metrics.ReplanOutcome{SessionID: sessionID, Stops: len(plan.Stops), Deprioritized: deprioritize, Time: state.Clock()}); err != nil {
			d.log.Errorf("record replan: %v", err)
		}
	}
	return nil
}

// record appends the audit record and feeds the decision sink. Audit write
// failures are surfaced: an unrecorded mutation is worse than a failed one.
func (d *Dispatcher) record(ctx context.Context, sessionID, eventType string, state *model.TripState, res Result) error {
	rec := audit.Record{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Timestamp:  state.Clock(),
		EventType:  eventType,
		Action:     res.Action,
		BeforeHash: res.BeforeHash,
		AfterHash:  res.AfterHash,
		Executed:   res.Executed,
		Blocked:    res.Blocked,
	}
	if res.Repair != nil {
		rec.Strategy = res.Repair.Strategy
	}
	if err := d.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}

	dr := metrics.DecisionResult{
		SessionID: sessionID,
		Source:    eventType,
		Kind:      res.Action.Kind.String(),
		Target:    res.Action.Target,
		Blocked:   res.Blocked != "",
		Time:      state.Clock(),
	}
	if err := d.sink.RecordDecision([]metrics.DecisionResult{dr}); err != nil {
		d.log.Errorf("record decision: %v", err)
	}
	return nil
}

func (d *Dispatcher) recordRepair(sessionID, stop, strategy string, ok bool, at time.Time) {
	rr, is := d.sink.(metrics.RepairRecorder)
	if !is {
		return
	}
	out := metrics.RepairOutcome{SessionID: sessionID, Stop: stop, Strategy: strategy, Succeeded: ok, Time: at}
	if err := rr.RecordRepair([]metrics.RepairOutcome{out}); err != nil {
		d.log.Errorf("record repair: %v", err)
	}
}

func (d *Dispatcher) publish(e eventbus.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

func severityFor(cause model.DisruptionCause, readings model.ConditionReadings) float64 {
	switch cause {
	case model.CauseCrowd:
		return readings.CrowdLevel
	case model.CauseWeather:
		return readings.WeatherSeverity
	case model.CauseTraffic:
		return readings.TrafficLevel
	default:
		return 1
	}
}

func relaxName(act model.Action) string {
	if act.Relax == nil {
		return ""
	}
	return act.Relax.Constraint
}
