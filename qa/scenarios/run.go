package scenarios

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/voyagent/tripmend/core/audit"
	"github.com/voyagent/tripmend/core/classify"
	"github.com/voyagent/tripmend/core/executor"
	"github.com/voyagent/tripmend/core/memory"
	coremetrics "github.com/voyagent/tripmend/core/metrics"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/repair"
	"github.com/voyagent/tripmend/core/replan"
	"github.com/voyagent/tripmend/core/session"
	"github.com/voyagent/tripmend/core/travel"
	"github.com/voyagent/tripmend/infra/logger"
	"github.com/voyagent/tripmend/infra/metrics"
	"github.com/voyagent/tripmend/internal/eventbus"
)

// Result is what one scenario replay produced: the final session summary and
// any expectation mismatches.
type Result struct {
	Summary  session.Summary   `json:"summary"`
	Outcomes []session.Outcome `json:"-"`
	Failures []string          `json:"failures,omitempty"`
}

// Run replays the scenario against a freshly wired session and checks the
// expectations. A non-nil error means the replay itself broke (bad plan,
// unknown stop, resolve without pending); expectation mismatches land in
// Result.Failures instead.
func Run(sc *Scenario) (*Result, error) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		return nil, fmt.Errorf("prom sink: %w", err)
	}
	executor.ResetMetrics(reg)

	log := logger.NopLogger{}
	bus := eventbus.New()
	eng := repair.NewEngine(repair.Config{}, travel.HaversineEstimator{}, log)
	rp := replan.NewGreedyReplanner(travel.HaversineEstimator{}, log)
	disp := executor.NewDispatcher(eng, rp, audit.NopStore{}, sink, bus, log)

	pool := make([]model.Candidate, len(sc.Pool))
	for i, c := range sc.Pool {
		pool[i] = c.ToModel()
	}

	mgr := session.NewManager(session.Deps{
		Dispatcher:   disp,
		Engine:       classify.NewDecisionEngine(log),
		Orchestrator: classify.NewOrchestrator(log),
		Memory:       memory.NewInMemorySink(),
		Bus:          bus,
		Log:          log,
	}, sink)

	s, err := mgr.Create(sc.Plan.ToModel(), sc.DayStart, sc.DailyBudget, pool)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctx := context.Background()
	res := &Result{}

	for i, step := range sc.Steps {
		switch {
		case step.Advance != nil:
			a := step.Advance
			if err := s.Advance(a.Stop, a.Arrival, a.Lat, a.Lon, a.Cost); err != nil {
				return nil, fmt.Errorf("step %d advance %s: %w", i, a.Stop, err)
			}
		case step.Check != nil:
			out, err := s.CheckConditions(ctx, step.Check.Readings(), step.Check.NextStop)
			if err != nil {
				return nil, fmt.Errorf("step %d check: %w", i, err)
			}
			res.Outcomes = append(res.Outcomes, out)
		case step.Event != nil:
			out, err := s.Event(ctx, step.Event.ToModel())
			if err != nil {
				return nil, fmt.Errorf("step %d event %s: %w", i, step.Event.Type, err)
			}
			res.Outcomes = append(res.Outcomes, out)
		case step.Resolve != nil:
			r, err := session.ParseResolution(step.Resolve.Resolution)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			out, err := s.Resolve(ctx, r, step.Resolve.ActionIndex)
			if err != nil {
				return nil, fmt.Errorf("step %d resolve: %w", i, err)
			}
			res.Outcomes = append(res.Outcomes, out)
		default:
			return nil, fmt.Errorf("step %d: no action set", i)
		}
	}

	res.Summary = s.Summary()
	res.Failures = checkExpected(sc, res.Summary)
	return res, nil
}

// RunScenario replays the scenario under the test harness and reports
// expectation mismatches as test failures.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	res, err := Run(sc)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	for _, f := range res.Failures {
		t.Errorf("scenario %s: %s", sc.Name, f)
	}
}

func checkExpected(sc *Scenario, sum session.Summary) []string {
	var failures []string
	exp := sc.Expected

	if got := sum.Pending != nil; got != exp.Pending {
		failures = append(failures, fmt.Sprintf("expected pending=%v, got %v", exp.Pending, got))
	}
	for _, name := range exp.Visited {
		if !contains(sum.Visited, name) {
			failures = append(failures, fmt.Sprintf("expected %s visited, got %v", name, sum.Visited))
		}
	}
	for _, name := range exp.Deferred {
		if !contains(sum.Deferred, name) {
			failures = append(failures, fmt.Sprintf("expected %s deferred, got %v", name, sum.Deferred))
		}
	}
	for _, name := range exp.Skipped {
		if !contains(sum.Skipped, name) {
			failures = append(failures, fmt.Sprintf("expected %s skipped, got %v", name, sum.Skipped))
		}
	}
	for _, name := range exp.PlanContains {
		if sum.Plan.Find(name) < 0 {
			failures = append(failures, fmt.Sprintf("expected %s in plan, got %v", name, stopNames(sum.Plan)))
		}
	}
	for _, name := range exp.PlanMissing {
		if sum.Plan.Find(name) >= 0 {
			failures = append(failures, fmt.Sprintf("expected %s out of plan, got %v", name, stopNames(sum.Plan)))
		}
	}
	if exp.Replans != sum.ReplanCount {
		failures = append(failures, fmt.Sprintf("expected %d replans, got %d", exp.Replans, sum.ReplanCount))
	}
	if exp.Disruptions != len(sum.Disruptions) {
		failures = append(failures, fmt.Sprintf("expected %d disruptions, got %d", exp.Disruptions, len(sum.Disruptions)))
	}
	return failures
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func stopNames(plan model.DayPlan) []string {
	names := make([]string, len(plan.Stops))
	for i, s := range plan.Stops {
		names[i] = s.Name
	}
	return names
}
