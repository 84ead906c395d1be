package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/voyagent/tripmend/core/metrics"
)

func newSink(t *testing.T) (*PromSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return sink, reg
}

func TestPromSinkRecordsAllSeries(t *testing.T) {
	sink, _ := newSink(t)

	if err := sink.RecordDecision([]coremetrics.DecisionResult{
		{SessionID: "s1", Source: "engine", Kind: "defer_poi", Time: time.Now()},
		{SessionID: "s1", Source: "engine", Kind: "defer_poi", Blocked: true, Time: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(sink.decisions.WithLabelValues("engine", "defer_poi", "false")); got != 1 {
		t.Errorf("decisions counter = %v", got)
	}
	if got := testutil.ToFloat64(sink.decisions.WithLabelValues("engine", "defer_poi", "true")); got != 1 {
		t.Errorf("blocked counter = %v", got)
	}

	if err := sink.RecordRepair([]coremetrics.RepairOutcome{
		{SessionID: "s1", Stop: "Old Town Walk", Strategy: "shift_later", Succeeded: true},
	}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(sink.repairs.WithLabelValues("shift_later", "true")); got != 1 {
		t.Errorf("repairs counter = %v", got)
	}

	if err := sink.RecordReplan(coremetrics.ReplanOutcome{SessionID: "s1", Stops: 4}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(sink.replans); got != 1 {
		t.Errorf("replans counter = %v", got)
	}

	if err := sink.RecordPendingCount(3); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(sink.pending); got != 3 {
		t.Errorf("pending gauge = %v", got)
	}
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("second sink on the same registry: %v", err)
	}
	if err := a.RecordPendingCount(1); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordPendingCount(2); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(a.pending); got != 2 {
		t.Errorf("sinks do not share the gauge: %v", got)
	}
}
