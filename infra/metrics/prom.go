package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	coremetrics "github.com/voyagent/tripmend/core/metrics"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	repairs   *prometheus.CounterVec
	replans   prometheus.Counter
	pending   prometheus.Gauge
}

// NewPromSink registers engine metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmend_decisions_total",
		Help: "Total number of classifier decisions",
	}, []string{"source", "kind", "blocked"})
	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmend_repairs_total",
		Help: "Repair cascade outcomes by winning strategy",
	}, []string{"strategy", "succeeded"})
	replans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tripmend_replans_total",
		Help: "Bounded day reoptimizations",
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tripmend_pending_decisions",
		Help: "Sessions currently blocked on an unresolved pending decision",
	})

	if err := registerCounterVec(reg, &decisions); err != nil {
		return nil, err
	}
	if err := registerCounterVec(reg, &repairs); err != nil {
		return nil, err
	}
	if err := reg.Register(replans); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replans = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(pending); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			pending = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{decisions: decisions, repairs: repairs, replans: replans, pending: pending}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	if err := reg.Register(*vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*vec = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

// RecordDecision increments the counter for each decision.
func (s *PromSink) RecordDecision(res []coremetrics.DecisionResult) error {
	for _, r := range res {
		s.decisions.WithLabelValues(r.Source, r.Kind, strconv.FormatBool(r.Blocked)).Inc()
	}
	return nil
}

// RecordRepair increments the repair counter per outcome.
func (s *PromSink) RecordRepair(outcomes []coremetrics.RepairOutcome) error {
	for _, o := range outcomes {
		s.repairs.WithLabelValues(o.Strategy, strconv.FormatBool(o.Succeeded)).Inc()
	}
	return nil
}

// RecordReplan counts one bounded reoptimization.
func (s *PromSink) RecordReplan(coremetrics.ReplanOutcome) error {
	s.replans.Inc()
	return nil
}

// RecordPendingCount sets the pending-decision gauge.
func (s *PromSink) RecordPendingCount(sessions int) error {
	s.pending.Set(float64(sessions))
	return nil
}
