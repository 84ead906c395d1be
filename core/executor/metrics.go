package executor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	actionsExecuted  *prometheus.CounterVec
	guardrailBlocks  prometheus.Counter
	repairStrategies *prometheus.CounterVec
	replansExecuted  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, prometheus.Counter) {
	act := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_actions_total",
			Help: "Number of actions processed by the execution dispatcher",
		},
		[]string{"kind"},
	)
	blk := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guardrail_blocks_total",
			Help: "Number of actions rejected by the guardrail validator",
		},
	)
	strat := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repair_strategy_total",
			Help: "Number of successful repairs per cascade strategy",
		},
		[]string{"strategy"},
	)
	rep := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replans_executed_total",
			Help: "Number of bounded day reoptimizations applied",
		},
	)
	return act, blk, strat, rep
}

func init() {
	actionsExecuted, guardrailBlocks, repairStrategies, replansExecuted = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers executor metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(actionsExecuted, guardrailBlocks, repairStrategies, replansExecuted)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	actionsExecuted, guardrailBlocks, repairStrategies, replansExecuted = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
