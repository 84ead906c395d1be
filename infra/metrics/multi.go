package metrics

import coremetrics "github.com/voyagent/tripmend/core/metrics"

// MultiSink fans engine events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards decisions to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDecision(res []coremetrics.DecisionResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDecision(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRepair forwards repair outcomes when supported by the sink.
func (m *MultiSink) RecordRepair(outcomes []coremetrics.RepairOutcome) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RepairRecorder); ok {
			if err := rec.RecordRepair(outcomes); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReplan forwards reoptimization events when supported by the sink.
func (m *MultiSink) RecordReplan(r coremetrics.ReplanOutcome) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ReplanRecorder); ok {
			if err := rec.RecordReplan(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPendingCount forwards the pending gauge when supported by the sink.
func (m *MultiSink) RecordPendingCount(sessions int) error {
	for _, s := range m.Sinks {
		if pg, ok := s.(coremetrics.PendingGauge); ok {
			if err := pg.RecordPendingCount(sessions); err != nil {
				return err
			}
		}
	}
	return nil
}
