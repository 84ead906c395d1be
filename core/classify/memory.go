package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// Memory types of the memory specialist.
const (
	MemoryShortTerm = "short_term"
	MemoryLongTerm  = "long_term"

	// LongTermDisruptionCount promotes the day summary to long-term memory.
	LongTermDisruptionCount = 3
)

// MemorySpecialist decides whether today's disruption history is worth
// storing and at which retention. It never writes memory itself; the
// decision is carried as structured annotations for the memory sink.
type MemorySpecialist struct {
	log logger.Logger
}

// Classify maps the disruption count onto a store decision.
func (m *MemorySpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	store := obs.DisruptionCount > 0
	memType := ""
	switch {
	case obs.DisruptionCount >= LongTermDisruptionCount:
		memType = MemoryLongTerm
	case obs.DisruptionCount > 0:
		memType = MemoryShortTerm
	}
	m.log.Debugf("memory decision store=%t type=%q after %d disruptions", store, memType, obs.DisruptionCount)

	ann := mergeAnnotations(ev.Metadata, map[string]any{
		"store":       store,
		"memory_type": nilIfEmpty(memType),
	})
	return model.Action{
		Kind:        model.NoAction,
		Reasoning:   fmt.Sprintf("%d disruptions today, store=%t", obs.DisruptionCount, store),
		Annotations: ann,
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
