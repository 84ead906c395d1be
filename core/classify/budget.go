package classify

import (
	"fmt"

	"github.com/voyagent/tripmend/core/logger"
	"github.com/voyagent/tripmend/core/model"
)

// Budget statuses and actions.
const (
	BudgetOK            = "OK"
	BudgetOverrun       = "OVERRUN"
	BudgetUnderutilized = "UNDERUTILIZED"

	BudgetNoChange  = "NO_CHANGE"
	BudgetRebalance = "REBALANCE"
	BudgetCheaper   = "SUGGEST_CHEAPER"

	// OverrunSpendRatio flags the day budget as overrun.
	OverrunSpendRatio = 0.90
	// UnderutilizedElapsed and UnderutilizedSpend together flag an
	// underused budget late in the day.
	UnderutilizedElapsed = 0.60
	UnderutilizedSpend   = 0.40
)

// BudgetSpecialist grades day-budget usage from spend and elapsed-time
// ratios. It only classifies; rebalancing arithmetic lives elsewhere.
type BudgetSpecialist struct {
	log logger.Logger
}

// Classify maps the spend picture onto the closed status vocabulary.
func (b *BudgetSpecialist) Classify(ev model.Event, obs model.Observation) model.Action {
	spend := obs.SpendRatio()
	elapsed := obs.DayElapsedRatio()

	status, action := BudgetOK, BudgetNoChange
	switch {
	case spend >= OverrunSpendRatio:
		status, action = BudgetOverrun, BudgetCheaper
	case elapsed >= UnderutilizedElapsed && spend <= UnderutilizedSpend:
		status, action = BudgetUnderutilized, BudgetRebalance
	}
	b.log.Debugw("budget graded", map[string]any{
		"spend_ratio": spend, "elapsed_ratio": elapsed, "status": status, "action": action,
	})

	return model.Action{
		Kind:      model.NoAction,
		Reasoning: fmt.Sprintf("budget %s: %.0f%% spent with %.0f%% of the day elapsed", status, spend*100, elapsed*100),
		Annotations: mergeAnnotations(ev.Metadata, map[string]any{
			"status":        status,
			"budget_action": action,
			"spend_ratio":   spend,
			"elapsed_ratio": elapsed,
		}),
	}
}
