package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// stateDigest is the canonical projection of TripState that gets hashed.
// Field order is fixed and map keys are sorted by the JSON encoder, so two
// equal states always produce the same hash.
type stateDigest struct {
	Now         time.Time          `json:"now"`
	Lat         float64            `json:"lat"`
	Lon         float64            `json:"lon"`
	Plan        model.DayPlan      `json:"plan"`
	Visited     []string           `json:"visited"`
	Skipped     []string           `json:"skipped"`
	Deferred    []string           `json:"deferred"`
	Spent       map[string]float64 `json:"spent"`
	DailyBudget float64            `json:"daily_budget"`
	Disruptions int                `json:"disruptions"`
	ReplanCount int                `json:"replan_count"`
	Thresholds  model.Thresholds   `json:"thresholds"`
}

// StateHash returns the sha256 hex digest of the canonical state projection.
// It is recorded before and after every mutation so an audit reader can tell
// exactly which records changed state and chain them together.
func StateHash(s *model.TripState) string {
	d := stateDigest{
		Now:         s.Now,
		Lat:         s.Lat,
		Lon:         s.Lon,
		Plan:        s.Plan,
		Visited:     s.Visited,
		Skipped:     s.Skipped,
		Deferred:    s.Deferred,
		Spent:       s.BudgetSpent,
		DailyBudget: s.DailyBudget,
		Disruptions: len(s.Disruptions),
		ReplanCount: s.ReplanCount,
		Thresholds:  s.Thresholds,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		// Marshal of a plain struct of scalars and slices cannot fail.
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
