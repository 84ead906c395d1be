// Package guardrail is the last line of defense before any state mutation.
// The check is a pure predicate over the Action value and is independent of
// which classifier produced it.
package guardrail

import (
	"fmt"

	"github.com/voyagent/tripmend/core/model"
)

// forbiddenKeys are annotation keys no Action may carry into execution,
// regardless of value. They correspond to mutations the engine must never
// perform on its own.
var forbiddenKeys = []string{
	"change_hotel",
	"change_city",
	"modify_budget",
	"delete_multiple",
	"override_hc",
}

// Validate returns the first violation as a non-empty string, or "" when the
// action passes. Checks are ordered: forbidden keys first, then the multi-
// target rule.
func Validate(act model.Action) string {
	for _, key := range forbiddenKeys {
		if _, ok := act.Annotations[key]; ok {
			return fmt.Sprintf("forbidden parameter %q", key)
		}
	}
	if len(act.Targets) > 1 {
		return fmt.Sprintf("action targets %d stops, at most one allowed", len(act.Targets))
	}
	return ""
}

// ForbiddenKeys returns a copy of the blocklist, for diagnostics.
func ForbiddenKeys() []string {
	return append([]string(nil), forbiddenKeys...)
}
