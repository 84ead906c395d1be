// Package repair applies minimal, invariant-preserving edits to the active
// day plan after a disruption. Given one disrupted stop it tries an ordered
// cascade of edits, validating every candidate against state invariants,
// meal-window rules and timing continuity before accepting it. The final
// strategy, deferring the stop to the next day, cannot fail by construction.
package repair
