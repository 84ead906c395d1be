// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - DecisionEvent: classifier produced an action
//   - GuardrailEvent: action blocked before execution
//   - RepairEvent: repair cascade outcome
//   - ReplanEvent: bounded day reoptimization
//   - PendingEvent: decision queued for or resolved by the user
package events
