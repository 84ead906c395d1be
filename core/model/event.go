package model

// EventType enumerates the explicit session events routed by the
// orchestrator. The switch over this enum is exhaustive by construction:
// adding a type without a route is caught by the orchestrator tests.
type EventType int

const (
	EventNone EventType = iota
	EventCrowdReport
	EventWeatherAlert
	EventTrafficAlert
	EventUserReport
	EventPreferenceChange
	EventBudgetCheck
	EventMemoryCheckpoint
	EventExplainRequest
	EventReplanRequest
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventCrowdReport:
		return "crowd_report"
	case EventWeatherAlert:
		return "weather_alert"
	case EventTrafficAlert:
		return "traffic_alert"
	case EventUserReport:
		return "user_report"
	case EventPreferenceChange:
		return "preference_change"
	case EventBudgetCheck:
		return "budget_check"
	case EventMemoryCheckpoint:
		return "memory_checkpoint"
	case EventExplainRequest:
		return "explain_request"
	case EventReplanRequest:
		return "replan_request"
	default:
		return "unknown"
	}
}

// ParseEventType maps a wire name to its EventType. Unknown names map to
// EventNone so callers can treat them as non-actionable.
func ParseEventType(s string) EventType {
	switch s {
	case "crowd_report":
		return EventCrowdReport
	case "weather_alert":
		return EventWeatherAlert
	case "traffic_alert":
		return EventTrafficAlert
	case "user_report":
		return EventUserReport
	case "preference_change":
		return EventPreferenceChange
	case "budget_check":
		return EventBudgetCheck
	case "memory_checkpoint":
		return EventMemoryCheckpoint
	case "explain_request":
		return EventExplainRequest
	case "replan_request":
		return EventReplanRequest
	default:
		return EventNone
	}
}

// Event is an explicit session signal with free-form metadata. Metadata is
// carried into Action.Annotations untouched; decisions only read the typed
// fields extracted by the specialists.
type Event struct {
	Type     EventType      `json:"type"`
	Stop     string         `json:"stop,omitempty"`
	Severity float64        `json:"severity,omitempty"`
	Text     string         `json:"text,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
