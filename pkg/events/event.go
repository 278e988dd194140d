package events

import "time"

const (
	TypeAppointmentSubmitted = "appointment.submitted"
	TypeFeedbackSubmitted    = "feedback.submitted"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "appointment.submitted").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSubmissionEvent wraps a completed flow's fields. The flow name becomes
// the event type prefix.
func NewSubmissionEvent(flow string, form map[string]string, at time.Time) BaseEvent {
	data := make(map[string]interface{}, len(form)+2)
	for k, v := range form {
		data[k] = v
	}
	data["flow"] = flow
	data["submitted_at"] = at.UTC().Format(time.RFC3339)
	return BaseEvent{
		Type:       flow + ".submitted",
		Data:       data,
		OccurredAt: at,
	}
}

// StringField reads a string value from an event payload.
func StringField(e Event, key string) string {
	if v, ok := e.Payload()[key].(string); ok {
		return v
	}
	return ""
}
