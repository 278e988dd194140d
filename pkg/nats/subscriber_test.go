package nats

import (
	"testing"
	"time"

	"flcs-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	event, err := decodeEvent("flcs.feedback.submitted", []byte(`{"flow":"feedback","name":"Asha","submitted_at":"2025-03-14T09:30:00Z"}`))

	require.NoError(t, err)
	assert.Equal(t, events.TypeFeedbackSubmitted, event.EventType())
	assert.Equal(t, "Asha", events.StringField(event, "name"))
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), event.Timestamp().UTC())
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := decodeEvent("flcs.x", []byte("not json"))
	assert.Error(t, err)
}

func TestSubjectMatchesStreamFilter(t *testing.T) {
	assert.Equal(t, "flcs.appointment.submitted", Subject(events.TypeAppointmentSubmitted))
}
