package dialogue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionJSONUsesStateTags(t *testing.T) {
	sess := Session{ID: "abc", State: StateAppointmentMobile, FormData: map[string]string{"name": "Asha"}}

	data, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","chat_state":"AWAITING_APPOINTMENT_MOBILE","form_data":{"name":"Asha"}}`, string(data))

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sess, decoded)
}

func TestIdleSessionOmitsState(t *testing.T) {
	data, err := json.Marshal(NewSession("abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(data))
}

func TestUnknownStateTagIsRejected(t *testing.T) {
	var decoded Session
	err := json.Unmarshal([]byte(`{"id":"abc","chat_state":"AWAITING_SHOE_SIZE"}`), &decoded)
	assert.Error(t, err)

	_, err = ParseState("AWAITING_SHOE_SIZE")
	assert.Error(t, err)
}

func TestEveryFlowStateIsOwnedByOneStep(t *testing.T) {
	seen := map[State]string{}
	for _, flow := range Flows {
		for _, step := range flow.Steps {
			_, dup := seen[step.State]
			assert.False(t, dup, "state %s used twice", step.State)
			seen[step.State] = flow.Name

			tag, err := step.State.MarshalText()
			require.NoError(t, err)
			parsed, err := ParseState(string(tag))
			require.NoError(t, err)
			assert.Equal(t, step.State, parsed)
		}
	}
	// every non-idle state belongs to a flow
	for s := range stateTags {
		if s.IsIdle() {
			continue
		}
		_, ok := seen[s]
		assert.True(t, ok, "state %s has no step", s)
	}
}

func TestValidMobile(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+919876543210", true},
		{"+12345678", true},
		{"+123456789012345", true},
		{"9876543210", false},
		{"+0123456789", false},
		{"+1234567", false},
		{"+1234567890123456", false},
		{"+91-9876543210", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidMobile(tt.in))
		})
	}
}
