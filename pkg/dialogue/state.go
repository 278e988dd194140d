package dialogue

import "fmt"

// State is the active flow step of a session. The zero value is idle.
type State uint8

const (
	StateIdle State = iota
	StateAppointmentName
	StateAppointmentEmail
	StateAppointmentMobile
	StateAppointmentReason
	StateFeedbackName
	StateFeedbackEmail
	StateFeedbackMobile
	StateFeedbackSuggestion
)

var stateTags = map[State]string{
	StateIdle:               "",
	StateAppointmentName:    "AWAITING_APPOINTMENT_NAME",
	StateAppointmentEmail:   "AWAITING_APPOINTMENT_EMAIL",
	StateAppointmentMobile:  "AWAITING_APPOINTMENT_MOBILE",
	StateAppointmentReason:  "AWAITING_APPOINTMENT_REASON",
	StateFeedbackName:       "AWAITING_FEEDBACK_NAME",
	StateFeedbackEmail:      "AWAITING_FEEDBACK_EMAIL",
	StateFeedbackMobile:     "AWAITING_FEEDBACK_MOBILE",
	StateFeedbackSuggestion: "AWAITING_FEEDBACK_SUGGESTION",
}

var tagStates = func() map[string]State {
	m := make(map[string]State, len(stateTags))
	for s, tag := range stateTags {
		m[tag] = s
	}
	return m
}()

func (s State) String() string {
	if tag, ok := stateTags[s]; ok {
		if tag == "" {
			return "IDLE"
		}
		return tag
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) IsIdle() bool {
	return s == StateIdle
}

// ParseState maps a stored tag back to its State. The empty tag is idle.
func ParseState(tag string) (State, error) {
	if s, ok := tagStates[tag]; ok {
		return s, nil
	}
	return StateIdle, fmt.Errorf("unknown chat state %q", tag)
}

func (s State) MarshalText() ([]byte, error) {
	tag, ok := stateTags[s]
	if !ok {
		return nil, fmt.Errorf("unknown chat state %d", uint8(s))
	}
	return []byte(tag), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
