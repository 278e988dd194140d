package dialogue

import (
	"fmt"
	"regexp"
	"time"

	"flcs-chatbot-be/pkg/persistence"
)

// mobilePattern accepts a "+" followed by 8 to 15 digits, the first non-zero.
var mobilePattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

const invalidMobilePrompt = "That doesn't look like a valid mobile number. Please include your country code, for example +919876543210."

func ValidMobile(candidate string) bool {
	return mobilePattern.MatchString(candidate)
}

// Step collects one field. Prompt is what the user sees after the value is
// accepted, and asks for the next field.
type Step struct {
	State    State
	Field    string
	Validate func(string) bool
	Invalid  string
	Prompt   func(value string) string
}

// Flow is a fixed, ordered data-collection sequence ending in one record write.
type Flow struct {
	Name       string
	Trigger    string
	Intro      string
	Collection persistence.Collection
	Steps      []Step
	Success    string
	Failure    string
}

func staticPrompt(text string) func(string) string {
	return func(string) string { return text }
}

func thanksPrompt(value string) string {
	return fmt.Sprintf("Thanks, %s. What is your email address?", value)
}

var AppointmentFlow = Flow{
	Name:       "appointment",
	Trigger:    "book appointment",
	Intro:      "I can help you book an appointment. What is your full name?",
	Collection: persistence.CollectionAppointments,
	Steps: []Step{
		{State: StateAppointmentName, Field: "name", Prompt: thanksPrompt},
		{State: StateAppointmentEmail, Field: "email", Prompt: staticPrompt("Great. What is your mobile number?")},
		{
			State:    StateAppointmentMobile,
			Field:    "mobile",
			Validate: ValidMobile,
			Invalid:  invalidMobilePrompt,
			Prompt:   staticPrompt("Perfect. And briefly, what is the reason for your appointment?"),
		},
		{State: StateAppointmentReason, Field: "reason"},
	},
	Success: "Thank you! Your appointment request is submitted. We will contact you soon.",
	Failure: "Sorry, there was an error submitting your request. Admins notified.",
}

var FeedbackFlow = Flow{
	Name:       "feedback",
	Trigger:    "give feedback",
	Intro:      "We'd love your feedback. What is your name?",
	Collection: persistence.CollectionFeedback,
	Steps: []Step{
		{State: StateFeedbackName, Field: "name", Prompt: thanksPrompt},
		{State: StateFeedbackEmail, Field: "email", Prompt: staticPrompt("Got it. What is your mobile number?")},
		{
			State:    StateFeedbackMobile,
			Field:    "mobile",
			Validate: ValidMobile,
			Invalid:  invalidMobilePrompt,
			Prompt:   staticPrompt("Finally, what is your feedback or suggestion?"),
		},
		{State: StateFeedbackSuggestion, Field: "suggestion"},
	},
	Success: "Thank you! Your feedback has been received.",
	Failure: "Sorry, there was an error submitting your feedback. Admins notified.",
}

// Flows lists every flow the controller knows about.
var Flows = []Flow{AppointmentFlow, FeedbackFlow}

// FindStep returns the flow owning state and the index of its step.
func FindStep(state State) (Flow, int, bool) {
	for _, f := range Flows {
		for i, s := range f.Steps {
			if s.State == state {
				return f, i, true
			}
		}
	}
	return Flow{}, 0, false
}

// FirstState is the state a session enters when the flow is triggered.
func (f Flow) FirstState() State {
	return f.Steps[0].State
}

// Fields returns the collected field names in step order.
func (f Flow) Fields() []string {
	fields := make([]string, len(f.Steps))
	for i, s := range f.Steps {
		fields[i] = s.Field
	}
	return fields
}

// Row orders the collected values the way the record store expects them:
// the UTC timestamp first, then each field in step order.
func (f Flow) Row(form map[string]string, now time.Time) []string {
	row := make([]string, 0, len(f.Steps)+1)
	row = append(row, persistence.Timestamp(now))
	for _, s := range f.Steps {
		row = append(row, form[s.Field])
	}
	return row
}
