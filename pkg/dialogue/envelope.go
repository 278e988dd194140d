package dialogue

// Diagnostic codes carried in Envelope.Error. They never contain exception text.
const (
	ErrCodeRAGFailure = "rag_failure"
	ErrCodeCritical   = "critical_error"
)

const CriticalErrorMessage = "Sorry, a critical error occurred on the server."

// Envelope is the uniform reply returned for every chat message.
type Envelope struct {
	Markdown string   `json:"markdown"`
	Buttons  []string `json:"buttons"`
	Error    string   `json:"error,omitempty"`
}

// NewEnvelope copies buttons so the caller's slice is never shared. Buttons
// is always non-nil so it encodes as [] rather than null.
func NewEnvelope(markdown string, buttons []string) Envelope {
	copied := make([]string, len(buttons))
	copy(copied, buttons)
	return Envelope{Markdown: markdown, Buttons: copied}
}

func (e Envelope) WithError(code string) Envelope {
	e.Error = code
	return e
}

// CriticalEnvelope is returned when processing panicked.
func CriticalEnvelope() Envelope {
	return NewEnvelope(CriticalErrorMessage, nil).WithError(ErrCodeCritical)
}
