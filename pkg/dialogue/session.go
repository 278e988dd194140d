package dialogue

// Session is the per-visitor conversation state. FormData only holds values
// while a flow is active.
type Session struct {
	ID       string            `json:"id"`
	State    State             `json:"chat_state,omitempty"`
	FormData map[string]string `json:"form_data,omitempty"`
}

func NewSession(id string) Session {
	return Session{ID: id}
}

// Active reports whether a flow step is waiting for input.
func (s Session) Active() bool {
	return !s.State.IsIdle()
}

func (s Session) clone() Session {
	out := Session{ID: s.ID, State: s.State}
	if len(s.FormData) > 0 {
		out.FormData = make(map[string]string, len(s.FormData))
		for k, v := range s.FormData {
			out.FormData[k] = v
		}
	}
	return out
}

func (s Session) reset() Session {
	return Session{ID: s.ID}
}

func (s Session) withField(next State, field, value string) Session {
	out := s.clone()
	if out.FormData == nil {
		out.FormData = make(map[string]string)
	}
	out.FormData[field] = value
	out.State = next
	return out
}
