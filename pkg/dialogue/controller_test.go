package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	queries []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string) Envelope {
	f.queries = append(f.queries, query)
	return NewEnvelope("ai answer", []string{"Services"})
}

type appendCall struct {
	collection persistence.Collection
	values     []string
}

type fakeStore struct {
	calls []appendCall
	err   error
}

func (f *fakeStore) AppendRecord(ctx context.Context, collection persistence.Collection, values []string) error {
	f.calls = append(f.calls, appendCall{collection: collection, values: values})
	return f.err
}

type fakeListener struct {
	flows []string
	err   error
}

func (f *fakeListener) OnSubmitted(ctx context.Context, flow string, form map[string]string) error {
	f.flows = append(f.flows, flow)
	return f.err
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestController(store persistence.Store, opts ...Option) (*Controller, *fakeAnswerer) {
	answerer := &fakeAnswerer{}
	opts = append(opts, WithClock(func() time.Time { return fixedNow }))
	return NewController(DefaultMenu(), answerer, store, logger.NewNopLogger(), opts...), answerer
}

func TestProcessGreeting(t *testing.T) {
	c, answerer := newTestController(&fakeStore{})

	sess, env := c.Process(context.Background(), NewSession("s1"), "hi")

	assert.Equal(t, "Welcome to FLCS! How can I help you today?", env.Markdown)
	assert.Equal(t, []string{"Services", "Packages", "Destinations", "About Us", "Book Appointment", "Give Feedback"}, env.Buttons)
	assert.False(t, sess.Active())
	assert.Empty(t, answerer.queries)
}

func TestProcessMenuKeyword(t *testing.T) {
	c, _ := newTestController(&fakeStore{})

	_, env := c.Process(context.Background(), NewSession("s1"), "  Silver ")

	assert.Contains(t, env.Markdown, "Silver: Best for self-starters")
	assert.Equal(t, []string{"Gold", "Platinum", "⬅ Packages"}, env.Buttons)
	assert.Empty(t, env.Error)
}

func TestProcessGoodbyeHasNoButtons(t *testing.T) {
	c, _ := newTestController(&fakeStore{})

	_, env := c.Process(context.Background(), NewSession("s1"), "bye")

	assert.Equal(t, "Goodbye! Have a great day!", env.Markdown)
	assert.NotNil(t, env.Buttons)
	assert.Empty(t, env.Buttons)
}

func TestProcessCancelClearsAnyState(t *testing.T) {
	states := []State{
		StateIdle,
		StateAppointmentName,
		StateAppointmentEmail,
		StateAppointmentMobile,
		StateAppointmentReason,
		StateFeedbackName,
		StateFeedbackEmail,
		StateFeedbackMobile,
		StateFeedbackSuggestion,
	}
	keywords := []string{"cancel", "Main Menu", " stop ", "EXIT", "quit", "⬅ Menu"}

	c, answerer := newTestController(&fakeStore{})
	for _, state := range states {
		for _, kw := range keywords {
			t.Run(state.String()+"/"+kw, func(t *testing.T) {
				in := Session{ID: "s1", State: state, FormData: map[string]string{"name": "Asha"}}

				out, env := c.Process(context.Background(), in, kw)

				assert.Equal(t, StateIdle, out.State)
				assert.Empty(t, out.FormData)
				assert.Equal(t, "Welcome to FLCS! How can I help you today?", env.Markdown)
				assert.Len(t, env.Buttons, 6)
			})
		}
	}
	assert.Empty(t, answerer.queries)
}

func TestProcessCancelMidAppointment(t *testing.T) {
	c, _ := newTestController(&fakeStore{})
	in := Session{
		ID:       "s1",
		State:    StateAppointmentMobile,
		FormData: map[string]string{"name": "Asha", "email": "asha@example.com"},
	}

	out, env := c.Process(context.Background(), in, "cancel")

	assert.False(t, out.Active())
	assert.Nil(t, out.FormData)
	assert.Equal(t, "Welcome to FLCS! How can I help you today?", env.Markdown)
	// the caller's session is untouched
	assert.Equal(t, StateAppointmentMobile, in.State)
	assert.Len(t, in.FormData, 2)
}

func TestProcessFlowTriggers(t *testing.T) {
	tests := []struct {
		name    string
		message string
		state   State
		intro   string
	}{
		{name: "appointment", message: "Book Appointment", state: StateAppointmentName, intro: AppointmentFlow.Intro},
		{name: "feedback", message: "give feedback", state: StateFeedbackName, intro: FeedbackFlow.Intro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(&fakeStore{})

			out, env := c.Process(context.Background(), NewSession("s1"), tt.message)

			assert.Equal(t, tt.state, out.State)
			assert.Empty(t, out.FormData)
			assert.Equal(t, tt.intro, env.Markdown)
			assert.Equal(t, []string{"Cancel"}, env.Buttons)
		})
	}
}

func TestProcessInvalidMobileKeepsState(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		mobile string
	}{
		{name: "appointment missing plus", state: StateAppointmentMobile, mobile: "9876543210"},
		{name: "appointment leading zero", state: StateAppointmentMobile, mobile: "+0123456789"},
		{name: "appointment too short", state: StateAppointmentMobile, mobile: "+1234567"},
		{name: "feedback too long", state: StateFeedbackMobile, mobile: "+1234567890123456"},
		{name: "feedback with spaces", state: StateFeedbackMobile, mobile: "+91 98765 43210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(&fakeStore{})
			in := Session{
				ID:       "s1",
				State:    tt.state,
				FormData: map[string]string{"name": "Asha", "email": "asha@example.com"},
			}

			out, env := c.Process(context.Background(), in, tt.mobile)

			assert.Equal(t, tt.state, out.State)
			assert.NotContains(t, out.FormData, "mobile")
			assert.Contains(t, env.Markdown, "+919876543210")
			assert.Equal(t, []string{"Cancel"}, env.Buttons)
		})
	}
}

func TestProcessValidMobileAdvances(t *testing.T) {
	tests := []struct {
		state State
		next  State
	}{
		{state: StateAppointmentMobile, next: StateAppointmentReason},
		{state: StateFeedbackMobile, next: StateFeedbackSuggestion},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			c, _ := newTestController(&fakeStore{})
			in := Session{ID: "s1", State: tt.state, FormData: map[string]string{"name": "Asha", "email": "a@b.c"}}

			out, _ := c.Process(context.Background(), in, "+919876543210")

			assert.Equal(t, tt.next, out.State)
			assert.Equal(t, "+919876543210", out.FormData["mobile"])
		})
	}
}

func TestAppointmentFlowEndToEnd(t *testing.T) {
	store := &fakeStore{}
	listener := &fakeListener{}
	c, answerer := newTestController(store, WithListeners(listener))
	ctx := context.Background()

	sess, env := c.Process(ctx, NewSession("s1"), "book appointment")
	require.Equal(t, StateAppointmentName, sess.State)

	sess, env = c.Process(ctx, sess, "Asha Rao")
	assert.Equal(t, "Thanks, Asha Rao. What is your email address?", env.Markdown)
	assert.Equal(t, map[string]string{"name": "Asha Rao"}, sess.FormData)

	sess, env = c.Process(ctx, sess, "asha@example.com")
	assert.Equal(t, "Great. What is your mobile number?", env.Markdown)

	sess, env = c.Process(ctx, sess, "+919876543210")
	assert.Equal(t, StateAppointmentReason, sess.State)

	sess, env = c.Process(ctx, sess, "Visa guidance for Italy")

	assert.False(t, sess.Active())
	assert.Nil(t, sess.FormData)
	assert.Equal(t, AppointmentFlow.Success, env.Markdown)
	assert.Len(t, env.Buttons, 6)
	require.Len(t, store.calls, 1)
	assert.Equal(t, persistence.CollectionAppointments, store.calls[0].collection)
	assert.Equal(t, []string{
		"2025-03-14T09:30:00.000000Z",
		"Asha Rao",
		"asha@example.com",
		"+919876543210",
		"Visa guidance for Italy",
	}, store.calls[0].values)
	assert.Equal(t, []string{"appointment"}, listener.flows)
	assert.Empty(t, answerer.queries)
}

func TestFlowSubmitWritesOnceWhateverTheOutcome(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		final    string
		storeErr error
		want     string
	}{
		{name: "appointment ok", state: StateAppointmentReason, final: "Visa", want: AppointmentFlow.Success},
		{name: "appointment fails", state: StateAppointmentReason, final: "Visa", storeErr: errors.New("quota exceeded"), want: AppointmentFlow.Failure},
		{name: "feedback ok", state: StateFeedbackSuggestion, final: "Great team", want: FeedbackFlow.Success},
		{name: "feedback fails", state: StateFeedbackSuggestion, final: "Great team", storeErr: errors.New("timeout"), want: FeedbackFlow.Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{err: tt.storeErr}
			listener := &fakeListener{}
			c, _ := newTestController(store, WithListeners(listener))
			in := Session{
				ID:       "s1",
				State:    tt.state,
				FormData: map[string]string{"name": "Asha", "email": "a@b.c", "mobile": "+919876543210"},
			}

			out, env := c.Process(context.Background(), in, tt.final)

			assert.Len(t, store.calls, 1)
			assert.Equal(t, StateIdle, out.State)
			assert.Empty(t, out.FormData)
			assert.Equal(t, tt.want, env.Markdown)
			assert.Len(t, env.Buttons, 6)
			assert.Empty(t, env.Error)
			if tt.storeErr != nil {
				assert.Empty(t, listener.flows)
			} else {
				assert.Len(t, listener.flows, 1)
			}
		})
	}
}

func TestFlowSubmitWithoutStore(t *testing.T) {
	c, _ := newTestController(nil)
	in := Session{ID: "s1", State: StateFeedbackSuggestion, FormData: map[string]string{"name": "Asha"}}

	out, env := c.Process(context.Background(), in, "more evening slots")

	assert.False(t, out.Active())
	assert.Equal(t, FeedbackFlow.Failure, env.Markdown)
}

func TestListenerErrorDoesNotChangeReply(t *testing.T) {
	store := &fakeStore{}
	c, _ := newTestController(store, WithListeners(&fakeListener{err: errors.New("nats down")}))
	in := Session{ID: "s1", State: StateFeedbackSuggestion, FormData: map[string]string{"name": "Asha"}}

	_, env := c.Process(context.Background(), in, "more evening slots")

	assert.Equal(t, FeedbackFlow.Success, env.Markdown)
}

func TestFlowStepDoesNotMatchMenuKeywords(t *testing.T) {
	c, answerer := newTestController(&fakeStore{})
	in := Session{ID: "s1", State: StateAppointmentName}

	out, env := c.Process(context.Background(), in, "Silver")

	assert.Equal(t, StateAppointmentEmail, out.State)
	assert.Equal(t, "Silver", out.FormData["name"])
	assert.Equal(t, "Thanks, Silver. What is your email address?", env.Markdown)
	assert.Empty(t, answerer.queries)
}

func TestProcessFallsBackToAnswerer(t *testing.T) {
	c, answerer := newTestController(&fakeStore{})

	out, env := c.Process(context.Background(), NewSession("s1"), "What is the IELTS score needed for Milan?")

	assert.Equal(t, []string{"What is the IELTS score needed for Milan?"}, answerer.queries)
	assert.Equal(t, "ai answer", env.Markdown)
	assert.False(t, out.Active())
}

func TestMenuLookupIsIdempotent(t *testing.T) {
	c, _ := newTestController(&fakeStore{})
	ctx := context.Background()

	_, first := c.Process(ctx, NewSession("s1"), "packages")
	first.Buttons[0] = "tampered"
	_, second := c.Process(ctx, NewSession("s1"), "packages")
	_, third := c.Process(ctx, NewSession("s1"), "packages")

	assert.Equal(t, second, third)
	assert.Equal(t, "Silver", second.Buttons[0])
}
