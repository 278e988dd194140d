package dialogue

import (
	"context"
	"strings"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/persistence"
)

// Answerer handles any message the menu and the flows do not consume.
type Answerer interface {
	Answer(ctx context.Context, query string) Envelope
}

// SubmissionListener is told about every flow whose record was written.
type SubmissionListener interface {
	OnSubmitted(ctx context.Context, flow string, form map[string]string) error
}

var cancelKeywords = map[string]struct{}{
	"cancel":    {},
	"main menu": {},
	"stop":      {},
	"exit":      {},
	"quit":      {},
	"⬅ menu":    {},
}

// IsCancel reports whether a normalized message abandons any active flow.
func IsCancel(normalized string) bool {
	_, ok := cancelKeywords[normalized]
	return ok
}

type Controller struct {
	menu        *MenuTable
	answerer    Answerer
	records     persistence.Store
	listeners   []SubmissionListener
	logger      logger.ILogger
	now         func() time.Time
	callTimeout time.Duration
}

type Option func(*Controller)

func WithListeners(listeners ...SubmissionListener) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, listeners...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithCallTimeout bounds each record write. Zero leaves the caller's deadline alone.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.callTimeout = d
	}
}

func NewController(menu *MenuTable, answerer Answerer, records persistence.Store, log logger.ILogger, opts ...Option) *Controller {
	c := &Controller{
		menu:     menu,
		answerer: answerer,
		records:  records,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Menu() *MenuTable {
	return c.menu
}

// Process computes the reply to one message and the session that follows it.
// The given session is never modified.
func (c *Controller) Process(ctx context.Context, sess Session, message string) (Session, Envelope) {
	normalized := Normalize(message)

	if IsCancel(normalized) {
		if sess.Active() {
			c.logger.Info("DIALOGUE", "Flow cancelled", map[string]interface{}{
				"session": sess.ID,
				"state":   sess.State.String(),
			})
		}
		return sess.reset(), c.menu.Welcome()
	}

	if sess.Active() {
		return c.advance(ctx, sess, strings.TrimSpace(message))
	}

	for _, flow := range Flows {
		if normalized == flow.Trigger {
			next := sess.reset()
			next.State = flow.FirstState()
			c.logger.Info("DIALOGUE", "Flow started", map[string]interface{}{
				"session": sess.ID,
				"flow":    flow.Name,
			})
			return next, NewEnvelope(flow.Intro, c.menu.CancelButtons())
		}
	}

	if env, ok := c.menu.Lookup(normalized); ok {
		return sess.reset(), env
	}

	return sess.reset(), c.answerer.Answer(ctx, message)
}

func (c *Controller) advance(ctx context.Context, sess Session, value string) (Session, Envelope) {
	flow, idx, ok := FindStep(sess.State)
	if !ok {
		c.logger.Warn("DIALOGUE", "Session in unknown state, resetting", map[string]interface{}{
			"session": sess.ID,
			"state":   sess.State.String(),
		})
		return sess.reset(), c.menu.Welcome()
	}

	step := flow.Steps[idx]
	if step.Validate != nil && !step.Validate(value) {
		return sess.clone(), NewEnvelope(step.Invalid, c.menu.CancelButtons())
	}

	if idx < len(flow.Steps)-1 {
		next := sess.withField(flow.Steps[idx+1].State, step.Field, value)
		return next, NewEnvelope(step.Prompt(value), c.menu.CancelButtons())
	}

	form := sess.withField(StateIdle, step.Field, value).FormData
	return sess.reset(), c.submit(ctx, sess.ID, flow, form)
}

// submit performs exactly one record write. The session is reset by the
// caller whatever the outcome.
func (c *Controller) submit(ctx context.Context, sessionID string, flow Flow, form map[string]string) Envelope {
	err := c.write(ctx, flow, form)
	if err != nil {
		c.logger.Error("DIALOGUE", "Flow submission failed", map[string]interface{}{
			"session": sessionID,
			"flow":    flow.Name,
			"error":   err.Error(),
		})
		return NewEnvelope(flow.Failure, c.menu.MainMenu())
	}

	c.logger.Info("DIALOGUE", "Flow submitted", map[string]interface{}{
		"session": sessionID,
		"flow":    flow.Name,
	})
	for _, l := range c.listeners {
		if lerr := l.OnSubmitted(ctx, flow.Name, form); lerr != nil {
			c.logger.Warn("DIALOGUE", "Submission listener failed", map[string]interface{}{
				"flow":  flow.Name,
				"error": lerr.Error(),
			})
		}
	}
	return NewEnvelope(flow.Success, c.menu.MainMenu())
}

func (c *Controller) write(ctx context.Context, flow Flow, form map[string]string) error {
	if c.records == nil {
		return persistence.ErrNotConfigured
	}
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return c.records.AppendRecord(ctx, flow.Collection, flow.Row(form, c.now()))
}
