package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/pkg/mailer"
	"flcs-chatbot-be/pkg/dialogue"
	"flcs-chatbot-be/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventListener publishes every submitted flow on the event bus.
type EventListener struct {
	publisher EventPublisher
	now       func() time.Time
}

var _ dialogue.SubmissionListener = &EventListener{}

func NewEventListener(publisher EventPublisher) *EventListener {
	return &EventListener{publisher: publisher, now: time.Now}
}

func (l *EventListener) OnSubmitted(ctx context.Context, flow string, form map[string]string) error {
	return l.publisher.Publish(ctx, events.NewSubmissionEvent(flow, form, l.now()))
}

// EmailListener mails the admin inbox in the background so the chat reply
// does not wait on SMTP.
type EmailListener struct {
	mailer mailer.IEmailService
	logger logger.ILogger
	wg     sync.WaitGroup
}

var _ dialogue.SubmissionListener = &EmailListener{}

func NewEmailListener(m mailer.IEmailService, log logger.ILogger) *EmailListener {
	return &EmailListener{mailer: m, logger: log}
}

func (l *EmailListener) OnSubmitted(ctx context.Context, flow string, form map[string]string) error {
	fields := make(map[string]string, len(form))
	for k, v := range form {
		fields[k] = v
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.mailer.SendSubmissionNotice(flow, fields); err != nil {
			l.logger.Error("NOTIFY", "Admin email failed", map[string]interface{}{
				"flow":  flow,
				"error": err.Error(),
			})
			return
		}
		l.logger.Info("NOTIFY", "Admin email sent", map[string]interface{}{"flow": flow})
	}()
	return nil
}

// Wait blocks until every pending email has been attempted.
func (l *EmailListener) Wait() {
	l.wg.Wait()
}

// EmailHandler turns bus events back into admin emails. It is registered on
// the NATS subscriber when the bus is configured.
func EmailHandler(m mailer.IEmailService) func(ctx context.Context, event events.Event) error {
	return func(ctx context.Context, event events.Event) error {
		flow := events.StringField(event, "flow")
		if flow == "" {
			return fmt.Errorf("event %s has no flow", event.EventType())
		}
		fields := make(map[string]string)
		for k, v := range event.Payload() {
			if k == "flow" || k == "submitted_at" {
				continue
			}
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
		return m.SendSubmissionNotice(flow, fields)
	}
}
