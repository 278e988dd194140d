package service

import (
	"context"
	"encoding/json"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/persistence"
	"flcs-chatbot-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const QueryLogTopic = "analytics.query"

type queryLogMessage struct {
	Query string    `json:"query"`
	At    time.Time `json:"at"`
}

type IAnalyticsService interface {
	rag.QueryLogger
	TrackView(ctx context.Context) error
	Consume(ctx context.Context) error
}

// analyticsService queues query rows on an in-process topic so the chat
// reply never waits on the record store. Page views are written directly.
type analyticsService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	records     *persistence.Gate
	logger      logger.ILogger
	callTimeout time.Duration
	now         func() time.Time
}

func NewAnalyticsService(pubSub *gochannel.GoChannel, records *persistence.Gate, callTimeout time.Duration, log logger.ILogger) IAnalyticsService {
	if callTimeout <= 0 {
		callTimeout = 20 * time.Second
	}
	return &analyticsService{
		pubSub:      pubSub,
		topicName:   QueryLogTopic,
		records:     records,
		logger:      log,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// NewPubSub builds the in-process topic the analytics queue runs on.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NopLogger{})
}

func (s *analyticsService) LogQuery(ctx context.Context, query string) error {
	if !s.records.Enabled(persistence.CollectionQueries) {
		return nil
	}

	payload, err := json.Marshal(queryLogMessage{Query: query, At: s.now()})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(s.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *analyticsService) TrackView(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.records.AppendRecord(ctx, persistence.CollectionViews, []string{persistence.Timestamp(s.now())}); err != nil {
		s.logger.Error("ANALYTICS", "Failed to record page view", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (s *analyticsService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a failed analytics row is logged and dropped.
func (s *analyticsService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload queryLogMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ANALYTICS", "Failed to decode query message", map[string]interface{}{"error": err.Error()})
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
	defer cancel()

	row := []string{persistence.Timestamp(payload.At), payload.Query}
	if err := s.records.AppendRecord(writeCtx, persistence.CollectionQueries, row); err != nil {
		s.logger.Error("ANALYTICS", "Failed to record query", map[string]interface{}{"error": err.Error()})
	}
}
