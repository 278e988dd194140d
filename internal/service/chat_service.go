package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/repository/contract"
	"flcs-chatbot-be/pkg/dialogue"
)

var ErrCriticalFailure = errors.New("critical failure while processing message")

// MessageProcessor advances one session by one message.
type MessageProcessor interface {
	Process(ctx context.Context, sess dialogue.Session, message string) (dialogue.Session, dialogue.Envelope)
}

type IChatService interface {
	Chat(ctx context.Context, sessionID string, query string) (dialogue.Envelope, error)
}

type chatService struct {
	processor MessageProcessor
	sessions  contract.SessionRepository
	logger    logger.ILogger
}

func NewChatService(processor MessageProcessor, sessions contract.SessionRepository, log logger.ILogger) IChatService {
	return &chatService{
		processor: processor,
		sessions:  sessions,
		logger:    log,
	}
}

// Chat loads the caller's session, runs the message through the dialogue
// controller and stores the resulting session. ErrCriticalFailure is returned
// together with the envelope to show when processing itself blew up.
func (s *chatService) Chat(ctx context.Context, sessionID string, query string) (dialogue.Envelope, error) {
	sess := s.load(ctx, sessionID)

	next, env, err := s.process(ctx, sess, query)
	if err != nil {
		return env, err
	}

	if err := s.sessions.Save(ctx, next); err != nil {
		s.logger.Error("CHAT", "Failed to save session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	return env, nil
}

func (s *chatService) load(ctx context.Context, sessionID string) dialogue.Session {
	sess, found, err := s.sessions.Get(ctx, sessionID)
	switch {
	case errors.Is(err, contract.ErrSessionCorrupt):
		s.logger.Warn("CHAT", "Unreadable session state, starting over", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return dialogue.NewSession(sessionID)
	case err != nil:
		s.logger.Error("CHAT", "Failed to load session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return dialogue.NewSession(sessionID)
	case !found:
		return dialogue.NewSession(sessionID)
	}
	sess.ID = sessionID
	return sess
}

func (s *chatService) process(ctx context.Context, sess dialogue.Session, query string) (next dialogue.Session, env dialogue.Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("CHAT", "Panic while processing message", map[string]interface{}{
				"session_id": sess.ID,
				"panic":      fmt.Sprint(r),
				"stack":      string(debug.Stack()),
			})
			next = sess
			env = dialogue.CriticalEnvelope()
			err = ErrCriticalFailure
		}
	}()

	next, env = s.processor.Process(ctx, sess, query)
	return next, env, nil
}
