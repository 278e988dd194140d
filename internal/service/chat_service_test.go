package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/repository/contract"
	"flcs-chatbot-be/internal/repository/memory"
	"flcs-chatbot-be/pkg/dialogue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicProcessor struct{}

func (panicProcessor) Process(ctx context.Context, sess dialogue.Session, message string) (dialogue.Session, dialogue.Envelope) {
	panic("boom")
}

type corruptRepo struct {
	saved []dialogue.Session
}

func (r *corruptRepo) Get(ctx context.Context, id string) (dialogue.Session, bool, error) {
	return dialogue.Session{}, false, fmt.Errorf("%w: unknown tag", contract.ErrSessionCorrupt)
}

func (r *corruptRepo) Save(ctx context.Context, sess dialogue.Session) error {
	r.saved = append(r.saved, sess)
	return nil
}

func (r *corruptRepo) Delete(ctx context.Context, id string) error { return nil }

type echoAnswerer struct{}

func (echoAnswerer) Answer(ctx context.Context, query string) dialogue.Envelope {
	return dialogue.NewEnvelope("answer: "+query, nil)
}

func newDialogueController() *dialogue.Controller {
	return dialogue.NewController(dialogue.DefaultMenu(), echoAnswerer{}, nil, logger.NewNopLogger())
}

func TestChatKeepsFlowStateAcrossRequests(t *testing.T) {
	repo := memory.NewSessionRepository(0)
	svc := NewChatService(newDialogueController(), repo, logger.NewNopLogger())
	ctx := context.Background()

	env, err := svc.Chat(ctx, "s1", "book appointment")
	require.NoError(t, err)
	assert.Contains(t, env.Markdown, "full name")

	sess, found, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, dialogue.StateAppointmentName, sess.State)

	_, err = svc.Chat(ctx, "s1", "Asha Rao")
	require.NoError(t, err)

	sess, _, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, dialogue.StateAppointmentEmail, sess.State)
	assert.Equal(t, "Asha Rao", sess.FormData["name"])
}

func TestChatSessionsAreIsolated(t *testing.T) {
	repo := memory.NewSessionRepository(0)
	svc := NewChatService(newDialogueController(), repo, logger.NewNopLogger())
	ctx := context.Background()

	_, err := svc.Chat(ctx, "a", "give feedback")
	require.NoError(t, err)

	env, err := svc.Chat(ctx, "b", "what courses are there")
	require.NoError(t, err)
	assert.Equal(t, "answer: what courses are there", env.Markdown)

	sess, _, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dialogue.StateFeedbackName, sess.State)
}

func TestChatResetsCorruptSession(t *testing.T) {
	repo := &corruptRepo{}
	svc := NewChatService(newDialogueController(), repo, logger.NewNopLogger())

	env, err := svc.Chat(context.Background(), "s1", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "answer: hello there", env.Markdown)

	require.Len(t, repo.saved, 1)
	assert.True(t, repo.saved[0].State.IsIdle())
	assert.Equal(t, "s1", repo.saved[0].ID)
}

func TestChatRecoversFromPanic(t *testing.T) {
	repo := memory.NewSessionRepository(0)
	svc := NewChatService(panicProcessor{}, repo, logger.NewNopLogger())

	env, err := svc.Chat(context.Background(), "s1", "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCriticalFailure))
	assert.Equal(t, dialogue.CriticalErrorMessage, env.Markdown)
	assert.Equal(t, dialogue.ErrCodeCritical, env.Error)
	assert.Equal(t, 0, repo.Count())
}
