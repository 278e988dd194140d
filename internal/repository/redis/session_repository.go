package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flcs-chatbot-be/internal/repository/contract"
	"flcs-chatbot-be/pkg/dialogue"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "flcs:sess:"

// SessionRepository stores each session as JSON under its own key with a
// sliding TTL, so sessions survive restarts and are shared across replicas.
type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewClient(redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return goredis.NewClient(opts), nil
}

func NewSessionRepository(client *goredis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (r *SessionRepository) Get(ctx context.Context, id string) (dialogue.Session, bool, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return dialogue.Session{}, false, nil
	}
	if err != nil {
		return dialogue.Session{}, false, fmt.Errorf("load session %s: %w", id, err)
	}

	var session dialogue.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return dialogue.Session{}, false, fmt.Errorf("%w: %v", contract.ErrSessionCorrupt, err)
	}
	return session, true, nil
}

func (r *SessionRepository) Save(ctx context.Context, session dialogue.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// Ping checks the connection.
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
