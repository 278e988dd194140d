package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flcs-chatbot-be/internal/repository/contract"
	"flcs-chatbot-be/pkg/dialogue"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. Values are stored
// encoded so callers never share maps with the cache.
type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// purge expired items every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session dialogue.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	r.cache.Set(session.ID, data, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (dialogue.Session, bool, error) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return dialogue.Session{}, false, nil
	}
	var session dialogue.Session
	if err := json.Unmarshal(x.([]byte), &session); err != nil {
		return dialogue.Session{}, false, fmt.Errorf("%w: %v", contract.ErrSessionCorrupt, err)
	}
	return session, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
