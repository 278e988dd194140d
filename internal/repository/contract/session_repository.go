package contract

import (
	"context"
	"errors"

	"flcs-chatbot-be/pkg/dialogue"
)

// ErrSessionCorrupt is returned when a stored session cannot be decoded, for
// example because it names a state that no longer exists.
var ErrSessionCorrupt = errors.New("stored session is corrupt")

type SessionRepository interface {
	// Get reports false when no session is stored under id.
	Get(ctx context.Context, id string) (dialogue.Session, bool, error)
	Save(ctx context.Context, session dialogue.Session) error
	Delete(ctx context.Context, id string) error
}
