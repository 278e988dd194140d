package persistence

import (
	"context"
	"errors"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
)

// Collection names one append-only record stream.
type Collection string

const (
	CollectionQueries      Collection = "queries"
	CollectionViews        Collection = "views"
	CollectionAppointments Collection = "appointments"
	CollectionFeedback     Collection = "feedback"
)

var ErrNotConfigured = errors.New("record store not configured")

// Store appends one ordered row to a collection. Rows are never updated or deleted.
type Store interface {
	AppendRecord(ctx context.Context, collection Collection, values []string) error
}

// Timestamp formats t the way every row's first column is written.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

// Gate switches individual collections on and off. A write to a disabled
// collection reports success without touching the underlying store.
type Gate struct {
	store   Store
	enabled map[Collection]bool
	logger  logger.ILogger
}

func NewGate(store Store, enabled map[Collection]bool, log logger.ILogger) *Gate {
	flags := make(map[Collection]bool, len(enabled))
	for k, v := range enabled {
		flags[k] = v
	}
	return &Gate{store: store, enabled: flags, logger: log}
}

func (g *Gate) Enabled(collection Collection) bool {
	return g.enabled[collection]
}

func (g *Gate) AppendRecord(ctx context.Context, collection Collection, values []string) error {
	if !g.enabled[collection] {
		g.logger.Debug("PERSISTENCE", "Write skipped, collection disabled", map[string]interface{}{
			"collection": collection,
		})
		return nil
	}
	if g.store == nil {
		return ErrNotConfigured
	}
	return g.store.AppendRecord(ctx, collection, values)
}
