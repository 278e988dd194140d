package persistence

import (
	"context"
	"fmt"
)

// RowAppender is the slice of the chat record repository this store needs.
type RowAppender interface {
	Append(ctx context.Context, collection string, values []string) error
}

// PostgresStore appends rows to the chat_records table.
type PostgresStore struct {
	repo RowAppender
}

func NewPostgresStore(repo RowAppender) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) AppendRecord(ctx context.Context, collection Collection, values []string) error {
	if err := s.repo.Append(ctx, string(collection), values); err != nil {
		return fmt.Errorf("append %s record: %w", collection, err)
	}
	return nil
}
