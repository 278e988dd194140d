package unitofwork

import (
	"context"

	"flcs-chatbot-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one transaction once Begin has
// been called, and to the plain connection before that.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	ChatRecordRepository() contract.ChatRecordRepository
}
