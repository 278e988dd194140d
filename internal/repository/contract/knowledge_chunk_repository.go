package contract

import (
	"context"

	"flcs-chatbot-be/internal/model"
)

// ScoredKnowledgeChunk wraps KnowledgeChunk with its similarity score
type ScoredKnowledgeChunk struct {
	Chunk      *model.KnowledgeChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KnowledgeChunkRepository interface {
	SearchSimilarWithScore(ctx context.Context, indexName string, embedding []float32, limit int) ([]*ScoredKnowledgeChunk, error)
	CountByIndex(ctx context.Context, indexName string) (int64, error)
	CreateBatch(ctx context.Context, chunks []*model.KnowledgeChunk) error
	DeleteBySource(ctx context.Context, indexName, source string) error
}
