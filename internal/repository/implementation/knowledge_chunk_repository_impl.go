package implementation

import (
	"context"

	"flcs-chatbot-be/internal/model"
	"flcs-chatbot-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{db: db}
}

// SearchSimilarWithScore returns the nearest chunks of one index ordered by cosine similarity
func (r *KnowledgeChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, indexName string, embedding []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 4
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("index_name = ?", indexName).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeChunk, len(results))
	for i := range results {
		chunk := results[i].KnowledgeChunk
		scored[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      &chunk,
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}

func (r *KnowledgeChunkRepositoryImpl) CountByIndex(ctx context.Context, indexName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeChunk{}).
		Where("index_name = ?", indexName).
		Count(&count).Error
	return count, err
}

func (r *KnowledgeChunkRepositoryImpl) CreateBatch(ctx context.Context, chunks []*model.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 64).Error
}

// DeleteBySource removes every chunk of one document so it can be re-ingested.
func (r *KnowledgeChunkRepositoryImpl) DeleteBySource(ctx context.Context, indexName, source string) error {
	return r.db.WithContext(ctx).
		Where("index_name = ? AND source = ?", indexName, source).
		Delete(&model.KnowledgeChunk{}).Error
}
