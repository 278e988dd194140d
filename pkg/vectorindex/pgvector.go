package vectorindex

import (
	"context"
	"fmt"

	"flcs-chatbot-be/internal/model"
	"flcs-chatbot-be/internal/repository/unitofwork"

	"github.com/pgvector/pgvector-go"
)

// PgvectorIndex reads the knowledge_chunks table of one named index.
type PgvectorIndex struct {
	repos unitofwork.RepositoryFactory
	name  string
}

func NewPgvectorIndex(repos unitofwork.RepositoryFactory, name string) *PgvectorIndex {
	return &PgvectorIndex{repos: repos, name: name}
}

func (i *PgvectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	scored, err := i.repos.NewUnitOfWork(ctx).KnowledgeChunkRepository().SearchSimilarWithScore(ctx, i.name, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector query %s: %w", i.name, err)
	}

	passages := make([]Passage, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Chunk == nil {
			continue
		}
		passages = append(passages, Passage{
			Text:   s.Chunk.Document,
			Source: s.Chunk.Source,
			Page:   s.Chunk.Page,
			Score:  float32(s.Similarity),
		})
	}
	return passages, nil
}

func (i *PgvectorIndex) Ready(ctx context.Context) error {
	count, err := i.repos.NewUnitOfWork(ctx).KnowledgeChunkRepository().CountByIndex(ctx, i.name)
	if err != nil {
		return fmt.Errorf("count chunks of %s: %w", i.name, err)
	}
	if count == 0 {
		return fmt.Errorf("index '%s': %w", i.name, ErrIndexMissing)
	}
	return nil
}

// ReplaceSource swaps a document's chunks in one transaction, so a failed
// insert leaves the previous chunks in place.
func (i *PgvectorIndex) ReplaceSource(ctx context.Context, source string, records []Record) (err error) {
	uow := i.repos.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin replace of %s: %w", source, err)
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	repo := uow.KnowledgeChunkRepository()
	if err := repo.DeleteBySource(ctx, i.name, source); err != nil {
		return fmt.Errorf("clear %s from %s: %w", source, i.name, err)
	}

	chunks := make([]*model.KnowledgeChunk, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, &model.KnowledgeChunk{
			IndexName:      i.name,
			Document:       r.Text,
			Source:         r.Source,
			Page:           r.Page,
			EmbeddingValue: pgvector.NewVector(r.Vector),
		})
	}
	if err := repo.CreateBatch(ctx, chunks); err != nil {
		return fmt.Errorf("insert %d chunks into %s: %w", len(chunks), i.name, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit replace of %s: %w", source, err)
	}
	return nil
}
