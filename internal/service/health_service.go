package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/llm"
	"flcs-chatbot-be/pkg/vectorindex"
)

type HealthReport struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues"`
}

// Probe is an extra dependency check. A non-nil error becomes "<name> error: <err>".
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type IHealthService interface {
	Status(ctx context.Context) HealthReport
}

type healthService struct {
	embedder  embedding.EmbeddingProvider
	index     vectorindex.Index
	llm       llm.LLMProvider
	indexName string
	probes    []Probe
	timeout   time.Duration
}

func NewHealthService(
	embedder embedding.EmbeddingProvider,
	index vectorindex.Index,
	provider llm.LLMProvider,
	indexName string,
	timeout time.Duration,
	probes ...Probe,
) IHealthService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &healthService{
		embedder:  embedder,
		index:     index,
		llm:       provider,
		indexName: indexName,
		probes:    probes,
		timeout:   timeout,
	}
}

func (s *healthService) Status(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	issues := []string{}

	if s.index == nil {
		issues = append(issues, "Vector index not configured")
	} else if err := s.index.Ready(ctx); err != nil {
		switch {
		case errors.Is(err, vectorindex.ErrNotConfigured):
			issues = append(issues, "Vector index not configured")
		case errors.Is(err, vectorindex.ErrIndexMissing):
			issues = append(issues, fmt.Sprintf("Vector index '%s' not found", s.indexName))
		default:
			issues = append(issues, fmt.Sprintf("Vector index error: %v", err))
		}
	}

	if _, ok := s.embedder.(embedding.Unconfigured); ok || s.embedder == nil {
		issues = append(issues, "Embedding provider not configured")
	}

	if _, ok := s.llm.(llm.Unconfigured); ok || s.llm == nil {
		issues = append(issues, "Language model not configured")
	}

	for _, p := range s.probes {
		if err := p.Check(ctx); err != nil {
			issues = append(issues, fmt.Sprintf("%s error: %v", p.Name, err))
		}
	}

	return HealthReport{OK: len(issues) == 0, Issues: issues}
}
