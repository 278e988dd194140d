package embedding

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("embedding provider not configured")

// EmbeddingProvider turns a query into a vector of the index's dimensionality.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentEmbedder is implemented by providers that embed indexed passages
// differently from queries.
type DocumentEmbedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// EmbedDocument embeds a passage for indexing, falling back to Embed.
func EmbedDocument(ctx context.Context, p EmbeddingProvider, text string) ([]float32, error) {
	if d, ok := p.(DocumentEmbedder); ok {
		return d.EmbedDocument(ctx, text)
	}
	return p.Embed(ctx, text)
}

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrNotConfigured
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
