package websearch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher returns at most maxResults hits for a query. An empty slice is a
// valid answer.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Unconfigured never finds anything.
type Unconfigured struct{}

func (Unconfigured) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return nil, nil
}

// NewSearcher selects the provider by name.
func NewSearcher(provider, endpoint, apiKey string, timeout time.Duration) (Searcher, error) {
	client := &http.Client{Timeout: timeout}
	if timeout <= 0 {
		client.Timeout = 15 * time.Second
	}

	switch provider {
	case "duckduckgo":
		return NewDuckDuckGo(endpoint, client), nil
	case "bing":
		if apiKey == "" {
			return Unconfigured{}, nil
		}
		return NewBing(endpoint, apiKey, client), nil
	case "", "none":
		return Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", provider)
	}
}
