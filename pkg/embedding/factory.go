package embedding

import (
	"fmt"
	"time"
)

// NewProvider selects the embedding backend. Hosted providers without an
// API key are returned as Unconfigured.
func NewProvider(providerType, apiKey, model, baseURL string, timeout time.Duration) (EmbeddingProvider, error) {
	switch providerType {
	case "cohere":
		if apiKey == "" {
			return Unconfigured{}, nil
		}
		return NewCohereProvider(apiKey, model, timeout), nil
	case "gemini":
		if apiKey == "" {
			return Unconfigured{}, nil
		}
		return NewGeminiProvider(apiKey, timeout), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model, timeout), nil
	case "", "none":
		return Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
