package factory

import (
	"fmt"
	"time"

	"flcs-chatbot-be/pkg/llm"
	"flcs-chatbot-be/pkg/llm/ollama"
	"flcs-chatbot-be/pkg/llm/openai"
)

// NewLLMProvider builds the completion backend. A hosted provider without an
// API key yields llm.Unconfigured rather than an error.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "groq":
		if apiKey == "" {
			return llm.Unconfigured{}, nil
		}
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
		}
		return openai.NewProvider(apiKey, baseURL, modelName, timeout), nil
	case "openai":
		if apiKey == "" {
			return llm.Unconfigured{}, nil
		}
		return openai.NewProvider(apiKey, baseURL, modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	case "", "none":
		return llm.Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
