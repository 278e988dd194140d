package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"flcs-chatbot-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

const GroqBaseURL = "https://api.groq.com/openai/v1"

// Provider talks to any OpenAI-compatible chat completion API (Groq by default).
type Provider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.model, Temperature: 0.3}, opts...)

	req := goopenai.ChatCompletionRequest{
		Model: options.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(options.Temperature),
	}
	if options.Temperature == 0 {
		// go-openai omits a zero temperature
		req.Temperature = math.SmallestNonzeroFloat32
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
