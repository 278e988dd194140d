package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const cohereEmbedURL = "https://api.cohere.com/v1/embed"

// CohereProvider embeds with Cohere's embed API. Queries and indexed
// documents use different input types.
type CohereProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message,omitempty"`
}

func NewCohereProvider(apiKey, model string, timeout time.Duration) *CohereProvider {
	if model == "" {
		model = "embed-english-v3.0"
	}
	return &CohereProvider{
		apiKey:   apiKey,
		endpoint: cohereEmbedURL,
		model:    model,
		client:   newHTTPClient(timeout),
	}
}

// WithEndpoint points the provider at another embed URL.
func (p *CohereProvider) WithEndpoint(endpoint string) *CohereProvider {
	p.endpoint = endpoint
	return p
}

func (p *CohereProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, text, "search_query")
}

func (p *CohereProvider) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, text, "search_document")
}

func (p *CohereProvider) embed(ctx context.Context, text, inputType string) ([]float32, error) {
	reqBody := cohereEmbedRequest{
		Texts:     []string{text},
		Model:     p.model,
		InputType: inputType,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cohere api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var cohereResp cohereEmbedResponse
	if err := json.Unmarshal(bodyBytes, &cohereResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(cohereResp.Embeddings) == 0 || len(cohereResp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embeddings from cohere api")
	}

	return cohereResp.Embeddings[0], nil
}
