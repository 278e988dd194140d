package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const bingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// Bing queries the Bing Web Search v7 API.
type Bing struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewBing(endpoint, apiKey string, client *http.Client) *Bing {
	if endpoint == "" {
		endpoint = bingEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Bing{endpoint: endpoint, apiKey: apiKey, client: client}
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func (b *Bing) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bing api returned status %d", resp.StatusCode)
	}

	var bingResp bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&bingResp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, maxResults)
	for _, v := range bingResp.WebPages.Value {
		if len(results) >= maxResults {
			break
		}
		if v.Snippet == "" {
			continue
		}
		results = append(results, Result{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	return results, nil
}
