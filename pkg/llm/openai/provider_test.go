package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flcs-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsBoundsAndTrims(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Milan is lovely.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewProvider("test-key", srv.URL, "llama-3.1-8b-instant", 5*time.Second)
	out, err := p.Generate(context.Background(), "Tell me about Milan", llm.WithMaxTokens(200), llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "Milan is lovely.", out)
	assert.Equal(t, "llama-3.1-8b-instant", got["model"])
	assert.EqualValues(t, 200, got["max_tokens"])
	assert.InDelta(t, 0.3, got["temperature"], 0.0001)
}

func TestGenerateSendsZeroTemperature(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider("k", srv.URL, "m", time.Second)
	_, err := p.Generate(context.Background(), "hi", llm.WithTemperature(0))

	require.NoError(t, err)
	require.Contains(t, got, "temperature")
	assert.InDelta(t, 0, got["temperature"], 1e-6)
}

func TestGenerateReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewProvider("bad", srv.URL, "m", time.Second)
	_, err := p.Generate(context.Background(), "hello")

	assert.Error(t, err)
}
