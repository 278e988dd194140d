package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/dialogue"
	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/llm"
	"flcs-chatbot-be/pkg/rag/prompt"
	"flcs-chatbot-be/pkg/vectorindex"
	"flcs-chatbot-be/pkg/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mainMenu = []string{"Services", "Packages", "Destinations", "About Us", "Book Appointment", "Give Feedback"}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeIndex struct {
	passages []vectorindex.Passage
	err      error
	topK     int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Passage, error) {
	f.topK = topK
	return f.passages, f.err
}

func (f *fakeIndex) Ready(ctx context.Context) error { return nil }

type llmCall struct {
	prompt  string
	options llm.Options
}

type fakeLLM struct {
	replies []string
	err     error
	panics  bool
	calls   []llmCall
}

func (f *fakeLLM) Generate(ctx context.Context, text string, opts ...llm.Option) (string, error) {
	if f.panics {
		panic("model exploded")
	}
	f.calls = append(f.calls, llmCall{prompt: text, options: llm.Apply(llm.Options{}, opts...)})
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakeSearcher struct {
	results []websearch.Result
	err     error
	calls   int
	max     int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	f.calls++
	f.max = maxResults
	return f.results, f.err
}

type fakeQueryLog struct {
	queries []string
	err     error
}

func (f *fakeQueryLog) LogQuery(ctx context.Context, query string) error {
	f.queries = append(f.queries, query)
	return f.err
}

type harness struct {
	embedder *fakeEmbedder
	index    *fakeIndex
	llm      *fakeLLM
	searcher *fakeSearcher
	queries  *fakeQueryLog
}

func (h *harness) orchestrator() *Orchestrator {
	cfg := DefaultConfig()
	cfg.Buttons = mainMenu
	return NewOrchestrator(h.embedder, h.index, h.llm, h.searcher, h.queries, cfg, logger.NewNopLogger())
}

func newHarness() *harness {
	return &harness{
		embedder: &fakeEmbedder{},
		index:    &fakeIndex{},
		llm:      &fakeLLM{replies: []string{"an answer"}},
		searcher: &fakeSearcher{},
		queries:  &fakeQueryLog{},
	}
}

var webResults = []websearch.Result{
	{Title: "Study in Italy", URL: "https://a.example", Snippet: "Tuition is low"},
	{Title: "Uni", URL: "https://b.example", Snippet: "Scholarships exist"},
}

func TestAnswerGroundedWithSources(t *testing.T) {
	h := newHarness()
	h.index.passages = []vectorindex.Passage{
		{Text: "Gold includes 3 mock interviews", Source: "packages.pdf", Page: 2},
		{Text: "Gold files 7 applications", Source: "packages.pdf", Page: 2},
		{Text: "Contact us", Source: "brochure.pdf", Page: 5},
		{Text: "No page here", Source: "faq.pdf"},
	}
	h.llm.replies = []string{"Gold gives you 3 mock interviews."}

	env := h.orchestrator().Answer(context.Background(), "What does Gold include?")

	assert.Equal(t, "Gold gives you 3 mock interviews.\n\n---\n*Sources: packages.pdf (Page 2), brochure.pdf (Page 5)*", env.Markdown)
	assert.Equal(t, mainMenu, env.Buttons)
	assert.Empty(t, env.Error)
	assert.Equal(t, 0, h.searcher.calls)
	assert.Equal(t, 4, h.index.topK)
	require.Len(t, h.llm.calls, 1)
	assert.Contains(t, h.llm.calls[0].prompt, "Gold includes 3 mock interviews\n\n---\nGold files 7 applications")
	assert.Equal(t, 200, h.llm.calls[0].options.MaxTokens)
	assert.InDelta(t, 0.3, h.llm.calls[0].options.Temperature, 1e-9)
	assert.Equal(t, []string{"What does Gold include?"}, h.queries.queries)
}

func TestConfiguredTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		want        float64
	}{
		{name: "zero is kept", temperature: 0, want: 0},
		{name: "negative selects default", temperature: -1, want: 0.3},
		{name: "explicit value", temperature: 0.7, want: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.index.passages = []vectorindex.Passage{{Text: "IELTS batches start monthly", Source: "ielts.pdf", Page: 1}}
			cfg := DefaultConfig()
			cfg.Temperature = tt.temperature
			o := NewOrchestrator(h.embedder, h.index, h.llm, h.searcher, h.queries, cfg, logger.NewNopLogger())

			o.Answer(context.Background(), "When do IELTS batches start?")

			require.Len(t, h.llm.calls, 1)
			assert.InDelta(t, tt.want, h.llm.calls[0].options.Temperature, 1e-9)
		})
	}
}

func TestAnswerEmptyRetrievalGoesStraightToWeb(t *testing.T) {
	h := newHarness()
	h.searcher.results = webResults
	h.llm.replies = []string{"Tuition in Italy is low."}

	env := h.orchestrator().Answer(context.Background(), "How much is tuition in Italy?")

	assert.Equal(t, 1, h.searcher.calls)
	assert.Equal(t, 3, h.searcher.max)
	require.Len(t, h.llm.calls, 1)
	assert.NotContains(t, h.llm.calls[0].prompt, "Context:")
	assert.Contains(t, h.llm.calls[0].prompt, "[1] Study in Italy: Tuition is low")
	assert.Equal(t, 100, h.llm.calls[0].options.MaxTokens)
	assert.Equal(t, "Tuition in Italy is low."+WebDisclaimer, env.Markdown)
	assert.Equal(t, mainMenu, env.Buttons)
}

func TestAnswerNotHelpfulTriggersOneWebFallback(t *testing.T) {
	h := newHarness()
	h.index.passages = []vectorindex.Passage{{Text: "About our offices", Source: "about.pdf", Page: 1}}
	h.searcher.results = webResults
	h.llm.replies = []string{prompt.NoInformationSentence, "From the web: scholarships exist."}

	env := h.orchestrator().Answer(context.Background(), "Are there scholarships in Padua?")

	assert.Equal(t, 1, h.searcher.calls)
	require.Len(t, h.llm.calls, 2)
	assert.Contains(t, h.llm.calls[0].prompt, "Context:")
	assert.Contains(t, h.llm.calls[1].prompt, "Web results:")
	assert.Equal(t, "From the web: scholarships exist."+WebDisclaimer, env.Markdown)
	assert.NotContains(t, env.Markdown, "Sources:")
}

func TestAnswerParaphrasedRefusalIsKept(t *testing.T) {
	h := newHarness()
	h.index.passages = []vectorindex.Passage{{Text: "About our offices"}}
	h.llm.replies = []string{"The documents do not cover that."}

	env := h.orchestrator().Answer(context.Background(), "Weather in Rome?")

	assert.Equal(t, 0, h.searcher.calls)
	assert.Equal(t, "The documents do not cover that.", env.Markdown)
}

func TestAnswerNothingAnywhere(t *testing.T) {
	tests := []struct {
		name      string
		searchErr error
	}{
		{name: "no results"},
		{name: "search fails", searchErr: errors.New("captcha")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.searcher.err = tt.searchErr

			env := h.orchestrator().Answer(context.Background(), "Obscure question")

			assert.Equal(t, NotFoundMessage, env.Markdown)
			assert.Equal(t, mainMenu, env.Buttons)
			assert.Empty(t, h.llm.calls)
			assert.Equal(t, 1, h.searcher.calls)
		})
	}
}

func TestAnswerIndexFailureIsTreatedAsEmpty(t *testing.T) {
	h := newHarness()
	h.index.err = errors.New("connection refused")
	h.searcher.results = webResults

	env := h.orchestrator().Answer(context.Background(), "q")

	assert.Equal(t, 1, h.searcher.calls)
	assert.True(t, strings.HasSuffix(env.Markdown, WebDisclaimer))
	assert.Empty(t, env.Error)
}

func TestAnswerFailuresBecomeApology(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{name: "embedding error", setup: func(h *harness) { h.embedder.err = errors.New("401") }},
		{name: "grounded completion error", setup: func(h *harness) {
			h.index.passages = []vectorindex.Passage{{Text: "x"}}
			h.llm.err = errors.New("503")
		}},
		{name: "web completion error", setup: func(h *harness) {
			h.searcher.results = webResults
			h.llm.err = errors.New("503")
		}},
		{name: "panic", setup: func(h *harness) {
			h.index.passages = []vectorindex.Passage{{Text: "x"}}
			h.llm.panics = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)

			env := h.orchestrator().Answer(context.Background(), "q")

			assert.Equal(t, ApologyMessage, env.Markdown)
			assert.Equal(t, dialogue.ErrCodeRAGFailure, env.Error)
			assert.Equal(t, mainMenu, env.Buttons)
		})
	}
}

func TestAnswerUnconfiguredEmbeddingUsesWeb(t *testing.T) {
	h := newHarness()
	h.embedder.err = embedding.ErrNotConfigured
	h.searcher.results = webResults

	env := h.orchestrator().Answer(context.Background(), "q")

	assert.Equal(t, 1, h.searcher.calls)
	assert.Empty(t, env.Error)
}

func TestAnswerQueryLogFailureDoesNotAbort(t *testing.T) {
	h := newHarness()
	h.queries.err = errors.New("sheet quota")
	h.index.passages = []vectorindex.Passage{{Text: "x"}}

	env := h.orchestrator().Answer(context.Background(), "q")

	assert.Equal(t, "an answer", env.Markdown)
	assert.Len(t, h.queries.queries, 1)
}

func TestAnswerWithNilCollaborators(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil, nil, nil, Config{Buttons: mainMenu}, logger.NewNopLogger())

	env := o.Answer(context.Background(), "q")

	assert.Equal(t, NotFoundMessage, env.Markdown)
	assert.Equal(t, mainMenu, env.Buttons)
}

func TestSourcesFooter(t *testing.T) {
	tests := []struct {
		name     string
		passages []vectorindex.Passage
		want     string
	}{
		{name: "none", want: ""},
		{name: "missing fields", passages: []vectorindex.Passage{{Source: "a.pdf"}, {Page: 3}}, want: ""},
		{
			name: "dedup keeps order",
			passages: []vectorindex.Passage{
				{Source: "b.pdf", Page: 1},
				{Source: "a.pdf", Page: 4},
				{Source: "b.pdf", Page: 1},
			},
			want: "\n\n---\n*Sources: b.pdf (Page 1), a.pdf (Page 4)*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourcesFooter(tt.passages))
		})
	}
}
