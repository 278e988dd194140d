package rag

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/dialogue"
	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/llm"
	"flcs-chatbot-be/pkg/rag/prompt"
	"flcs-chatbot-be/pkg/vectorindex"
	"flcs-chatbot-be/pkg/websearch"
)

const (
	ApologyMessage  = "Sorry, an internal error occurred while processing your AI request."
	NotFoundMessage = "Sorry, I couldn't find information about that in the FLCS documents or on the web. Please try rephrasing your question, or book an appointment to talk to a counselor."
	WebDisclaimer   = "\n\n---\n*Note: this answer is based on web search results, not on official FLCS documents. Please verify important details with our team.*"
)

// QueryLogger records each question that reaches the knowledge base.
type QueryLogger interface {
	LogQuery(ctx context.Context, query string) error
}

type Config struct {
	TopK              int
	GroundedMaxTokens int
	WebMaxTokens      int
	Temperature       float64 // 0 is sent as is, negative selects the default
	WebResults        int
	CallTimeout       time.Duration
	Buttons           []string // attached to every reply
}

func DefaultConfig() Config {
	return Config{
		TopK:              4,
		GroundedMaxTokens: 200,
		WebMaxTokens:      100,
		Temperature:       0.3,
		WebResults:        3,
		CallTimeout:       20 * time.Second,
	}
}

// Orchestrator answers free-text questions from the knowledge base and falls
// back to the web when the knowledge base cannot help.
type Orchestrator struct {
	embedder embedding.EmbeddingProvider
	index    vectorindex.Index
	llm      llm.LLMProvider
	searcher websearch.Searcher
	queries  QueryLogger
	cfg      Config
	logger   logger.ILogger
}

var _ dialogue.Answerer = &Orchestrator{}

func NewOrchestrator(
	embedder embedding.EmbeddingProvider,
	index vectorindex.Index,
	provider llm.LLMProvider,
	searcher websearch.Searcher,
	queries QueryLogger,
	cfg Config,
	log logger.ILogger,
) *Orchestrator {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.GroundedMaxTokens <= 0 {
		cfg.GroundedMaxTokens = def.GroundedMaxTokens
	}
	if cfg.WebMaxTokens <= 0 {
		cfg.WebMaxTokens = def.WebMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.WebResults <= 0 {
		cfg.WebResults = def.WebResults
	}
	if embedder == nil {
		embedder = embedding.Unconfigured{}
	}
	if index == nil {
		index = vectorindex.Unconfigured{}
	}
	if provider == nil {
		provider = llm.Unconfigured{}
	}
	if searcher == nil {
		searcher = websearch.Unconfigured{}
	}
	return &Orchestrator{
		embedder: embedder,
		index:    index,
		llm:      provider,
		searcher: searcher,
		queries:  queries,
		cfg:      cfg,
		logger:   log,
	}
}

// Answer never fails: every error path ends in an apology envelope carrying
// the configured buttons.
func (o *Orchestrator) Answer(ctx context.Context, query string) (env dialogue.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("RAG", "Panic while answering", map[string]interface{}{
				"query": query,
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
			env = o.apology()
		}
	}()

	o.logQuery(ctx, query)

	vector, err := o.embed(ctx, query)
	switch {
	case errors.Is(err, embedding.ErrNotConfigured):
		o.logger.Warn("RAG", "Embedding not configured, skipping knowledge base", nil)
		return o.webFallback(ctx, query)
	case err != nil:
		o.logger.Error("RAG", "Embedding failed", map[string]interface{}{"error": err.Error()})
		return o.apology()
	}

	passages := o.retrieve(ctx, vector)
	if len(passages) == 0 {
		o.logger.Info("RAG", "No passages retrieved, using web fallback", nil)
		return o.webFallback(ctx, query)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	answer, err := o.complete(ctx, prompt.Grounded(query, texts), o.cfg.GroundedMaxTokens)
	if err != nil {
		o.logger.Error("RAG", "Grounded completion failed", map[string]interface{}{"error": err.Error()})
		return o.apology()
	}

	if strings.Contains(answer, prompt.NotHelpfulMarker) {
		o.logger.Info("RAG", "Grounded answer not helpful, using web fallback", map[string]interface{}{
			"passages": len(passages),
		})
		return o.webFallback(ctx, query)
	}

	return dialogue.NewEnvelope(answer+SourcesFooter(passages), o.cfg.Buttons)
}

func (o *Orchestrator) webFallback(ctx context.Context, query string) dialogue.Envelope {
	results := o.search(ctx, query)
	if len(results) == 0 {
		return dialogue.NewEnvelope(NotFoundMessage, o.cfg.Buttons)
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		if r.Title != "" {
			snippets = append(snippets, r.Title+": "+r.Snippet)
		} else {
			snippets = append(snippets, r.Snippet)
		}
	}

	answer, err := o.complete(ctx, prompt.Web(query, snippets), o.cfg.WebMaxTokens)
	if err != nil {
		o.logger.Error("RAG", "Web completion failed", map[string]interface{}{"error": err.Error()})
		return o.apology()
	}
	return dialogue.NewEnvelope(answer+WebDisclaimer, o.cfg.Buttons)
}

func (o *Orchestrator) logQuery(ctx context.Context, query string) {
	if o.queries == nil {
		return
	}
	if err := o.queries.LogQuery(ctx, query); err != nil {
		o.logger.Warn("RAG", "Query log failed", map[string]interface{}{"error": err.Error()})
	}
}

func (o *Orchestrator) embed(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := o.callContext(ctx)
	defer cancel()
	return o.embedder.Embed(ctx, query)
}

// retrieve treats every index failure as an empty result.
func (o *Orchestrator) retrieve(ctx context.Context, vector []float32) []vectorindex.Passage {
	ctx, cancel := o.callContext(ctx)
	defer cancel()

	passages, err := o.index.Query(ctx, vector, o.cfg.TopK)
	if err != nil {
		o.logger.Error("RAG", "Vector index query failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if len(passages) > o.cfg.TopK {
		passages = passages[:o.cfg.TopK]
	}
	return passages
}

// search treats every search failure as no results.
func (o *Orchestrator) search(ctx context.Context, query string) []websearch.Result {
	ctx, cancel := o.callContext(ctx)
	defer cancel()

	results, err := o.searcher.Search(ctx, query, o.cfg.WebResults)
	if err != nil {
		o.logger.Warn("RAG", "Web search failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if len(results) > o.cfg.WebResults {
		results = results[:o.cfg.WebResults]
	}
	return results
}

func (o *Orchestrator) complete(ctx context.Context, text string, maxTokens int) (string, error) {
	ctx, cancel := o.callContext(ctx)
	defer cancel()
	return o.llm.Generate(ctx, text, llm.WithMaxTokens(maxTokens), llm.WithTemperature(o.cfg.Temperature))
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.CallTimeout)
}

func (o *Orchestrator) apology() dialogue.Envelope {
	return dialogue.NewEnvelope(ApologyMessage, o.cfg.Buttons).WithError(dialogue.ErrCodeRAGFailure)
}
