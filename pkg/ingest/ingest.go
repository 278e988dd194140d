package ingest

import (
	"context"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/vectorindex"
)

type Result struct {
	Documents int
	Chunks    int
	Failed    []string
}

// Run embeds every chunk of every document and replaces that document's
// passages in the index. A document that fails is reported and skipped; the
// rest are still written.
func Run(ctx context.Context, docs []Document, embedder embedding.EmbeddingProvider, writer vectorindex.Writer, log logger.ILogger) Result {
	var res Result
	for _, doc := range docs {
		records, err := embedDocument(ctx, doc, embedder)
		if err == nil {
			err = writer.ReplaceSource(ctx, doc.Source, records)
		}
		if err != nil {
			log.Error("INGEST", "Document failed", map[string]interface{}{
				"source": doc.Source,
				"error":  err.Error(),
			})
			res.Failed = append(res.Failed, doc.Source)
			continue
		}

		res.Documents++
		res.Chunks += len(records)
		log.Info("INGEST", "Document indexed", map[string]interface{}{
			"source": doc.Source,
			"chunks": len(records),
		})
	}
	return res
}

func embedDocument(ctx context.Context, doc Document, embedder embedding.EmbeddingProvider) ([]vectorindex.Record, error) {
	records := make([]vectorindex.Record, 0, len(doc.Chunks))
	for _, c := range doc.Chunks {
		vec, err := embedding.EmbedDocument(ctx, embedder, c.Text)
		if err != nil {
			return nil, err
		}
		records = append(records, vectorindex.Record{
			Text:   c.Text,
			Source: c.Source,
			Page:   c.Page,
			Vector: vec,
		})
	}
	return records, nil
}
