package main

import (
	"fmt"
	"log"

	"flcs-chatbot-be/internal/bootstrap"
	"flcs-chatbot-be/internal/config"
	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/repository/unitofwork"
	"flcs-chatbot-be/pkg/database"
	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/ingest"
	"flcs-chatbot-be/pkg/vectorindex"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func main() {
	opts := ingest.DefaultOptions()
	var dataDir string

	cmd := &cobra.Command{
		Use:          "ingest",
		Short:        "Load knowledge documents into the vector index",
		Long:         "Chunks every .txt, .md and .html file under --dir, embeds each chunk and replaces the file's previous chunks in the configured index. Run PDFs through pdftotext first.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, dataDir, opts)
		},
	}
	cmd.Flags().StringVar(&dataDir, "dir", "data", "directory of documents to ingest")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", opts.ChunkSize, "maximum characters per chunk")
	cmd.Flags().IntVar(&opts.Overlap, "overlap", opts.Overlap, "characters shared by neighbouring chunks")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(cmd *cobra.Command, dataDir string, opts ingest.Options) error {
	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(zapcore.InfoLevel)
	defer sysLogger.Sync()

	embedder := bootstrap.NewEmbeddingProvider(cfg, sysLogger)
	if _, ok := embedder.(embedding.Unconfigured); ok {
		return fmt.Errorf("embedding provider %q is not configured", cfg.Ai.EmbeddingProvider)
	}

	var writer vectorindex.Writer
	switch cfg.Index.Provider {
	case "qdrant":
		idx, err := vectorindex.NewQdrantIndex(vectorindex.QdrantConfig{
			Host:       cfg.Index.QdrantHost,
			Port:       cfg.Index.QdrantPort,
			APIKey:     cfg.Index.QdrantAPIKey,
			UseTLS:     cfg.Index.QdrantTLS,
			Collection: cfg.Index.Name,
		})
		if err != nil {
			return err
		}
		defer idx.Close()
		writer = idx
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		writer = vectorindex.NewPgvectorIndex(unitofwork.NewRepositoryFactory(db), cfg.Index.Name)
	default:
		return fmt.Errorf("unsupported VECTOR_INDEX_PROVIDER %q", cfg.Index.Provider)
	}

	docs, skipped, err := ingest.LoadDir(dataDir, opts)
	if err != nil {
		return err
	}
	for _, path := range skipped {
		cmd.Printf("Skipping unsupported file %s\n", path)
	}
	if len(docs) == 0 {
		cmd.Printf("No extractable text found under %s.\n", dataDir)
		return nil
	}

	res := ingest.Run(cmd.Context(), docs, embedder, writer, sysLogger)
	cmd.Printf("Ingestion complete: %d documents, %d chunks, %d failed\n", res.Documents, res.Chunks, len(res.Failed))
	return nil
}
