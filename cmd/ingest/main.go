// Policy document ingestion: chunk, embed, and upsert into the index.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ashford-hq/hr-assistant/internal/config"
	"github.com/ashford-hq/hr-assistant/internal/rag"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dir := flag.String("dir", "documents/kb", "directory of policy .md/.txt files")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.PolicyAnswerEnabled() {
		slog.Error("GEMINI_API_KEY and QDRANT_URL must be set to ingest documents")
		os.Exit(1)
	}

	ctx := context.Background()

	gemini, err := rag.NewGeminiClient(ctx, rag.GeminiConfig{
		APIKey:     cfg.Gemini.APIKey,
		EmbedModel: cfg.Gemini.EmbedModel,
	})
	if err != nil {
		slog.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}

	index, err := rag.NewQdrantIndex(rag.QdrantConfig{
		URL:            cfg.Qdrant.URL,
		CollectionName: cfg.Qdrant.Collection,
		APIKey:         cfg.Qdrant.APIKey,
		VectorSize:     uint64(cfg.Qdrant.VectorSize),
	})
	if err != nil {
		slog.Error("Failed to initialize Qdrant client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := index.Close(); closeErr != nil {
			slog.Error("Failed to close Qdrant client", "error", closeErr)
		}
	}()

	n, err := rag.NewIngestor(gemini, index, logger).IngestDir(ctx, *dir)
	if err != nil {
		slog.Error("Ingestion failed", "error", err, "chunks_written", n)
		os.Exit(1)
	}

	slog.Info("Ingestion complete", "dir", *dir, "chunks", n, "collection", cfg.Qdrant.Collection)
}
