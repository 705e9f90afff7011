package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"metodiky-ai/internal/config"
	"metodiky-ai/internal/ingest"
	"metodiky-ai/internal/llm"
	"metodiky-ai/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)

	pipeline := ingest.NewPipeline(cfg.DocsDir, embedder, vectorStore, cfg.QdrantCollection)

	slog.Info("Starting ingestion", "docs_dir", cfg.DocsDir)
	if err := pipeline.IngestAll(ctx); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	slog.Info("Ingestion finished")
}
