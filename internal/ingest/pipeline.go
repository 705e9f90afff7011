package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"metodiky-ai/internal/bank"
	"metodiky-ai/internal/contextutil"
	"metodiky-ai/internal/vectorstore"
)

// embedBatchSize bounds one embeddings request.
const embedBatchSize = 32

// PassageEmbedder is the slice of the embeddings client the pipeline needs.
type PassageEmbedder interface {
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline ingests policy documents from a directory into the vector index.
type Pipeline struct {
	docsDir      string
	embedder     PassageEmbedder
	vectorStore  vectorstore.VectorStore
	collection   string
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(docsDir string, embedder PassageEmbedder, vectorStore vectorstore.VectorStore, collection string) *Pipeline {
	return &Pipeline{
		docsDir:      docsDir,
		embedder:     embedder,
		vectorStore:  vectorStore,
		collection:   collection,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		logger:       slog.Default(),
	}
}

// IngestFile extracts, chunks, embeds and indexes a single document.
// Every chunk's payload carries the full metadata contract: dokument,
// banka, kapitola, cast, strana and the chunk text itself.
func (p *Pipeline) IngestFile(ctx context.Context, filename string) error {
	logger := contextutil.LoggerFromContext(ctx)

	path := filepath.Join(p.docsDir, filename)
	text, err := ExtractText(path)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		logger.WarnContext(ctx, "document contains no text", "file", filename)
		return nil
	}

	bankName := bank.Detect(filename, text)

	chunks := SplitText(text, p.chunkSize, p.chunkOverlap)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "file", filename)
		return nil
	}

	var vectors [][]float32
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := p.embedder.EmbedPassages(ctx, chunks[start:end])
		if err != nil {
			return fmt.Errorf("failed to embed chunks of %s: %w", filename, err)
		}
		vectors = append(vectors, batch...)
	}

	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch for %s: expected %d, got %d", filename, len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[i],
			Meta: map[string]any{
				"dokument": filename,
				"banka":    bankName,
				"kapitola": DetectChapter(chunk),
				"cast":     i,
				"strana":   strconv.Itoa(i + 1),
				"content":  chunk,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors for %s: %w", filename, err)
	}

	logger.InfoContext(ctx, "ingested document", "file", filename, "bank", bankName, "chunks", len(chunks))
	return nil
}

// IngestAll ingests every supported document in the docs directory.
// Errors for individual files are logged but don't stop the run.
func (p *Pipeline) IngestAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	entries, err := os.ReadDir(p.docsDir)
	if err != nil {
		return fmt.Errorf("failed to read docs directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, entry.Name())
		}
	}

	logger.InfoContext(ctx, "starting ingestion", "total_files", len(files))

	var successCount, errorCount int
	for _, filename := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.IngestFile(ctx, filename); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to ingest file", "file", filename, "error", err)
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "ingestion completed", "total_files", len(files), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("ingestion completed with %d errors", errorCount)
	}
	return nil
}
