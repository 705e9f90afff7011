package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"metodiky-ai/internal/vectorstore"
	"metodiky-ai/internal/vectorstore/mocks"
)

type fakePassageEmbedder struct {
	err   error
	calls int
}

func (f *fakePassageEmbedder) EmbedPassages(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test document: %v", err)
	}
}

func TestPipelineIngestFile(t *testing.T) {
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "Hypoteky_KB.md", "3.1 Doložení obratu\nKomerční banka vyžaduje výpisy z účtu za 12 měsíců.")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	var captured []vectorstore.Point
	store.EXPECT().Upsert(gomock.Any(), "metodiky", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			captured = points
			return nil
		})

	pipeline := NewPipeline(docsDir, &fakePassageEmbedder{}, store, "metodiky")
	if err := pipeline.IngestFile(context.Background(), "Hypoteky_KB.md"); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("upserted %d points, want 1", len(captured))
	}
	point := captured[0]
	if point.ID == "" {
		t.Error("point ID should be generated")
	}

	meta := point.Meta
	if meta["dokument"] != "Hypoteky_KB.md" {
		t.Errorf("dokument = %v, want Hypoteky_KB.md", meta["dokument"])
	}
	if meta["banka"] != "Komerční banka" {
		t.Errorf("banka = %v, want Komerční banka", meta["banka"])
	}
	if meta["kapitola"] != "3.1" {
		t.Errorf("kapitola = %v, want 3.1", meta["kapitola"])
	}
	if meta["cast"] != 0 {
		t.Errorf("cast = %v, want 0", meta["cast"])
	}
	if meta["strana"] != "1" {
		t.Errorf("strana = %v, want \"1\"", meta["strana"])
	}
	if meta["content"] == "" {
		t.Error("content payload field missing")
	}
}

func TestPipelineIngestFileEmptyDocument(t *testing.T) {
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "empty.txt", "   \n  ")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	// No Upsert expected.

	pipeline := NewPipeline(docsDir, &fakePassageEmbedder{}, store, "metodiky")
	if err := pipeline.IngestFile(context.Background(), "empty.txt"); err != nil {
		t.Errorf("IngestFile() on empty document should be a no-op, got %v", err)
	}
}

func TestPipelineIngestFileEmbedderFailure(t *testing.T) {
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "Hypoteky_CS.txt", "Česká spořitelna akceptuje daňové přiznání.")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	embedErr := errors.New("embedding server down")
	pipeline := NewPipeline(docsDir, &fakePassageEmbedder{err: embedErr}, store, "metodiky")
	if err := pipeline.IngestFile(context.Background(), "Hypoteky_CS.txt"); !errors.Is(err, embedErr) {
		t.Errorf("IngestFile() error = %v, want wrapped embedder error", err)
	}
}

func TestPipelineIngestAll(t *testing.T) {
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "Hypoteky_KB.md", "Komerční banka vyžaduje výpisy.")
	writeDoc(t, docsDir, "Hypoteky_RB.txt", "Raiffeisenbank posuzuje obrat.")
	writeDoc(t, docsDir, "poznamky.json", `{"skip": true}`)
	if err := os.Mkdir(filepath.Join(docsDir, "archiv"), 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Upsert(gomock.Any(), "metodiky", gomock.Any()).Return(nil).Times(2)

	embedder := &fakePassageEmbedder{}
	pipeline := NewPipeline(docsDir, embedder, store, "metodiky")
	if err := pipeline.IngestAll(context.Background()); err != nil {
		t.Fatalf("IngestAll() error = %v", err)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want 2 (unsupported files skipped)", embedder.calls)
	}
}

func TestPipelineIngestAllContinuesOnError(t *testing.T) {
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "Hypoteky_KB.md", "Komerční banka vyžaduje výpisy.")
	writeDoc(t, docsDir, "Hypoteky_RB.txt", "Raiffeisenbank posuzuje obrat.")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	upsertErr := errors.New("qdrant unavailable")
	// First file fails, the second is still attempted.
	gomock.InOrder(
		store.EXPECT().Upsert(gomock.Any(), "metodiky", gomock.Any()).Return(upsertErr),
		store.EXPECT().Upsert(gomock.Any(), "metodiky", gomock.Any()).Return(nil),
	)

	pipeline := NewPipeline(docsDir, &fakePassageEmbedder{}, store, "metodiky")
	if err := pipeline.IngestAll(context.Background()); err == nil {
		t.Error("IngestAll() should report that some files failed")
	}
}
