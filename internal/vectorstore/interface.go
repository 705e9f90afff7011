package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks metodiky-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Item is a stored passage returned from the index: chunk text plus its
// metadata payload. Score is the similarity score for Query results and
// zero for scan results.
type Item struct {
	Content string
	Meta    map[string]any
	Score   float32
}

// VectorStore defines the interface for vector index operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query performs a nearest-neighbor search and returns the top k
	// items in similarity order.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Item, error)

	// ScanAll returns every item in the collection. This is a full scan
	// by design; callers accept the cost for correctness.
	ScanAll(ctx context.Context, collection string) ([]Item, error)

	// GetWhere returns items whose metadata field exactly matches value.
	GetWhere(ctx context.Context, collection, field, value string) ([]Item, error)
}
