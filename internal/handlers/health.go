package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"metodiky-ai/internal/contextutil"
)

// CollectionChecker reports whether the index collection is reachable.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// HealthHandler reports service health including vector store reachability.
type HealthHandler struct {
	checker    CollectionChecker
	collection string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker CollectionChecker, collection string) *HealthHandler {
	return &HealthHandler{checker: checker, collection: collection}
}

// HealthResponse represents the health check payload.
type HealthResponse struct {
	Status      string `json:"status"`
	VectorStore string `json:"vector_store"`
}

// ServeHTTP reports service health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	resp := HealthResponse{Status: "ok", VectorStore: "ok"}
	status := http.StatusOK

	exists, err := h.checker.CollectionExists(ctx, h.collection)
	if err != nil {
		logger.WarnContext(ctx, "vector store unreachable", "error", err)
		resp.Status = "degraded"
		resp.VectorStore = "unavailable"
		status = http.StatusServiceUnavailable
	} else if !exists {
		resp.Status = "degraded"
		resp.VectorStore = "collection missing"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
