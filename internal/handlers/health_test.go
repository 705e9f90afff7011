package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockChecker struct {
	exists bool
	err    error
}

func (m *mockChecker) CollectionExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name        string
		checker     *mockChecker
		wantStatus  int
		wantOverall string
	}{
		{"healthy", &mockChecker{exists: true}, http.StatusOK, "ok"},
		{"vector store down", &mockChecker{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
		{"collection missing", &mockChecker{exists: false}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checker, "metodiky")

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantOverall {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantOverall)
			}
		})
	}
}
