package handlers

import (
	"encoding/json"
	"net/http"

	"metodiky-ai/internal/contextutil"
	"metodiky-ai/internal/storage"
)

// FeedbackHandler records user ratings of answers.
type FeedbackHandler struct {
	store storage.FeedbackStore
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(store storage.FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// FeedbackRequest represents the HTTP request payload for feedback.
type FeedbackRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
	Comment  string `json:"comment,omitempty"`
}

// FeedbackResponse confirms a stored feedback record.
type FeedbackResponse struct {
	ID string `json:"id"`
}

// ServeHTTP stores one feedback record.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" || req.Feedback == "" {
		logger.WarnContext(ctx, "incomplete feedback", "has_question", req.Question != "", "has_feedback", req.Feedback != "")
		writeError(w, http.StatusBadRequest, "Question and feedback are required")
		return
	}

	record := &storage.FeedbackRecord{
		Question: req.Question,
		Answer:   req.Answer,
		Feedback: req.Feedback,
		Comment:  req.Comment,
	}
	if err := h.store.Save(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to save feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	logger.InfoContext(ctx, "feedback recorded", "id", record.ID, "feedback", req.Feedback)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(FeedbackResponse{ID: record.ID})
}
