package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"metodiky-ai/internal/contextutil"
	"metodiky-ai/internal/rag"
)

// markdown renders answers to HTML. Unsafe rendering is required because
// citation anchors are injected into the answer before rendering.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// AskHandler handles HTTP requests for policy questions.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for questions.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// CitationResponse represents one source reference in the HTTP response.
type CitationResponse struct {
	Document string `json:"dokument"`
	Page     string `json:"strana"`
	Chapter  string `json:"kapitola"`
}

// AskResponse represents the HTTP response payload for questions.
type AskResponse struct {
	Question string `json:"question"`

	// Answer is the merged markdown answer with citation links.
	Answer string `json:"answer"`

	// AnswerHTML is the answer rendered to HTML for direct display.
	AnswerHTML string `json:"answer_html"`

	// References lists the source locations behind the answer.
	References []CitationResponse `json:"references"`

	// CoverageGaps lists banks the full-text scan found for this query
	// that nearest-neighbor retrieval missed.
	CoverageGaps []string `json:"coverage_gaps,omitempty"`
}

// ServeHTTP answers a policy question.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	// Enforce bounds for user-provided K. Zero means "default".
	if req.K < 0 {
		req.K = 0
	}
	if req.K > 30 {
		req.K = 30
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question: req.Question,
		K:        req.K,
	})
	if err != nil {
		handleEngineError(w, ctx, err, "Failed to answer question")
		return
	}

	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(ragResp.Answer), &rendered); err != nil {
		logger.ErrorContext(ctx, "failed to render answer", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render answer")
		return
	}

	references := make([]CitationResponse, len(ragResp.References))
	for i, ref := range ragResp.References {
		references[i] = CitationResponse{
			Document: ref.Document,
			Page:     ref.Page,
			Chapter:  ref.Chapter,
		}
	}

	resp := AskResponse{
		Question:     ragResp.Question,
		Answer:       ragResp.Answer,
		AnswerHTML:   rendered.String(),
		References:   references,
		CoverageGaps: ragResp.CoverageGaps,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
