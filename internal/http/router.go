package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"metodiky-ai/internal/handlers"
	"metodiky-ai/internal/rag"
	"metodiky-ai/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine        rag.Engine
	FeedbackStore storage.FeedbackStore
	HealthChecker handlers.CollectionChecker
	Collection    string

	// DocsDir is served under /metodiky/ so citation links resolve.
	DocsDir string

	// Username and Password enable HTTP basic auth when both are set.
	Username string
	Password string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine)
	feedbackHandler := handlers.NewFeedbackHandler(deps.FeedbackStore)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecker, deps.Collection)

	// Health stays reachable without credentials for probes.
	r.Method(http.MethodGet, "/healthz", healthHandler)

	r.Group(func(r chi.Router) {
		if deps.Username != "" && deps.Password != "" {
			r.Use(middleware.BasicAuth("metodiky", map[string]string{
				deps.Username: deps.Password,
			}))
		}

		r.Route("/api", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Method(http.MethodPost, "/feedback", feedbackHandler)
		})

		// Source documents, targeted by citation links.
		if deps.DocsDir != "" {
			fileServer := http.StripPrefix("/metodiky/", http.FileServer(http.Dir(deps.DocsDir)))
			r.Handle("/metodiky/*", fileServer)
		}
	})

	return r
}
