package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kramify/internal/pipeline"
	"github.com/starford/kramify/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// onRun, if non-nil, receives the summary of every run triggered over HTTP.
func NewRouter(svc *pipeline.Service, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler, onRun func(pipeline.Summary)) chi.Router {
	h := NewHandler(svc, store, onRun)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// In-memory conversion.
	r.Post("/convert", h.Convert)

	// Conversion ledger.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)

	// Link inventory.
	r.Get("/inspect", h.Inspect)

	// Full pass over the content root.
	r.Post("/run", h.Run)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
