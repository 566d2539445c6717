package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/inspect"
	"github.com/starford/kramify/internal/models"
	"github.com/starford/kramify/internal/pipeline"
	"github.com/starford/kramify/internal/storage"
)

const maxDocumentBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc   *pipeline.Service
	store storage.Provider
	onRun func(pipeline.Summary)
}

// NewHandler creates a new Handler.
func NewHandler(svc *pipeline.Service, store storage.Provider, onRun func(pipeline.Summary)) *Handler {
	return &Handler{svc: svc, store: store, onRun: onRun}
}

// documentPath extracts the document path from the URL wildcard.
// Supports encoded slashes (e.g. guides%2Fsetup.md).
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Convert handles POST /api/convert.
//
//	@Summary		Convert a Markdown document
//	@Tags			convert
//	@Accept			plain
//	@Produce		json
//	@Param			generator	query		string	false	"Target generator"	Enums(mkdocs, jekyll)
//	@Param			index		query		bool	false	"Treat the document as the site index"
//	@Success		200			{object}	ConvertResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/convert [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	q := r.URL.Query()
	gen := h.svc.Generator()
	if raw := q.Get("generator"); raw != "" {
		if gen, err = convert.ParseGenerator(raw); err != nil {
			writeServiceError(w, "convert", err)
			return
		}
	}
	isIndex := false
	if raw := q.Get("index"); raw != "" {
		if isIndex, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, "index must be a boolean")
			return
		}
	}

	res, err := h.svc.Convert(body, gen, isIndex)
	if err != nil {
		writeServiceError(w, "convert", err)
		return
	}
	writeJSON(w, http.StatusOK, newConvertResponse(gen, res))
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List converted documents from the ledger
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	DocumentListResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, _ *http.Request) {
	l, err := h.svc.Ledger()
	if err != nil {
		writeServiceError(w, "list documents", err)
		return
	}
	records, err := l.List()
	if err != nil {
		writeServiceError(w, "list documents", err)
		return
	}
	if records == nil {
		records = []models.ConversionRecord{}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: records, Total: len(records)})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get the ledger entry of one document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	models.ConversionRecord
//	@Failure		404		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	l, err := h.svc.Ledger()
	if err != nil {
		writeServiceError(w, "get document", err)
		return
	}
	rec, err := l.Get(path)
	if err != nil {
		writeServiceError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Inspect handles GET /api/inspect.
//
//	@Summary		Report links and constructs of every document
//	@Tags			inspect
//	@Produce		json
//	@Success		200	{object}	InspectResponse
//	@Security		BearerAuth
//	@Router			/inspect [get]
func (h *Handler) Inspect(w http.ResponseWriter, _ *http.Request) {
	reports, err := inspect.Site(h.store, h.svc.Generator())
	if err != nil {
		writeServiceError(w, "inspect", err)
		return
	}
	writeJSON(w, http.StatusOK, InspectResponse{Documents: reports})
}

// Run handles POST /api/run.
//
//	@Summary		Convert every document under the content root
//	@Tags			run
//	@Produce		json
//	@Success		200	{object}	RunResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/run [post]
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.TryRun(r.Context())
	if err != nil {
		writeServiceError(w, "run", err)
		return
	}
	if h.onRun != nil {
		h.onRun(summary)
	}
	writeJSON(w, http.StatusOK, summary)
}
