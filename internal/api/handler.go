// Package api provides HTTP handlers for the looksee REST API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"looksee/internal/catalog"
	"looksee/internal/domain"
)

// sessionHeader carries the caller's session identity. When absent, a fresh
// session is minted and echoed back so the client can keep it.
const sessionHeader = "X-Session-ID"

// Handler serves the profiling API. Every request operates on the caller's
// session-scoped analytical table.
type Handler struct {
	sessions *SessionManager
	datasets []domain.Dataset
	log      *slog.Logger
}

// NewHandler creates a Handler. datasets may be nil when no demo catalog is
// configured.
func NewHandler(sessions *SessionManager, datasets []domain.Dataset, log *slog.Logger) *Handler {
	return &Handler{sessions: sessions, datasets: datasets, log: log}
}

// session resolves the caller's session, assigning an id when none was sent.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = h.sessions.NewID()
	}
	w.Header().Set(sessionHeader, id)
	return h.sessions.acquire(r.Context(), id)
}

// Ingest handles POST /v1/ingest: either a JSON source descriptor or a
// multipart upload. Uploads are spooled to a temp file whose declared name
// preserves the original filename for extension dispatch.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var src domain.Source
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		loc, name, err := h.spoolUpload(r)
		if err != nil {
			writeError(w, err)
			return
		}
		defer os.Remove(loc) //nolint:errcheck
		src = domain.Source{Location: loc, DeclaredName: name}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			writeError(w, domain.ErrValidation("decode request body: %v", err))
			return
		}
		if src.Location == "" {
			writeError(w, domain.ErrValidation("location is required"))
			return
		}
	}

	ok := s.ingest.Ingest(r.Context(), src)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       ok,
		"findings": s.ingest.LastFindings(),
	})
}

// spoolUpload writes the uploaded file to a temp path and returns its
// location and declared name.
func (h *Handler) spoolUpload(r *http.Request) (location, declaredName string, err error) {
	f, header, err := r.FormFile("file")
	if err != nil {
		return "", "", domain.ErrValidation("multipart field %q: %v", "file", err)
	}
	defer f.Close() //nolint:errcheck

	tmp, err := os.CreateTemp("", "looksee-upload-*")
	if err != nil {
		return "", "", domain.ErrIngestion("spool upload: %v", err)
	}
	defer tmp.Close() //nolint:errcheck

	if _, err := io.Copy(tmp, f); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", "", domain.ErrIngestion("spool upload: %v", err)
	}
	return tmp.Name(), filepath.Base(header.Filename), nil
}

// Columns handles GET /v1/columns.
func (h *Handler) Columns(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	cols, err := s.profile.Columns(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cols == nil {
		cols = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
}

// ExtractMetadata handles POST /v1/metadata: a fresh extraction pass.
func (h *Handler) ExtractMetadata(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"metadata": s.profile.ExtractMetadata(r.Context())})
}

// Metadata handles GET /v1/metadata: last computed records, no recompute.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"metadata": s.profile.Metadata()})
}

// Summary handles GET /v1/columns/{name}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	column := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, s.profile.Summarize(r.Context(), column))
}

// Findings handles GET /v1/findings: validation findings from the last
// successful ingestion.
func (h *Handler) Findings(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	findings := s.ingest.LastFindings()
	if findings == nil {
		findings = []domain.ValidationFinding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

// Datasets handles GET /v1/datasets.
func (h *Handler) Datasets(w http.ResponseWriter, r *http.Request) {
	datasets := h.datasets
	if datasets == nil {
		datasets = []domain.Dataset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

// IngestDataset handles POST /v1/datasets/{name}/ingest.
func (h *Handler) IngestDataset(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	name := chi.URLParam(r, "name")
	ds, err := catalog.Find(h.datasets, name)
	if err != nil {
		writeError(w, err)
		return
	}
	ok := s.ingest.Ingest(r.Context(), domain.Source{Location: ds.Location})
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       ok,
		"dataset":  ds.Name,
		"findings": s.ingest.LastFindings(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var unsupported *domain.UnsupportedFormatError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &unsupported):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
