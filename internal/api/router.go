package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"looksee/internal/config"
	"looksee/internal/middleware"
)

// NewRouter wires the chi router with the standard middleware stack and all
// API routes.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", sessionHeader},
		ExposedHeaders: []string{sessionHeader},
	}))
	r.Use(middleware.RateLimit(cfg.Settings.RateLimitRPS, cfg.Settings.RateLimitBurst))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingest", h.Ingest)
		r.Get("/columns", h.Columns)
		r.Get("/columns/{name}/summary", h.Summary)
		r.Post("/metadata", h.ExtractMetadata)
		r.Get("/metadata", h.Metadata)
		r.Get("/findings", h.Findings)
		r.Get("/datasets", h.Datasets)
		r.Post("/datasets/{name}/ingest", h.IngestDataset)
	})

	return r
}
