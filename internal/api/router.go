// Package api exposes the fill job over HTTP for previews and on-demand runs.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with health and asset routes mounted.
func NewRouter(job Job) chi.Router {
	h := NewHandler(job)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/assets", h.ListAssets)
		r.Get("/assets/region", h.Region)
		r.Post("/fill", h.Fill)
	})

	return r
}
