package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/assetfill/internal/apperr"
	"github.com/starford/assetfill/internal/catalog"
	"github.com/starford/assetfill/internal/fillservice"
	"github.com/starford/assetfill/internal/models"
)

// Job is the fill job the handlers drive.
type Job interface {
	Run(ctx context.Context) (*fillservice.Report, error)
	Preview(ctx context.Context) ([]models.Descriptor, error)
}

var _ Job = (*fillservice.Job)(nil)

// Handler holds API route handlers.
type Handler struct {
	job Job
}

// NewHandler creates a new Handler.
func NewHandler(job Job) *Handler {
	return &Handler{job: job}
}

// ListAssets handles GET /api/assets: the enriched catalog, no writes.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ds, err := h.job.Preview(r.Context())
	if err != nil {
		writeError(w, "preview failed", err)
		return
	}
	if ds == nil {
		ds = []models.Descriptor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": ds,
		"total":  len(ds),
	})
}

// Region handles GET /api/assets/region: the exact text that a fill would
// place between the markers.
func (h *Handler) Region(w http.ResponseWriter, r *http.Request) {
	ds, err := h.job.Preview(r.Context())
	if err != nil {
		writeError(w, "preview failed", err)
		return
	}
	content, err := catalog.Render(ds)
	if err != nil {
		writeError(w, "render failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// Fill handles POST /api/fill: runs the job and returns its report.
func (h *Handler) Fill(w http.ResponseWriter, r *http.Request) {
	report, err := h.job.Run(r.Context())
	if err != nil {
		writeError(w, "fill failed", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrMarkerNotFound):
		status = http.StatusUnprocessableEntity
	}
	slog.Error(msg, slog.String("error", err.Error()), slog.String("phase", apperr.Phase(err)))
	writeJSON(w, status, errResponse{Error: err.Error(), Phase: apperr.Phase(err)})
}
