// Package fillservice sequences enrichment, rendering, marker search and
// the atomic rewrite of the target file.
package fillservice

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/starford/assetfill/internal/apperr"
	"github.com/starford/assetfill/internal/catalog"
	"github.com/starford/assetfill/internal/checksum"
	"github.com/starford/assetfill/internal/marker"
	"github.com/starford/assetfill/internal/models"
	"github.com/starford/assetfill/internal/storage"
)

// Enricher computes missing descriptor fields.
type Enricher interface {
	Enrich(ctx context.Context, ds []models.Descriptor) ([]models.Descriptor, error)
}

// Markers are the sentinel strings delimiting the rewritten region.
type Markers struct {
	Start string
	Stop  string
}

// Report describes the outcome of one run.
type Report struct {
	Target    string `json:"target"`
	Assets    int    `json:"assets"`
	HeadBytes int    `json:"headBytes"`
	TailBytes int    `json:"tailBytes"`
	Unchanged bool   `json:"unchanged"`
	Checksum  string `json:"checksum"`
}

// Service rewrites the marked region of target files with enriched catalogs.
type Service struct {
	enricher Enricher
	targets  storage.Provider
	markers  Markers
	logger   *slog.Logger
}

// NewService creates a new fill service. Target paths are resolved against targets.
func NewService(enricher Enricher, targets storage.Provider, markers Markers, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{enricher: enricher, targets: targets, markers: markers, logger: logger}
}

// Preview enriches ds and renders the region content without touching any file.
func (s *Service) Preview(ctx context.Context, ds []models.Descriptor) ([]models.Descriptor, []byte, error) {
	enriched, err := s.enricher.Enrich(ctx, ds)
	if err != nil {
		return nil, nil, apperr.InPhase(apperr.PhaseEnrich, err)
	}
	content, err := catalog.Render(enriched)
	if err != nil {
		return nil, nil, apperr.InPhase(apperr.PhaseRender, err)
	}
	return enriched, content, nil
}

// Run enriches ds and replaces the marked region of target with the result.
// Every failure aborts the run before the target is modified; the final
// write replaces the file atomically.
func (s *Service) Run(ctx context.Context, ds []models.Descriptor, target string) (*Report, error) {
	s.logger.Info("enriching assets", slog.Int("count", len(ds)))
	enriched, content, err := s.Preview(ctx, ds)
	if err != nil {
		return nil, err
	}

	data, err := s.targets.Read(target)
	if err != nil {
		return nil, apperr.InPhase(apperr.PhaseRead, err)
	}

	s.logger.Info("searching markers",
		slog.String("target", target),
		slog.String("start", s.markers.Start),
		slog.String("stop", s.markers.Stop))
	region, err := marker.Locate(bytes.NewReader(data), s.markers.Start, s.markers.Stop)
	if err != nil {
		return nil, apperr.InPhase(apperr.PhaseScan, err)
	}
	s.logger.Debug("markers found",
		slog.Int64("region_start", region.Start),
		slog.Int64("tail_offset", region.TailOffset),
		slog.Int("tail_bytes", len(region.Tail)))

	out, err := marker.Splice(data, region, content)
	if err != nil {
		return nil, apperr.InPhase(apperr.PhaseWrite, err)
	}

	report := &Report{
		Target:    target,
		Assets:    len(enriched),
		HeadBytes: len(content),
		TailBytes: len(region.Tail),
		Checksum:  checksum.Sum(out),
	}

	if checksum.Equal(out, data) {
		report.Unchanged = true
		s.logger.Info("target already up to date", slog.String("target", target))
		return report, nil
	}

	if err := s.targets.Write(target, out); err != nil {
		return nil, apperr.InPhase(apperr.PhaseWrite, err)
	}
	s.logger.Info("wrote region", slog.String("target", target), slog.Int("bytes", report.HeadBytes))
	s.logger.Info("wrote tail", slog.String("target", target), slog.Int("bytes", report.TailBytes))
	return report, nil
}
