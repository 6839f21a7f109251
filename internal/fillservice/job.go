package fillservice

import (
	"context"

	"github.com/starford/assetfill/internal/apperr"
	"github.com/starford/assetfill/internal/catalog"
	"github.com/starford/assetfill/internal/models"
)

// Job binds a service to a catalog file and a target so callers (CLI,
// watcher, HTTP, MCP) can trigger a run without knowing the paths.
// The catalog is re-read on every call.
type Job struct {
	Service *Service
	Catalog string
	Target  string
}

// Run loads the catalog and fills the target.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	ds, err := catalog.Load(j.Catalog)
	if err != nil {
		return nil, apperr.InPhase(apperr.PhaseCatalog, err)
	}
	return j.Service.Run(ctx, ds, j.Target)
}

// Preview loads the catalog and returns the enriched descriptors.
func (j *Job) Preview(ctx context.Context) ([]models.Descriptor, error) {
	ds, err := catalog.Load(j.Catalog)
	if err != nil {
		return nil, apperr.InPhase(apperr.PhaseCatalog, err)
	}
	enriched, _, err := j.Service.Preview(ctx, ds)
	return enriched, err
}
