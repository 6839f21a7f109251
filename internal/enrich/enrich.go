// Package enrich fills the computed fields of asset descriptors from the
// asset files on disk and their version-control history.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/starford/assetfill/internal/apperr"
	"github.com/starford/assetfill/internal/bytesize"
	"github.com/starford/assetfill/internal/history"
	"github.com/starford/assetfill/internal/models"
	"github.com/starford/assetfill/internal/storage"
)

// Enricher computes missing descriptor fields. It never overwrites a field
// that already has a value, so enriching twice is a no-op.
type Enricher struct {
	assets   storage.Provider
	resolver history.Resolver
	logger   *slog.Logger
	limit    int
}

// New returns an Enricher reading assets from the given provider. limit
// bounds the number of descriptors processed at once; 0 means no bound.
func New(assets storage.Provider, resolver history.Resolver, logger *slog.Logger, limit int) *Enricher {
	if resolver == nil {
		resolver = history.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{assets: assets, resolver: resolver, logger: logger, limit: limit}
}

// Enrich returns a new slice with every descriptor enriched, in input order.
// The input is not modified. The first failure aborts the whole batch.
func (e *Enricher) Enrich(ctx context.Context, ds []models.Descriptor) ([]models.Descriptor, error) {
	out := make([]models.Descriptor, len(ds))

	g, gCtx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, d := range ds {
		g.Go(func() error {
			res, err := e.one(gCtx, d)
			if err != nil {
				return fmt.Errorf("enrich %s: %w", d.URL, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enricher) one(ctx context.Context, d models.Descriptor) (models.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.Descriptor{}, err
	}

	info, err := e.assets.Stat(d.URL)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrOutsideRoot):
		return models.Descriptor{}, fmt.Errorf("%w: %v", apperr.ErrAssetNotFound, err)
	case err != nil:
		return models.Descriptor{}, err
	case info.IsDir():
		return models.Descriptor{}, fmt.Errorf("%w: %s is a directory", apperr.ErrAssetNotFound, d.URL)
	}

	r := d.Clone()
	if r.Size == "" {
		_ = r.Set(models.KeySize, bytesize.FormatDefault(info.Size()))
	}
	if r.DateModified == "" {
		date, ok := e.resolver.Resolve(ctx, d.URL)
		if !ok {
			date = history.FormatTime(info.ModTime())
			e.logger.Debug("enrich: no history, using mtime", slog.String("url", d.URL))
		}
		_ = r.Set(models.KeyDateModified, date)
	}
	if r.Name == "" {
		_ = r.Set(models.KeyName, path.Base(d.URL))
	}
	return r, nil
}
