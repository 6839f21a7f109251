// Package watch re-runs a fill whenever the catalog or the asset tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Paths lists what to observe.
type Paths struct {
	// Catalog is the catalog file; its directory is watched so editor
	// rename-on-save is seen.
	Catalog string
	// AssetRoot is watched recursively; new directories are added at runtime.
	AssetRoot string
	// Ignore holds files whose events never trigger a run (the target file
	// when it lives under a watched directory).
	Ignore []string
}

// RunFunc performs one fill.
type RunFunc func(ctx context.Context) error

// Watch processes file change events until ctx is cancelled. Events are
// debounced: fn runs once after no relevant event arrived for debounce.
// Errors from fn are logged and watching continues.
func Watch(ctx context.Context, paths Paths, debounce time.Duration, logger *slog.Logger, fn RunFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	catalog, err := filepath.Abs(paths.Catalog)
	if err != nil {
		return err
	}
	assetRoot, err := filepath.Abs(paths.AssetRoot)
	if err != nil {
		return err
	}
	ignore := make(map[string]struct{}, len(paths.Ignore))
	for _, p := range paths.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignore[abs] = struct{}{}
		}
	}

	if err := addDirsRecursive(w, assetRoot); err != nil {
		return err
	}
	catalogDir := filepath.Dir(catalog)
	if !within(assetRoot, catalogDir) {
		if err := w.Add(catalogDir); err != nil {
			return err
		}
	}

	logger.Info("watcher: started",
		slog.String("catalog", catalog),
		slog.String("assets", assetRoot))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if err := fn(ctx); err != nil {
				logger.Error("watcher: fill failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := ev.Name
			if _, skip := ignore[name]; skip {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(name); statErr == nil && info.IsDir() && within(assetRoot, name) {
					if addErr := addDirsRecursive(w, name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", name))
					}
				}
			}

			if !relevant(name, catalog, assetRoot) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether a change at name affects the fill.
func relevant(name, catalog, assetRoot string) bool {
	return name == catalog || within(assetRoot, name)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
