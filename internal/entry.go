// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/assetfill/internal/api"
	"github.com/starford/assetfill/internal/enrich"
	"github.com/starford/assetfill/internal/fillservice"
	"github.com/starford/assetfill/internal/history"
	"github.com/starford/assetfill/internal/mcpserver"
	"github.com/starford/assetfill/internal/storage"
	"github.com/starford/assetfill/internal/watch"
)

// deps holds everything a command needs after setup.
type deps struct {
	cfg    *Config
	logger *slog.Logger
	job    *fillservice.Job
	close  func()
}

func setup(ctx context.Context, opts []Option) (*deps, *application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("assets_root", cfg.Assets.Root),
		slog.String("catalog", cfg.Catalog.Path),
		slog.String("target", cfg.Target.Path),
		slog.Bool("history", cfg.History.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	assets, err := storage.NewFS(cfg.Assets.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init assets: %w", err)
	}

	targets, err := storage.NewFS(filepath.Dir(cfg.Target.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("init target dir: %w", err)
	}

	rt := &deps{cfg: cfg, logger: logger, close: func() {}}

	resolver := app.resolver
	if resolver == nil {
		resolver, rt.close, err = buildResolver(ctx, cfg, assets.Root(), logger)
		if err != nil {
			return nil, nil, err
		}
	}

	enricher := enrich.New(assets, resolver, logger, cfg.Enrich.Concurrency)
	svc := fillservice.NewService(enricher, targets, fillservice.Markers{
		Start: cfg.Target.StartMarker,
		Stop:  cfg.Target.StopMarker,
	}, logger)

	rt.job = &fillservice.Job{
		Service: svc,
		Catalog: cfg.Catalog.Path,
		Target:  filepath.Base(cfg.Target.Path),
	}
	return rt, app, nil
}

// buildResolver returns the git resolver, optionally memoized in SQLite.
func buildResolver(ctx context.Context, cfg *Config, dir string, logger *slog.Logger) (history.Resolver, func(), error) {
	noop := func() {}
	if !cfg.History.Enabled {
		return history.Nop{}, noop, nil
	}

	git := history.NewGit(dir, cfg.History.Timeout, logger)
	if !git.Available() || cfg.History.CachePath == "" {
		return git, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.History.CachePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create history cache dir: %w", err)
	}
	cache, err := history.OpenCache(cfg.History.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("init history cache: %w", err)
	}
	head := git.Head(ctx)
	if head != "" {
		if n, err := cache.Prune(head); err != nil {
			logger.Warn("history cache prune failed", slog.String("error", err.Error()))
		} else if n > 0 {
			logger.Debug("history cache pruned", slog.Int64("rows", n))
		}
	}
	return history.NewCached(git, cache, head, logger), func() { _ = cache.Close() }, nil
}

// Run performs a single fill with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, _, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := rt.job.Run(ctx)
	if err != nil {
		return err
	}

	rt.logger.Info("Fill complete",
		slog.String("target", report.Target),
		slog.Int("assets", report.Assets),
		slog.Bool("unchanged", report.Unchanged))
	return nil
}

// Watch performs a fill, then repeats it whenever the catalog or the asset
// tree changes, until ctx is cancelled or a termination signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	rt, _, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := rt.job.Run(ctx); err != nil {
		rt.logger.Error("initial fill failed", slog.String("error", err.Error()))
	}

	rt.logger.Info("Watching for changes",
		slog.String("catalog", rt.cfg.Catalog.Path),
		slog.String("assets_root", rt.cfg.Assets.Root))

	return watch.Watch(ctx, watch.Paths{
		Catalog:   rt.cfg.Catalog.Path,
		AssetRoot: rt.cfg.Assets.Root,
		Ignore:    []string{rt.cfg.Target.Path},
	}, rt.cfg.Watch.Debounce, rt.logger, func(ctx context.Context) error {
		report, err := rt.job.Run(ctx)
		if err != nil {
			return err
		}
		rt.logger.Info("Fill complete",
			slog.Int("assets", report.Assets),
			slog.Bool("unchanged", report.Unchanged))
		return nil
	})
}

// Serve exposes the fill job over HTTP.
func Serve(ctx context.Context, opts ...Option) error {
	rt, _, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	logger := rt.logger
	httpServer := &http.Server{
		Addr:              rt.cfg.App.HTTP.Address(),
		Handler:           api.NewRouter(rt.job),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP runs the MCP server on stdin/stdout. Logs go to stderr unless
// WithLogOutput says otherwise.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, app, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("Starting MCP server on stdio")
	return mcpserver.New(rt.job, app.version).ServeStdio()
}
