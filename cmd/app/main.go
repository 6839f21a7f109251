package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/assetfill/internal"
	"github.com/starford/assetfill/internal/apperr"
	pkgconfig "github.com/starford/assetfill/pkg/config"
)

var version = "dev"

type entryFunc func(ctx context.Context, opts ...internal.Option) error

// action loads the config named by --config and hands it to entry.
// A missing config file keeps the defaults.
func action(entry entryFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
		}

		return entry(ctx, opts...)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "assetfill",
		Usage:   "Fill size, date and name into an asset catalog and write it between the markers of a source file",
		Version: version,
		Action:  action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Fill once, then again whenever the catalog or an asset changes",
				Action: action(internal.Watch),
			},
			{
				Name:   "serve",
				Usage:  "Serve catalog previews and on-demand fills over HTTP",
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Expose fill tools to LLM clients over MCP stdio",
				Action: action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		attrs := []any{slog.String("error", err.Error())}
		if phase := apperr.Phase(err); phase != "" {
			attrs = append(attrs, slog.String("phase", phase))
		}
		slog.Error("application error", attrs...)
		os.Exit(1)
	}
}
