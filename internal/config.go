package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Assets  AssetsConfig      `yaml:"assets"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Target  TargetConfig      `yaml:"target"`
	History HistoryConfig     `yaml:"history"`
	Enrich  EnrichConfig      `yaml:"enrich"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Target.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Enrich.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AssetsConfig holds the directory descriptor URLs are resolved against.
type AssetsConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// CatalogConfig holds the path of the YAML descriptor catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TargetConfig describes the file whose marked region is rewritten.
type TargetConfig struct {
	Path        string `yaml:"path"`
	StartMarker string `yaml:"start_marker"`
	StopMarker  string `yaml:"stop_marker"`
}

// Validate validates the target configuration.
func (c *TargetConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.StartMarker, validation.Required),
		validation.Field(&c.StopMarker, validation.Required),
	); err != nil {
		return err
	}
	if c.StartMarker == c.StopMarker {
		return errors.New("target: start_marker and stop_marker must differ")
	}
	return nil
}

// HistoryConfig controls last-commit date lookups.
//
// CachePath, when set, names a SQLite file memoizing git answers per HEAD
// revision; empty disables the cache.
type HistoryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	CachePath string        `yaml:"cache_path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("history: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// EnrichConfig bounds the enrichment fan-out. Zero means unbounded.
type EnrichConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Validate validates the enrich configuration.
func (c *EnrichConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(0)),
	)
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	if c.Debounce <= 0 {
		return fmt.Errorf("watch: debounce must be positive, got %s", c.Debounce)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Assets: AssetsConfig{
			Root: "./public",
		},
		Catalog: CatalogConfig{
			Path: "./assets.yaml",
		},
		Target: TargetConfig{
			Path:        "./src/helper/assets.ts",
			StartMarker: "// START - MODIFY",
			StopMarker:  "// END - MODIFY",
		},
		History: HistoryConfig{
			Enabled: true,
			Timeout: 10 * time.Second,
		},
		Enrich: EnrichConfig{
			Concurrency: 8,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
