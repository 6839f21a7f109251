package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS history (
	path     TEXT NOT NULL,
	revision TEXT NOT NULL,
	date     TEXT NOT NULL,
	PRIMARY KEY (path, revision)
);
`

// Cache stores resolved dates per (path, revision) in SQLite.
type Cache struct {
	conn *sql.DB
}

// OpenCache opens (or creates) the cache database and applies the schema.
func OpenCache(dsn string) (*Cache, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open cache: %w", err)
	}
	// Enrichment writes from many goroutines; one connection serialises them.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping cache: %w", err)
	}
	if _, err := conn.Exec(cacheSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply cache schema: %w", err)
	}
	return &Cache{conn: conn}, nil
}

// Get returns the cached date for path at revision.
func (c *Cache) Get(path, revision string) (string, bool, error) {
	var date string
	err := c.conn.QueryRow(`SELECT date FROM history WHERE path = ? AND revision = ?`, path, revision).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("history: cache get: %w", err)
	}
	return date, true, nil
}

// Put stores date for path at revision, replacing any previous value.
func (c *Cache) Put(path, revision, date string) error {
	_, err := c.conn.Exec(`
		INSERT INTO history (path, revision, date) VALUES (?, ?, ?)
		ON CONFLICT(path, revision) DO UPDATE SET date = excluded.date
	`, path, revision, date)
	if err != nil {
		return fmt.Errorf("history: cache put: %w", err)
	}
	return nil
}

// Prune deletes entries recorded for any revision other than keep.
func (c *Cache) Prune(keep string) (int64, error) {
	res, err := c.conn.Exec(`DELETE FROM history WHERE revision <> ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("history: cache prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Cached memoizes answers of another Resolver for one revision.
// Only positive answers are stored.
type Cached struct {
	next     Resolver
	cache    *Cache
	revision string
	logger   *slog.Logger
}

// NewCached wraps next. An empty revision disables caching.
func NewCached(next Resolver, cache *Cache, revision string, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, cache: cache, revision: revision, logger: logger}
}

// Resolve implements Resolver.
func (c *Cached) Resolve(ctx context.Context, path string) (string, bool) {
	if c.revision == "" || c.cache == nil {
		return c.next.Resolve(ctx, path)
	}

	date, ok, err := c.cache.Get(path, c.revision)
	if err != nil {
		c.logger.Warn("history: cache lookup failed", slog.String("path", path), slog.String("error", err.Error()))
	} else if ok {
		return date, true
	}

	date, ok = c.next.Resolve(ctx, path)
	if !ok {
		return "", false
	}
	if err := c.cache.Put(path, c.revision, date); err != nil {
		c.logger.Warn("history: cache store failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	return date, true
}
