// Package history resolves the last-commit timestamp of files from version
// control. A missing answer is never an error: callers fall back to the
// file system modification time.
package history

import (
	"context"
	"time"
)

// DateLayout matches git's %ci output, e.g. "2021-06-24 12:11:03 +0300".
const DateLayout = "2006-01-02 15:04:05 -0700"

// Resolver answers the last-commit timestamp for a path. ok is false when
// there is no history for the path or the history source is unavailable.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, path string) (date string, ok bool)
}

// Nop never has an answer.
type Nop struct{}

// Resolve implements Resolver.
func (Nop) Resolve(context.Context, string) (string, bool) {
	return "", false
}

// FormatTime renders t in DateLayout, normalised to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
