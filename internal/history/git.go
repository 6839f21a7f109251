package history

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Git resolves dates with `git log`. Paths are relative to dir.
type Git struct {
	bin     string
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGit returns a Git resolver running in dir. When git is not on PATH the
// resolver stays usable and reports no history for every path.
func NewGit(dir string, timeout time.Duration, logger *slog.Logger) *Git {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	bin, err := exec.LookPath("git")
	if err != nil {
		logger.Debug("history: git not found, using file times", slog.String("error", err.Error()))
		bin = ""
	}
	return &Git{bin: bin, dir: dir, timeout: timeout, logger: logger}
}

// Available reports whether a git binary was found.
func (g *Git) Available() bool {
	return g.bin != ""
}

// Resolve implements Resolver.
func (g *Git) Resolve(ctx context.Context, path string) (string, bool) {
	return g.run(ctx, "log", "-1", "--pretty=%ci", "--", path)
}

// Head returns the current HEAD revision, or "" outside a repository.
func (g *Git) Head(ctx context.Context) string {
	rev, _ := g.run(ctx, "rev-parse", "HEAD")
	return rev
}

func (g *Git) run(ctx context.Context, args ...string) (string, bool) {
	if g.bin == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = g.dir

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		g.logger.Debug("history: git failed",
			slog.String("args", strings.Join(args, " ")),
			slog.String("error", err.Error()),
			slog.String("stderr", strings.TrimSpace(errBuf.String())))
		return "", false
	}

	res := strings.TrimSpace(out.String())
	if res == "" {
		return "", false
	}
	return res, true
}
