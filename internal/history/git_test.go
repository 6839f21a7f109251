package history

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// initRepo creates a git repository in a fresh temp dir, or skips the test
// when git is not installed.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	gitRun(t, dir, nil, "init", "-q")
	return dir
}

func gitRun(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	base := []string{"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func commitFile(t *testing.T, dir, rel, date string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(rel+date), 0o644))
	gitRun(t, dir, nil, "add", rel)
	env := []string{"GIT_AUTHOR_DATE=" + date, "GIT_COMMITTER_DATE=" + date}
	gitRun(t, dir, env, "commit", "-q", "-m", "add "+rel)
}

func TestGit_ResolveCommitted(t *testing.T) {
	dir := initRepo(t)
	commitFile(t, dir, "assets/3d/tree.glb", "2021-05-21T09:05:36+03:00")

	g := NewGit(dir, 5*time.Second, quietLogger())
	date, ok := g.Resolve(context.Background(), "./assets/3d/tree.glb")
	require.True(t, ok)
	assert.Equal(t, "2021-05-21 09:05:36 +0300", date)
}

func TestGit_ResolveLatestCommit(t *testing.T) {
	dir := initRepo(t)
	commitFile(t, dir, "a.glb", "2021-05-21T09:05:36+03:00")
	commitFile(t, dir, "a.glb", "2021-06-24T12:11:03+03:00")

	g := NewGit(dir, 5*time.Second, quietLogger())
	date, ok := g.Resolve(context.Background(), "a.glb")
	require.True(t, ok)
	assert.Equal(t, "2021-06-24 12:11:03 +0300", date)
}

func TestGit_ResolveUntracked(t *testing.T) {
	dir := initRepo(t)
	commitFile(t, dir, "tracked.glb", "2021-05-21T09:05:36+03:00")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.glb"), []byte("x"), 0o644))

	g := NewGit(dir, 5*time.Second, quietLogger())
	_, ok := g.Resolve(context.Background(), "untracked.glb")
	assert.False(t, ok)
}

func TestGit_OutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	g := NewGit(dir, 5*time.Second, quietLogger())
	_, ok := g.Resolve(context.Background(), "a.glb")
	assert.False(t, ok)
	assert.Equal(t, "", g.Head(context.Background()))
}

func TestGit_Head(t *testing.T) {
	dir := initRepo(t)
	commitFile(t, dir, "a.glb", "2021-05-21T09:05:36+03:00")

	g := NewGit(dir, 5*time.Second, quietLogger())
	assert.Len(t, g.Head(context.Background()), 40)
}

func TestGit_MissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	g := NewGit(t.TempDir(), 0, quietLogger())
	assert.False(t, g.Available())

	_, ok := g.Resolve(context.Background(), "a.glb")
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	_, ok := Nop{}.Resolve(context.Background(), "a.glb")
	assert.False(t, ok)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2021, 8, 6, 13, 47, 35, 0, time.FixedZone("EEST", 3*3600))
	assert.Equal(t, "2021-08-06 10:47:35 +0000", FormatTime(ts))
}
