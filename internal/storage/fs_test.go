package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("export const x = 1;\n")
	require.NoError(t, s.Write("assets.ts", content))

	got, err := s.Read("assets.ts")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("src/helper/assets.ts", []byte("deep")))

	got, err := s.Read("src/helper/assets.ts")
	require.NoError(t, err)
	assert.Equal(t, "deep", string(got))
}

func TestStat(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("assets/3d/a.glb", make([]byte, 2048)))

	info, err := s.Stat("./assets/3d/a.glb")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), info.Size())
	assert.False(t, info.IsDir())
}

func TestStat_Missing(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Stat("nope.glb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.ts",
		"/etc/shadow",
	}
	for _, p := range cases {
		_, err := s.Read(p)
		assert.ErrorIs(t, err, ErrOutsideRoot, "read %q", p)
		_, err = s.Stat(p)
		assert.ErrorIs(t, err, ErrOutsideRoot, "stat %q", p)
		assert.ErrorIs(t, s.Write(p, []byte("x")), ErrOutsideRoot, "write %q", p)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("atomic.ts", []byte("original content")))
	require.NoError(t, s.Write("atomic.ts", []byte("updated")))

	got, err := s.Read("atomic.ts")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(got))

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".assetfill-tmp-*"))
	assert.Empty(t, matches)
}

func TestWritePreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	s := tempRoot(t)
	abs := filepath.Join(s.Root(), "script.ts")
	require.NoError(t, os.WriteFile(abs, []byte("old"), 0o600))

	require.NoError(t, s.Write("script.ts", []byte("new")))

	info, err := os.Stat(abs)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "assetfill-test-*")
	require.NoError(t, err)
	_ = f.Close()

	_, err = NewFS(f.Name())
	assert.Error(t, err)
}
