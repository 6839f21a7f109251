// Package testutil provides shared test helpers for asset trees and target files.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/assetfill/internal/storage"
)

// Start and Stop are the default region sentinels.
const (
	Start = "// START - MODIFY"
	Stop  = "// END - MODIFY"
)

// TargetHead and TargetTail surround the marked region in TargetFile.
const (
	TargetHead = "/* eslint-disable comma-dangle */\n// DON'T MODIFY AUTO GENERATED\nimport type { typeAssest } from \"./mAssets\";\n\nconst assets: typeAssest[] =\n"
	TargetTail = "\n\nexport { assets };\n"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Assets creates a temporary asset root holding zero-filled files of the
// given sizes, keyed by slash-separated relative path.
func Assets(t *testing.T, files map[string]int) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	for rel, size := range files {
		WriteFile(t, root, rel, string(make([]byte, size)))
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return abs
}

// TargetFile writes a target file whose region holds region and returns
// the directory provider and the file's relative name.
func TargetFile(t *testing.T, region string) (*storage.FS, string) {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "assets.ts", TargetHead+Start+region+Stop+TargetTail)
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store, "assets.ts"
}
