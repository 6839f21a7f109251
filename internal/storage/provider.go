// Package storage defines the rooted file-system access used for assets and targets.
package storage

import "io/fs"

// Provider is the interface for rooted file operations.
type Provider interface {
	// Root returns the absolute directory all paths are resolved against.
	Root() string
	// Stat returns file info for path (relative to root).
	Stat(path string) (fs.FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to root) with content.
	Write(path string, content []byte) error
}
