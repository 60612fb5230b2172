// Package storage defines the read-only content file-system abstraction.
package storage

import (
	"errors"
	"io/fs"
)

// ErrOutsideRoot is returned for any path that would resolve outside the content root.
var ErrOutsideRoot = errors.New("storage: path escapes content root")

// Provider is the interface for content file operations. All paths are
// relative to the content root and use forward slashes or the OS separator.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// ReadDir lists the immediate children of dir, sorted by name.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Stat returns file info for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// Read returns the raw bytes of the regular file at path.
	Read(path string) ([]byte, error)
}
