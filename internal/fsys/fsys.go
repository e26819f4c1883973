// Package fsys provides the read-only filesystem abstraction used by the walker
// and the classifier, with an OS implementation and an afero-backed one.
package fsys

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the read-only filesystem interface required for traversal and classification.
type FS interface {
	// ReadDir lists a directory. Implementations return entries sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Stat follows symlinks.
	Stat(name string) (fs.FileInfo, error)

	// Open opens a file for reading.
	Open(name string) (io.ReadCloser, error)

	// RealPath resolves all symlinks in name. Filesystems without symlink
	// support return the cleaned path.
	RealPath(name string) (string, error)
}

// osFS implements FS using the OS filesystem
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() FS {
	return &osFS{}
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (o *osFS) RealPath(name string) (string, error) {
	return filepath.EvalSymlinks(name)
}
