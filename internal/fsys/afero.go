package fsys

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// aferoFS implements FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAfero creates a new afero filesystem implementation.
// Only afero.OsFs resolves symlinks in RealPath.
func NewAfero(fs afero.Fs) FS {
	return &aferoFS{fs: fs}
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	// afero.ReadDir sorts by name
	entries, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) Open(name string) (io.ReadCloser, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return a.fs.Open(name)
}

func (a *aferoFS) RealPath(name string) (string, error) {
	if _, ok := a.fs.(*afero.OsFs); ok {
		return filepath.EvalSymlinks(name)
	}
	if _, err := a.fs.Stat(name); err != nil {
		return "", err
	}
	return filepath.Clean(name), nil
}
