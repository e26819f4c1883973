// Package filelock writes output artifacts under an advisory lock so that two
// joinai runs targeting the same file never interleave, and readers never see
// a partially written artifact.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to an artifact path to form its lock file path.
const LockSuffix = ".lock"

// retryDelay is the polling interval while waiting for a held lock.
const retryDelay = 50 * time.Millisecond

// defaultPerm applies to artifacts that do not exist yet.
const defaultPerm fs.FileMode = 0644

// ErrLockTimeout is returned when the lock could not be acquired before the
// context expired.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// LockPath returns the lock file used for an artifact.
func LockPath(path string) string {
	return path + LockSuffix
}

// FileLock wraps a flock file lock for coordinating access to an artifact.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock at the given lock file path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// LockContext acquires an exclusive lock, polling until ctx is done.
func (fl *FileLock) LockContext(ctx context.Context) error {
	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrLockTimeout, fl.path, ctx.Err())
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to path through a temp file in the same directory
// followed by a rename. If anything fails the previous file is untouched and
// the temp file is removed. An existing file keeps its permission bits.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("output %s is not a regular file", path)
		}
		perm = info.Mode().Perm()
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed; nothing left to clean up
	tempFile = nil
	return nil
}

// LockAndUpdate reads the current artifact (nil if missing), passes it to fn
// and atomically writes the result, all under LockPath(path). Append mode
// uses this so the read and the write see the same file.
func LockAndUpdate(ctx context.Context, path string, fn func(existing []byte) ([]byte, error)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// The lock file outlives the write; walkers skip LockPath(path).
	lock := NewFileLock(LockPath(path))
	if err := lock.LockContext(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := fn(existing)
	if err != nil {
		return err
	}
	return AtomicWrite(path, data)
}
