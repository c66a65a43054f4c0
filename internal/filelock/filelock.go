// Package filelock serializes file writes between processes: advisory flock
// locking plus write-to-temp-and-rename, for files shared by concurrent runs
// over one case root.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an advisory lock backed by a file next to the data it guards.
type Lock struct {
	fl   *flock.Flock
	path string
}

// New creates a lock for path. The lock file appears on first acquisition.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path), path: path}
}

// Acquire blocks until the lock is held.
func (l *Lock) Acquire() error {
	if err := l.fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	return nil
}

// TryAcquire takes the lock without blocking and reports whether it was
// taken.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", l.path, err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// AtomicWrite writes data through a temp file in the target's directory and
// renames it over the target, so readers never see a partial file. Parent
// directories are created as needed.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// WriteLocked atomically writes path while holding a sibling path+".lock"
// advisory lock, and removes the lock file again afterwards.
func WriteLocked(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}

	lockPath := path + ".lock"
	lock := New(lockPath)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer os.Remove(lockPath)
	defer lock.Release()

	return AtomicWrite(path, data)
}
