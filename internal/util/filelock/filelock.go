// Package filelock provides the manager's single-instance guard,
// replacing the source's bespoke pheme.util.lock.Lock with
// github.com/gofrs/flock.
package filelock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// Name is the lock file the manager acquires, one per run, matching
// the source's LOCKFILE constant.
const Name = "LONGITUDINAL_MANAGER"

// Lock guards a single concurrent manager instance.
type Lock struct {
	flock *flock.Flock
}

// New creates a Lock rooted at dir/Name.
func New(dir string) *Lock {
	return &Lock{flock: flock.New(filepath.Join(dir, Name))}
}

// TryAcquire attempts a non-blocking exclusive lock, returning false
// (and no error) if another instance already holds it.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, errors.Wrap(err, "acquiring manager lock")
	}
	return ok, nil
}

// Release gives up the lock. Safe to call even if it was never
// acquired.
func (l *Lock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	return errors.Wrap(l.flock.Unlock(), "releasing manager lock")
}

// DefaultDir returns the directory the lock file lives in, falling
// back to the OS temp directory when none is configured.
func DefaultDir(tmpDir string) string {
	if tmpDir != "" {
		return tmpDir
	}
	return os.TempDir()
}
