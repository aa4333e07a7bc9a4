package shared

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// Lock age after which a holder is assumed to have died without cleanup.
const staleLockAge = 30 * time.Minute

// RunLock is a cross-process advisory lock ensuring a single sync run is
// active system-wide. The lock is non-blocking: a held lock means another
// run is in progress and the caller should exit.
type RunLock struct {
	path  string
	flock *flock.Flock
}

// NewRunLock creates a RunLock for the given lock file path.
func NewRunLock(path string) *RunLock {
	return &RunLock{path: path, flock: flock.New(path)}
}

// Acquire attempts to take the lock without blocking. A lock file older
// than 30 minutes is treated as orphaned and removed before the attempt.
// Returns ErrLockHeld when another process holds the lock.
func (l *RunLock) Acquire() error {
	if info, err := os.Stat(l.path); err == nil {
		if age := time.Since(info.ModTime()); age > staleLockAge {
			os.Remove(l.path)
		}
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}

	return nil
}

// Release unlocks and removes the lock file. Errors are ignored: the next
// run recovers via the staleness check.
func (l *RunLock) Release() {
	l.flock.Unlock()
	os.Remove(l.path)
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}
