package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

// Locker serializes runs that share one version file.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

// FileLock is a Locker backed by an flock(2) lock file.
type FileLock struct {
	path    string
	timeout time.Duration
}

// NewFileLock creates a lock on path. A non-positive timeout uses LockTimeout.
func NewFileLock(path string, timeout time.Duration) *FileLock {
	if timeout <= 0 {
		timeout = LockTimeout
	}
	return &FileLock{path: path, timeout: timeout}
}

// Path returns the lock file location.
func (l *FileLock) Path() string {
	return l.path
}

// Lock acquires an exclusive lock, waiting at most the configured timeout.
// The parent directory is created first so a nested state path works on the first run.
func (l *FileLock) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory for %s: %w", l.path, err)
	}
	lock := flock.New(l.path)
	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, LockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock %s within %s", l.path, l.timeout)
	}
	return lock.Unlock, nil
}
