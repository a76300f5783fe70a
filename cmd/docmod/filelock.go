package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryInterval = 50 * time.Millisecond

// withFileLock runs fn while holding an exclusive flock on path+".lock".
// In-place writes from concurrent docmod runs serialize on this lock.
func withFileLock(ctx context.Context, path string, timeout time.Duration, fn func() error) error {
	lock := flock.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s: timed out after %s", path, timeout)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return fn()
}
