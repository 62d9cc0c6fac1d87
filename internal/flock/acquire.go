package flock

import (
	"context"
	"os"
	"time"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// lockRetryInterval is how long to wait between lock attempts.
const lockRetryInterval = 50 * time.Millisecond

// lockFilePerm is the permission for lock files.
const lockFilePerm = 0o600

// Acquire opens (creating if needed) the file at path and acquires an
// exclusive lock on it, retrying until the timeout elapses or ctx is
// canceled. On success the returned file holds the lock; release it with
// Release. Returns ErrLockTimeout if the lock stays contended.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, ledgererrors.Wrap(err, "failed to open lock file")
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, ledgererrors.ErrLockTimeout
		}

		time.Sleep(lockRetryInterval)
	}
}

// Release unlocks and closes a file returned by Acquire.
// It is safe to call with nil.
func Release(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return ledgererrors.Wrap(err, "failed to release lock")
	}
	return f.Close()
}
