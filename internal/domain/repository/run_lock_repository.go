// Package repository defines persistence ports for domain models.
package repository

import (
	"context"
	"time"

	"github.com/koetsu-dev/exemplar/internal/domain/model/lock"
)

// RunLockRepository persists run locks. Acquire returns nil (no error) when
// the lock is already held by a live process; stale locks (expired TTL or
// dead PID) are taken over.
type RunLockRepository interface {
	Acquire(ctx context.Context, lockID lock.LockID, ttl time.Duration) (*lock.RunLock, error)
	Find(ctx context.Context, lockID lock.LockID) (*lock.RunLock, error)
	Release(ctx context.Context, lockID lock.LockID) error
}
