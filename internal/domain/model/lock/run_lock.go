// Package lock models the single-active-run guarantee per repository.
package lock

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LockID identifies the repository a run lock guards.
type LockID string

// NewLockID validates and normalizes a repository identity into a lock ID.
func NewLockID(repository string) (LockID, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return "", fmt.Errorf("repository identity is required")
	}
	return LockID(repository), nil
}

func (id LockID) String() string { return string(id) }

// RunLock is held for the duration of one pipeline run. A second invocation
// over the same repository is rejected while the lock is live.
type RunLock struct {
	lockID     LockID
	pid        int
	hostname   string
	acquiredAt time.Time
	expiresAt  time.Time
}

// NewRunLock creates a lock for the calling process with the given TTL.
func NewRunLock(lockID LockID, ttl time.Duration) (*RunLock, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}
	now := time.Now().UTC()
	return &RunLock{
		lockID:     lockID,
		pid:        os.Getpid(),
		hostname:   hostname,
		acquiredAt: now,
		expiresAt:  now.Add(ttl),
	}, nil
}

// ReconstructRunLock rebuilds a RunLock from persisted data.
func ReconstructRunLock(lockID LockID, pid int, hostname string, acquiredAt, expiresAt time.Time) *RunLock {
	return &RunLock{
		lockID:     lockID,
		pid:        pid,
		hostname:   hostname,
		acquiredAt: acquiredAt,
		expiresAt:  expiresAt,
	}
}

// IsExpired reports whether the lock's TTL has elapsed.
func (l *RunLock) IsExpired() bool {
	return time.Now().UTC().After(l.expiresAt)
}

func (l *RunLock) LockID() LockID        { return l.lockID }
func (l *RunLock) PID() int              { return l.pid }
func (l *RunLock) Hostname() string      { return l.hostname }
func (l *RunLock) AcquiredAt() time.Time { return l.acquiredAt }
func (l *RunLock) ExpiresAt() time.Time  { return l.expiresAt }
