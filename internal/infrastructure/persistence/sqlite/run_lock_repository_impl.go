// Package sqlite persists run locks in a SQLite database next to the
// pipeline's stage records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/koetsu-dev/exemplar/internal/domain/model/lock"
	"github.com/koetsu-dev/exemplar/internal/domain/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_locks (
	lock_id     TEXT PRIMARY KEY,
	pid         INTEGER NOT NULL,
	hostname    TEXT NOT NULL,
	acquired_at TEXT NOT NULL,
	expires_at  TEXT NOT NULL
);
`

// Open opens (creating if needed) the lock database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lock database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create run_locks table: %w", err)
	}
	return db, nil
}

// RunLockRepositoryImpl implements repository.RunLockRepository with SQLite.
type RunLockRepositoryImpl struct {
	db *sql.DB
}

// NewRunLockRepository creates a SQLite-backed run lock repository.
func NewRunLockRepository(db *sql.DB) repository.RunLockRepository {
	return &RunLockRepositoryImpl{db: db}
}

// Acquire attempts to acquire the run lock with atomic stale-lock cleanup.
// Returns (nil, nil) when the lock is held by a live process.
func (r *RunLockRepositoryImpl) Acquire(ctx context.Context, lockID lock.LockID, ttl time.Duration) (*lock.RunLock, error) {
	now := time.Now().UTC()

	existing, err := r.Find(ctx, lockID)
	if err == nil && existing != nil {
		stale := existing.IsExpired() || !isProcessRunning(existing.PID())
		if !stale {
			return nil, nil
		}

		// Delete the stale lock; if another process raced us to it, verify
		// it is really gone before inserting.
		result, _ := r.db.ExecContext(ctx,
			`DELETE FROM run_locks WHERE lock_id = ? AND (expires_at < ? OR pid = ?)`,
			lockID.String(), now.Format(time.RFC3339), existing.PID(),
		)
		if result != nil {
			if rows, _ := result.RowsAffected(); rows == 0 {
				if still, _ := r.Find(ctx, lockID); still != nil {
					return nil, nil
				}
			}
		}
	}

	runLock, err := lock.NewRunLock(lockID, ttl)
	if err != nil {
		return nil, fmt.Errorf("create run lock: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO run_locks (lock_id, pid, hostname, acquired_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		runLock.LockID().String(),
		runLock.PID(),
		runLock.Hostname(),
		runLock.AcquiredAt().Format(time.RFC3339),
		runLock.ExpiresAt().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Another process acquired the lock first.
			return nil, nil
		}
		return nil, fmt.Errorf("insert run lock: %w", err)
	}

	return runLock, nil
}

// Find retrieves the lock for lockID, or (nil, nil) when none is held.
func (r *RunLockRepositoryImpl) Find(ctx context.Context, lockID lock.LockID) (*lock.RunLock, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT lock_id, pid, hostname, acquired_at, expires_at FROM run_locks WHERE lock_id = ?`,
		lockID.String(),
	)

	var (
		lockIDStr  string
		pid        int
		hostname   string
		acquiredAt string
		expiresAt  string
	)
	if err := row.Scan(&lockIDStr, &pid, &hostname, &acquiredAt, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run lock: %w", err)
	}

	acquiredAtTime, err := time.Parse(time.RFC3339, acquiredAt)
	if err != nil {
		return nil, fmt.Errorf("parse acquired_at: %w", err)
	}
	expiresAtTime, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	lid, err := lock.NewLockID(lockIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid lock ID: %w", err)
	}

	return lock.ReconstructRunLock(lid, pid, hostname, acquiredAtTime, expiresAtTime), nil
}

// Release deletes the lock.
func (r *RunLockRepositoryImpl) Release(ctx context.Context, lockID lock.LockID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM run_locks WHERE lock_id = ?`, lockID.String())
	if err != nil {
		return fmt.Errorf("delete run lock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lock not found: %s", lockID.String())
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isProcessRunning checks whether a PID belongs to a live process.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
