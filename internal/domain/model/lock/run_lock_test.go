package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockID(t *testing.T) {
	id, err := NewLockID("  /repo/out  ")
	require.NoError(t, err)
	assert.Equal(t, "/repo/out", id.String())

	_, err = NewLockID("   ")
	assert.Error(t, err)
}

func TestNewRunLock(t *testing.T) {
	id, err := NewLockID("/repo/out")
	require.NoError(t, err)

	l, err := NewRunLock(id, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, id, l.LockID())
	assert.NotZero(t, l.PID())
	assert.NotEmpty(t, l.Hostname())
	assert.False(t, l.IsExpired())
	assert.True(t, l.ExpiresAt().After(l.AcquiredAt()))
}

func TestRunLock_IsExpired(t *testing.T) {
	id, err := NewLockID("/repo/out")
	require.NoError(t, err)

	expired := ReconstructRunLock(id, 1234, "host",
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	assert.True(t, expired.IsExpired())

	live := ReconstructRunLock(id, 1234, "host",
		time.Now(), time.Now().Add(time.Hour))
	assert.False(t, live.IsExpired())
}
