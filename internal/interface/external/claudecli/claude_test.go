package claudecli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RawOutputPassthrough(t *testing.T) {
	// echo does not speak the JSON envelope; its output passes through as-is.
	r := Runner{Bin: "echo", Timeout: 5 * time.Second}
	out, err := r.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRun_MissingBinary(t *testing.T) {
	r := Runner{Bin: "definitely-not-a-real-binary-4f2a", Timeout: time.Second}
	_, err := r.Run(context.Background(), "hello")
	assert.Error(t, err)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Runner{Bin: "echo", Timeout: time.Second}
	_, err := r.Run(ctx, "hello")
	assert.Error(t, err)
}
