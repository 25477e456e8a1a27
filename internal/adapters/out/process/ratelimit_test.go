package process

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitedRunner_Unlimited(t *testing.T) {
	next := &scriptedRunner{}
	runner := NewRateLimitedRunner(next, 0, 0, log.New(io.Discard))

	for i := 0; i < 50; i++ {
		_, err := runner.Run(context.Background(), Command{Name: "oras"})
		require.NoError(t, err)
	}
	assert.Equal(t, 50, next.calls)
}

func TestRateLimitedRunner_WaitRespectsContext(t *testing.T) {
	next := &scriptedRunner{}
	runner := NewRateLimitedRunner(next, 0.001, 1, log.New(io.Discard))

	_, err := runner.Run(context.Background(), Command{Name: "oras"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = runner.Run(ctx, Command{Name: "oras"})

	assert.ErrorContains(t, err, "rate limit wait for oras")
	assert.Equal(t, 1, next.calls)
}

func TestRateLimitedRunner_CancelledContext(t *testing.T) {
	next := &scriptedRunner{}
	runner := NewRateLimitedRunner(next, 10, 1, log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, Command{Name: "oras"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, next.calls)
}
