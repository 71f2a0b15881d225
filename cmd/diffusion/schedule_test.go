package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScheduledInvalidSpec(t *testing.T) {
	err := runScheduled(context.Background(), "not a schedule", zerolog.Nop(), func(context.Context) error {
		return nil
	})
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestRunScheduledRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var runs atomic.Int32
	err := runScheduled(ctx, "@every 1s", zerolog.Nop(), func(context.Context) error {
		runs.Add(1)
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), runs.Load())
	assert.NotErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}
