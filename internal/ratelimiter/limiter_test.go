package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-platform/fixturepool/internal/ratelimiter"
)

func TestLimiter_BurstThenWaits(t *testing.T) {
	l := ratelimiter.New(2)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short))
}

func TestLimiter_DisabledAndNil(t *testing.T) {
	ctx := context.Background()
	for range 100 {
		require.NoError(t, ratelimiter.New(0).Wait(ctx))
	}

	var l *ratelimiter.Limiter
	assert.NoError(t, l.Wait(ctx))
}
