package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLimiterSeparateBuckets(t *testing.T) {
	l := NewKeyedLimiter(time.Hour, 1)

	assert.True(t, l.Allow("/a"))
	assert.False(t, l.Allow("/a"), "second call on same key must wait for refill")
	assert.True(t, l.Allow("/b"), "other keys have their own bucket")
	assert.Equal(t, 2, l.Keys())
}

func TestKeyedLimiterBurst(t *testing.T) {
	l := NewKeyedLimiter(time.Hour, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("/a"))
	}
	assert.False(t, l.Allow("/a"))
}

func TestKeyedLimiterWaitHonoursContext(t *testing.T) {
	l := NewKeyedLimiter(time.Hour, 1)
	require.NoError(t, l.Wait(context.Background(), "/a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "/a"))
}

func TestKeyedLimiterMinimumGap(t *testing.T) {
	gap := 30 * time.Millisecond
	l := NewKeyedLimiter(gap, 1)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "/a"))
	require.NoError(t, l.Wait(ctx, "/a"))
	assert.GreaterOrEqual(t, time.Since(start), gap-5*time.Millisecond)
}

func TestKeyedLimiterZeroIntervalIsUnlimited(t *testing.T) {
	l := NewKeyedLimiter(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("/a"))
	}
}
