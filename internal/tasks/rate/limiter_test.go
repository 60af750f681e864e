package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int) (*QueueRateLimiter, *time.Time) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	l := NewQueueRateLimiter(client, QueueConfig{
		Name:      "bookings",
		RateLimit: RateLimit{Window: time.Minute, MaxJobs: max},
	})
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllowWithinWindow(t *testing.T) {
	l, _ := newLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "adv-1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := l.Allow(ctx, "adv-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "adv-2")
	require.NoError(t, err)
	assert.True(t, ok, "identifiers are limited independently")
}

func TestAllowAfterWindowSlides(t *testing.T) {
	l, clock := newLimiter(t, 1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "adv-1")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "adv-1")
	assert.False(t, ok)

	*clock = clock.Add(2 * time.Minute)
	ok, err := l.Allow(ctx, "adv-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestZeroMaxDisablesLimit(t *testing.T) {
	l, _ := newLimiter(t, 0)
	for i := 0; i < 10; i++ {
		ok, err := l.Allow(context.Background(), "adv-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
