package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docbrief/docbrief/internal/config"
)

func newTestLimiter(t *testing.T, enabled bool, rate float64, burst int) *GuestUploadLimiter {
	t.Helper()

	var bucket *TokenBucket
	if enabled {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		bucket = NewTokenBucket(client)
	}

	return NewGuestUploadLimiter(GuestLimiterParams{
		Config: config.Config{
			RateLimit: config.RateLimitConfig{
				Enabled:    enabled,
				GuestRate:  rate,
				GuestBurst: burst,
			},
		},
		Log:    zap.NewNop(),
		Bucket: bucket,
	})
}

func TestGuestLimiterBurstThenDeny(t *testing.T) {
	limiter := newTestLimiter(t, true, 0.1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d within burst should pass", i)
	}

	res, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Greater(t, res.RetryAfter.Seconds(), 0.0)
}

func TestGuestLimiterKeysPerClient(t *testing.T) {
	limiter := newTestLimiter(t, true, 0.1, 1)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "198.51.100.4")
	require.NoError(t, err)
	require.True(t, res.Allowed, "other clients have their own bucket")
}

func TestGuestLimiterDisabledAllowsAll(t *testing.T) {
	limiter := newTestLimiter(t, false, 0.1, 1)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		res, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
}

func TestGuestLimiterFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewGuestUploadLimiter(GuestLimiterParams{
		Config: config.Config{
			RateLimit: config.RateLimitConfig{Enabled: true, GuestRate: 1, GuestBurst: 1},
		},
		Log:    zap.NewNop(),
		Bucket: NewTokenBucket(client),
	})

	mr.Close()

	res, err := limiter.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
