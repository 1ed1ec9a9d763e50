package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(client, "submit", 2, time.Minute)
	ctx := context.Background()

	for i, want := range []bool{true, true, false, false} {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i+1)
	}
	ok, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	assert.Equal(t, time.Minute, mr.TTL("submit:10.0.0.1"))
	mr.FastForward(time.Minute)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
	require.NoError(t, l.Close())
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	l := NewRedisLimiter(client, "submit", 1, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewRedisLimiterFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedisLimiterFromURL(context.Background(), "redis://"+mr.Addr(), "p", 1, time.Second)
	require.NoError(t, err)
	defer l.Close()

	_, err = NewRedisLimiterFromURL(context.Background(), "not a url", "p", 1, time.Second)
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, _ := l.Allow(ctx, "a")
		assert.Equal(t, want, ok, "request %d", i+1)
	}
	now = now.Add(time.Minute)
	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)

	unlimited := NewMemoryLimiter(0, time.Minute)
	for range 100 {
		ok, _ := unlimited.Allow(ctx, "a")
		require.True(t, ok)
	}
}
