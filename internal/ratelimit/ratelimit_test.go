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

func newRedisLimiter(t *testing.T, rule Rule) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l, err := NewFixedWindowLimiter(client, "test:ratelimit", rule)
	require.NoError(t, err)
	return l, mr
}

func TestFixedWindowLimiter(t *testing.T) {
	ctx := context.Background()
	l, _ := newRedisLimiter(t, Rule{Limit: 2, Window: time.Minute})

	d := l.Allow(ctx, "ip-1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	assert.True(t, l.Allow(ctx, "ip-1").Allowed)

	d = l.Allow(ctx, "ip-1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	assert.True(t, l.Allow(ctx, "ip-2").Allowed, "keys are independent")
}

func TestFixedWindowLimiter_NewWindowResets(t *testing.T) {
	ctx := context.Background()
	l, _ := newRedisLimiter(t, Rule{Limit: 1, Window: time.Minute})
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(ctx, "k").Allowed)
	assert.False(t, l.Allow(ctx, "k").Allowed)

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "k").Allowed)
}

func TestFixedWindowLimiter_FallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, Rule{Limit: 1, Window: time.Hour})
	mr.Close()

	assert.True(t, l.Allow(ctx, "k").Allowed)
	assert.False(t, l.Allow(ctx, "k").Allowed)
}

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	_, err := NewFixedWindowLimiter(nil, "", Rule{Limit: 1, Window: time.Second})
	assert.Error(t, err)
	_, err = NewLocalLimiter(Rule{Limit: 0, Window: time.Second})
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocalLimiter(Rule{Limit: 3, Window: time.Hour})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "a").Allowed)
	}
	d := l.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 20*time.Minute, d.RetryAfter)

	assert.Equal(t, 0, l.Cleanup(time.Hour))
	l.limiters["a"].lastAccess = time.Now().Add(-2 * time.Hour)
	assert.Equal(t, 1, l.Cleanup(time.Hour))
}
