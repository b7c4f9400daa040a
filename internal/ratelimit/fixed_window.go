package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobtracker_backend/internal/logger"
)

// The script returns the new count and the remaining TTL of the window key.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// FixedWindowLimiter shares its counters through Redis so every instance sees
// the same budget. Redis failures fall back to a process-local limiter.
type FixedWindowLimiter struct {
	rule     Rule
	client   *redis.Client
	prefix   string
	fallback *LocalLimiter
	now      func() time.Time
}

func NewFixedWindowLimiter(client *redis.Client, prefix string, rule Rule) (*FixedWindowLimiter, error) {
	if err := rule.validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("rate limiter redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "jobtracker:ratelimit"
	}
	fallback, err := NewLocalLimiter(rule)
	if err != nil {
		return nil, err
	}
	return &FixedWindowLimiter{
		rule:     rule,
		client:   client,
		prefix:   prefix,
		fallback: fallback,
		now:      time.Now,
	}, nil
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) Decision {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.rule.Window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64Slice()
	if err != nil || len(res) != 2 {
		logger.CtxWarn(ctx, "Rate limiter redis unavailable, using local limiter", "error", err)
		return l.fallback.Allow(ctx, key)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	d := Decision{
		Allowed:   count <= int64(l.rule.Limit),
		Limit:     l.rule.Limit,
		Remaining: max(l.rule.Limit-int(count), 0),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d
}
