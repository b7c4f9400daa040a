package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	rule     Rule
	mu       sync.Mutex
	limiters map[string]*localEntry
	rate     rate.Limit
}

type localEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLocalLimiter(rule Rule) (*LocalLimiter, error) {
	if err := rule.validate(); err != nil {
		return nil, err
	}
	return &LocalLimiter{
		rule:     rule,
		limiters: make(map[string]*localEntry),
		rate:     rate.Every(rule.Window / time.Duration(rule.Limit)),
	}, nil
}

func (l *LocalLimiter) Allow(_ context.Context, key string) Decision {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.rate, l.rule.Limit)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	d := Decision{Limit: l.rule.Limit}
	if limiter.AllowN(now, 1) {
		d.Allowed = true
		d.Remaining = int(math.Max(0, math.Floor(limiter.TokensAt(now))))
		return d
	}
	d.RetryAfter = l.rule.Window / time.Duration(l.rule.Limit)
	return d
}

// Cleanup drops keys idle for longer than maxIdle.
func (l *LocalLimiter) Cleanup(maxIdle time.Duration) int {
	threshold := time.Now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}
