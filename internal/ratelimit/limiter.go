package ratelimit

import (
	"context"
	"errors"
	"time"

	"jobtracker_backend/internal/config"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// Rule is a request budget per window.
type Rule struct {
	Limit  int
	Window time.Duration
}

func RuleFrom(r config.RateRule) Rule {
	return Rule{Limit: r.Limit, Window: r.Window}
}

func (r Rule) validate() error {
	if r.Limit <= 0 || r.Window <= 0 {
		return errors.New("rate limiter requires positive limit and window")
	}
	return nil
}
