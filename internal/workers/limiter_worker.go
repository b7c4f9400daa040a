package workers

import (
	"context"
	"sync"
	"time"

	"jobtracker_backend/internal/logger"
)

// Sweeper drops idle state; ratelimit.LocalLimiter implements it.
type Sweeper interface {
	Cleanup(maxIdle time.Duration) int
}

// LimiterWorker periodically evicts idle in-memory rate limit buckets.
type LimiterWorker struct {
	sweepers []Sweeper
	interval time.Duration
	maxIdle  time.Duration
	wg       sync.WaitGroup
}

func NewLimiterWorker(interval, maxIdle time.Duration, sweepers ...Sweeper) *LimiterWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = time.Hour
	}
	return &LimiterWorker{sweepers: sweepers, interval: interval, maxIdle: maxIdle}
}

func (w *LimiterWorker) Start(ctx context.Context) {
	if len(w.sweepers) == 0 {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := 0
				for _, s := range w.sweepers {
					evicted += s.Cleanup(w.maxIdle)
				}
				if evicted > 0 {
					logger.WorkerLog("ratelimit", "cleanup", nil, "evicted", evicted)
				}
			}
		}
	}()
}

func (w *LimiterWorker) Wait() {
	w.wg.Wait()
}
