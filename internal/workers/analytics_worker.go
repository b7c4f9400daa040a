package workers

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/services"
)

const (
	DefaultAnalyticsInterval = 15 * time.Minute
	DefaultAnalyticsBatch    = 50
)

// AnalyticsWorker recomputes snapshots that are stale or older than a day.
type AnalyticsWorker struct {
	db        *gorm.DB
	analytics services.AnalyticsService
	interval  time.Duration
	batch     int
	wg        sync.WaitGroup
}

func NewAnalyticsWorker(db *gorm.DB, analytics services.AnalyticsService, interval time.Duration) *AnalyticsWorker {
	if interval <= 0 {
		interval = DefaultAnalyticsInterval
	}
	return &AnalyticsWorker{db: db, analytics: analytics, interval: interval, batch: DefaultAnalyticsBatch}
}

func (w *AnalyticsWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.refreshSnapshots(ctx)
	}()
}

func (w *AnalyticsWorker) Wait() {
	w.wg.Wait()
}

func (w *AnalyticsWorker) refreshSnapshots(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Analytics worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *AnalyticsWorker) RunOnce(ctx context.Context) int {
	refreshed, err := w.analytics.RefreshStale(ctx, w.db.WithContext(ctx), w.batch)
	if err != nil {
		logger.WorkerLog("analytics", "refresh_stale", err)
		return refreshed
	}
	if refreshed > 0 {
		logger.WorkerLog("analytics", "refresh_stale", nil, "refreshed", refreshed)
	}
	return refreshed
}
