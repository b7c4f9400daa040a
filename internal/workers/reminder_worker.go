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
	DefaultReminderInterval = time.Minute
	DefaultReminderBatch    = 100
)

// ReminderWorker emails due reminders and re-opens elapsed snoozes.
type ReminderWorker struct {
	db        *gorm.DB
	reminders services.ReminderService
	interval  time.Duration
	batch     int
	wg        sync.WaitGroup
}

func NewReminderWorker(db *gorm.DB, reminders services.ReminderService, interval time.Duration) *ReminderWorker {
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &ReminderWorker{db: db, reminders: reminders, interval: interval, batch: DefaultReminderBatch}
}

// Start runs the worker until ctx is cancelled.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processDueReminders(ctx)
	}()
}

// Wait blocks until the worker goroutine has returned.
func (w *ReminderWorker) Wait() {
	w.wg.Wait()
}

func (w *ReminderWorker) processDueReminders(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch and returns the number of reminders handled.
func (w *ReminderWorker) RunOnce(ctx context.Context) int {
	start := time.Now()
	sent, err := w.reminders.ProcessDueReminders(ctx, w.db.WithContext(ctx), w.batch)
	if err != nil {
		logger.WorkerLog("reminders", "process_due", err)
		return sent
	}
	if sent > 0 {
		logger.WorkerLog("reminders", "process_due", nil, "processed", sent, "duration_ms", time.Since(start).Milliseconds())
	}
	return sent
}
