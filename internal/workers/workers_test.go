package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"jobtracker_backend/internal/services"
)

type fakeReminders struct {
	services.ReminderService
	calls atomic.Int32
	err   error
}

func (f *fakeReminders) ProcessDueReminders(_ context.Context, _ *gorm.DB, limit int) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

type fakeAnalytics struct {
	services.AnalyticsService
	calls atomic.Int32
}

func (f *fakeAnalytics) RefreshStale(_ context.Context, _ *gorm.DB, limit int) (int, error) {
	f.calls.Add(1)
	return limit, nil
}

type countingSweeper struct{ calls atomic.Int32 }

func (s *countingSweeper) Cleanup(time.Duration) int {
	s.calls.Add(1)
	return 1
}

func dummyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestReminderWorker_RunOnce(t *testing.T) {
	svc := &fakeReminders{}
	w := NewReminderWorker(dummyDB(t), svc, time.Hour)
	assert.Equal(t, 3, w.RunOnce(context.Background()))

	svc.err = errors.New("db down")
	assert.Equal(t, 0, w.RunOnce(context.Background()))
	assert.Equal(t, int32(2), svc.calls.Load())
}

func TestReminderWorker_StopsOnCancel(t *testing.T) {
	svc := &fakeReminders{}
	w := NewReminderWorker(dummyDB(t), svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	require.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestAnalyticsWorker_RunOnce(t *testing.T) {
	svc := &fakeAnalytics{}
	w := NewAnalyticsWorker(dummyDB(t), svc, 0)
	assert.Equal(t, DefaultAnalyticsInterval, w.interval)
	assert.Equal(t, DefaultAnalyticsBatch, w.RunOnce(context.Background()))
}

func TestLimiterWorker_Sweeps(t *testing.T) {
	s := &countingSweeper{}
	w := NewLimiterWorker(5*time.Millisecond, time.Minute, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	require.Eventually(t, func() bool { return s.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	w.Wait()
}
