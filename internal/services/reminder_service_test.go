package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/analytics"
	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
)

// In-memory repositories for the paths that only need a few methods. Calling
// anything not overridden panics on the nil embedded interface.

type memReminderRepo struct {
	repositories.ReminderRepository
	items []models.Reminder
	calls []string
}

func (f *memReminderRepo) ReactivateElapsed(_ *gorm.DB, userID string, now time.Time) (int64, error) {
	f.calls = append(f.calls, "reactivate")
	var n int64
	for i := range f.items {
		if userID != "" && f.items[i].UserID != userID {
			continue
		}
		if lifecycle.Reactivate(&f.items[i], now) {
			n++
		}
	}
	return n, nil
}

func (f *memReminderRepo) owned(userID string, keep func(models.Reminder) bool) []models.Reminder {
	var out []models.Reminder
	for _, r := range f.items {
		if r.UserID == userID && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *memReminderRepo) List(_ *gorm.DB, userID string, filter repositories.ReminderFilter) ([]models.Reminder, int64, error) {
	f.calls = append(f.calls, "list")
	out := f.owned(userID, func(r models.Reminder) bool {
		return filter.Status == "" || r.Status == filter.Status
	})
	return out, int64(len(out)), nil
}

func (f *memReminderRepo) FindAll(_ *gorm.DB, userID string) ([]models.Reminder, error) {
	f.calls = append(f.calls, "find_all")
	return f.owned(userID, func(models.Reminder) bool { return true }), nil
}

func (f *memReminderRepo) FindByJob(_ *gorm.DB, userID, jobID string) ([]models.Reminder, error) {
	f.calls = append(f.calls, "find_by_job")
	return f.owned(userID, func(r models.Reminder) bool { return r.JobApplicationID == jobID }), nil
}

func (f *memReminderRepo) FindDueForEmail(_ *gorm.DB, now time.Time, limit int) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, r := range f.items {
		if r.Status != models.ReminderPending || r.ReminderDate.After(now) || !r.Notifications.Email || r.EmailSent {
			continue
		}
		if r.EmailAttempts >= models.MaxEmailAttempts {
			continue
		}
		if r.LastEmailAttemptAt != nil && r.LastEmailAttemptAt.After(now.Add(-models.EmailRetryBackoff)) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EmailAttempts != out[j].EmailAttempts {
			return out[i].EmailAttempts < out[j].EmailAttempts
		}
		return out[i].ReminderDate.Before(out[j].ReminderDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *memReminderRepo) byID(id string) *models.Reminder {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i]
		}
	}
	return nil
}

func (f *memReminderRepo) MarkEmailSent(_ *gorm.DB, id string, at time.Time) error {
	r := f.byID(id)
	r.EmailSent = true
	r.EmailSentAt = &at
	return nil
}

func (f *memReminderRepo) RecordEmailFailure(_ *gorm.DB, id string, at time.Time) error {
	r := f.byID(id)
	r.EmailAttempts++
	r.LastEmailAttemptAt = &at
	return nil
}

type memJobRepo struct {
	repositories.JobRepository
	jobs map[string]models.JobApplication
}

func (f *memJobRepo) FindByID(_ *gorm.DB, userID, id string) (*models.JobApplication, error) {
	job, ok := f.jobs[id]
	if !ok || job.UserID != userID {
		return nil, repositories.ErrJobNotFound
	}
	return &job, nil
}

func (f *memJobRepo) FindAll(_ *gorm.DB, userID string) ([]models.JobApplication, error) {
	var out []models.JobApplication
	for _, job := range f.jobs {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	return out, nil
}

type memUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (f *memUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

type memResumeRepo struct {
	repositories.ResumeRepository
}

func (memResumeRepo) FindAll(*gorm.DB, string) ([]models.Resume, error) { return nil, nil }

type memAnalyticsRepo struct {
	repositories.AnalyticsRepository
	snap *models.AnalyticsSnapshot
}

func (f *memAnalyticsRepo) FindByUser(*gorm.DB, string) (*models.AnalyticsSnapshot, error) {
	if f.snap == nil {
		return nil, repositories.ErrSnapshotNotFound
	}
	return f.snap, nil
}

func (f *memAnalyticsRepo) Upsert(_ *gorm.DB, snap *models.AnalyticsSnapshot) error {
	f.snap = snap
	return nil
}

var reminderNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// elapsedSnooze is a follow-up that was due yesterday and snoozed until an hour ago.
func elapsedSnooze(userID, jobID string) models.Reminder {
	until := reminderNow.Add(-time.Hour)
	return models.Reminder{
		BaseModel:        models.BaseModel{ID: uuid.NewString()},
		UserID:           userID,
		JobApplicationID: jobID,
		Title:            "Follow up",
		ReminderDate:     reminderNow.Add(-24 * time.Hour),
		Type:             models.ReminderFollowUp,
		Status:           models.ReminderSnoozed,
		SnoozeUntil:      &until,
	}
}

type snoozeFixture struct {
	userID    string
	job       models.JobApplication
	reminders *memReminderRepo
	jobs      *memJobRepo
	analytics *memAnalyticsRepo
}

func newSnoozeFixture() snoozeFixture {
	userID := uuid.NewString()
	job := models.JobApplication{BaseModel: models.BaseModel{ID: uuid.NewString()}, UserID: userID, JobTitle: "Backend Engineer", Company: "Acme"}
	return snoozeFixture{
		userID:    userID,
		job:       job,
		reminders: &memReminderRepo{items: []models.Reminder{elapsedSnooze(userID, job.ID)}},
		jobs:      &memJobRepo{jobs: map[string]models.JobApplication{job.ID: job}},
		analytics: &memAnalyticsRepo{},
	}
}

func (f snoozeFixture) reminderService() *reminderService {
	svc := NewReminderService(f.reminders, f.jobs, &memUserRepo{}, f.analytics, &recordingNotifier{}).(*reminderService)
	svc.now = func() time.Time { return reminderNow }
	return svc
}

func TestReminderReadsReactivateElapsedSnoozes(t *testing.T) {
	ctx := context.Background()

	t.Run("list filtered by pending", func(t *testing.T) {
		f := newSnoozeFixture()
		out, err := f.reminderService().ListReminders(ctx, nil, f.userID, dto.ReminderListQuery{Status: models.ReminderPending}, 1, 20)
		require.NoError(t, err)

		assert.Equal(t, []string{"reactivate", "list"}, f.reminders.calls)
		require.Len(t, out.Items, 1)
		assert.Equal(t, models.ReminderPending, out.Items[0].Status)
		assert.Nil(t, out.Items[0].SnoozeUntil)
		assert.True(t, out.Items[0].IsOverdue)
	})

	t.Run("by job", func(t *testing.T) {
		f := newSnoozeFixture()
		out, err := f.reminderService().ByJob(ctx, nil, f.userID, f.job.ID)
		require.NoError(t, err)

		assert.Equal(t, []string{"reactivate", "find_by_job"}, f.reminders.calls)
		require.Len(t, out, 1)
		assert.Equal(t, models.ReminderPending, out[0].Status)
		assert.True(t, out[0].IsOverdue)
	})

	t.Run("by job of another user", func(t *testing.T) {
		f := newSnoozeFixture()
		_, err := f.reminderService().ByJob(ctx, nil, uuid.NewString(), f.job.ID)
		assert.Error(t, err)
		assert.Empty(t, f.reminders.calls)
	})

	t.Run("job timeline", func(t *testing.T) {
		f := newSnoozeFixture()
		jobs := NewJobService(f.jobs, f.reminders, memResumeRepo{}, &memUserRepo{}, nil, f.analytics, &recordingNotifier{}, nil, nil).(*jobService)
		jobs.now = func() time.Time { return reminderNow }

		entries, err := jobs.GetTimeline(ctx, nil, f.userID, f.job.ID)
		require.NoError(t, err)

		assert.Equal(t, []string{"reactivate", "find_by_job"}, f.reminders.calls)
		require.Len(t, entries, 1)
		assert.Equal(t, "reminder", entries[0].Kind)
		assert.Equal(t, string(models.ReminderPending), entries[0].Description)
	})

	t.Run("account export", func(t *testing.T) {
		f := newSnoozeFixture()
		users := &memUserRepo{users: map[string]*models.User{f.userID: {BaseModel: models.BaseModel{ID: f.userID}}}}
		svc := NewUserService(users, f.jobs, memResumeRepo{}, f.reminders, f.analytics, nil, nil, nil, nil).(*userService)
		svc.now = func() time.Time { return reminderNow }

		out, err := svc.Export(ctx, nil, f.userID)
		require.NoError(t, err)

		assert.Equal(t, []string{"reactivate", "find_all"}, f.reminders.calls)
		require.Len(t, out.Reminders, 1)
		assert.Equal(t, models.ReminderPending, out.Reminders[0].Status)
	})

	t.Run("dashboard", func(t *testing.T) {
		f := newSnoozeFixture()
		svc := NewAnalyticsService(f.jobs, memResumeRepo{}, f.reminders, f.analytics).(*analyticsService)
		svc.now = func() time.Time { return reminderNow }

		out, err := svc.Dashboard(ctx, nil, f.userID, dto.AnalyticsQuery{})
		require.NoError(t, err)

		// the cache check and the recompute both sweep before reading
		assert.Equal(t, []string{"reactivate", "reactivate", "find_all"}, f.reminders.calls)
		assert.Equal(t, 1, out.Summary.Reminders.Pending)
		assert.Equal(t, 1, out.Summary.Reminders.Overdue)
	})

	t.Run("dashboard ignores a fresh snapshot once snoozes reactivate", func(t *testing.T) {
		f := newSnoozeFixture()
		f.analytics.snap = &models.AnalyticsSnapshot{
			UserID:         f.userID,
			Period:         string(analytics.PeriodMonth),
			Summary:        datatypes.JSON(`{"reminders":{"total":1,"pending":1}}`),
			LastCalculated: reminderNow.Add(-time.Minute),
		}
		svc := NewAnalyticsService(f.jobs, memResumeRepo{}, f.reminders, f.analytics).(*analyticsService)
		svc.now = func() time.Time { return reminderNow }

		out, err := svc.Dashboard(ctx, nil, f.userID, dto.AnalyticsQuery{})
		require.NoError(t, err)

		assert.False(t, out.FromCache)
		assert.Equal(t, 1, out.Summary.Reminders.Overdue)
	})
}

func TestProcessDueRemindersBacksOffFailingEmail(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{BaseModel: models.BaseModel{ID: uuid.NewString()}, Email: "owner@example.com"}
	owner.Preferences = datatypes.NewJSONType(models.DefaultPreferences())

	due := func(userID string, at time.Time) models.Reminder {
		return models.Reminder{
			BaseModel:        models.BaseModel{ID: uuid.NewString()},
			UserID:           userID,
			JobApplicationID: uuid.NewString(),
			Title:            "Follow up",
			ReminderDate:     at,
			Type:             models.ReminderFollowUp,
			Status:           models.ReminderPending,
			Notifications:    models.Notifications{Email: true},
		}
	}
	stuck := due(owner.ID, reminderNow.Add(-2*time.Hour))
	orphan := due(uuid.NewString(), reminderNow.Add(-3*time.Hour))
	next := due(owner.ID, reminderNow.Add(-time.Hour))

	repo := &memReminderRepo{items: []models.Reminder{stuck, orphan, next}}
	notifier := &recordingNotifier{failFor: map[string]bool{stuck.ID: true}}
	svc := NewReminderService(repo, &memJobRepo{}, &memUserRepo{users: map[string]*models.User{owner.ID: owner}}, nil, notifier).(*reminderService)
	clock := reminderNow
	svc.now = func() time.Time { return clock }

	// the orphan and the stuck reminder each take a turn at the head and back off
	sent, err := svc.ProcessDueReminders(ctx, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, repo.byID(orphan.ID).EmailAttempts)

	sent, err = svc.ProcessDueReminders(ctx, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, repo.byID(stuck.ID).EmailAttempts)

	sent, err = svc.ProcessDueReminders(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, notifier.sentReminder(next.ID))
	assert.True(t, repo.byID(next.ID).EmailSent)

	// retries stop after the attempt budget is spent
	for i := 0; i < 2*models.MaxEmailAttempts; i++ {
		clock = clock.Add(models.EmailRetryBackoff)
		_, err := svc.ProcessDueReminders(ctx, nil, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, models.MaxEmailAttempts, repo.byID(stuck.ID).EmailAttempts)
	assert.Equal(t, models.MaxEmailAttempts, repo.byID(orphan.ID).EmailAttempts)
	assert.False(t, repo.byID(stuck.ID).EmailSent)

	left, err := repo.FindDueForEmail(nil, clock.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, left)
}
