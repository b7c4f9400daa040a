package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/models"
)

func newReminder(recurring bool, pattern models.RecurringPattern) models.Reminder {
	return models.Reminder{
		BaseModel:        models.BaseModel{ID: "rem-1"},
		UserID:           "user-1",
		JobApplicationID: "job-1",
		Title:            "Check portal",
		ReminderDate:     t0,
		Type:             models.ReminderStatusCheck,
		Priority:         models.ReminderPriorityHigh,
		Status:           models.ReminderPending,
		IsRecurring:      recurring,
		RecurringPattern: pattern,
		Notifications:    models.Notifications{Email: true},
		Tags:             []string{"portal"},
	}
}

func TestComplete_WeeklySpawnsNextOccurrence(t *testing.T) {
	r := newReminder(true, models.RecurringPattern{Type: models.RecurWeekly, Interval: 1})
	now := t0.Add(time.Hour)

	next, err := Complete(&r, "done", now)
	require.NoError(t, err)

	assert.Equal(t, models.ReminderCompleted, r.Status)
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, now, *r.CompletedAt)

	require.NotNil(t, next)
	assert.Equal(t, t0.AddDate(0, 0, 7), next.ReminderDate)
	assert.NotEqual(t, r.ID, next.ID)
	assert.Equal(t, models.ReminderPending, next.Status)
	assert.Equal(t, r.Title, next.Title)
	assert.Equal(t, r.Priority, next.Priority)
	assert.Equal(t, r.RecurringPattern, next.RecurringPattern)
	assert.Equal(t, []string{"portal"}, []string(next.Tags))
}

func TestComplete_PastEndDateSpawnsNothing(t *testing.T) {
	end := t0.AddDate(0, 0, 3)
	r := newReminder(true, models.RecurringPattern{Type: models.RecurWeekly, Interval: 1, EndDate: &end})

	next, err := Complete(&r, "", t0)

	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, models.ReminderCompleted, r.Status)
}

func TestComplete_NonRecurring(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})

	next, err := Complete(&r, "", t0)

	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestComplete_TerminalRejected(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})
	require.NoError(t, Cancel(&r))

	_, err := Complete(&r, "", t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name    string
		pattern models.RecurringPattern
		want    time.Time
	}{
		{"daily x3", models.RecurringPattern{Type: models.RecurDaily, Interval: 3}, t0.AddDate(0, 0, 3)},
		{"weekly x2", models.RecurringPattern{Type: models.RecurWeekly, Interval: 2}, t0.AddDate(0, 0, 14)},
		{"monthly default interval", models.RecurringPattern{Type: models.RecurMonthly}, t0.AddDate(0, 1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextOccurrence(tc.pattern, t0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := NextOccurrence(models.RecurringPattern{Type: "yearly"}, t0)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestSnooze(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})
	r.EmailSent = true
	r.EmailAttempts = 2
	failedAt := t0.Add(-time.Minute)
	r.LastEmailAttemptAt = &failedAt

	require.NoError(t, Snooze(&r, 30, t0))

	assert.Equal(t, models.ReminderSnoozed, r.Status)
	require.NotNil(t, r.SnoozeUntil)
	assert.Equal(t, t0.Add(30*time.Minute), *r.SnoozeUntil)
	assert.Equal(t, *r.SnoozeUntil, r.ReminderDate)
	assert.False(t, r.EmailSent)
	assert.Zero(t, r.EmailAttempts)
	assert.Nil(t, r.LastEmailAttemptAt)

	// snoozing again from snoozed is allowed
	require.NoError(t, Snooze(&r, 10, t0))
	assert.Equal(t, t0.Add(10*time.Minute), r.ReminderDate)

	assert.ErrorIs(t, Snooze(&r, 0, t0), ErrInvalidSnooze)

	_, _ = Complete(&r, "", t0)
	assert.ErrorIs(t, Snooze(&r, 10, t0), ErrInvalidTransition)
}

func TestReactivate(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})
	require.NoError(t, Snooze(&r, 15, t0))

	assert.False(t, Reactivate(&r, t0.Add(10*time.Minute)))
	assert.Equal(t, models.ReminderSnoozed, r.Status)

	assert.True(t, Reactivate(&r, t0.Add(15*time.Minute)))
	assert.Equal(t, models.ReminderPending, r.Status)
	assert.Nil(t, r.SnoozeUntil)

	assert.False(t, Reactivate(&r, t0.Add(time.Hour)))
}

func TestCancel(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})
	require.NoError(t, Snooze(&r, 15, t0))

	require.NoError(t, Cancel(&r))
	assert.Equal(t, models.ReminderCancelled, r.Status)
	assert.Nil(t, r.SnoozeUntil)
	assert.ErrorIs(t, Cancel(&r), ErrInvalidTransition)
}

func TestAutoFollowUps(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	reminders := AutoFollowUps(job)

	require.Len(t, reminders, 2)
	assert.Equal(t, t0.Add(7*24*time.Hour), reminders[0].ReminderDate)
	assert.Equal(t, t0.Add(14*24*time.Hour), reminders[1].ReminderDate)
	for _, r := range reminders {
		assert.Equal(t, models.ReminderFollowUp, r.Type)
		assert.True(t, r.IsAutoGenerated)
		assert.Equal(t, job.ID, r.JobApplicationID)
		assert.Equal(t, job.UserID, r.UserID)
		assert.NotEmpty(t, r.ID)
	}

	future := AutoFollowUpsAfter(job, t0.Add(10*24*time.Hour))
	require.Len(t, future, 1)
	assert.Equal(t, "Second follow-up", future[0].Title)
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern(false, models.RecurringPattern{Type: "bogus"}))
	assert.NoError(t, ValidatePattern(true, models.RecurringPattern{Type: models.RecurDaily, Interval: 2}))
	assert.ErrorIs(t, ValidatePattern(true, models.RecurringPattern{Type: "hourly"}), ErrInvalidRecurrence)
}
