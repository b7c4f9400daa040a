package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/models"
)

func TestNeedsFollowUp(t *testing.T) {
	t.Run("stale applied job", func(t *testing.T) {
		job := newJob(t, models.StatusApplied)
		assert.False(t, NeedsFollowUp(job, t0.Add(6*24*time.Hour)))
		assert.True(t, NeedsFollowUp(job, t0.Add(8*24*time.Hour)))
	})

	t.Run("explicit follow-up date wins", func(t *testing.T) {
		job := newJob(t, models.StatusFirstInterview)
		due := t0.Add(24 * time.Hour)
		job.FollowUpDate = &due
		assert.True(t, NeedsFollowUp(job, t0.Add(25*time.Hour)))
	})

	t.Run("terminal jobs never need follow-up", func(t *testing.T) {
		job := newJob(t, models.StatusRejected)
		assert.False(t, NeedsFollowUp(job, t0.Add(30*24*time.Hour)))
	})

	t.Run("recent follow-up resets the clock", func(t *testing.T) {
		job := newJob(t, models.StatusApplied)
		last := t0.Add(6 * 24 * time.Hour)
		job.LastFollowUpDate = &last
		assert.False(t, NeedsFollowUp(job, t0.Add(10*24*time.Hour)))
	})
}

func TestDerivedDurations(t *testing.T) {
	job := newJob(t, models.StatusApplied)
	_, err := UpdateStatus(&job, models.StatusUnderReview, "", models.AddedByUser, t0.Add(2*24*time.Hour))
	require.NoError(t, err)

	now := t0.Add(5*24*time.Hour + time.Hour)
	assert.Equal(t, 5, DaysSinceApplication(job, now))
	assert.Equal(t, 3, CurrentStatusDuration(job, now))
}

func TestNextInterview(t *testing.T) {
	job := newJob(t, models.StatusFirstInterview)
	job.Interviews = append(job.Interviews,
		models.Interview{ID: "past", Status: models.InterviewScheduled, ScheduledDate: t0.Add(-time.Hour)},
		models.Interview{ID: "late", Status: models.InterviewScheduled, ScheduledDate: t0.Add(72 * time.Hour)},
		models.Interview{ID: "soon", Status: models.InterviewScheduled, ScheduledDate: t0.Add(24 * time.Hour)},
		models.Interview{ID: "cancelled", Status: models.InterviewCancelled, ScheduledDate: t0.Add(time.Hour)},
	)

	next := NextInterview(job, t0)
	require.NotNil(t, next)
	assert.Equal(t, "soon", next.ID)
}

func TestReminderDerived(t *testing.T) {
	r := newReminder(false, models.RecurringPattern{})

	assert.True(t, ReminderIsOverdue(r, t0.Add(time.Minute)))
	assert.False(t, ReminderIsOverdue(r, t0.Add(-time.Minute)))
	assert.Equal(t, 1, ReminderDaysUntil(r, t0.Add(-2*time.Hour)))
	assert.Equal(t, 0, ReminderDaysUntil(r, t0.Add(2*time.Hour)))
}
