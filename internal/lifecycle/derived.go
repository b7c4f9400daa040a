package lifecycle

import (
	"math"
	"time"

	"jobtracker_backend/internal/models"
)

// StaleAfter is how long an early-stage application may sit without movement
// before a follow-up is suggested.
const StaleAfter = 7 * 24 * time.Hour

func DaysSinceApplication(job models.JobApplication, now time.Time) int {
	return wholeDays(now.Sub(job.ApplicationDate))
}

// CurrentStatusDuration is the number of days since the latest status change.
func CurrentStatusDuration(job models.JobApplication, now time.Time) int {
	last, ok := job.LatestHistory()
	if !ok {
		return DaysSinceApplication(job, now)
	}
	return wholeDays(now.Sub(last.Date))
}

// NextInterview returns the earliest scheduled interview after now.
func NextInterview(job models.JobApplication, now time.Time) *models.Interview {
	var next *models.Interview
	for i := range job.Interviews {
		iv := job.Interviews[i]
		if iv.Status != models.InterviewScheduled || !iv.ScheduledDate.After(now) {
			continue
		}
		if next == nil || iv.ScheduledDate.Before(next.ScheduledDate) {
			next = &iv
		}
	}
	return next
}

func NeedsFollowUp(job models.JobApplication, now time.Time) bool {
	if job.IsArchived || job.Status.IsTerminal() {
		return false
	}
	if job.FollowUpDate != nil {
		return !job.FollowUpDate.After(now)
	}
	if job.Status != models.StatusApplied && job.Status != models.StatusUnderReview {
		return false
	}

	since := job.ApplicationDate
	if last, ok := job.LatestHistory(); ok {
		since = last.Date
	}
	if job.LastFollowUpDate != nil && job.LastFollowUpDate.After(since) {
		since = *job.LastFollowUpDate
	}
	return now.Sub(since) > StaleAfter
}

func ReminderIsOverdue(r models.Reminder, now time.Time) bool {
	return r.Status == models.ReminderPending && r.ReminderDate.Before(now)
}

// ReminderDaysUntil rounds up, so a reminder later today is 1 day away and an overdue one is <= 0.
func ReminderDaysUntil(r models.Reminder, now time.Time) int {
	return int(math.Ceil(r.ReminderDate.Sub(now).Hours() / 24))
}

func wholeDays(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
