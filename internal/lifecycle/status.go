// Package lifecycle holds the status and reminder state machines.
// Every function here operates on plain models and performs no I/O;
// persistence and notifications are left to the services.
package lifecycle

import (
	"errors"
	"time"

	"jobtracker_backend/internal/models"
)

var (
	ErrInvalidStatus     = errors.New("status is not part of the job status vocabulary")
	ErrInvalidTransition = errors.New("transition is not allowed from the current state")
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")
	ErrInvalidSnooze     = errors.New("snooze duration must be positive")
)

// SeedStatusHistory writes the first history entry of a new application,
// dated at its application date.
func SeedStatusHistory(job *models.JobApplication, now time.Time) error {
	if job.Status == "" {
		job.Status = models.StatusApplied
	}
	if !job.Status.IsValid() {
		return ErrInvalidStatus
	}
	if job.ApplicationDate.IsZero() {
		job.ApplicationDate = now
	}
	if len(job.StatusHistory) > 0 {
		return nil
	}

	job.StatusHistory = append(job.StatusHistory, models.StatusHistory{
		Status:  job.Status,
		Date:    job.ApplicationDate,
		Notes:   "Application created",
		AddedBy: models.AddedBySystem,
	})
	return nil
}

// UpdateStatus moves job to status. A history entry is appended only when the
// latest entry has a different status, so repeating the current status is a no-op
// that reports changed=false.
func UpdateStatus(job *models.JobApplication, status models.JobStatus, note string, by models.HistoryAuthor, now time.Time) (bool, error) {
	if !status.IsValid() {
		return false, ErrInvalidStatus
	}
	if by == "" {
		by = models.AddedByUser
	}

	last, ok := job.LatestHistory()
	if ok && last.Status == status {
		job.Status = status
		return false, nil
	}

	date := now
	if ok {
		// history stays chronologically non-decreasing even with backdated applications
		if date.Before(last.Date) {
			date = last.Date
		}
		job.Analytics.TimeSpentInStatus = addTimeInStatus(job.Analytics.TimeSpentInStatus, last.Status, date.Sub(last.Date))
	}

	job.Status = status
	job.StatusHistory = append(job.StatusHistory, models.StatusHistory{
		Status:  status,
		Date:    date,
		Notes:   note,
		AddedBy: by,
	})
	return true, nil
}

func addTimeInStatus(spent []models.StatusDuration, status models.JobStatus, d time.Duration) []models.StatusDuration {
	days := d.Hours() / 24
	for i := range spent {
		if spent[i].Status == status {
			spent[i].Days += days
			return spent
		}
	}
	return append(spent, models.StatusDuration{Status: status, Days: days})
}

// ReachedAny reports whether the job is, or has ever been, in one of the statuses.
func ReachedAny(job models.JobApplication, statuses []models.JobStatus) bool {
	in := func(s models.JobStatus) bool {
		for _, candidate := range statuses {
			if candidate == s {
				return true
			}
		}
		return false
	}

	if in(job.Status) {
		return true
	}
	for _, h := range job.StatusHistory {
		if in(h.Status) {
			return true
		}
	}
	return false
}

// FirstResponse returns the first history entry that records an employer reaction.
func FirstResponse(job models.JobApplication) (models.StatusHistory, bool) {
	for _, h := range job.StatusHistory {
		if h.Status.IsResponse() {
			return h, true
		}
	}
	return models.StatusHistory{}, false
}
