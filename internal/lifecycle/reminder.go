package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"jobtracker_backend/internal/models"
)

// Auto follow-up offsets from the application date.
const (
	FirstFollowUpAfter  = 7 * 24 * time.Hour
	SecondFollowUpAfter = 14 * 24 * time.Hour
)

// ValidatePattern checks a recurrence rule. Non-recurring reminders accept any pattern.
func ValidatePattern(isRecurring bool, p models.RecurringPattern) error {
	if !isRecurring {
		return nil
	}
	if !p.Type.IsValid() {
		return ErrInvalidRecurrence
	}
	if p.Interval < 0 {
		return ErrInvalidRecurrence
	}
	return nil
}

// NextOccurrence advances from by one recurrence step.
// Monthly steps use calendar months, so Jan 31 + 1 month normalizes into March.
func NextOccurrence(p models.RecurringPattern, from time.Time) (time.Time, error) {
	n := p.Interval
	if n <= 0 {
		n = 1
	}

	switch p.Type {
	case models.RecurDaily:
		return from.AddDate(0, 0, n), nil
	case models.RecurWeekly:
		return from.AddDate(0, 0, 7*n), nil
	case models.RecurMonthly:
		return from.AddDate(0, n, 0), nil
	default:
		return time.Time{}, ErrInvalidRecurrence
	}
}

// Snooze postpones a pending or snoozed reminder by minutes.
func Snooze(r *models.Reminder, minutes int, now time.Time) error {
	if minutes <= 0 {
		return ErrInvalidSnooze
	}
	if r.Status.IsTerminal() {
		return ErrInvalidTransition
	}

	until := now.Add(time.Duration(minutes) * time.Minute)
	r.Status = models.ReminderSnoozed
	r.SnoozeUntil = &until
	r.ReminderDate = until
	r.ResetEmail()
	return nil
}

// Complete marks the reminder done. For a recurring reminder it returns the next
// occurrence, or nil when that occurrence would fall after the pattern's end date.
func Complete(r *models.Reminder, notes string, now time.Time) (*models.Reminder, error) {
	if r.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	completed := now
	r.Status = models.ReminderCompleted
	r.CompletedAt = &completed
	r.SnoozeUntil = nil
	if notes != "" {
		r.Notes = notes
	}

	if !r.IsRecurring {
		return nil, nil
	}

	next, err := NextOccurrence(r.RecurringPattern, r.ReminderDate)
	if err != nil {
		return nil, err
	}
	if end := r.RecurringPattern.EndDate; end != nil && next.After(*end) {
		return nil, nil
	}

	return &models.Reminder{
		BaseModel:        models.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		UserID:           r.UserID,
		JobApplicationID: r.JobApplicationID,
		Title:            r.Title,
		Description:      r.Description,
		ReminderDate:     next,
		Type:             r.Type,
		Priority:         r.Priority,
		Status:           models.ReminderPending,
		IsRecurring:      true,
		RecurringPattern: r.RecurringPattern,
		Notifications:    r.Notifications,
		IsAutoGenerated:  r.IsAutoGenerated,
		Tags:             append(pq.StringArray(nil), r.Tags...),
	}, nil
}

// Cancel moves any non-terminal reminder to cancelled.
func Cancel(r *models.Reminder) error {
	if r.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	r.Status = models.ReminderCancelled
	r.SnoozeUntil = nil
	return nil
}

// Reactivate returns an elapsed snoozed reminder to pending.
// It reports whether the reminder changed.
func Reactivate(r *models.Reminder, now time.Time) bool {
	if r.Status != models.ReminderSnoozed || r.SnoozeUntil == nil || r.SnoozeUntil.After(now) {
		return false
	}
	r.Status = models.ReminderPending
	r.SnoozeUntil = nil
	return true
}

// AutoFollowUps builds the +7 and +14 day follow-up reminders for a job.
func AutoFollowUps(job models.JobApplication) []models.Reminder {
	base := job.ApplicationDate
	specs := []struct {
		after    time.Duration
		title    string
		desc     string
		priority models.ReminderPriority
	}{
		{FirstFollowUpAfter, "Follow up on application", "Send a follow-up about your application for " + job.JobTitle + " at " + job.Company + ".", models.ReminderPriorityMedium},
		{SecondFollowUpAfter, "Second follow-up", "No answer yet from " + job.Company + ". Consider a second follow-up.", models.ReminderPriorityLow},
	}

	out := make([]models.Reminder, 0, len(specs))
	for _, s := range specs {
		out = append(out, models.Reminder{
			BaseModel:        models.BaseModel{ID: uuid.NewString()},
			UserID:           job.UserID,
			JobApplicationID: job.ID,
			Title:            s.title,
			Description:      s.desc,
			ReminderDate:     base.Add(s.after),
			Type:             models.ReminderFollowUp,
			Priority:         s.priority,
			Status:           models.ReminderPending,
			Notifications:    models.Notifications{Email: true},
			IsAutoGenerated:  true,
		})
	}
	return out
}

// AutoFollowUpsAfter is AutoFollowUps without the reminders already in the past.
func AutoFollowUpsAfter(job models.JobApplication, now time.Time) []models.Reminder {
	all := AutoFollowUps(job)
	out := all[:0]
	for _, r := range all {
		if r.ReminderDate.After(now) {
			out = append(out, r)
		}
	}
	return out
}
