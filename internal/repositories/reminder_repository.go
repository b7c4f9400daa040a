package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

var ErrReminderNotFound = errors.New("reminder not found")

type ReminderFilter struct {
	Status           models.ReminderStatus
	Type             models.ReminderType
	Priority         models.ReminderPriority
	JobApplicationID string
	From             *time.Time
	To               *time.Time
	Page
}

type ReminderRepository interface {
	Create(db *gorm.DB, reminder *models.Reminder) error
	CreateBatch(db *gorm.DB, reminders []models.Reminder) error
	FindByID(db *gorm.DB, userID, id string) (*models.Reminder, error)
	FindByIDs(db *gorm.DB, userID string, ids []string) ([]models.Reminder, error)
	Save(db *gorm.DB, reminder *models.Reminder) error
	Delete(db *gorm.DB, userID, id string) error
	DeleteByJob(db *gorm.DB, userID, jobID string) error
	DeleteAllByUser(db *gorm.DB, userID string) error

	List(db *gorm.DB, userID string, filter ReminderFilter) ([]models.Reminder, int64, error)
	FindAll(db *gorm.DB, userID string) ([]models.Reminder, error)
	FindByJob(db *gorm.DB, userID, jobID string) ([]models.Reminder, error)
	FindPendingBetween(db *gorm.DB, userID string, from, to time.Time) ([]models.Reminder, error)
	FindOverdue(db *gorm.DB, userID string, now time.Time) ([]models.Reminder, error)

	// ReactivateElapsed moves snoozed reminders whose snooze has passed back to
	// pending. An empty userID sweeps every user.
	ReactivateElapsed(db *gorm.DB, userID string, now time.Time) (int64, error)
	// FindDueForEmail is a cross-user query for the notifier worker. It skips
	// reminders that failed within models.EmailRetryBackoff or have used up
	// models.MaxEmailAttempts, and puts untried reminders first.
	FindDueForEmail(db *gorm.DB, now time.Time, limit int) ([]models.Reminder, error)
	MarkEmailSent(db *gorm.DB, id string, at time.Time) error
	RecordEmailFailure(db *gorm.DB, id string, at time.Time) error
}

type reminderRepository struct {
	store ownedStore[models.Reminder]
}

func NewReminderRepository() ReminderRepository {
	return &reminderRepository{}
}

func mapReminderErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReminderNotFound
	}
	return err
}

func (r *reminderRepository) Create(db *gorm.DB, reminder *models.Reminder) error {
	return r.store.Create(db, reminder)
}

func (r *reminderRepository) CreateBatch(db *gorm.DB, reminders []models.Reminder) error {
	return r.store.CreateBatch(db, reminders)
}

func (r *reminderRepository) FindByID(db *gorm.DB, userID, id string) (*models.Reminder, error) {
	reminder, err := r.store.First(db, userID, id)
	return reminder, mapReminderErr(err)
}

func (r *reminderRepository) FindByIDs(db *gorm.DB, userID string, ids []string) ([]models.Reminder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.store.Find(db, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
}

func (r *reminderRepository) Save(db *gorm.DB, reminder *models.Reminder) error {
	return mapReminderErr(r.store.Save(db, reminder))
}

func (r *reminderRepository) Delete(db *gorm.DB, userID, id string) error {
	return mapReminderErr(r.store.Delete(db, userID, id))
}

func (r *reminderRepository) DeleteByJob(db *gorm.DB, userID, jobID string) error {
	return r.store.DeleteAll(db, userID, forJob(jobID))
}

func (r *reminderRepository) DeleteAllByUser(db *gorm.DB, userID string) error {
	return r.store.DeleteAll(db, userID)
}

// ---------------- Queries ----------------

func (r *reminderRepository) List(db *gorm.DB, userID string, filter ReminderFilter) ([]models.Reminder, int64, error) {
	var scopes []Scope
	if filter.Status != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", filter.Status) })
	}
	if filter.Type != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("type = ?", filter.Type) })
	}
	if filter.Priority != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("priority = ?", filter.Priority) })
	}
	if filter.JobApplicationID != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("job_application_id = ?", filter.JobApplicationID)
		})
	}
	if filter.From != nil {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("reminder_date >= ?", *filter.From) })
	}
	if filter.To != nil {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("reminder_date <= ?", *filter.To) })
	}
	return r.store.FindPage(db, userID, filter.Page, scopes, byReminderDate)
}

func (r *reminderRepository) FindAll(db *gorm.DB, userID string) ([]models.Reminder, error) {
	return r.store.Find(db, userID, Page{}, byReminderDate)
}

func (r *reminderRepository) FindByJob(db *gorm.DB, userID, jobID string) ([]models.Reminder, error) {
	return r.store.Find(db, userID, Page{}, byReminderDate, forJob(jobID))
}

func (r *reminderRepository) FindPendingBetween(db *gorm.DB, userID string, from, to time.Time) ([]models.Reminder, error) {
	return r.store.Find(db, userID, Page{}, byReminderDate, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND reminder_date >= ? AND reminder_date <= ?", models.ReminderPending, from, to)
	})
}

func (r *reminderRepository) FindOverdue(db *gorm.DB, userID string, now time.Time) ([]models.Reminder, error) {
	return r.store.Find(db, userID, Page{}, byReminderDate, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND reminder_date < ?", models.ReminderPending, now)
	})
}

func byReminderDate(q *gorm.DB) *gorm.DB {
	return q.Order("reminder_date ASC")
}

func forJob(jobID string) Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("job_application_id = ?", jobID)
	}
}

// ---------------- Lifecycle sweeps ----------------

func (r *reminderRepository) ReactivateElapsed(db *gorm.DB, userID string, now time.Time) (int64, error) {
	q := db.Model(&models.Reminder{}).
		Where("status = ? AND snooze_until IS NOT NULL AND snooze_until <= ?", models.ReminderSnoozed, now)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	res := q.Updates(map[string]interface{}{
		"status":       models.ReminderPending,
		"snooze_until": nil,
	})
	return res.RowsAffected, res.Error
}

func (r *reminderRepository) FindDueForEmail(db *gorm.DB, now time.Time, limit int) ([]models.Reminder, error) {
	var out []models.Reminder
	err := db.Where("status = ? AND reminder_date <= ? AND notify_email = ? AND email_sent = ?",
		models.ReminderPending, now, true, false).
		Where("email_attempts < ?", models.MaxEmailAttempts).
		Where("last_email_attempt_at IS NULL OR last_email_attempt_at <= ?", now.Add(-models.EmailRetryBackoff)).
		Order("email_attempts ASC, reminder_date ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *reminderRepository) MarkEmailSent(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Reminder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"email_sent":    true,
		"email_sent_at": at,
	}).Error
}

func (r *reminderRepository) RecordEmailFailure(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Reminder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"email_attempts":        gorm.Expr("email_attempts + 1"),
		"last_email_attempt_at": at,
	}).Error
}
