package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobtracker_backend/internal/email"
	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

// DefaultUpcomingHours is the window of GET /reminders/upcoming without ?hours.
const DefaultUpcomingHours = 24

type ReminderService interface {
	CreateReminder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateReminderRequest) (*dto.ReminderResponse, error)
	GetReminder(ctx context.Context, db *gorm.DB, userID, reminderID string) (*dto.ReminderResponse, error)
	// ListReminders reactivates the user's elapsed snoozes before reading.
	ListReminders(ctx context.Context, db *gorm.DB, userID string, q dto.ReminderListQuery, page, limit int) (*dto.ListResponse[dto.ReminderResponse], error)
	UpdateReminder(ctx context.Context, db *gorm.DB, userID, reminderID string, req *dto.UpdateReminderRequest) (*dto.ReminderResponse, error)
	DeleteReminder(ctx context.Context, db *gorm.DB, userID, reminderID string) error

	Upcoming(ctx context.Context, db *gorm.DB, userID string, hours int) ([]dto.ReminderResponse, error)
	Overdue(ctx context.Context, db *gorm.DB, userID string) ([]dto.ReminderResponse, error)
	Today(ctx context.Context, db *gorm.DB, userID string) ([]dto.ReminderResponse, error)
	ByJob(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.ReminderResponse, error)
	// AutoGenerate adds the follow-up reminders of a job that are still in the future and not yet present.
	AutoGenerate(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.ReminderResponse, error)

	Complete(ctx context.Context, db *gorm.DB, userID, reminderID, notes string) (*dto.CompleteReminderResponse, error)
	Snooze(ctx context.Context, db *gorm.DB, userID, reminderID string, minutes int) (*dto.ReminderResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, userID, reminderID string) (*dto.ReminderResponse, error)
	BulkAction(ctx context.Context, db *gorm.DB, userID string, req *dto.BulkReminderRequest) (*dto.BulkResult, error)

	// ProcessDueReminders emails due reminders across all users and returns how many were sent.
	ProcessDueReminders(ctx context.Context, db *gorm.DB, limit int) (int, error)
}

type reminderService struct {
	reminderRepo  repositories.ReminderRepository
	jobRepo       repositories.JobRepository
	userRepo      repositories.UserRepository
	analyticsRepo repositories.AnalyticsRepository
	notifier      email.Notifier
	now           func() time.Time
}

func NewReminderService(
	reminderRepo repositories.ReminderRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	analyticsRepo repositories.AnalyticsRepository,
	notifier email.Notifier,
) ReminderService {
	return &reminderService{
		reminderRepo:  reminderRepo,
		jobRepo:       jobRepo,
		userRepo:      userRepo,
		analyticsRepo: analyticsRepo,
		notifier:      notifier,
		now:           time.Now,
	}
}

// =======================
// CRUD
// =======================

func (s *reminderService) CreateReminder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateReminderRequest) (*dto.ReminderResponse, error) {
	if _, err := s.jobRepo.FindByID(db, userID, req.JobApplicationID); err != nil {
		return nil, handleReminderError(err)
	}

	r := &models.Reminder{
		BaseModel:        models.BaseModel{ID: uuid.NewString()},
		UserID:           userID,
		JobApplicationID: req.JobApplicationID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		ReminderDate:     req.ReminderDate,
		Type:             req.Type,
		Priority:         req.Priority,
		Status:           models.ReminderPending,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: patternFrom(req.RecurringPattern),
		Notifications:    notificationsFrom(req.Notifications, models.Notifications{Email: true}),
		Notes:            req.Notes,
		Tags:             normalizeTags(req.Tags),
	}
	if r.Priority == "" {
		r.Priority = models.ReminderPriorityMedium
	}
	if err := lifecycle.ValidatePattern(r.IsRecurring, r.RecurringPattern); err != nil {
		return nil, handleReminderError(err)
	}

	if err := s.reminderRepo.Create(db, r); err != nil {
		return nil, handleReminderError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	logger.CtxInfo(logger.WithReminderID(logger.WithJobID(ctx, r.JobApplicationID), r.ID), "reminder created")
	return s.response(r), nil
}

func (s *reminderService) GetReminder(ctx context.Context, db *gorm.DB, userID, reminderID string) (*dto.ReminderResponse, error) {
	r, err := s.reminderRepo.FindByID(db, userID, reminderID)
	if err != nil {
		return nil, handleReminderError(err)
	}
	if lifecycle.Reactivate(r, s.now()) {
		if err := s.reminderRepo.Save(db, r); err != nil {
			return nil, handleReminderError(err)
		}
	}
	return s.response(r), nil
}

func (s *reminderService) ListReminders(ctx context.Context, db *gorm.DB, userID string, q dto.ReminderListQuery, page, limit int) (*dto.ListResponse[dto.ReminderResponse], error) {
	s.reactivate(ctx, db, userID)

	items, total, err := s.reminderRepo.List(db, userID, repositories.ReminderFilter{
		Status:           q.Status,
		Type:             q.Type,
		Priority:         q.Priority,
		JobApplicationID: q.JobApplicationID,
		From:             q.From,
		To:               q.To,
		Page:             repositories.Page{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ListResponse[dto.ReminderResponse]{
		Items:      s.responses(items),
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *reminderService) UpdateReminder(ctx context.Context, db *gorm.DB, userID, reminderID string, req *dto.UpdateReminderRequest) (*dto.ReminderResponse, error) {
	return s.mutate(ctx, db, userID, reminderID, func(r *models.Reminder) error {
		if req.Title != nil {
			r.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			r.Description = *req.Description
		}
		if req.ReminderDate != nil {
			r.ReminderDate = *req.ReminderDate
			r.ResetEmail()
		}
		if req.Type != nil {
			r.Type = *req.Type
		}
		if req.Priority != nil {
			r.Priority = *req.Priority
		}
		if req.IsRecurring != nil {
			r.IsRecurring = *req.IsRecurring
		}
		if req.RecurringPattern != nil {
			r.RecurringPattern = patternFrom(req.RecurringPattern)
		}
		if req.Notifications != nil {
			r.Notifications = notificationsFrom(req.Notifications, r.Notifications)
		}
		if req.Notes != nil {
			r.Notes = *req.Notes
		}
		if req.Tags != nil {
			r.Tags = normalizeTags(req.Tags)
		}
		return lifecycle.ValidatePattern(r.IsRecurring, r.RecurringPattern)
	})
}

func (s *reminderService) DeleteReminder(ctx context.Context, db *gorm.DB, userID, reminderID string) error {
	if err := s.reminderRepo.Delete(db, userID, reminderID); err != nil {
		return handleReminderError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return nil
}

// =======================
// Views
// =======================

func (s *reminderService) Upcoming(ctx context.Context, db *gorm.DB, userID string, hours int) ([]dto.ReminderResponse, error) {
	if hours <= 0 {
		hours = DefaultUpcomingHours
	}
	s.reactivate(ctx, db, userID)
	now := s.now()
	items, err := s.reminderRepo.FindPendingBetween(db, userID, now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.responses(items), nil
}

func (s *reminderService) Overdue(ctx context.Context, db *gorm.DB, userID string) ([]dto.ReminderResponse, error) {
	s.reactivate(ctx, db, userID)
	items, err := s.reminderRepo.FindOverdue(db, userID, s.now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.responses(items), nil
}

// Today covers the server-local calendar day.
func (s *reminderService) Today(ctx context.Context, db *gorm.DB, userID string) ([]dto.ReminderResponse, error) {
	s.reactivate(ctx, db, userID)
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	items, err := s.reminderRepo.FindPendingBetween(db, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.responses(items), nil
}

func (s *reminderService) ByJob(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.ReminderResponse, error) {
	if _, err := s.jobRepo.FindByID(db, userID, jobID); err != nil {
		return nil, handleReminderError(err)
	}
	s.reactivate(ctx, db, userID)
	items, err := s.reminderRepo.FindByJob(db, userID, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.responses(items), nil
}

func (s *reminderService) AutoGenerate(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.ReminderResponse, error) {
	job, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, handleReminderError(err)
	}
	existing, err := s.reminderRepo.FindByJob(db, userID, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	present := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.IsAutoGenerated {
			present[r.Title] = true
		}
	}

	var created []models.Reminder
	for _, r := range lifecycle.AutoFollowUpsAfter(*job, s.now()) {
		if !present[r.Title] {
			created = append(created, r)
		}
	}
	if err := s.reminderRepo.CreateBatch(db, created); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(created) > 0 {
		markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	}
	return s.responses(created), nil
}

// =======================
// Transitions
// =======================

func (s *reminderService) Complete(ctx context.Context, db *gorm.DB, userID, reminderID, notes string) (*dto.CompleteReminderResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	r, err := s.reminderRepo.FindByID(tx, userID, reminderID)
	if err != nil {
		return nil, handleReminderError(err)
	}
	next, err := lifecycle.Complete(r, notes, s.now())
	if err != nil {
		return nil, handleReminderError(err)
	}
	if err := s.reminderRepo.Save(tx, r); err != nil {
		return nil, handleReminderError(err)
	}
	if next != nil {
		if err := s.reminderRepo.Create(tx, next); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	resp := &dto.CompleteReminderResponse{Completed: *s.response(r)}
	if next != nil {
		resp.Next = s.response(next)
	}
	return resp, nil
}

func (s *reminderService) Snooze(ctx context.Context, db *gorm.DB, userID, reminderID string, minutes int) (*dto.ReminderResponse, error) {
	return s.mutate(ctx, db, userID, reminderID, func(r *models.Reminder) error {
		return lifecycle.Snooze(r, minutes, s.now())
	})
}

func (s *reminderService) Cancel(ctx context.Context, db *gorm.DB, userID, reminderID string) (*dto.ReminderResponse, error) {
	return s.mutate(ctx, db, userID, reminderID, lifecycle.Cancel)
}

func (s *reminderService) BulkAction(ctx context.Context, db *gorm.DB, userID string, req *dto.BulkReminderRequest) (*dto.BulkResult, error) {
	found, err := s.reminderRepo.FindByIDs(db, userID, req.IDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byID := make(map[string]*models.Reminder, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	result := dto.NewBulkResult()
	now := s.now()
	for _, id := range req.IDs {
		r, ok := byID[id]
		if !ok {
			result.Fail(id, apperrors.ErrReminderNotFound)
			continue
		}
		if err := s.applyBulk(db, userID, r, req, now); err != nil {
			result.Fail(id, err)
			continue
		}
		result.Ok(id)
	}

	if len(result.Succeeded) > 0 {
		markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	}
	logger.CtxInfo(ctx, "bulk reminder action", "action", req.Action, "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

func (s *reminderService) applyBulk(db *gorm.DB, userID string, r *models.Reminder, req *dto.BulkReminderRequest, now time.Time) error {
	switch req.Action {
	case dto.BulkReminderDelete:
		return handleReminderError(s.reminderRepo.Delete(db, userID, r.ID))
	case dto.BulkReminderComplete:
		tx := db.Begin()
		if tx.Error != nil {
			return apperrors.InternalError(tx.Error)
		}
		defer tx.Rollback()
		next, err := lifecycle.Complete(r, "", now)
		if err != nil {
			return handleReminderError(err)
		}
		if err := s.reminderRepo.Save(tx, r); err != nil {
			return handleReminderError(err)
		}
		if next != nil {
			if err := s.reminderRepo.Create(tx, next); err != nil {
				return apperrors.InternalError(err)
			}
		}
		if err := tx.Commit().Error; err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	case dto.BulkReminderCancel:
		if err := lifecycle.Cancel(r); err != nil {
			return handleReminderError(err)
		}
	case dto.BulkReminderSnooze:
		if err := lifecycle.Snooze(r, req.Minutes, now); err != nil {
			return handleReminderError(err)
		}
	default:
		return apperrors.NewBadRequestError("unknown bulk action")
	}
	return handleReminderError(s.reminderRepo.Save(db, r))
}

// =======================
// Notifier
// =======================

func (s *reminderService) ProcessDueReminders(ctx context.Context, db *gorm.DB, limit int) (int, error) {
	now := s.now()
	if n, err := s.reminderRepo.ReactivateElapsed(db, "", now); err != nil {
		logger.CtxWithError(ctx, "snooze reactivation failed", err)
	} else if n > 0 {
		logger.CtxInfo(ctx, "snoozed reminders reactivated", "count", n)
	}

	due, err := s.reminderRepo.FindDueForEmail(db, now, limit)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	sent := 0
	users := make(map[string]*models.User)
	for i := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		r := &due[i]
		rctx := logger.WithReminderID(logger.WithUserID(ctx, r.UserID), r.ID)

		user, ok := users[r.UserID]
		if !ok {
			if user, err = s.userRepo.FindByID(db, r.UserID); err != nil {
				logger.CtxWithError(rctx, "reminder owner not loaded", err)
				s.emailFailed(rctx, db, r, now)
				continue
			}
			users[r.UserID] = user
		}

		// opted-out users are marked as sent so the reminder leaves the queue
		if user.Preferences.Data().EmailNotifications {
			var job *models.JobApplication
			if job, err = s.jobRepo.FindByID(db, r.UserID, r.JobApplicationID); err != nil {
				logger.CtxWithError(logger.WithJobID(rctx, r.JobApplicationID), "reminder job not loaded", err)
				job = nil
			}
			if err := s.notifier.SendReminder(rctx, user, r, job); err != nil {
				logger.CtxWithError(rctx, "reminder email not sent", err, "attempt", r.EmailAttempts+1)
				s.emailFailed(rctx, db, r, now)
				continue
			}
			sent++
		}
		if err := s.reminderRepo.MarkEmailSent(db, r.ID, now); err != nil {
			logger.CtxWithError(rctx, "reminder not marked as sent", err)
		}
	}
	return sent, nil
}

// =======================
// Helpers
// =======================

func (s *reminderService) mutate(ctx context.Context, db *gorm.DB, userID, reminderID string, fn func(r *models.Reminder) error) (*dto.ReminderResponse, error) {
	ctx = logger.WithReminderID(ctx, reminderID)
	r, err := s.reminderRepo.FindByID(db, userID, reminderID)
	if err != nil {
		return nil, handleReminderError(err)
	}
	if err := fn(r); err != nil {
		return nil, handleReminderError(err)
	}
	if err := s.reminderRepo.Save(db, r); err != nil {
		return nil, handleReminderError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return s.response(r), nil
}

// emailFailed counts a failed delivery so the reminder backs off instead of
// holding its place at the head of the queue. ctx carries the reminder_id.
func (s *reminderService) emailFailed(ctx context.Context, db *gorm.DB, r *models.Reminder, now time.Time) {
	if err := s.reminderRepo.RecordEmailFailure(db, r.ID, now); err != nil {
		logger.CtxWithError(ctx, "reminder email failure not recorded", err)
		return
	}
	if r.EmailAttempts+1 >= models.MaxEmailAttempts {
		logger.CtxWarn(ctx, "reminder email abandoned", "attempts", r.EmailAttempts+1)
	}
}

func (s *reminderService) reactivate(ctx context.Context, db *gorm.DB, userID string) {
	reactivateSnoozed(ctx, db, s.reminderRepo, userID, s.now())
}

// reactivateSnoozed returns the user's elapsed snoozes to pending and reports
// how many changed. Every path that reads reminders runs it first; a failure
// is logged and the read proceeds.
func reactivateSnoozed(ctx context.Context, db *gorm.DB, repo repositories.ReminderRepository, userID string, now time.Time) int64 {
	n, err := repo.ReactivateElapsed(db, userID, now)
	if err != nil {
		logger.CtxWithError(ctx, "snooze reactivation failed", err, "user_id", userID)
		return 0
	}
	return n
}

func (s *reminderService) response(r *models.Reminder) *dto.ReminderResponse {
	now := s.now()
	return &dto.ReminderResponse{
		Reminder:  *r,
		IsOverdue: lifecycle.ReminderIsOverdue(*r, now),
		DaysUntil: lifecycle.ReminderDaysUntil(*r, now),
	}
}

func (s *reminderService) responses(items []models.Reminder) []dto.ReminderResponse {
	out := make([]dto.ReminderResponse, 0, len(items))
	for i := range items {
		out = append(out, *s.response(&items[i]))
	}
	return out
}

func patternFrom(in *dto.RecurringPatternInput) models.RecurringPattern {
	if in == nil {
		return models.RecurringPattern{}
	}
	interval := in.Interval
	if interval == 0 {
		interval = 1
	}
	return models.RecurringPattern{Type: in.Type, Interval: interval, EndDate: in.EndDate}
}

// notificationsFrom applies in over base. A missing email flag keeps base.Email.
func notificationsFrom(in *dto.NotificationsInput, base models.Notifications) models.Notifications {
	if in == nil {
		return base
	}
	out := models.Notifications{Email: base.Email, Push: in.Push, SMS: in.SMS}
	if in.Email != nil {
		out.Email = *in.Email
	}
	return out
}
