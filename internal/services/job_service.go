package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"jobtracker_backend/internal/ai"
	"jobtracker_backend/internal/email"
	"jobtracker_backend/internal/gmail"
	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

type JobService interface {
	// Job operations
	CreateJob(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error)
	ListJobs(ctx context.Context, db *gorm.DB, userID string, q dto.JobListQuery, page, limit int) (*dto.ListResponse[dto.JobResponse], error)
	UpdateJob(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	// DeleteJob archives the job unless permanent is set; permanent deletion also removes its reminders.
	DeleteJob(ctx context.Context, db *gorm.DB, userID, jobID string, permanent bool) error

	// Status and archive
	UpdateStatus(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.UpdateStatusRequest) (*dto.JobResponse, error)
	ArchiveJob(ctx context.Context, db *gorm.DB, userID, jobID, reason string) (*dto.JobResponse, error)
	UnarchiveJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error)
	DuplicateJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error)
	GetTimeline(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.TimelineEntry, error)

	// Overviews
	GetStats(ctx context.Context, db *gorm.DB, userID string) (*dto.JobStatsResponse, error)
	GetRecent(ctx context.Context, db *gorm.DB, userID string, limit int) ([]dto.JobResponse, error)
	GetFollowUps(ctx context.Context, db *gorm.DB, userID string) ([]dto.JobResponse, error)
	BulkAction(ctx context.Context, db *gorm.DB, userID string, req *dto.BulkJobRequest) (*dto.BulkResult, error)
	ExportCSV(ctx context.Context, db *gorm.DB, userID string) ([]byte, error)

	// Sub-resources
	AddInterview(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.InterviewRequest) (*dto.JobResponse, error)
	UpdateInterview(ctx context.Context, db *gorm.DB, userID, jobID, interviewID string, req *dto.InterviewRequest) (*dto.JobResponse, error)
	DeleteInterview(ctx context.Context, db *gorm.DB, userID, jobID, interviewID string) (*dto.JobResponse, error)
	AddContact(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.ContactRequest) (*dto.JobResponse, error)
	DeleteContact(ctx context.Context, db *gorm.DB, userID, jobID, contactID string) (*dto.JobResponse, error)
	RecordFollowUp(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.FollowUpRequest) (*dto.JobResponse, error)

	// AI assistance
	AnalyzeFit(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobFitResponse, error)
	GenerateCoverLetter(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.CoverLetterRequest) (*dto.GeneratedTextResponse, error)
	InterviewPrep(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.GeneratedTextResponse, error)

	// ImportFromGmail creates applications from classified inbox messages,
	// skipping messages that were imported before.
	ImportFromGmail(ctx context.Context, db *gorm.DB, userID, query string) (*dto.GmailSyncResponse, error)
}

type jobService struct {
	jobRepo       repositories.JobRepository
	reminderRepo  repositories.ReminderRepository
	resumeRepo    repositories.ResumeRepository
	userRepo      repositories.UserRepository
	statsRepo     repositories.StatsRepository
	analyticsRepo repositories.AnalyticsRepository
	notifier      email.Notifier
	generator     ai.Generator
	scanner       gmail.Scanner
	now           func() time.Time
}

func NewJobService(
	jobRepo repositories.JobRepository,
	reminderRepo repositories.ReminderRepository,
	resumeRepo repositories.ResumeRepository,
	userRepo repositories.UserRepository,
	statsRepo repositories.StatsRepository,
	analyticsRepo repositories.AnalyticsRepository,
	notifier email.Notifier,
	generator ai.Generator,
	scanner gmail.Scanner,
) JobService {
	return &jobService{
		jobRepo:       jobRepo,
		reminderRepo:  reminderRepo,
		resumeRepo:    resumeRepo,
		userRepo:      userRepo,
		statsRepo:     statsRepo,
		analyticsRepo: analyticsRepo,
		notifier:      notifier,
		generator:     generator,
		scanner:       scanner,
		now:           time.Now,
	}
}

// =======================
// Job operations
// =======================

func (s *jobService) CreateJob(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	now := s.now()
	job := &models.JobApplication{
		BaseModel:           models.BaseModel{ID: uuid.NewString()},
		UserID:              userID,
		JobTitle:            strings.TrimSpace(req.JobTitle),
		Company:             strings.TrimSpace(req.Company),
		CompanyWebsite:      req.CompanyWebsite,
		Location:            locationFrom(req.Location),
		JobType:             req.JobType,
		ExperienceLevel:     req.ExperienceLevel,
		Department:          req.Department,
		Salary:              salaryFrom(req.Salary),
		ApplicationDeadline: req.ApplicationDeadline,
		Status:              req.Status,
		Source:              sourceFrom(req.Source),
		ResumeID:            req.ResumeID,
		JobDescription:      req.JobDescription,
		Requirements:        pq.StringArray(req.Requirements),
		SkillsRequired:      pq.StringArray(req.SkillsRequired),
		Benefits:            pq.StringArray(req.Benefits),
		Notes:               req.Notes,
		ResearchNotes:       req.ResearchNotes,
		Priority:            req.Priority,
		Tags:                normalizeTags(req.Tags),
		FollowUpDate:        req.FollowUpDate,
	}
	if req.ApplicationDate != nil {
		job.ApplicationDate = *req.ApplicationDate
	}
	applyJobDefaults(job)

	if err := lifecycle.SeedStatusHistory(job, now); err != nil {
		return nil, handleJobError(err)
	}
	if err := validateJob(job); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.checkResumeLink(tx, userID, job.ResumeID); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Create(tx, job); err != nil {
		return nil, handleJobError(err)
	}
	if req.AutoReminders {
		if err := s.reminderRepo.CreateBatch(tx, lifecycle.AutoFollowUpsAfter(*job, now)); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	logger.CtxInfo(logger.WithJobID(ctx, job.ID), "job application created", "status", job.Status)
	return s.response(job), nil
}

func (s *jobService) GetJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}

	now := s.now()
	if err := s.jobRepo.IncrementViewCount(db, userID, jobID, now); err != nil {
		logger.CtxWithError(logger.WithJobID(ctx, jobID), "job view not counted", err)
	} else {
		job.Analytics.ViewCount++
		job.Analytics.LastViewedAt = &now
	}
	return s.response(job), nil
}

func (s *jobService) ListJobs(ctx context.Context, db *gorm.DB, userID string, q dto.JobListQuery, page, limit int) (*dto.ListResponse[dto.JobResponse], error) {
	filter := repositories.JobFilter{
		Status:   q.Status,
		Priority: q.Priority,
		JobType:  q.JobType,
		Company:  q.Company,
		Search:   q.Search,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Archived: q.Archived,
		Tags:     q.Tags,
		SortBy:   q.SortBy,
		Order:    q.Order,
		Page:     repositories.Page{Page: page, Limit: limit},
	}

	jobs, total, err := s.jobRepo.List(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ListResponse[dto.JobResponse]{
		Items:      s.responses(jobs),
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *jobService) UpdateJob(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		applyJobUpdate(job, req)
		if err := validateJob(job); err != nil {
			return err
		}
		if req.ResumeID != nil {
			return s.checkResumeLink(tx, userID, job.ResumeID)
		}
		return nil
	})
}

func (s *jobService) DeleteJob(ctx context.Context, db *gorm.DB, userID, jobID string, permanent bool) error {
	if !permanent {
		_, err := s.ArchiveJob(ctx, db, userID, jobID, "Deleted")
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.reminderRepo.DeleteByJob(tx, userID, jobID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.jobRepo.Delete(tx, userID, jobID); err != nil {
		return handleJobError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	logger.CtxInfo(logger.WithJobID(ctx, jobID), "job application deleted")
	return nil
}

// =======================
// Status and archive
// =======================

func (s *jobService) UpdateStatus(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.UpdateStatusRequest) (*dto.JobResponse, error) {
	var (
		previous models.JobStatus
		changed  bool
	)
	resp, err := s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		previous = job.Status
		var err error
		changed, err = lifecycle.UpdateStatus(job, req.Status, req.Notes, models.AddedByUser, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifyStatusChange(ctx, db, userID, &resp.JobApplication, previous, req.Notes)
	}
	return resp, nil
}

func (s *jobService) ArchiveJob(ctx context.Context, db *gorm.DB, userID, jobID, reason string) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		if job.IsArchived {
			return nil
		}
		now := s.now()
		job.IsArchived = true
		job.ArchivedAt = &now
		job.ArchivedReason = reason
		return nil
	})
}

func (s *jobService) UnarchiveJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		job.IsArchived = false
		job.ArchivedAt = nil
		job.ArchivedReason = ""
		return nil
	})
}

// DuplicateJob copies the posting details into a new Wishlist entry. Progress
// data (history, interviews, contacts, insights, counters) is not carried over.
func (s *jobService) DuplicateJob(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobResponse, error) {
	src, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}

	now := s.now()
	copyJob := &models.JobApplication{
		BaseModel:           models.BaseModel{ID: uuid.NewString()},
		UserID:              userID,
		JobTitle:            src.JobTitle,
		Company:             src.Company,
		CompanyWebsite:      src.CompanyWebsite,
		Location:            src.Location,
		JobType:             src.JobType,
		ExperienceLevel:     src.ExperienceLevel,
		Department:          src.Department,
		Salary:              src.Salary,
		ApplicationDate:     now,
		ApplicationDeadline: src.ApplicationDeadline,
		Status:              models.StatusWishlist,
		Source:              src.Source,
		ResumeID:            src.ResumeID,
		JobDescription:      src.JobDescription,
		Requirements:        append(pq.StringArray(nil), src.Requirements...),
		SkillsRequired:      append(pq.StringArray(nil), src.SkillsRequired...),
		Benefits:            append(pq.StringArray(nil), src.Benefits...),
		Notes:               src.Notes,
		ResearchNotes:       src.ResearchNotes,
		Priority:            src.Priority,
		Tags:                append(pq.StringArray(nil), src.Tags...),
	}
	if copyJob.ApplicationDeadline != nil && copyJob.ApplicationDeadline.Before(now) {
		copyJob.ApplicationDeadline = nil
	}
	applyJobDefaults(copyJob)
	if err := lifecycle.SeedStatusHistory(copyJob, now); err != nil {
		return nil, handleJobError(err)
	}
	copyJob.StatusHistory[0].Notes = "Duplicated from " + src.ID

	if err := s.jobRepo.Create(db, copyJob); err != nil {
		return nil, handleJobError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return s.response(copyJob), nil
}

func (s *jobService) GetTimeline(ctx context.Context, db *gorm.DB, userID, jobID string) ([]dto.TimelineEntry, error) {
	job, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	reactivateSnoozed(ctx, db, s.reminderRepo, userID, s.now())
	reminders, err := s.reminderRepo.FindByJob(db, userID, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	entries := make([]dto.TimelineEntry, 0, len(job.StatusHistory)+len(job.Interviews)+len(reminders)+1)
	for _, h := range job.StatusHistory {
		entries = append(entries, dto.TimelineEntry{
			Date:        h.Date,
			Kind:        "status",
			Title:       string(h.Status),
			Description: h.Notes,
		})
	}
	for _, iv := range job.Interviews {
		entries = append(entries, dto.TimelineEntry{
			Date:        iv.ScheduledDate,
			Kind:        "interview",
			Title:       fmt.Sprintf("%s interview (%s)", iv.Type, iv.Status),
			Description: iv.Notes,
		})
	}
	for _, r := range reminders {
		entries = append(entries, dto.TimelineEntry{
			Date:        r.ReminderDate,
			Kind:        "reminder",
			Title:       r.Title,
			Description: string(r.Status),
		})
	}
	if job.LastFollowUpDate != nil {
		entries = append(entries, dto.TimelineEntry{
			Date:        *job.LastFollowUpDate,
			Kind:        "follow_up",
			Title:       fmt.Sprintf("Follow-up #%d sent", job.FollowUpCount),
		})
	}
	if job.IsArchived && job.ArchivedAt != nil {
		entries = append(entries, dto.TimelineEntry{
			Date:        *job.ArchivedAt,
			Kind:        "archived",
			Title:       "Archived",
			Description: job.ArchivedReason,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// =======================
// Overviews
// =======================

func (s *jobService) GetStats(ctx context.Context, db *gorm.DB, userID string) (*dto.JobStatsResponse, error) {
	byStatus, err := s.statsRepo.CountJobsBy(ctx, userID, repositories.StatsByStatus)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byPriority, err := s.statsRepo.CountJobsBy(ctx, userID, repositories.StatsByPriority)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byJobType, err := s.statsRepo.CountJobsBy(ctx, userID, repositories.StatsByJobType)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	active, archived, err := s.statsRepo.CountActiveJobs(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	followUps, err := s.GetFollowUps(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	for _, st := range models.JobStatuses {
		if _, ok := byStatus[string(st)]; !ok {
			byStatus[string(st)] = 0
		}
	}

	return &dto.JobStatsResponse{
		Total:       active + archived,
		Active:      active,
		Archived:    archived,
		ByStatus:    byStatus,
		ByPriority:  byPriority,
		ByJobType:   byJobType,
		NeedsAction: len(followUps),
	}, nil
}

func (s *jobService) GetRecent(ctx context.Context, db *gorm.DB, userID string, limit int) ([]dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindRecent(db, userID, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.responses(jobs), nil
}

func (s *jobService) GetFollowUps(ctx context.Context, db *gorm.DB, userID string) ([]dto.JobResponse, error) {
	candidates, err := s.jobRepo.FindFollowUpCandidates(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	due := make([]models.JobApplication, 0, len(candidates))
	for _, job := range candidates {
		if lifecycle.NeedsFollowUp(job, now) {
			due = append(due, job)
		}
	}
	return s.responses(due), nil
}

// BulkAction applies one action to many jobs. Each id succeeds or fails on
// its own; bulk status changes do not send status emails.
func (s *jobService) BulkAction(ctx context.Context, db *gorm.DB, userID string, req *dto.BulkJobRequest) (*dto.BulkResult, error) {
	if req.Action == dto.BulkJobUpdateStatus && !req.Status.IsValid() {
		return nil, apperrors.ErrInvalidTransition(lifecycle.ErrInvalidStatus, "job", "Invalid job status")
	}

	jobs, err := s.jobRepo.FindByIDs(db, userID, req.IDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byID := make(map[string]*models.JobApplication, len(jobs))
	for i := range jobs {
		byID[jobs[i].ID] = &jobs[i]
	}

	result := dto.NewBulkResult()
	now := s.now()
	for _, id := range req.IDs {
		job, ok := byID[id]
		if !ok {
			result.Fail(id, apperrors.ErrJobNotFound)
			continue
		}
		if err := s.applyBulk(db, userID, job, req, now); err != nil {
			result.Fail(id, err)
			continue
		}
		result.Ok(id)
	}

	if len(result.Succeeded) > 0 {
		markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	}
	logger.CtxInfo(ctx, "bulk job action", "action", req.Action, "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

func (s *jobService) applyBulk(db *gorm.DB, userID string, job *models.JobApplication, req *dto.BulkJobRequest, now time.Time) error {
	switch req.Action {
	case dto.BulkJobUpdateStatus:
		changed, err := lifecycle.UpdateStatus(job, req.Status, req.Notes, models.AddedByUser, now)
		if err != nil {
			return handleJobError(err)
		}
		if !changed {
			return nil
		}
	case dto.BulkJobArchive:
		if job.IsArchived {
			return nil
		}
		job.IsArchived = true
		job.ArchivedAt = &now
		job.ArchivedReason = req.Notes
	case dto.BulkJobUnarchive:
		job.IsArchived = false
		job.ArchivedAt = nil
		job.ArchivedReason = ""
	case dto.BulkJobAddTag:
		tags := normalizeTags(append([]string(job.Tags), req.Tag))
		if len(tags) == len(job.Tags) {
			return nil
		}
		job.Tags = tags
	case dto.BulkJobDelete:
		tx := db.Begin()
		if tx.Error != nil {
			return apperrors.InternalError(tx.Error)
		}
		defer tx.Rollback()
		if err := s.reminderRepo.DeleteByJob(tx, userID, job.ID); err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.jobRepo.Delete(tx, userID, job.ID); err != nil {
			return handleJobError(err)
		}
		if err := tx.Commit().Error; err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	default:
		return apperrors.NewBadRequestError("unknown bulk action")
	}
	return handleJobError(s.jobRepo.Save(db, job))
}

var csvHeader = []string{
	"Job Title", "Company", "Status", "Priority", "Job Type", "Location", "Remote",
	"Application Date", "Deadline", "Source", "Salary Min", "Salary Max", "Currency",
	"Follow-ups", "Archived", "Tags",
}

func (s *jobService) ExportCSV(ctx context.Context, db *gorm.DB, userID string) ([]byte, error) {
	jobs, err := s.jobRepo.FindAll(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, apperrors.InternalError(err)
	}
	for _, j := range jobs {
		row := []string{
			j.JobTitle,
			j.Company,
			string(j.Status),
			string(j.Priority),
			string(j.JobType),
			joinNonEmpty(", ", j.Location.City, j.Location.State, j.Location.Country),
			strconv.FormatBool(j.Location.IsRemote),
			j.ApplicationDate.Format("2006-01-02"),
			formatDate(j.ApplicationDeadline),
			string(j.Source.Platform),
			formatAmount(j.Salary.Min),
			formatAmount(j.Salary.Max),
			string(j.Salary.Currency),
			strconv.Itoa(j.FollowUpCount),
			strconv.FormatBool(j.IsArchived),
			strings.Join(j.Tags, ";"),
		}
		if err := w.Write(row); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buf.Bytes(), nil
}

// =======================
// Sub-resources
// =======================

func (s *jobService) AddInterview(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.InterviewRequest) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		iv := interviewFrom(req)
		iv.ID = uuid.NewString()
		job.Interviews = append(job.Interviews, iv)
		return nil
	})
}

func (s *jobService) UpdateInterview(ctx context.Context, db *gorm.DB, userID, jobID, interviewID string, req *dto.InterviewRequest) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		for i := range job.Interviews {
			if job.Interviews[i].ID == interviewID {
				iv := interviewFrom(req)
				iv.ID = interviewID
				job.Interviews[i] = iv
				return nil
			}
		}
		return apperrors.ErrInterviewNotFound
	})
}

func (s *jobService) DeleteInterview(ctx context.Context, db *gorm.DB, userID, jobID, interviewID string) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		for i := range job.Interviews {
			if job.Interviews[i].ID == interviewID {
				job.Interviews = append(job.Interviews[:i], job.Interviews[i+1:]...)
				return nil
			}
		}
		return apperrors.ErrInterviewNotFound
	})
}

func (s *jobService) AddContact(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.ContactRequest) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		job.Contacts = append(job.Contacts, models.Contact{
			ID:       uuid.NewString(),
			Name:     req.Name,
			Title:    req.Title,
			Email:    req.Email,
			Phone:    req.Phone,
			LinkedIn: req.LinkedIn,
			Role:     req.Role,
			Notes:    req.Notes,
		})
		return nil
	})
}

func (s *jobService) DeleteContact(ctx context.Context, db *gorm.DB, userID, jobID, contactID string) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		for i := range job.Contacts {
			if job.Contacts[i].ID == contactID {
				job.Contacts = append(job.Contacts[:i], job.Contacts[i+1:]...)
				return nil
			}
		}
		return apperrors.ErrContactNotFound
	})
}

// RecordFollowUp stamps a sent follow-up; FollowUpDate moves to the next
// planned follow-up, or is cleared when none is given.
func (s *jobService) RecordFollowUp(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.FollowUpRequest) (*dto.JobResponse, error) {
	return s.mutate(ctx, db, userID, jobID, func(tx *gorm.DB, job *models.JobApplication) error {
		now := s.now()
		job.LastFollowUpDate = &now
		job.FollowUpCount++
		job.FollowUpDate = req.NextFollowUp
		if req.Notes != "" {
			entry := fmt.Sprintf("[%s] Follow-up: %s", now.Format("2006-01-02"), req.Notes)
			if job.Notes == "" {
				job.Notes = entry
			} else {
				job.Notes = job.Notes + "\n" + entry
			}
		}
		return nil
	})
}

// =======================
// Helpers
// =======================

// mutate loads an owned job, applies fn and saves it in one transaction.
func (s *jobService) mutate(ctx context.Context, db *gorm.DB, userID, jobID string, fn func(tx *gorm.DB, job *models.JobApplication) error) (*dto.JobResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.jobRepo.FindByID(tx, userID, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	if err := fn(tx, job); err != nil {
		return nil, handleJobError(err)
	}
	if err := s.jobRepo.Save(tx, job); err != nil {
		return nil, handleJobError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return s.response(job), nil
}

func (s *jobService) checkResumeLink(db *gorm.DB, userID string, resumeID *string) error {
	if resumeID == nil || *resumeID == "" {
		return nil
	}
	if _, err := s.resumeRepo.FindByID(db, userID, *resumeID); err != nil {
		if apperrors.Is(err, repositories.ErrResumeNotFound) {
			return apperrors.ValidationError(map[string]string{"resumeId": "resume not found"})
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// notifyStatusChange sends the status email when the user opted in. Failures are logged only.
func (s *jobService) notifyStatusChange(ctx context.Context, db *gorm.DB, userID string, job *models.JobApplication, previous models.JobStatus, notes string) {
	ctx = logger.WithJobID(ctx, job.ID)
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		logger.CtxWithError(ctx, "status email skipped", err)
		return
	}
	if !user.Preferences.Data().EmailNotifications {
		return
	}
	if err := s.notifier.SendStatusUpdate(ctx, user, job, previous, notes); err != nil {
		logger.CtxWithError(ctx, "status email not sent", err)
	}
}

func (s *jobService) response(job *models.JobApplication) *dto.JobResponse {
	now := s.now()
	return &dto.JobResponse{
		JobApplication:        *job,
		DaysSinceApplication:  lifecycle.DaysSinceApplication(*job, now),
		CurrentStatusDuration: lifecycle.CurrentStatusDuration(*job, now),
		NextInterview:         lifecycle.NextInterview(*job, now),
		NeedsFollowUp:         lifecycle.NeedsFollowUp(*job, now),
	}
}

func (s *jobService) responses(jobs []models.JobApplication) []dto.JobResponse {
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *s.response(&jobs[i]))
	}
	return out
}

func applyJobDefaults(job *models.JobApplication) {
	if job.JobType == "" {
		job.JobType = models.JobTypeFullTime
	}
	if job.Priority == "" {
		job.Priority = models.PriorityMedium
	}
	if job.Source.Platform == "" {
		job.Source.Platform = models.SourceOther
	}
}

// validateJob checks the cross-field rules that tags cannot express.
func validateJob(job *models.JobApplication) error {
	details := map[string]string{}
	if d := job.ApplicationDeadline; d != nil && !job.ApplicationDate.IsZero() && d.Before(job.ApplicationDate) {
		details["applicationDeadline"] = "must not be before applicationDate"
	}
	if min, max := job.Salary.Min, job.Salary.Max; min != nil && max != nil && *min > *max {
		details["salary.min"] = "must not exceed salary.max"
	}
	if len(details) > 0 {
		return apperrors.ValidationError(details)
	}
	return nil
}

func applyJobUpdate(job *models.JobApplication, req *dto.UpdateJobRequest) {
	if req.JobTitle != nil {
		job.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.Company != nil {
		job.Company = strings.TrimSpace(*req.Company)
	}
	if req.CompanyWebsite != nil {
		job.CompanyWebsite = *req.CompanyWebsite
	}
	if req.Location != nil {
		job.Location = locationFrom(*req.Location)
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Department != nil {
		job.Department = *req.Department
	}
	if req.Salary != nil {
		job.Salary = salaryFrom(*req.Salary)
	}
	if req.ApplicationDate != nil {
		job.ApplicationDate = *req.ApplicationDate
	}
	if req.ApplicationDeadline != nil {
		job.ApplicationDeadline = req.ApplicationDeadline
	}
	if req.Source != nil {
		job.Source = sourceFrom(*req.Source)
	}
	if req.ResumeID != nil {
		if *req.ResumeID == "" {
			job.ResumeID = nil
		} else {
			job.ResumeID = req.ResumeID
		}
	}
	if req.JobDescription != nil {
		job.JobDescription = *req.JobDescription
	}
	if req.Requirements != nil {
		job.Requirements = pq.StringArray(req.Requirements)
	}
	if req.SkillsRequired != nil {
		job.SkillsRequired = pq.StringArray(req.SkillsRequired)
	}
	if req.Benefits != nil {
		job.Benefits = pq.StringArray(req.Benefits)
	}
	if req.Notes != nil {
		job.Notes = *req.Notes
	}
	if req.ResearchNotes != nil {
		job.ResearchNotes = *req.ResearchNotes
	}
	if req.Priority != nil {
		job.Priority = *req.Priority
	}
	if req.Tags != nil {
		job.Tags = normalizeTags(req.Tags)
	}
	if req.FollowUpDate != nil {
		job.FollowUpDate = req.FollowUpDate
	}
}

func locationFrom(in dto.LocationInput) models.Location {
	return models.Location{
		City:       in.City,
		State:      in.State,
		Country:    in.Country,
		IsRemote:   in.IsRemote,
		RemoteType: in.RemoteType,
	}
}

func salaryFrom(in dto.SalaryInput) models.Salary {
	return models.Salary{
		Min:          in.Min,
		Max:          in.Max,
		Currency:     in.Currency,
		Period:       in.Period,
		IsNegotiable: in.IsNegotiable,
	}
}

func sourceFrom(in dto.SourceInput) models.Source {
	return models.Source{
		Platform:     in.Platform,
		JobPostURL:   in.JobPostURL,
		ReferralName: in.ReferralName,
	}
}

func interviewFrom(req *dto.InterviewRequest) models.Interview {
	status := req.Status
	if status == "" {
		status = models.InterviewScheduled
	}
	return models.Interview{
		Type:          req.Type,
		ScheduledDate: req.ScheduledDate,
		Duration:      req.Duration,
		Interviewer:   req.Interviewer,
		Location:      req.Location,
		MeetingLink:   req.MeetingLink,
		Status:        status,
		Feedback:      req.Feedback,
		Rating:        req.Rating,
		Notes:         req.Notes,
	}
}

// normalizeTags trims, lowercases and dedupes, keeping first-seen order.
func normalizeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
