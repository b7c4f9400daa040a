package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/ai"
	"jobtracker_backend/internal/gmail"
	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

// =======================
// AI assistance
// =======================

func (s *jobService) AnalyzeFit(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.JobFitResponse, error) {
	user, job, err := s.loadUserAndJob(db, userID, jobID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, ai.JobFitPrompt(ai.CandidateFromUser(user), job), ai.RoleCareerAdvisor)
	if err != nil {
		return nil, err
	}
	insights, err := ai.ParseJobFit(raw)
	if err != nil {
		logger.CtxWarn(logger.WithJobID(ctx, jobID), "job fit answer not parseable", "error", err)
		return &dto.JobFitResponse{Raw: raw}, nil
	}

	now := s.now()
	insights.GeneratedAt = &now
	if err := s.jobRepo.UpdateFields(db, userID, jobID, map[string]interface{}{
		"ai_insights": datatypes.NewJSONType(*insights),
	}); err != nil {
		return nil, handleJobError(err)
	}
	return &dto.JobFitResponse{Insights: *insights}, nil
}

func (s *jobService) GenerateCoverLetter(ctx context.Context, db *gorm.DB, userID, jobID string, req *dto.CoverLetterRequest) (*dto.GeneratedTextResponse, error) {
	user, job, err := s.loadUserAndJob(db, userID, jobID)
	if err != nil {
		return nil, err
	}

	resumeID := req.ResumeID
	if resumeID == "" && job.ResumeID != nil {
		resumeID = *job.ResumeID
	}
	var summary string
	if resumeID != "" {
		resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
		if err != nil {
			return nil, handleResumeError(err)
		}
		summary = resume.Summary
	}

	text, err := s.generator.Generate(ctx, ai.CoverLetterPrompt(ai.CandidateFromUser(user), job, summary, req.Tone), ai.RoleCoverLetter)
	if err != nil {
		return nil, err
	}
	return &dto.GeneratedTextResponse{Content: text, GeneratedAt: s.now()}, nil
}

func (s *jobService) InterviewPrep(ctx context.Context, db *gorm.DB, userID, jobID string) (*dto.GeneratedTextResponse, error) {
	job, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	text, err := s.generator.Generate(ctx, ai.InterviewTipsPrompt(job), ai.RoleInterviewCoach)
	if err != nil {
		return nil, err
	}
	return &dto.GeneratedTextResponse{Content: text, GeneratedAt: s.now()}, nil
}

func (s *jobService) loadUserAndJob(db *gorm.DB, userID, jobID string) (*models.User, *models.JobApplication, error) {
	job, err := s.jobRepo.FindByID(db, userID, jobID)
	if err != nil {
		return nil, nil, handleJobError(err)
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, nil, handleUserError(err)
	}
	return user, job, nil
}

// =======================
// Gmail import
// =======================

func (s *jobService) ImportFromGmail(ctx context.Context, db *gorm.DB, userID, query string) (*dto.GmailSyncResponse, error) {
	if s.scanner == nil {
		return nil, apperrors.ErrOAuthProviderDisabled
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	in := user.Integrations
	if !in.GmailConnected || (in.GmailAccessToken == "" && in.GmailRefreshToken == "") {
		return nil, apperrors.ErrGmailNotConnected
	}

	token := &oauth2.Token{AccessToken: in.GmailAccessToken, RefreshToken: in.GmailRefreshToken}
	if in.GmailTokenExpiry != nil {
		token.Expiry = *in.GmailTokenExpiry
	}
	scan, err := s.scanner.Scan(ctx, token, query)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(scan.Candidates))
	for _, c := range scan.Candidates {
		ids = append(ids, c.MessageID)
	}
	existing, err := s.jobRepo.FindExistingExternalIDs(db, userID, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	resp := &dto.GmailSyncResponse{Scanned: scan.Scanned, Jobs: []dto.JobResponse{}}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	for _, c := range scan.Candidates {
		if existing[c.MessageID] {
			resp.Skipped++
			continue
		}
		existing[c.MessageID] = true

		job, err := jobFromCandidate(userID, c, now)
		if err != nil {
			logger.CtxWarn(ctx, "Skipping Gmail candidate", "messageId", c.MessageID, "error", err)
			resp.Skipped++
			continue
		}
		if err := s.jobRepo.Create(tx, job); err != nil {
			return nil, handleJobError(err)
		}
		resp.Imported++
		resp.Jobs = append(resp.Jobs, *s.response(job))
	}

	fields := map[string]interface{}{"gmail_last_sync_at": now}
	if t := scan.Token; t != nil && t.AccessToken != "" {
		fields["gmail_access_token"] = t.AccessToken
		if t.RefreshToken != "" {
			fields["gmail_refresh_token"] = t.RefreshToken
		}
		if !t.Expiry.IsZero() {
			fields["gmail_token_expiry"] = t.Expiry
		}
	}
	if err := s.userRepo.UpdateFields(tx, userID, fields); err != nil {
		return nil, handleUserError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	if resp.Imported > 0 {
		markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	}
	logger.CtxInfo(ctx, "Gmail import finished", "scanned", resp.Scanned, "imported", resp.Imported, "skipped", resp.Skipped)
	return resp, nil
}

// jobFromCandidate seeds an Applied entry dated at the message and, for later
// stages, records the detected status as a system change.
func jobFromCandidate(userID string, c gmail.Candidate, now time.Time) (*models.JobApplication, error) {
	date := c.Date
	if date.IsZero() || date.After(now) {
		date = now
	}
	messageID := c.MessageID
	job := &models.JobApplication{
		BaseModel:       models.BaseModel{ID: uuid.NewString()},
		UserID:          userID,
		JobTitle:        firstNonEmpty(strings.TrimSpace(c.JobTitle), "Unknown position"),
		Company:         firstNonEmpty(strings.TrimSpace(c.Company), "Unknown company"),
		ApplicationDate: date,
		Status:          models.StatusApplied,
		Source:          models.Source{Platform: models.SourceGmail},
		Notes:           "Imported from email: " + c.Subject,
		ExternalID:      &messageID,
	}
	applyJobDefaults(job)
	if err := lifecycle.SeedStatusHistory(job, date); err != nil {
		return nil, err
	}
	job.StatusHistory[0].AddedBy = models.AddedBySystem
	if c.Status != "" && c.Status != models.StatusApplied {
		if _, err := lifecycle.UpdateStatus(job, c.Status, "Detected from email", models.AddedBySystem, date); err != nil {
			return nil, err
		}
	}
	return job, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
