package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/analytics"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

// Export formats of GET /analytics/export.
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
)

type AnalyticsService interface {
	// Dashboard serves the cached snapshot while it is fresh and matches the
	// requested period; custom date windows are always computed.
	Dashboard(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.DashboardResponse, error)
	Trends(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.TrendsResponse, error)
	SuccessMetrics(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.SuccessMetricsResponse, error)
	Refresh(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.DashboardResponse, error)
	// Export returns the body and its content type.
	Export(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery, format string) ([]byte, string, error)

	// RefreshStale recomputes up to limit snapshots that are flagged or older than a day.
	RefreshStale(ctx context.Context, db *gorm.DB, limit int) (int, error)
}

type analyticsService struct {
	jobRepo       repositories.JobRepository
	resumeRepo    repositories.ResumeRepository
	reminderRepo  repositories.ReminderRepository
	analyticsRepo repositories.AnalyticsRepository
	now           func() time.Time
}

func NewAnalyticsService(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	reminderRepo repositories.ReminderRepository,
	analyticsRepo repositories.AnalyticsRepository,
) AnalyticsService {
	return &analyticsService{
		jobRepo:       jobRepo,
		resumeRepo:    resumeRepo,
		reminderRepo:  reminderRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.DashboardResponse, error) {
	opts := optionsFrom(q)
	now := s.now()

	if q.From == nil && q.To == nil {
		reactivated := reactivateSnoozed(ctx, db, s.reminderRepo, userID, now)
		snap, err := s.analyticsRepo.FindByUser(db, userID)
		switch {
		case err == nil:
			if reactivated == 0 && fresh(snap, opts.Period, now) {
				var summary analytics.Summary
				if err := json.Unmarshal(snap.Summary, &summary); err == nil {
					return &dto.DashboardResponse{Summary: summary, FromCache: true, LastCalculated: snap.LastCalculated}, nil
				}
				logger.CtxWarn(ctx, "analytics snapshot unreadable, recomputing", "user_id", userID)
			}
		case errors.Is(err, repositories.ErrSnapshotNotFound):
		default:
			return nil, apperrors.InternalError(err)
		}
		return s.recompute(ctx, db, userID, opts)
	}

	summary, err := s.aggregate(ctx, db, userID, opts, now)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{Summary: summary, LastCalculated: summary.GeneratedAt}, nil
}

func (s *analyticsService) Trends(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.TrendsResponse, error) {
	summary, err := s.aggregate(ctx, db, userID, optionsFrom(q), s.now())
	if err != nil {
		return nil, err
	}
	return &dto.TrendsResponse{
		Period:      summary.Period,
		BucketWidth: summary.BucketWidth,
		TimeSeries:  summary.TimeSeries,
		Monthly:     summary.Monthly,
	}, nil
}

func (s *analyticsService) SuccessMetrics(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.SuccessMetricsResponse, error) {
	summary, err := s.aggregate(ctx, db, userID, optionsFrom(q), s.now())
	if err != nil {
		return nil, err
	}
	return &dto.SuccessMetricsResponse{
		TotalApplications: summary.TotalApplications,
		ConversionRates:   summary.ConversionRates,
		ResponseTime:      summary.ResponseTime,
	}, nil
}

func (s *analyticsService) Refresh(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery) (*dto.DashboardResponse, error) {
	return s.recompute(ctx, db, userID, optionsFrom(dto.AnalyticsQuery{Period: q.Period}))
}

func (s *analyticsService) Export(ctx context.Context, db *gorm.DB, userID string, q dto.AnalyticsQuery, format string) ([]byte, string, error) {
	summary, err := s.aggregate(ctx, db, userID, optionsFrom(q), s.now())
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "", ExportJSON:
		body, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, "", apperrors.InternalError(err)
		}
		return body, "application/json", nil
	case ExportCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(analytics.Rows(summary)); err != nil {
			return nil, "", apperrors.InternalError(err)
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", apperrors.ValidationError(map[string]string{"format": "must be csv or json"})
	}
}

func (s *analyticsService) RefreshStale(ctx context.Context, db *gorm.DB, limit int) (int, error) {
	now := s.now()
	userIDs, err := s.analyticsRepo.FindStaleUserIDs(db, now.Add(-models.SnapshotMaxAge), limit)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	refreshed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		period := analytics.PeriodMonth
		if snap, err := s.analyticsRepo.FindByUser(db, userID); err == nil {
			period = analytics.ParsePeriod(snap.Period)
		}
		if _, err := s.recompute(ctx, db, userID, analytics.Options{Period: period, TopN: analytics.DefaultTopN}); err != nil {
			logger.CtxWithError(ctx, "analytics snapshot refresh failed", err, "user_id", userID)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// =======================
// Helpers
// =======================

func (s *analyticsService) recompute(ctx context.Context, db *gorm.DB, userID string, opts analytics.Options) (*dto.DashboardResponse, error) {
	now := s.now()
	summary, err := s.aggregate(ctx, db, userID, opts, now)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	snap := &models.AnalyticsSnapshot{
		UserID:         userID,
		Period:         string(opts.Period),
		Summary:        datatypes.JSON(raw),
		LastCalculated: now,
		IsStale:        false,
	}
	if err := s.analyticsRepo.Upsert(db, snap); err != nil {
		// the computed summary is still valid for this request
		logger.CtxWithError(ctx, "analytics snapshot not stored", err, "user_id", userID)
	}
	return &dto.DashboardResponse{Summary: summary, LastCalculated: now}, nil
}

func (s *analyticsService) aggregate(ctx context.Context, db *gorm.DB, userID string, opts analytics.Options, now time.Time) (analytics.Summary, error) {
	jobs, err := s.jobRepo.FindAll(db, userID)
	if err != nil {
		return analytics.Summary{}, apperrors.InternalError(err)
	}
	resumeList, err := s.resumeRepo.FindAll(db, userID)
	if err != nil {
		return analytics.Summary{}, apperrors.InternalError(err)
	}
	reactivateSnoozed(ctx, db, s.reminderRepo, userID, now)
	reminders, err := s.reminderRepo.FindAll(db, userID)
	if err != nil {
		return analytics.Summary{}, apperrors.InternalError(err)
	}

	return analytics.Aggregate(analytics.Input{
		Jobs:      jobs,
		Resumes:   resumeList,
		Reminders: reminders,
	}, opts, now), nil
}

func optionsFrom(q dto.AnalyticsQuery) analytics.Options {
	return analytics.Options{
		Period: analytics.ParsePeriod(q.Period),
		From:   q.From,
		To:     q.To,
		TopN:   analytics.DefaultTopN,
	}
}

func fresh(snap *models.AnalyticsSnapshot, period analytics.Period, now time.Time) bool {
	return !snap.IsStale &&
		snap.Period == string(period) &&
		now.Sub(snap.LastCalculated) <= models.SnapshotMaxAge
}

// markAnalyticsStale flags the cached dashboard after a mutation. A failure
// only delays the refresh, so it is logged and swallowed.
func markAnalyticsStale(ctx context.Context, db *gorm.DB, repo repositories.AnalyticsRepository, userID string) {
	if err := repo.MarkStale(db, userID); err != nil {
		logger.CtxWithError(ctx, "analytics snapshot not invalidated", err, "user_id", userID)
	}
}
