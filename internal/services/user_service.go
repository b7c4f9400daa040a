package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/auth"
	"jobtracker_backend/internal/imageprocessor"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/internal/storage"
	"jobtracker_backend/pkg/apperrors"
)

type UserService interface {
	// Profile
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	GetPreferences(ctx context.Context, db *gorm.DB, userID string) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, db *gorm.DB, userID string, prefs models.UserPreferences) (*models.UserPreferences, error)
	UpdateSkills(ctx context.Context, db *gorm.DB, userID string, skills []models.ProfileSkill) (*dto.UserResponse, error)
	UpdateExperience(ctx context.Context, db *gorm.DB, userID string, experience []models.ProfileExperience) (*dto.UserResponse, error)
	UpdateEducation(ctx context.Context, db *gorm.DB, userID string, education []models.ProfileEducation) (*dto.UserResponse, error)
	UpdateCertifications(ctx context.Context, db *gorm.DB, userID string, certs []models.ProfileCertification) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.UserResponse, error)

	// Account
	Export(ctx context.Context, db *gorm.DB, userID string) (*dto.UserExport, error)
	DeleteAccount(ctx context.Context, db *gorm.DB, userID, password string) error
	SyncGmail(ctx context.Context, db *gorm.DB, userID, query string) (*dto.GmailSyncResponse, error)
}

type userService struct {
	userRepo         repositories.UserRepository
	jobRepo          repositories.JobRepository
	resumeRepo       repositories.ResumeRepository
	reminderRepo     repositories.ReminderRepository
	analyticsRepo    repositories.AnalyticsRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	store            storage.Storage
	images           *imageprocessor.Processor
	jobs             JobService
	now              func() time.Time
}

func NewUserService(
	userRepo repositories.UserRepository,
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	reminderRepo repositories.ReminderRepository,
	analyticsRepo repositories.AnalyticsRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	store storage.Storage,
	images *imageprocessor.Processor,
	jobs JobService,
) UserService {
	return &userService{
		userRepo:         userRepo,
		jobRepo:          jobRepo,
		resumeRepo:       resumeRepo,
		reminderRepo:     reminderRepo,
		analyticsRepo:    analyticsRepo,
		refreshTokenRepo: refreshTokenRepo,
		store:            store,
		images:           images,
		jobs:             jobs,
		now:              time.Now,
	}
}

// =======================
// Profile
// =======================

func (s *userService) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	return s.update(db, userID, func(u *models.User) {
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Phone != nil {
			u.Phone = *req.Phone
		}
		if req.Headline != nil {
			u.Headline = *req.Headline
		}
		if req.Summary != nil {
			u.Summary = *req.Summary
		}
		if req.Address != nil || req.SocialLinks != nil {
			profile := u.Profile.Data()
			if req.Address != nil {
				profile.Address = *req.Address
			}
			if req.SocialLinks != nil {
				profile.SocialLinks = *req.SocialLinks
			}
			u.Profile = datatypes.NewJSONType(profile)
		}
	})
}

func (s *userService) GetPreferences(ctx context.Context, db *gorm.DB, userID string) (*models.UserPreferences, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	prefs := user.Preferences.Data()
	return &prefs, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, db *gorm.DB, userID string, prefs models.UserPreferences) (*models.UserPreferences, error) {
	if _, err := s.update(db, userID, func(u *models.User) {
		u.Preferences = datatypes.NewJSONType(prefs)
	}); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *userService) UpdateSkills(ctx context.Context, db *gorm.DB, userID string, skills []models.ProfileSkill) (*dto.UserResponse, error) {
	return s.updateProfile(db, userID, func(p *models.UserProfile) { p.Skills = skills })
}

func (s *userService) UpdateExperience(ctx context.Context, db *gorm.DB, userID string, experience []models.ProfileExperience) (*dto.UserResponse, error) {
	return s.updateProfile(db, userID, func(p *models.UserProfile) { p.Experience = experience })
}

func (s *userService) UpdateEducation(ctx context.Context, db *gorm.DB, userID string, education []models.ProfileEducation) (*dto.UserResponse, error) {
	return s.updateProfile(db, userID, func(p *models.UserProfile) { p.Education = education })
}

func (s *userService) UpdateCertifications(ctx context.Context, db *gorm.DB, userID string, certs []models.ProfileCertification) (*dto.UserResponse, error) {
	return s.updateProfile(db, userID, func(p *models.UserProfile) { p.Certifications = certs })
}

func (s *userService) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.UserResponse, error) {
	body, err := s.images.Avatar(file)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrUnsupportedImage) {
			return nil, apperrors.ValidationError(map[string]string{"avatar": "must be a JPEG, PNG, GIF or WebP image"})
		}
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	key := storage.AvatarKey(userID, "jpg")
	if err := s.store.Save(ctx, key, bytes.NewReader(body), "image/jpeg"); err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServiceStorage)
	}

	// the key is stable, so a version query busts client caches
	url := s.store.URL(key) + "?v=" + s.now().Format("20060102150405")
	return s.update(db, userID, func(u *models.User) { u.ProfilePicture = url })
}

// =======================
// Account
// =======================

func (s *userService) Export(ctx context.Context, db *gorm.DB, userID string) (*dto.UserExport, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	jobs, err := s.jobRepo.FindAll(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resumeList, err := s.resumeRepo.FindAll(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	reactivateSnoozed(ctx, db, s.reminderRepo, userID, s.now())
	reminders, err := s.reminderRepo.FindAll(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	export := &dto.UserExport{
		ExportedAt: s.now(),
		User:       dto.NewUserResponse(user),
		Jobs:       jobs,
		Resumes:    resumeList,
		Reminders:  reminders,
	}
	snap, err := s.analyticsRepo.FindByUser(db, userID)
	switch {
	case err == nil:
		export.Analytics = snap
	case errors.Is(err, repositories.ErrSnapshotNotFound):
	default:
		return nil, apperrors.InternalError(err)
	}
	return export, nil
}

// DeleteAccount removes the user and everything they own in one transaction.
// Stored files are removed after the commit; a failure there is only logged.
func (s *userService) DeleteAccount(ctx context.Context, db *gorm.DB, userID, password string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleUserError(err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return apperrors.ErrWrongPassword
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	steps := []struct {
		name string
		run  func(*gorm.DB, string) error
	}{
		{"reminders", s.reminderRepo.DeleteAllByUser},
		{"jobs", s.jobRepo.DeleteAllByUser},
		{"resumes", s.resumeRepo.DeleteAllByUser},
		{"analytics", s.analyticsRepo.DeleteByUser},
		{"refresh tokens", s.refreshTokenRepo.DeleteByUserID},
		{"user", s.userRepo.Delete},
	}
	for _, step := range steps {
		if err := step.run(tx, userID); err != nil {
			logger.CtxWithError(ctx, "account deletion failed", err, "step", step.name, "user_id", userID)
			return handleUserError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.store.DeletePrefix(ctx, storage.UserPrefix(userID)); err != nil {
		logger.CtxWithError(ctx, "user files not removed", err, "user_id", userID)
	}
	logger.CtxInfo(ctx, "account deleted", "user_id", userID)
	return nil
}

func (s *userService) SyncGmail(ctx context.Context, db *gorm.DB, userID, query string) (*dto.GmailSyncResponse, error) {
	return s.jobs.ImportFromGmail(ctx, db, userID, query)
}

// =======================
// Helpers
// =======================

func (s *userService) update(db *gorm.DB, userID string, fn func(u *models.User)) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	fn(user)
	if err := s.userRepo.Update(db, user); err != nil {
		return nil, handleUserError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) updateProfile(db *gorm.DB, userID string, fn func(p *models.UserProfile)) (*dto.UserResponse, error) {
	return s.update(db, userID, func(u *models.User) {
		profile := u.Profile.Data()
		fn(&profile)
		u.Profile = datatypes.NewJSONType(profile)
	})
}
