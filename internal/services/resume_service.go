package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/ai"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/pdf"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/resumes"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/internal/storage"
	"jobtracker_backend/pkg/apperrors"
)

type ResumeService interface {
	CreateResume(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateResumeRequest) (*models.Resume, error)
	GetResume(ctx context.Context, db *gorm.DB, userID, resumeID string) (*models.Resume, error)
	ListResumes(ctx context.Context, db *gorm.DB, userID string, q dto.ResumeListQuery, page, limit int) (*dto.ListResponse[models.Resume], error)
	UpdateResume(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.UpdateResumeRequest) (*models.Resume, error)
	DeleteResume(ctx context.Context, db *gorm.DB, userID, resumeID string) error

	GenerateWithAI(ctx context.Context, db *gorm.DB, userID string, req *dto.GenerateResumeRequest) (*models.Resume, error)
	CreateVersion(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.CreateVersionRequest) (*models.Resume, error)
	ListVersions(ctx context.Context, db *gorm.DB, userID, resumeID string) ([]models.Resume, error)

	Share(ctx context.Context, db *gorm.DB, userID, resumeID string, public bool) (*dto.ShareResumeResponse, error)
	// GetShared serves a public resume by its share token and counts the view.
	GetShared(ctx context.Context, db *gorm.DB, token string) (*models.Resume, error)

	GeneratePDF(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.GeneratePDFRequest) (*models.GeneratedFile, error)
	// DownloadPDF returns the stored PDF, rendering it first when missing. The caller closes the reader.
	DownloadPDF(ctx context.Context, db *gorm.DB, userID, resumeID string) (io.ReadCloser, string, error)

	Analyze(ctx context.Context, db *gorm.DB, userID, resumeID string) (*dto.ResumeAnalysisResponse, error)
	Completeness(ctx context.Context, db *gorm.DB, userID, resumeID string) (*dto.CompletenessResponse, error)
}

type resumeService struct {
	resumeRepo    repositories.ResumeRepository
	jobRepo       repositories.JobRepository
	userRepo      repositories.UserRepository
	analyticsRepo repositories.AnalyticsRepository
	generator     ai.Generator
	renderer      pdf.Renderer
	store         storage.Storage
	frontendURL   string
	now           func() time.Time
}

func NewResumeService(
	resumeRepo repositories.ResumeRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	analyticsRepo repositories.AnalyticsRepository,
	generator ai.Generator,
	renderer pdf.Renderer,
	store storage.Storage,
	frontendURL string,
) ResumeService {
	return &resumeService{
		resumeRepo:    resumeRepo,
		jobRepo:       jobRepo,
		userRepo:      userRepo,
		analyticsRepo: analyticsRepo,
		generator:     generator,
		renderer:      renderer,
		store:         store,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		now:           time.Now,
	}
}

// =======================
// CRUD
// =======================

func (s *resumeService) CreateResume(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateResumeRequest) (*models.Resume, error) {
	resume := &models.Resume{
		BaseModel:   models.BaseModel{ID: uuid.NewString()},
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Version:     resumes.InitialVersion,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		TemplateID:  req.TemplateID,
		Settings:    datatypes.NewJSONType(models.DefaultResumeSettings()),
	}
	if resume.Type == "" {
		resume.Type = models.ResumeMaster
	}
	if resume.Status == "" {
		resume.Status = models.ResumeDraft
	}
	applyResumeContent(resume, &req.ResumeContent)

	if err := s.resumeRepo.Create(db, resume); err != nil {
		return nil, handleResumeError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	logger.CtxInfo(ctx, "resume created", "resume_id", resume.ID)
	return resume, nil
}

func (s *resumeService) GetResume(ctx context.Context, db *gorm.DB, userID, resumeID string) (*models.Resume, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}
	return resume, nil
}

func (s *resumeService) ListResumes(ctx context.Context, db *gorm.DB, userID string, q dto.ResumeListQuery, page, limit int) (*dto.ListResponse[models.Resume], error) {
	items, total, err := s.resumeRepo.List(db, userID, repositories.ResumeFilter{
		Status: q.Status,
		Type:   q.Type,
		Page:   repositories.Page{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ListResponse[models.Resume]{
		Items:      items,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *resumeService) UpdateResume(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.UpdateResumeRequest) (*models.Resume, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}

	if req.Title != nil {
		resume.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		resume.Description = *req.Description
	}
	if req.Type != nil {
		resume.Type = *req.Type
	}
	if req.Status != nil {
		resume.Status = *req.Status
	}
	if req.TemplateID != nil {
		resume.TemplateID = *req.TemplateID
	}
	applyResumeContent(resume, &req.ResumeContent)

	if err := s.resumeRepo.Save(db, resume); err != nil {
		return nil, handleResumeError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return resume, nil
}

func (s *resumeService) DeleteResume(ctx context.Context, db *gorm.DB, userID, resumeID string) error {
	if err := s.resumeRepo.Delete(db, userID, resumeID); err != nil {
		return handleResumeError(err)
	}
	if err := s.store.Delete(ctx, storage.ResumePDFKey(userID, resumeID)); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logger.CtxWithError(ctx, "resume pdf not removed", err, "resume_id", resumeID)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return nil
}

// =======================
// AI generation and versions
// =======================

func (s *resumeService) GenerateWithAI(ctx context.Context, db *gorm.DB, userID string, req *dto.GenerateResumeRequest) (*models.Resume, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	targetTitle, targetCompany, description := req.TargetJobTitle, req.TargetCompany, req.JobDescription
	if req.JobID != "" {
		job, err := s.jobRepo.FindByID(db, userID, req.JobID)
		if err != nil {
			return nil, handleJobError(err)
		}
		if targetCompany == "" {
			targetCompany = job.Company
		}
		if description == "" {
			description = job.JobDescription
		}
	}

	now := s.now()
	var resume models.Resume
	if req.BaseResumeID != "" {
		base, err := s.resumeRepo.FindByID(db, userID, req.BaseResumeID)
		if err != nil {
			return nil, handleResumeError(err)
		}
		if resume, err = resumes.CreateVersion(*base, req.Title, uuid.NewString(), now); err != nil {
			return nil, apperrors.InternalError(err)
		}
	} else {
		resume = models.Resume{
			BaseModel:    models.BaseModel{ID: uuid.NewString()},
			UserID:       userID,
			Title:        req.Title,
			Version:      resumes.InitialVersion,
			Status:       models.ResumeDraft,
			PersonalInfo: personalInfoFrom(user),
			Settings:     datatypes.NewJSONType(models.DefaultResumeSettings()),
		}
	}
	if strings.TrimSpace(resume.Title) == "" {
		resume.Title = "Resume for " + targetTitle
	}

	prompt := ai.ResumeContentPrompt(ai.CandidateFromUser(user), targetTitle, targetCompany, description)
	raw, err := s.generator.Generate(ctx, prompt, ai.RoleResumeWriter)
	if err != nil {
		return nil, err
	}
	draft, err := ai.ParseResumeDraft(raw)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServiceAI)
	}

	applyDraft(&resume, draft)
	resume.Type = models.ResumeAIGenerated
	resume.AIGeneration = datatypes.NewJSONType(models.AIGeneration{
		IsAIGenerated:  true,
		Prompt:         prompt,
		Model:          ai.DefaultModel,
		GeneratedAt:    &now,
		TargetJobTitle: targetTitle,
		TargetCompany:  targetCompany,
	})

	if err := s.resumeRepo.Create(db, &resume); err != nil {
		return nil, handleResumeError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	logger.CtxInfo(ctx, "resume generated", "resume_id", resume.ID, "target", targetTitle)
	return &resume, nil
}

func (s *resumeService) CreateVersion(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.CreateVersionRequest) (*models.Resume, error) {
	src, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}
	child, err := resumes.CreateVersion(*src, req.Title, uuid.NewString(), s.now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.resumeRepo.Create(db, &child); err != nil {
		return nil, handleResumeError(err)
	}
	markAnalyticsStale(ctx, db, s.analyticsRepo, userID)
	return &child, nil
}

func (s *resumeService) ListVersions(ctx context.Context, db *gorm.DB, userID, resumeID string) ([]models.Resume, error) {
	if _, err := s.resumeRepo.FindByID(db, userID, resumeID); err != nil {
		return nil, handleResumeError(err)
	}
	versions, err := s.resumeRepo.FindVersions(db, userID, resumeID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return versions, nil
}

// =======================
// Sharing
// =======================

func (s *resumeService) Share(ctx context.Context, db *gorm.DB, userID, resumeID string, public bool) (*dto.ShareResumeResponse, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}

	wasPublic := resume.IsPublic
	if err := resumes.SetVisibility(resume, public); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if public && !wasPublic {
		resume.Analytics.ShareCount++
	}
	if err := s.resumeRepo.Save(db, resume); err != nil {
		return nil, handleResumeError(err)
	}

	resp := &dto.ShareResumeResponse{IsPublic: resume.IsPublic}
	if resume.ShareToken != nil {
		resp.ShareToken = *resume.ShareToken
		resp.ShareURL = s.frontendURL + "/resumes/shared/" + *resume.ShareToken
	}
	return resp, nil
}

func (s *resumeService) GetShared(ctx context.Context, db *gorm.DB, token string) (*models.Resume, error) {
	resume, err := s.resumeRepo.FindByShareToken(db, token)
	if err != nil {
		return nil, handleResumeError(err)
	}
	now := s.now()
	if err := s.resumeRepo.IncrementViews(db, resume.ID, now); err != nil {
		logger.CtxWithError(ctx, "resume view not counted", err, "resume_id", resume.ID)
	} else {
		resume.Analytics.ViewCount++
		resume.Analytics.LastViewedAt = &now
	}
	return resume, nil
}

// =======================
// PDF
// =======================

func (s *resumeService) GeneratePDF(ctx context.Context, db *gorm.DB, userID, resumeID string, req *dto.GeneratePDFRequest) (*models.GeneratedFile, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}
	return s.renderAndStore(ctx, db, resume, pdf.Options{Theme: req.Theme, PageSize: req.PageSize})
}

func (s *resumeService) renderAndStore(ctx context.Context, db *gorm.DB, resume *models.Resume, opts pdf.Options) (*models.GeneratedFile, error) {
	body, err := s.renderer.Render(ctx, resume, opts)
	if err != nil {
		return nil, err
	}

	key := storage.ResumePDFKey(resume.UserID, resume.ID)
	if err := s.store.Save(ctx, key, bytes.NewReader(body), "application/pdf"); err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServiceStorage)
	}

	file := &models.GeneratedFile{
		Filename:    pdfFilename(resume),
		Path:        key,
		URL:         s.store.URL(key),
		Size:        int64(len(body)),
		GeneratedAt: s.now(),
	}
	files := resume.Files.Data()
	files.PDF = file
	resume.Files = datatypes.NewJSONType(files)
	if err := s.resumeRepo.Save(db, resume); err != nil {
		return nil, handleResumeError(err)
	}
	logger.CtxInfo(ctx, "resume pdf stored", "resume_id", resume.ID, "size", file.Size)
	return file, nil
}

func (s *resumeService) DownloadPDF(ctx context.Context, db *gorm.DB, userID, resumeID string) (io.ReadCloser, string, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, "", handleResumeError(err)
	}

	key := storage.ResumePDFKey(userID, resumeID)
	body, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		if _, err = s.renderAndStore(ctx, db, resume, pdf.Options{}); err != nil {
			return nil, "", err
		}
		body, err = s.store.Get(ctx, key)
	}
	if err != nil {
		return nil, "", apperrors.ErrExternalService(err, apperrors.ServiceStorage)
	}

	if err := s.resumeRepo.IncrementDownloads(db, userID, resumeID, s.now()); err != nil {
		logger.CtxWithError(ctx, "resume download not counted", err, "resume_id", resumeID)
	}
	return body, pdfFilename(resume), nil
}

// =======================
// Analysis
// =======================

func (s *resumeService) Analyze(ctx context.Context, db *gorm.DB, userID, resumeID string) (*dto.ResumeAnalysisResponse, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}

	review, err := s.generator.Generate(ctx, ai.ResumeReviewPrompt(resume), ai.RoleResumeReviewer)
	if err != nil {
		return nil, err
	}
	return &dto.ResumeAnalysisResponse{
		CompletenessScore: resumes.CompletenessScore(*resume),
		SkillCount:        resumes.SkillCount(resume.Skills.Data()),
		Review:            review,
	}, nil
}

func (s *resumeService) Completeness(ctx context.Context, db *gorm.DB, userID, resumeID string) (*dto.CompletenessResponse, error) {
	resume, err := s.resumeRepo.FindByID(db, userID, resumeID)
	if err != nil {
		return nil, handleResumeError(err)
	}
	score, missing := resumes.Completeness(*resume)
	if missing == nil {
		missing = []string{}
	}
	return &dto.CompletenessResponse{Score: score, MissingFields: missing}, nil
}

// =======================
// Helpers
// =======================

func applyResumeContent(r *models.Resume, c *dto.ResumeContent) {
	if c.PersonalInfo != nil {
		r.PersonalInfo = *c.PersonalInfo
	}
	if c.Summary != nil {
		r.Summary = *c.Summary
	}
	if c.Experience != nil {
		r.Experience = c.Experience
	}
	if c.Education != nil {
		r.Education = c.Education
	}
	if c.Skills != nil {
		r.Skills = datatypes.NewJSONType(*c.Skills)
	}
	if c.Projects != nil {
		r.Projects = c.Projects
	}
	if c.Certifications != nil {
		r.Certifications = c.Certifications
	}
	if c.Awards != nil {
		r.Awards = c.Awards
	}
	if c.Publications != nil {
		r.Publications = c.Publications
	}
	if c.VolunteerExperience != nil {
		r.VolunteerExperience = c.VolunteerExperience
	}
	if c.AdditionalSections != nil {
		r.AdditionalSections = c.AdditionalSections
	}
	if c.Settings != nil {
		r.Settings = datatypes.NewJSONType(*c.Settings)
	}
	if c.Tags != nil {
		r.Tags = normalizeTags(c.Tags)
	}
}

func applyDraft(r *models.Resume, d *ai.ResumeDraft) {
	if d.Summary != "" {
		r.Summary = d.Summary
	}
	if len(d.Skills) > 0 {
		entries := make([]models.SkillEntry, 0, len(d.Skills))
		for _, name := range d.Skills {
			entries = append(entries, models.SkillEntry{Name: name})
		}
		skills := r.Skills.Data()
		skills.Technical = []models.SkillCategory{{Category: "Core", Items: entries}}
		r.Skills = datatypes.NewJSONType(skills)
	}
	if len(d.Experience) > 0 {
		exp := make([]models.ResumeExperience, 0, len(d.Experience))
		for i, e := range d.Experience {
			exp = append(exp, models.ResumeExperience{
				Title:        e.Title,
				Company:      e.Company,
				Description:  e.Description,
				Achievements: e.Achievements,
				DisplayOrder: len(d.Experience) - i,
			})
		}
		r.Experience = exp
	}
}

func personalInfoFrom(u *models.User) models.PersonalInfo {
	profile := u.Profile.Data()
	return models.PersonalInfo{
		FullName: u.FullName(),
		Email:    u.Email,
		Phone:    u.Phone,
		Address: models.ResumeAddress{
			City:    profile.Address.City,
			State:   profile.Address.State,
			Country: profile.Address.Country,
		},
		LinkedIn:  profile.SocialLinks.LinkedIn,
		GitHub:    profile.SocialLinks.GitHub,
		Portfolio: profile.SocialLinks.Portfolio,
	}
}

func pdfFilename(r *models.Resume) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		case c == ' ':
			return '_'
		default:
			return -1
		}
	}, r.Title)
	if name == "" {
		name = "resume"
	}
	return name + "_v" + r.Version + ".pdf"
}
