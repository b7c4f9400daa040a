package dto

import (
	"jobtracker_backend/internal/models"
)

// ResumeContent is the editable body shared by create and update.
type ResumeContent struct {
	PersonalInfo        *models.PersonalInfo      `json:"personalInfo,omitempty"`
	Summary             *string                   `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Experience          []models.ResumeExperience `json:"experience,omitempty" validate:"omitempty,max=50"`
	Education           []models.ResumeEducation  `json:"education,omitempty" validate:"omitempty,max=20"`
	Skills              *models.SkillSet          `json:"skills,omitempty"`
	Projects            []models.Project          `json:"projects,omitempty" validate:"omitempty,max=50"`
	Certifications      []models.Certification    `json:"certifications,omitempty" validate:"omitempty,max=50"`
	Awards              []models.Award            `json:"awards,omitempty" validate:"omitempty,max=50"`
	Publications        []models.Publication      `json:"publications,omitempty" validate:"omitempty,max=50"`
	VolunteerExperience []models.Volunteering     `json:"volunteerExperience,omitempty" validate:"omitempty,max=50"`
	AdditionalSections  []models.CustomSection    `json:"additionalSections,omitempty" validate:"omitempty,max=20"`
	Settings            *models.ResumeSettings    `json:"settings,omitempty"`
	Tags                []string                  `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

type CreateResumeRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        models.ResumeType   `json:"type,omitempty" validate:"omitempty,is-resume-type"`
	Status      models.ResumeStatus `json:"status,omitempty" validate:"omitempty,is-resume-status"`
	TemplateID  string              `json:"templateId,omitempty" validate:"omitempty,max=50"`
	ResumeContent
}

type UpdateResumeRequest struct {
	Title       *string              `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        *models.ResumeType   `json:"type,omitempty" validate:"omitempty,is-resume-type"`
	Status      *models.ResumeStatus `json:"status,omitempty" validate:"omitempty,is-resume-status"`
	TemplateID  *string              `json:"templateId,omitempty" validate:"omitempty,max=50"`
	ResumeContent
}

type ResumeListQuery struct {
	Status models.ResumeStatus `form:"status" validate:"omitempty,is-resume-status"`
	Type   models.ResumeType   `form:"type" validate:"omitempty,is-resume-type"`
}

type CreateVersionRequest struct {
	Title string `json:"title,omitempty" validate:"omitempty,max=200"`
}

type ShareResumeRequest struct {
	IsPublic bool `json:"isPublic"`
}

type ShareResumeResponse struct {
	IsPublic   bool   `json:"isPublic"`
	ShareToken string `json:"shareToken,omitempty"`
	ShareURL   string `json:"shareUrl,omitempty"`
}

type GenerateResumeRequest struct {
	Title          string `json:"title,omitempty" validate:"omitempty,max=200"`
	TargetJobTitle string `json:"targetJobTitle" validate:"required,max=200"`
	TargetCompany  string `json:"targetCompany,omitempty" validate:"omitempty,max=100"`
	JobDescription string `json:"jobDescription,omitempty" validate:"omitempty,max=5000"`
	JobID          string `json:"jobId,omitempty" validate:"omitempty,uuid"`
	// BaseResumeID seeds the generation with an existing resume.
	BaseResumeID string `json:"baseResumeId,omitempty" validate:"omitempty,uuid"`
}

type GeneratePDFRequest struct {
	Theme    string `json:"theme,omitempty" validate:"omitempty,oneof=modern classic minimal"`
	PageSize string `json:"pageSize,omitempty" validate:"omitempty,oneof=A4 Letter"`
}

type ResumeAnalysisResponse struct {
	CompletenessScore int    `json:"completenessScore"`
	SkillCount        int    `json:"skillCount"`
	Review            string `json:"review,omitempty"`
	Keywords          string `json:"keywords,omitempty"`
}

type CompletenessResponse struct {
	Score         int      `json:"score"`
	MissingFields []string `json:"missingFields"`
}
