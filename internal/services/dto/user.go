package dto

import (
	"time"

	"jobtracker_backend/internal/models"
)

type UpdateProfileRequest struct {
	FirstName   *string             `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName    *string             `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Phone       *string             `json:"phone,omitempty" validate:"omitempty,max=20"`
	Headline    *string             `json:"headline,omitempty" validate:"omitempty,max=200"`
	Summary     *string             `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Address     *models.Address     `json:"address,omitempty"`
	SocialLinks *models.SocialLinks `json:"socialLinks,omitempty"`
}

type UpdatePreferencesRequest struct {
	Preferences models.UserPreferences `json:"preferences" validate:"required"`
}

type UpdateSkillsRequest struct {
	Skills []models.ProfileSkill `json:"skills" validate:"max=100,dive"`
}

type UpdateExperienceRequest struct {
	Experience []models.ProfileExperience `json:"experience" validate:"max=50,dive"`
}

type UpdateEducationRequest struct {
	Education []models.ProfileEducation `json:"education" validate:"max=20,dive"`
}

type UpdateCertificationsRequest struct {
	Certifications []models.ProfileCertification `json:"certifications" validate:"max=50,dive"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// UserExport is the body of GET /users/export.
type UserExport struct {
	ExportedAt time.Time                 `json:"exportedAt"`
	User       UserResponse              `json:"user"`
	Jobs       []models.JobApplication   `json:"jobs"`
	Resumes    []models.Resume           `json:"resumes"`
	Reminders  []models.Reminder         `json:"reminders"`
	Analytics  *models.AnalyticsSnapshot `json:"analytics,omitempty"`
}

type GmailSyncResponse struct {
	Scanned  int                     `json:"scanned"`
	Imported int                     `json:"imported"`
	Skipped  int                     `json:"skipped"`
	Jobs     []JobResponse `json:"jobs"`
}
