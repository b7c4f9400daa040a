package dto

import (
	"time"

	"jobtracker_backend/internal/models"
)

type LocationInput struct {
	City       string            `json:"city,omitempty" validate:"omitempty,max=100"`
	State      string            `json:"state,omitempty" validate:"omitempty,max=100"`
	Country    string            `json:"country,omitempty" validate:"omitempty,max=100"`
	IsRemote   bool              `json:"isRemote"`
	RemoteType models.RemoteType `json:"remoteType,omitempty" validate:"omitempty,is-remote-type"`
}

type SalaryInput struct {
	Min          *float64            `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max          *float64            `json:"max,omitempty" validate:"omitempty,gte=0"`
	Currency     models.Currency     `json:"currency,omitempty" validate:"omitempty,is-currency"`
	Period       models.SalaryPeriod `json:"period,omitempty" validate:"omitempty,is-salary-period"`
	IsNegotiable bool                `json:"isNegotiable"`
}

type SourceInput struct {
	Platform     models.SourcePlatform `json:"platform,omitempty" validate:"omitempty,is-source-platform"`
	JobPostURL   string                `json:"jobPostUrl,omitempty" validate:"omitempty,url"`
	ReferralName string                `json:"referralName,omitempty" validate:"omitempty,max=100"`
}

type CreateJobRequest struct {
	JobTitle            string                 `json:"jobTitle" validate:"required,max=200"`
	Company             string                 `json:"company" validate:"required,max=100"`
	CompanyWebsite      string                 `json:"companyWebsite,omitempty" validate:"omitempty,url"`
	Location            LocationInput          `json:"location"`
	JobType             models.JobType         `json:"jobType,omitempty" validate:"omitempty,is-job-type"`
	ExperienceLevel     models.ExperienceLevel `json:"experienceLevel,omitempty" validate:"omitempty,is-experience-level"`
	Department          string                 `json:"department,omitempty" validate:"omitempty,max=100"`
	Salary              SalaryInput            `json:"salary"`
	ApplicationDate     *time.Time             `json:"applicationDate,omitempty"`
	ApplicationDeadline *time.Time             `json:"applicationDeadline,omitempty"`
	Status              models.JobStatus       `json:"status,omitempty" validate:"omitempty,is-job-status"`
	Source              SourceInput            `json:"source"`
	ResumeID            *string                `json:"resumeId,omitempty" validate:"omitempty,uuid"`
	JobDescription      string                 `json:"jobDescription,omitempty" validate:"omitempty,max=5000"`
	Requirements        []string               `json:"requirements,omitempty" validate:"max=50"`
	SkillsRequired      []string               `json:"skillsRequired,omitempty" validate:"max=50"`
	Benefits            []string               `json:"benefits,omitempty" validate:"max=50"`
	Notes               string                 `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ResearchNotes       string                 `json:"researchNotes,omitempty" validate:"omitempty,max=5000"`
	Priority            models.JobPriority     `json:"priority,omitempty" validate:"omitempty,is-job-priority"`
	Tags                []string               `json:"tags,omitempty" validate:"max=20,dive,max=30"`
	FollowUpDate        *time.Time             `json:"followUpDate,omitempty"`

	// AutoReminders creates the +7/+14 day follow-ups together with the job.
	AutoReminders bool `json:"autoReminders"`
}

// UpdateJobRequest is a partial update; status changes go through UpdateStatusRequest.
type UpdateJobRequest struct {
	JobTitle            *string                 `json:"jobTitle,omitempty" validate:"omitempty,min=1,max=200"`
	Company             *string                 `json:"company,omitempty" validate:"omitempty,min=1,max=100"`
	CompanyWebsite      *string                 `json:"companyWebsite,omitempty" validate:"omitempty,url"`
	Location            *LocationInput          `json:"location,omitempty"`
	JobType             *models.JobType         `json:"jobType,omitempty" validate:"omitempty,is-job-type"`
	ExperienceLevel     *models.ExperienceLevel `json:"experienceLevel,omitempty" validate:"omitempty,is-experience-level"`
	Department          *string                 `json:"department,omitempty" validate:"omitempty,max=100"`
	Salary              *SalaryInput            `json:"salary,omitempty"`
	ApplicationDate     *time.Time              `json:"applicationDate,omitempty"`
	ApplicationDeadline *time.Time              `json:"applicationDeadline,omitempty"`
	Source              *SourceInput            `json:"source,omitempty"`
	ResumeID            *string                 `json:"resumeId,omitempty" validate:"omitempty,uuid"`
	JobDescription      *string                 `json:"jobDescription,omitempty" validate:"omitempty,max=5000"`
	Requirements        []string                `json:"requirements,omitempty" validate:"omitempty,max=50"`
	SkillsRequired      []string                `json:"skillsRequired,omitempty" validate:"omitempty,max=50"`
	Benefits            []string                `json:"benefits,omitempty" validate:"omitempty,max=50"`
	Notes               *string                 `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ResearchNotes       *string                 `json:"researchNotes,omitempty" validate:"omitempty,max=5000"`
	Priority            *models.JobPriority     `json:"priority,omitempty" validate:"omitempty,is-job-priority"`
	Tags                []string                `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
	FollowUpDate        *time.Time              `json:"followUpDate,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required"`
	Notes  string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ArchiveJobRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=200"`
}

type JobListQuery struct {
	Status   models.JobStatus   `form:"status" validate:"omitempty,is-job-status"`
	Priority models.JobPriority `form:"priority" validate:"omitempty,is-job-priority"`
	JobType  models.JobType     `form:"jobType" validate:"omitempty,is-job-type"`
	Company  string             `form:"company" validate:"omitempty,max=100"`
	Search   string             `form:"search" validate:"omitempty,max=100"`
	DateFrom *time.Time         `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time         `form:"dateTo" time_format:"2006-01-02"`
	Archived *bool              `form:"archived"`
	Tags     []string           `form:"tags"`
	SortBy   string             `form:"sortBy" validate:"omitempty,oneof=applicationDate company jobTitle status priority createdAt updatedAt"`
	Order    string             `form:"order" validate:"omitempty,oneof=asc desc"`
}

type BulkJobAction string

const (
	BulkJobUpdateStatus BulkJobAction = "updateStatus"
	BulkJobArchive      BulkJobAction = "archive"
	BulkJobUnarchive    BulkJobAction = "unarchive"
	BulkJobDelete       BulkJobAction = "delete"
	BulkJobAddTag       BulkJobAction = "addTag"
)

type BulkJobRequest struct {
	IDs    []string         `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
	Action BulkJobAction    `json:"action" validate:"required,oneof=updateStatus archive unarchive delete addTag"`
	Status models.JobStatus `json:"status,omitempty" validate:"required_if=Action updateStatus,omitempty,is-job-status"`
	Tag    string           `json:"tag,omitempty" validate:"required_if=Action addTag,omitempty,max=30"`
	Notes  string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type InterviewRequest struct {
	Type          models.InterviewType   `json:"type" validate:"required,is-interview-type"`
	ScheduledDate time.Time              `json:"scheduledDate" validate:"required"`
	Duration      int                    `json:"duration,omitempty" validate:"omitempty,min=0,max=600"`
	Interviewer   string                 `json:"interviewer,omitempty" validate:"omitempty,max=100"`
	Location      string                 `json:"location,omitempty" validate:"omitempty,max=200"`
	MeetingLink   string                 `json:"meetingLink,omitempty" validate:"omitempty,url"`
	Status        models.InterviewStatus `json:"status,omitempty" validate:"omitempty,is-interview-status"`
	Feedback      string                 `json:"feedback,omitempty" validate:"omitempty,max=2000"`
	Rating        int                    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes         string                 `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type ContactRequest struct {
	Name     string             `json:"name" validate:"required,max=100"`
	Title    string             `json:"title,omitempty" validate:"omitempty,max=100"`
	Email    string             `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string             `json:"phone,omitempty" validate:"omitempty,max=20"`
	LinkedIn string             `json:"linkedin,omitempty" validate:"omitempty,url"`
	Role     models.ContactRole `json:"role,omitempty" validate:"omitempty,is-contact-role"`
	Notes    string             `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type FollowUpRequest struct {
	Notes        string     `json:"notes,omitempty" validate:"omitempty,max=500"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
}

// JobResponse adds the derived fields to the stored record.
type JobResponse struct {
	models.JobApplication
	DaysSinceApplication  int               `json:"daysSinceApplication"`
	CurrentStatusDuration int               `json:"currentStatusDuration"`
	NextInterview         *models.Interview `json:"nextInterview,omitempty"`
	NeedsFollowUp         bool              `json:"needsFollowUp"`
}

type JobStatsResponse struct {
	Total       int64            `json:"total"`
	Active      int64            `json:"active"`
	Archived    int64            `json:"archived"`
	ByStatus    map[string]int64 `json:"byStatus"`
	ByPriority  map[string]int64 `json:"byPriority"`
	ByJobType   map[string]int64 `json:"byJobType"`
	NeedsAction int              `json:"needsFollowUp"`
}

type TimelineEntry struct {
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

type JobFitResponse struct {
	Insights models.AIInsights `json:"insights"`
	Raw      string            `json:"raw,omitempty"`
}

type CoverLetterRequest struct {
	ResumeID string `json:"resumeId,omitempty" validate:"omitempty,uuid"`
	Tone     string `json:"tone,omitempty" validate:"omitempty,oneof=professional enthusiastic concise"`
}

type GeneratedTextResponse struct {
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type GmailImportRequest struct {
	Query string `json:"query,omitempty" validate:"omitempty,max=200"`
}
