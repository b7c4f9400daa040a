package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type JobApplication struct {
	BaseModel
	UserID string `gorm:"type:uuid;not null;index" json:"userId"`

	JobTitle        string          `gorm:"size:200;not null" json:"jobTitle"`
	Company         string          `gorm:"size:100;not null;index" json:"company"`
	CompanyWebsite  string          `json:"companyWebsite,omitempty"`
	Location        Location        `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	JobType         JobType         `gorm:"type:varchar(20);default:'Full-time'" json:"jobType"`
	ExperienceLevel ExperienceLevel `gorm:"type:varchar(20)" json:"experienceLevel,omitempty"`
	Department      string          `json:"department,omitempty"`
	Salary          Salary          `gorm:"embedded;embeddedPrefix:salary_" json:"salary"`

	ApplicationDate     time.Time  `gorm:"not null;index" json:"applicationDate"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`

	Status        JobStatus                          `gorm:"type:varchar(30);not null;index" json:"status"`
	StatusHistory datatypes.JSONSlice[StatusHistory] `json:"statusHistory"`

	Source     Source                         `gorm:"embedded;embeddedPrefix:source_" json:"source"`
	Contacts   datatypes.JSONSlice[Contact]   `json:"contacts"`
	Interviews datatypes.JSONSlice[Interview] `json:"interviews"`
	Documents  datatypes.JSONType[Documents]  `json:"documents"`
	ResumeID   *string                        `gorm:"type:uuid" json:"resumeId,omitempty"`

	JobDescription string         `gorm:"size:5000" json:"jobDescription,omitempty"`
	Requirements   pq.StringArray `gorm:"type:text[]" json:"requirements"`
	SkillsRequired pq.StringArray `gorm:"type:text[]" json:"skillsRequired"`
	Benefits       pq.StringArray `gorm:"type:text[]" json:"benefits"`
	Notes          string         `gorm:"size:2000" json:"notes,omitempty"`
	ResearchNotes  string         `json:"researchNotes,omitempty"`
	Priority       JobPriority    `gorm:"type:varchar(10);default:'Medium'" json:"priority"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`

	FollowUpDate     *time.Time `json:"followUpDate,omitempty"`
	LastFollowUpDate *time.Time `json:"lastFollowUpDate,omitempty"`
	FollowUpCount    int        `gorm:"default:0" json:"followUpCount"`

	AIInsights datatypes.JSONType[AIInsights] `json:"aiInsights"`
	Analytics  JobAnalytics                   `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	IsArchived     bool       `gorm:"default:false;index" json:"isArchived"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	ArchivedReason string     `json:"archivedReason,omitempty"`

	// ExternalID is the source message id of imported applications.
	ExternalID *string `gorm:"index" json:"externalId,omitempty"`
}

type Location struct {
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	Country    string     `json:"country,omitempty"`
	IsRemote   bool       `json:"isRemote"`
	RemoteType RemoteType `gorm:"type:varchar(10)" json:"remoteType,omitempty"`
}

type Salary struct {
	Min          *float64     `json:"min,omitempty"`
	Max          *float64     `json:"max,omitempty"`
	Currency     Currency     `gorm:"type:varchar(3)" json:"currency,omitempty"`
	Period       SalaryPeriod `gorm:"type:varchar(10)" json:"period,omitempty"`
	IsNegotiable bool         `json:"isNegotiable"`
}

// StatusHistory is one audit entry of the status log.
type StatusHistory struct {
	Status  JobStatus     `json:"status"`
	Date    time.Time     `json:"date"`
	Notes   string        `json:"notes,omitempty"`
	AddedBy HistoryAuthor `json:"addedBy"`
}

type Source struct {
	Platform     SourcePlatform `gorm:"type:varchar(30)" json:"platform,omitempty"`
	JobPostURL   string         `json:"jobPostUrl,omitempty"`
	ReferralName string         `json:"referralName,omitempty"`
}

type Contact struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Title    string      `json:"title,omitempty"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	LinkedIn string      `json:"linkedin,omitempty"`
	Role     ContactRole `json:"role,omitempty"`
	Notes    string      `json:"notes,omitempty"`
}

type Interview struct {
	ID            string          `json:"id"`
	Type          InterviewType   `json:"type"`
	ScheduledDate time.Time       `json:"scheduledDate"`
	Duration      int             `json:"duration,omitempty"`
	Interviewer   string          `json:"interviewer,omitempty"`
	Location      string          `json:"location,omitempty"`
	MeetingLink   string          `json:"meetingLink,omitempty"`
	Status        InterviewStatus `json:"status"`
	Feedback      string          `json:"feedback,omitempty"`
	Rating        int             `json:"rating,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type Documents struct {
	Resume      *FileRef `json:"resume,omitempty"`
	CoverLetter *FileRef `json:"coverLetter,omitempty"`
	Portfolio   *FileRef `json:"portfolio,omitempty"`
}

type FileRef struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	URL        string    `json:"url,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type AIInsights struct {
	MatchScore            int        `json:"matchScore,omitempty"`
	SuggestedImprovements []string   `json:"suggestedImprovements,omitempty"`
	KeywordMatches        []string   `json:"keywordMatches,omitempty"`
	MissingSkills         []string   `json:"missingSkills,omitempty"`
	Summary               string     `json:"summary,omitempty"`
	GeneratedAt           *time.Time `json:"generatedAt,omitempty"`
}

type JobAnalytics struct {
	ViewCount         int                                 `gorm:"default:0" json:"viewCount"`
	LastViewedAt      *time.Time                          `json:"lastViewedAt,omitempty"`
	TimeSpentInStatus datatypes.JSONSlice[StatusDuration] `json:"timeSpentInStatus"`
}

type StatusDuration struct {
	Status JobStatus `json:"status"`
	Days   float64   `json:"days"`
}

// LatestHistory returns the most recent status entry, if any.
func (j JobApplication) LatestHistory() (StatusHistory, bool) {
	if len(j.StatusHistory) == 0 {
		return StatusHistory{}, false
	}
	return j.StatusHistory[len(j.StatusHistory)-1], true
}
