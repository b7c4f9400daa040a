package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Resume struct {
	BaseModel
	UserID      string     `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Version     string     `gorm:"size:20;default:'1.0'" json:"version"`
	Description string     `json:"description,omitempty"`
	Type        ResumeType `gorm:"type:varchar(20);default:'Master'" json:"type"`
	TemplateID  string     `json:"templateId,omitempty"`

	PersonalInfo        PersonalInfo                          `gorm:"embedded;embeddedPrefix:personal_" json:"personalInfo"`
	Summary             string                                `json:"summary,omitempty"`
	Experience          datatypes.JSONSlice[ResumeExperience] `json:"experience"`
	Education           datatypes.JSONSlice[ResumeEducation]  `json:"education"`
	Skills              datatypes.JSONType[SkillSet]          `json:"skills"`
	Projects            datatypes.JSONSlice[Project]          `json:"projects"`
	Certifications      datatypes.JSONSlice[Certification]    `json:"certifications"`
	Awards              datatypes.JSONSlice[Award]            `json:"awards"`
	Publications        datatypes.JSONSlice[Publication]      `json:"publications"`
	VolunteerExperience datatypes.JSONSlice[Volunteering]     `json:"volunteerExperience"`
	AdditionalSections  datatypes.JSONSlice[CustomSection]    `json:"additionalSections"`

	Settings     datatypes.JSONType[ResumeSettings] `json:"settings"`
	AIGeneration datatypes.JSONType[AIGeneration]   `json:"aiGeneration"`
	Files        datatypes.JSONType[ResumeFiles]    `json:"files"`
	Analytics    ResumeAnalytics                    `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	Status         ResumeStatus   `gorm:"type:varchar(20);default:'Draft';index" json:"status"`
	IsPublic       bool           `gorm:"default:false" json:"isPublic"`
	ShareToken     *string        `gorm:"uniqueIndex" json:"shareToken,omitempty"`
	ParentResumeID *string        `gorm:"type:uuid;index" json:"parentResumeId,omitempty"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
}

type PersonalInfo struct {
	FullName  string        `json:"fullName,omitempty"`
	Email     string        `json:"email,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Address   ResumeAddress `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	LinkedIn  string        `json:"linkedin,omitempty"`
	GitHub    string        `json:"github,omitempty"`
	Portfolio string        `json:"portfolio,omitempty"`
	Website   string        `json:"website,omitempty"`
}

type ResumeAddress struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type ResumeExperience struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
	Achievements []string   `json:"achievements,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
}

type ResumeEducation struct {
	Degree             string     `json:"degree"`
	Institution        string     `json:"institution"`
	Location           string     `json:"location,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Grade              string     `json:"grade,omitempty"`
	Achievements       []string   `json:"achievements,omitempty"`
	RelevantCoursework []string   `json:"relevantCoursework,omitempty"`
	DisplayOrder       int        `json:"displayOrder"`
}

type SkillSet struct {
	Technical []SkillCategory `json:"technical"`
	Soft      []Skill         `json:"soft"`
	Languages []Language      `json:"languages"`
}

type SkillCategory struct {
	Category string       `json:"category"`
	Items    []SkillEntry `json:"items"`
}

type SkillEntry struct {
	Name              string     `json:"name"`
	Level             SkillLevel `json:"level,omitempty"`
	YearsOfExperience float64    `json:"yearsOfExperience,omitempty"`
}

type Skill struct {
	Name  string     `json:"name"`
	Level SkillLevel `json:"level,omitempty"`
}

type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Project struct {
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	URL          string     `json:"url,omitempty"`
	GitHubURL    string     `json:"githubUrl,omitempty"`
	Highlights   []string   `json:"highlights,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
}

type Certification struct {
	Name          string     `json:"name"`
	Issuer        string     `json:"issuer,omitempty"`
	IssueDate     *time.Time `json:"issueDate,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	CredentialID  string     `json:"credentialId,omitempty"`
	CredentialURL string     `json:"credentialUrl,omitempty"`
	DisplayOrder  int        `json:"displayOrder"`
}

type Award struct {
	Title        string     `json:"title"`
	Issuer       string     `json:"issuer,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	Description  string     `json:"description,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
}

type Publication struct {
	Title        string     `json:"title"`
	Publisher    string     `json:"publisher,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	URL          string     `json:"url,omitempty"`
	Description  string     `json:"description,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
}

type Volunteering struct {
	Role         string     `json:"role"`
	Organization string     `json:"organization"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Description  string     `json:"description,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
}

type CustomSection struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	DisplayOrder int    `json:"displayOrder"`
}

type ResumeSettings struct {
	Theme        string   `json:"theme,omitempty"`
	ColorScheme  string   `json:"colorScheme,omitempty"`
	FontSize     string   `json:"fontSize,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	Margins      string   `json:"margins,omitempty"`
	SectionOrder []string `json:"sectionOrder,omitempty"`
}

type AIGeneration struct {
	IsAIGenerated  bool       `json:"isAIGenerated"`
	Prompt         string     `json:"prompt,omitempty"`
	Model          string     `json:"model,omitempty"`
	GeneratedAt    *time.Time `json:"generatedAt,omitempty"`
	TargetJobTitle string     `json:"targetJobTitle,omitempty"`
	TargetCompany  string     `json:"targetCompany,omitempty"`
}

type ResumeFiles struct {
	PDF  *GeneratedFile `json:"pdf,omitempty"`
	DOCX *GeneratedFile `json:"docx,omitempty"`
	HTML *GeneratedFile `json:"html,omitempty"`
}

type GeneratedFile struct {
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	URL         string    `json:"url,omitempty"`
	Size        int64     `json:"size"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type ResumeAnalytics struct {
	ViewCount        int        `gorm:"default:0" json:"viewCount"`
	DownloadCount    int        `gorm:"default:0" json:"downloadCount"`
	ShareCount       int        `gorm:"default:0" json:"shareCount"`
	ApplicationsUsed int        `gorm:"default:0" json:"applicationsUsed"`
	LastViewedAt     *time.Time `json:"lastViewedAt,omitempty"`
	LastDownloadedAt *time.Time `json:"lastDownloadedAt,omitempty"`
}

// DefaultResumeSettings is applied when a resume is created without settings.
func DefaultResumeSettings() ResumeSettings {
	return ResumeSettings{
		Theme:        "modern",
		ColorScheme:  "blue",
		FontSize:     "medium",
		Layout:       "single-column",
		Margins:      "normal",
		SectionOrder: []string{"summary", "experience", "education", "skills", "projects", "certifications"},
	}
}
