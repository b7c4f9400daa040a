package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email          string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string  `gorm:"not null" json:"-"`
	FirstName      string  `gorm:"size:50;not null" json:"firstName"`
	LastName       string  `gorm:"size:50;not null" json:"lastName"`
	Phone          string  `json:"phone,omitempty"`
	Headline       string  `gorm:"size:200" json:"headline,omitempty"`
	Summary        string  `gorm:"size:2000" json:"summary,omitempty"`
	ProfilePicture string  `json:"profilePicture,omitempty"`
	GoogleID       *string `gorm:"uniqueIndex" json:"-"`
	LinkedInID     *string `gorm:"column:linkedin_id;uniqueIndex" json:"-"`

	Profile     datatypes.JSONType[UserProfile]     `json:"profile"`
	Preferences datatypes.JSONType[UserPreferences] `json:"preferences"`

	AccountStatus       AccountStatus    `gorm:"type:varchar(20);default:'Active'" json:"accountStatus"`
	SubscriptionType    SubscriptionType `gorm:"type:varchar(20);default:'Free'" json:"subscriptionType"`
	SubscriptionExpires *time.Time       `json:"subscriptionExpires,omitempty"`

	IsEmailVerified        bool       `gorm:"default:false" json:"isEmailVerified"`
	EmailVerificationToken string     `gorm:"index" json:"-"`
	EmailVerificationExp   *time.Time `json:"-"`
	PasswordResetToken     string     `gorm:"index" json:"-"`
	PasswordResetExp       *time.Time `json:"-"`
	LastLoginAt            *time.Time `json:"lastLoginAt,omitempty"`
	LoginCount             int        `gorm:"default:0" json:"loginCount"`

	Integrations Integrations `gorm:"embedded" json:"integrations"`
}

type Integrations struct {
	GmailConnected     bool       `json:"gmailConnected"`
	GmailAccessToken   string     `json:"-"`
	GmailRefreshToken  string     `json:"-"`
	GmailTokenExpiry   *time.Time `json:"-"`
	GmailLastSyncAt    *time.Time `json:"gmailLastSyncAt,omitempty"`
	LinkedInConnected  bool       `gorm:"column:linkedin_connected" json:"linkedinConnected"`
	LinkedInProfileURL string     `gorm:"column:linkedin_profile_url" json:"linkedinProfileUrl,omitempty"`
	LinkedInLastSyncAt *time.Time `gorm:"column:linkedin_last_sync_at" json:"linkedinLastSyncAt,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserProfile struct {
	Skills         []ProfileSkill         `json:"skills"`
	Experience     []ProfileExperience    `json:"experience"`
	Education      []ProfileEducation     `json:"education"`
	Certifications []ProfileCertification `json:"certifications"`
	Address        Address                `json:"address"`
	SocialLinks    SocialLinks            `json:"socialLinks"`
}

type ProfileSkill struct {
	Name     string     `json:"name" validate:"required,max=50"`
	Level    SkillLevel `json:"level" validate:"omitempty,is-skill-level"`
	Category string     `json:"category" validate:"omitempty,oneof=Technical Soft Language Other"`
}

type ProfileExperience struct {
	Title        string     `json:"title" validate:"required,max=100"`
	Company      string     `json:"company" validate:"required,max=100"`
	Location     string     `json:"location,omitempty"`
	StartDate    time.Time  `json:"startDate" validate:"required"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty" validate:"max=1000"`
	Achievements []string   `json:"achievements,omitempty"`
}

type ProfileEducation struct {
	Degree       string     `json:"degree" validate:"required,max=100"`
	Institution  string     `json:"institution" validate:"required,max=100"`
	FieldOfStudy string     `json:"fieldOfStudy,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Current      bool       `json:"current"`
}

type ProfileCertification struct {
	Name          string     `json:"name" validate:"required"`
	Issuer        string     `json:"issuer,omitempty"`
	IssueDate     *time.Time `json:"issueDate,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	CredentialID  string     `json:"credentialId,omitempty"`
	CredentialURL string     `json:"credentialUrl,omitempty" validate:"omitempty,url"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub    string `json:"github,omitempty" validate:"omitempty,url"`
	Portfolio string `json:"portfolio,omitempty" validate:"omitempty,url"`
	Twitter   string `json:"twitter,omitempty" validate:"omitempty,url"`
}

type UserPreferences struct {
	JobAlerts          bool              `json:"jobAlerts"`
	EmailNotifications bool              `json:"emailNotifications"`
	ReminderFrequency  ReminderFrequency `json:"reminderFrequency" validate:"omitempty,is-reminder-frequency"`
	PreferredJobTypes  []JobType         `json:"preferredJobTypes" validate:"dive,is-job-type"`
	PreferredLocations []string          `json:"preferredLocations"`
	ExpectedSalary     ExpectedSalary    `json:"expectedSalary"`
	ExperienceLevel    ExperienceLevel   `json:"experienceLevel,omitempty" validate:"omitempty,is-experience-level"`
}

type ExpectedSalary struct {
	Min      float64  `json:"min,omitempty" validate:"gte=0"`
	Max      float64  `json:"max,omitempty" validate:"omitempty,gtefield=Min"`
	Currency Currency `json:"currency,omitempty" validate:"omitempty,is-currency"`
}

// DefaultPreferences is applied at registration.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		JobAlerts:          true,
		EmailNotifications: true,
		ReminderFrequency:  "Weekly",
		ExpectedSalary:     ExpectedSalary{Currency: "INR"},
	}
}

// RefreshToken is a rotating session credential.
type RefreshToken struct {
	BaseModel
	UserID    string     `gorm:"type:uuid;not null;index" json:"-"`
	Token     string     `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}
