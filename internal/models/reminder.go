package models

import (
	"time"

	"github.com/lib/pq"
)

type Reminder struct {
	BaseModel
	UserID           string `gorm:"type:uuid;not null;index" json:"userId"`
	JobApplicationID string `gorm:"type:uuid;not null;index" json:"jobApplicationId"`

	Title        string           `gorm:"size:200;not null" json:"title"`
	Description  string           `gorm:"size:1000" json:"description,omitempty"`
	ReminderDate time.Time        `gorm:"not null;index" json:"reminderDate"`
	Type         ReminderType     `gorm:"type:varchar(30);not null" json:"type"`
	Priority     ReminderPriority `gorm:"type:varchar(10);default:'medium'" json:"priority"`
	Status       ReminderStatus   `gorm:"type:varchar(10);default:'pending';index" json:"status"`

	IsRecurring      bool             `gorm:"default:false" json:"isRecurring"`
	RecurringPattern RecurringPattern `gorm:"embedded;embeddedPrefix:recurrence_" json:"recurringPattern"`
	Notifications    Notifications    `gorm:"embedded;embeddedPrefix:notify_" json:"notifications"`

	EmailSent          bool       `gorm:"default:false" json:"emailSent"`
	EmailSentAt        *time.Time `json:"emailSentAt,omitempty"`
	EmailAttempts      int        `gorm:"default:0" json:"emailAttempts"`
	LastEmailAttemptAt *time.Time `json:"lastEmailAttemptAt,omitempty"`

	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
	SnoozeUntil     *time.Time     `json:"snoozeUntil,omitempty"`
	IsAutoGenerated bool           `gorm:"default:false" json:"isAutoGenerated"`
	Notes           string         `json:"notes,omitempty"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
}

// A reminder whose email keeps failing is retried after EmailRetryBackoff
// and dropped from the queue after MaxEmailAttempts failures.
const (
	MaxEmailAttempts  = 5
	EmailRetryBackoff = 15 * time.Minute
)

// ResetEmail re-arms the notification after the reminder moves to a new date.
func (r *Reminder) ResetEmail() {
	r.EmailSent = false
	r.EmailSentAt = nil
	r.EmailAttempts = 0
	r.LastEmailAttemptAt = nil
}

type RecurringPattern struct {
	Type     RecurrenceType `gorm:"type:varchar(10)" json:"type,omitempty"`
	Interval int            `gorm:"default:1" json:"interval,omitempty"`
	EndDate  *time.Time     `json:"endDate,omitempty"`
}

type Notifications struct {
	Email bool `json:"email"`
	Push  bool `gorm:"default:false" json:"push"`
	SMS   bool `gorm:"default:false" json:"sms"`
}
