package models

import (
	"time"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Owned is implemented by every record that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

func (j JobApplication) OwnerID() string    { return j.UserID }
func (r Resume) OwnerID() string            { return r.UserID }
func (r Reminder) OwnerID() string          { return r.UserID }
func (a AnalyticsSnapshot) OwnerID() string { return a.UserID }
