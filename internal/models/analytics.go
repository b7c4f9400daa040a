package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsSnapshot caches the aggregated dashboard of one user.
// Summary holds the serialized analytics.Summary; it is never the source of truth.
type AnalyticsSnapshot struct {
	BaseModel
	UserID         string         `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Period         string         `gorm:"size:20" json:"period"`
	Summary        datatypes.JSON `json:"summary"`
	LastCalculated time.Time      `json:"lastCalculated"`
	IsStale        bool           `gorm:"default:false" json:"isStale"`
}

// SnapshotMaxAge is the age after which a snapshot must be recomputed.
const SnapshotMaxAge = 24 * time.Hour
