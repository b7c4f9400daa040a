package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobtracker_backend/internal/models"
)

var ErrSnapshotNotFound = errors.New("analytics snapshot not found")

type AnalyticsRepository interface {
	FindByUser(db *gorm.DB, userID string) (*models.AnalyticsSnapshot, error)
	// Upsert replaces the snapshot of snapshot.UserID wholesale.
	Upsert(db *gorm.DB, snapshot *models.AnalyticsSnapshot) error
	MarkStale(db *gorm.DB, userID string) error
	// FindStaleUserIDs lists users whose snapshot is flagged stale or older than calculatedBefore.
	FindStaleUserIDs(db *gorm.DB, calculatedBefore time.Time, limit int) ([]string, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type analyticsRepository struct {
	store ownedStore[models.AnalyticsSnapshot]
}

func NewAnalyticsRepository() AnalyticsRepository {
	return &analyticsRepository{}
}

func (r *analyticsRepository) FindByUser(db *gorm.DB, userID string) (*models.AnalyticsSnapshot, error) {
	snaps, err := r.store.Find(db, userID, Page{Page: 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return &snaps[0], nil
}

func (r *analyticsRepository) Upsert(db *gorm.DB, snapshot *models.AnalyticsSnapshot) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"period", "summary", "last_calculated", "is_stale", "updated_at"}),
	}).Create(snapshot).Error
}

// MarkStale is a no-op for users without a snapshot yet.
func (r *analyticsRepository) MarkStale(db *gorm.DB, userID string) error {
	return db.Model(&models.AnalyticsSnapshot{}).
		Where("user_id = ?", userID).
		Update("is_stale", true).Error
}

func (r *analyticsRepository) FindStaleUserIDs(db *gorm.DB, calculatedBefore time.Time, limit int) ([]string, error) {
	var ids []string
	err := db.Model(&models.AnalyticsSnapshot{}).
		Where("is_stale = ? OR last_calculated < ?", true, calculatedBefore).
		Order("last_calculated ASC").
		Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *analyticsRepository) DeleteByUser(db *gorm.DB, userID string) error {
	return r.store.DeleteAll(db, userID)
}
