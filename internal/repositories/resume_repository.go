package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

var ErrResumeNotFound = errors.New("resume not found")

type ResumeFilter struct {
	Status models.ResumeStatus
	Type   models.ResumeType
	Page
}

type ResumeRepository interface {
	Create(db *gorm.DB, resume *models.Resume) error
	FindByID(db *gorm.DB, userID, id string) (*models.Resume, error)
	Save(db *gorm.DB, resume *models.Resume) error
	Delete(db *gorm.DB, userID, id string) error
	DeleteAllByUser(db *gorm.DB, userID string) error

	List(db *gorm.DB, userID string, filter ResumeFilter) ([]models.Resume, int64, error)
	FindAll(db *gorm.DB, userID string) ([]models.Resume, error)
	FindVersions(db *gorm.DB, userID, parentID string) ([]models.Resume, error)

	// FindByShareToken is the one lookup not scoped by user: the token is the credential.
	FindByShareToken(db *gorm.DB, token string) (*models.Resume, error)
	IncrementViews(db *gorm.DB, id string, at time.Time) error
	IncrementDownloads(db *gorm.DB, userID, id string, at time.Time) error
}

type resumeRepository struct {
	store ownedStore[models.Resume]
}

func NewResumeRepository() ResumeRepository {
	return &resumeRepository{}
}

func mapResumeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResumeNotFound
	}
	return err
}

func (r *resumeRepository) Create(db *gorm.DB, resume *models.Resume) error {
	return r.store.Create(db, resume)
}

func (r *resumeRepository) FindByID(db *gorm.DB, userID, id string) (*models.Resume, error) {
	resume, err := r.store.First(db, userID, id)
	return resume, mapResumeErr(err)
}

func (r *resumeRepository) Save(db *gorm.DB, resume *models.Resume) error {
	return mapResumeErr(r.store.Save(db, resume))
}

func (r *resumeRepository) Delete(db *gorm.DB, userID, id string) error {
	return mapResumeErr(r.store.Delete(db, userID, id))
}

func (r *resumeRepository) DeleteAllByUser(db *gorm.DB, userID string) error {
	return r.store.DeleteAll(db, userID)
}

func (r *resumeRepository) List(db *gorm.DB, userID string, filter ResumeFilter) ([]models.Resume, int64, error) {
	var scopes []Scope
	if filter.Status != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", filter.Status) })
	}
	if filter.Type != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("type = ?", filter.Type) })
	}
	return r.store.FindPage(db, userID, filter.Page, scopes, func(q *gorm.DB) *gorm.DB {
		return q.Order("updated_at DESC")
	})
}

func (r *resumeRepository) FindAll(db *gorm.DB, userID string) ([]models.Resume, error) {
	return r.store.Find(db, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Order("created_at ASC")
	})
}

func (r *resumeRepository) FindVersions(db *gorm.DB, userID, parentID string) ([]models.Resume, error) {
	return r.store.Find(db, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("parent_resume_id = ?", parentID).Order("created_at ASC")
	})
}

func (r *resumeRepository) FindByShareToken(db *gorm.DB, token string) (*models.Resume, error) {
	var resume models.Resume
	err := db.Where("share_token = ? AND is_public = ?", token, true).First(&resume).Error
	if err != nil {
		return nil, mapResumeErr(err)
	}
	return &resume, nil
}

func (r *resumeRepository) IncrementViews(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Resume{}).Where("id = ?", id).Updates(map[string]interface{}{
		"analytics_view_count":     gorm.Expr("analytics_view_count + 1"),
		"analytics_last_viewed_at": at,
	}).Error
}

func (r *resumeRepository) IncrementDownloads(db *gorm.DB, userID, id string, at time.Time) error {
	return mapResumeErr(r.store.Updates(db, userID, id, map[string]interface{}{
		"analytics_download_count":     gorm.Expr("analytics_download_count + 1"),
		"analytics_last_downloaded_at": at,
	}))
}
