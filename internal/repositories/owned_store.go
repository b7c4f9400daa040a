package repositories

import (
	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

// Page is a limit/offset window. A zero Limit means "no limit".
type Page struct {
	Page  int
	Limit int
}

func (p Page) offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Scope narrows a query further (filters, order).
type Scope = func(*gorm.DB) *gorm.DB

// ownedStore is the only path to records that belong to a user: every
// method applies "user_id = ?" before anything else.
type ownedStore[T models.Owned] struct{}

func (ownedStore[T]) scoped(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(new(T)).Where("user_id = ?", userID)
}

func (s ownedStore[T]) Find(db *gorm.DB, userID string, page Page, scopes ...Scope) ([]T, error) {
	var out []T
	q := s.scoped(db, userID).Scopes(scopes...)
	if page.Limit > 0 {
		q = q.Offset(page.offset()).Limit(page.Limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// FindPage returns one page and the total count of matching records.
func (s ownedStore[T]) FindPage(db *gorm.DB, userID string, page Page, filters []Scope, order Scope) ([]T, int64, error) {
	var total int64
	if err := s.scoped(db, userID).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	scopes := append([]Scope{}, filters...)
	if order != nil {
		scopes = append(scopes, order)
	}
	items, err := s.Find(db, userID, page, scopes...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// First returns gorm.ErrRecordNotFound both for missing and foreign records.
func (s ownedStore[T]) First(db *gorm.DB, userID, id string) (*T, error) {
	var out T
	if err := s.scoped(db, userID).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (ownedStore[T]) Create(db *gorm.DB, rec *T) error {
	return db.Create(rec).Error
}

func (ownedStore[T]) CreateBatch(db *gorm.DB, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	return db.Create(&recs).Error
}

// Save writes every column of rec except identity and ownership.
func (ownedStore[T]) Save(db *gorm.DB, rec *T) error {
	owner := (*rec).OwnerID()
	res := db.Model(rec).
		Where("user_id = ?", owner).
		Select("*").
		Omit("id", "created_at", "user_id").
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s ownedStore[T]) Updates(db *gorm.DB, userID, id string, fields map[string]interface{}) error {
	res := s.scoped(db, userID).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Pluck reads one column of the user's matching records into dest.
func (s ownedStore[T]) Pluck(db *gorm.DB, userID, column string, dest interface{}, scopes ...Scope) error {
	return s.scoped(db, userID).Scopes(scopes...).Pluck(column, dest).Error
}

func (s ownedStore[T]) Delete(db *gorm.DB, userID, id string) error {
	res := s.scoped(db, userID).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll removes the user's records, narrowed by scopes when given.
func (s ownedStore[T]) DeleteAll(db *gorm.DB, userID string, scopes ...Scope) error {
	return s.scoped(db, userID).Scopes(scopes...).Delete(new(T)).Error
}

func (s ownedStore[T]) Count(db *gorm.DB, userID string, scopes ...Scope) (int64, error) {
	var n int64
	err := s.scoped(db, userID).Scopes(scopes...).Count(&n).Error
	return n, err
}
