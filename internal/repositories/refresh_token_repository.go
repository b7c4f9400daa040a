package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(db *gorm.DB, token *models.RefreshToken) error
	// FindActive returns a token that is neither revoked nor expired.
	FindActive(db *gorm.DB, tokenString string, now time.Time) (*models.RefreshToken, error)
	Revoke(db *gorm.DB, tokenString string, at time.Time) error
	DeleteByUserID(db *gorm.DB, userID string) error
	CleanExpired(db *gorm.DB, now time.Time) (int64, error)
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindActive(db *gorm.DB, tokenString string, now time.Time) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := db.Where("token = ? AND revoked_at IS NULL AND expires_at > ?", tokenString, now).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(db *gorm.DB, tokenString string, at time.Time) error {
	res := db.Model(&models.RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", tokenString).
		Update("revoked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) CleanExpired(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ? OR revoked_at IS NOT NULL", now).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
