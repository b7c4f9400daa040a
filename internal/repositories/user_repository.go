package repositories

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByProviderID(db *gorm.DB, provider Provider, providerID string) (*models.User, error)
	FindByVerificationToken(db *gorm.DB, tokenHash string, now time.Time) (*models.User, error)
	FindByResetToken(db *gorm.DB, tokenHash string, now time.Time) (*models.User, error)

	Create(db *gorm.DB, user *models.User) error
	Update(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	RecordLogin(db *gorm.DB, id string, at time.Time) error
	Delete(db *gorm.DB, id string) error
}

// Provider names an OAuth identity column.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) first(db *gorm.DB, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := db.Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	return r.first(db, "id = ?", id)
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	return r.first(db, "email = ?", normalizeEmail(email))
}

func (r *userRepository) FindByProviderID(db *gorm.DB, provider Provider, providerID string) (*models.User, error) {
	switch provider {
	case ProviderGoogle:
		return r.first(db, "google_id = ?", providerID)
	case ProviderLinkedIn:
		return r.first(db, "linkedin_id = ?", providerID)
	default:
		return nil, ErrUserNotFound
	}
}

func (r *userRepository) FindByVerificationToken(db *gorm.DB, tokenHash string, now time.Time) (*models.User, error) {
	if tokenHash == "" {
		return nil, ErrUserNotFound
	}
	return r.first(db, "email_verification_token = ? AND email_verification_exp > ?", tokenHash, now)
}

func (r *userRepository) FindByResetToken(db *gorm.DB, tokenHash string, now time.Time) (*models.User, error) {
	if tokenHash == "" {
		return nil, ErrUserNotFound
	}
	return r.first(db, "password_reset_token = ? AND password_reset_exp > ?", tokenHash, now)
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	user.Email = normalizeEmail(user.Email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	res := db.Model(user).Select("*").Omit("id", "created_at").Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) RecordLogin(db *gorm.DB, id string, at time.Time) error {
	return r.UpdateFields(db, id, map[string]interface{}{
		"last_login_at":  at,
		"login_count":    gorm.Expr("login_count + 1"),
		"account_status": models.AccountActive,
	})
}

func (r *userRepository) Delete(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
