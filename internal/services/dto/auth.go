package dto

import (
	"time"

	"jobtracker_backend/internal/models"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72,is-strong-password"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,is-strong-password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,is-strong-password,nefield=CurrentPassword"`
}

type AuthResponse struct {
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	ExpiresIn        int64        `json:"expiresIn"`
	RefreshExpiresAt time.Time    `json:"refreshExpiresAt"`
	User             UserResponse `json:"user"`
}

// UserResponse is the outbound view of a user. It has no credential fields.
type UserResponse struct {
	ID               string                  `json:"id"`
	Email            string                  `json:"email"`
	FirstName        string                  `json:"firstName"`
	LastName         string                  `json:"lastName"`
	FullName         string                  `json:"fullName"`
	Phone            string                  `json:"phone,omitempty"`
	Headline         string                  `json:"headline,omitempty"`
	Summary          string                  `json:"summary,omitempty"`
	ProfilePicture   string                  `json:"profilePicture,omitempty"`
	Profile          models.UserProfile      `json:"profile"`
	Preferences      models.UserPreferences  `json:"preferences"`
	AccountStatus    models.AccountStatus    `json:"accountStatus"`
	SubscriptionType models.SubscriptionType `json:"subscriptionType"`
	IsEmailVerified  bool                    `json:"isEmailVerified"`
	LastLoginAt      *time.Time              `json:"lastLoginAt,omitempty"`
	LoginCount       int                     `json:"loginCount"`
	Integrations     models.Integrations     `json:"integrations"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		FullName:         u.FullName(),
		Phone:            u.Phone,
		Headline:         u.Headline,
		Summary:          u.Summary,
		ProfilePicture:   u.ProfilePicture,
		Profile:          u.Profile.Data(),
		Preferences:      u.Preferences.Data(),
		AccountStatus:    u.AccountStatus,
		SubscriptionType: u.SubscriptionType,
		IsEmailVerified:  u.IsEmailVerified,
		LastLoginAt:      u.LastLoginAt,
		LoginCount:       u.LoginCount,
		Integrations:     u.Integrations,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// OAuthStartResponse carries the provider consent URL and the state to echo back.
type OAuthStartResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}
