package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtracker_backend/internal/auth"
	"jobtracker_backend/internal/email"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/oauth"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, refreshToken string) error

	ForgotPassword(ctx context.Context, db *gorm.DB, email string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, db *gorm.DB, token string) error
	ResendVerification(ctx context.Context, db *gorm.DB, email string) error

	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error

	// OAuthStart returns the consent URL; the caller keeps State to compare on callback.
	OAuthStart(ctx context.Context, provider repositories.Provider) (*dto.OAuthStartResponse, error)
	OAuthCallback(ctx context.Context, db *gorm.DB, provider repositories.Provider, code string) (*dto.AuthResponse, error)
}

// TokenLifetimes are the validity windows of emailed links.
type TokenLifetimes struct {
	Reset  time.Duration
	Verify time.Duration
}

type authService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenManager
	notifier         email.Notifier
	providers        *oauth.Providers
	lifetimes        TokenLifetimes
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	notifier email.Notifier,
	providers *oauth.Providers,
	lifetimes TokenLifetimes,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		notifier:         notifier,
		providers:        providers,
		lifetimes:        lifetimes,
		now:              time.Now,
	}
}

// =======================
// Sessions
// =======================

func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	verifyToken, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	verifyExp := now.Add(s.lifetimes.Verify)
	user := &models.User{
		Email:                  strings.TrimSpace(req.Email),
		PasswordHash:           hash,
		FirstName:              strings.TrimSpace(req.FirstName),
		LastName:               strings.TrimSpace(req.LastName),
		Phone:                  req.Phone,
		Preferences:            datatypes.NewJSONType(models.DefaultPreferences()),
		AccountStatus:          models.AccountActive,
		SubscriptionType:       models.SubscriptionFree,
		EmailVerificationToken: auth.HashOpaqueToken(verifyToken),
		EmailVerificationExp:   &verifyExp,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(tx, user); err != nil {
		return nil, handleUserError(err)
	}
	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	// delivery problems must not undo a successful registration
	if err := s.notifier.SendWelcome(ctx, user); err != nil {
		logger.CtxWithError(ctx, "welcome email not sent", err, "user_id", user.ID)
	}
	if err := s.notifier.SendVerification(ctx, user, verifyToken, s.lifetimes.Verify); err != nil {
		logger.CtxWithError(ctx, "verification email not sent", err, "user_id", user.ID)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := auth.CheckAccountStatus(user.AccountStatus); err != nil {
		return nil, apperrors.ErrAccountDisabled.WithError(err)
	}

	return s.startSession(ctx, db, user)
}

func (s *authService) RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	now := s.now()
	stored, err := s.refreshTokenRepo.FindActive(tx, refreshToken, now)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if stored.UserID != claims.UserID {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if err := auth.CheckAccountStatus(user.AccountStatus); err != nil {
		return nil, apperrors.ErrAccountDisabled.WithError(err)
	}

	if err := s.refreshTokenRepo.Revoke(tx, refreshToken, now); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Logout is idempotent: an unknown or already revoked token is not an error.
func (s *authService) Logout(ctx context.Context, db *gorm.DB, refreshToken string) error {
	err := s.refreshTokenRepo.Revoke(db, refreshToken, s.now())
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

// =======================
// Emailed tokens
// =======================

// ForgotPassword never reveals whether the address is registered.
func (s *authService) ForgotPassword(ctx context.Context, db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	exp := s.now().Add(s.lifetimes.Reset)
	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"password_reset_token": auth.HashOpaqueToken(token),
		"password_reset_exp":   exp,
	}); err != nil {
		return handleUserError(err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token, s.lifetimes.Reset); err != nil {
		logger.CtxWithError(ctx, "password reset email not sent", err, "user_id", user.ID)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(map[string]string{"newPassword": err.Error()})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByResetToken(tx, auth.HashOpaqueToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdateFields(tx, user.ID, map[string]interface{}{
		"password_hash":        hash,
		"password_reset_token": "",
		"password_reset_exp":   nil,
	}); err != nil {
		return handleUserError(err)
	}
	if err := s.refreshTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, db *gorm.DB, token string) error {
	user, err := s.userRepo.FindByVerificationToken(db, auth.HashOpaqueToken(token), s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return handleUserError(s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"is_email_verified":        true,
		"email_verification_token": "",
		"email_verification_exp":   nil,
	}))
}

// ResendVerification answers the same way for unknown and already verified addresses.
func (s *authService) ResendVerification(ctx context.Context, db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	if user.IsEmailVerified {
		return nil
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	exp := s.now().Add(s.lifetimes.Verify)
	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"email_verification_token": auth.HashOpaqueToken(token),
		"email_verification_exp":   exp,
	}); err != nil {
		return handleUserError(err)
	}

	if err := s.notifier.SendVerification(ctx, user, token, s.lifetimes.Verify); err != nil {
		logger.CtxWithError(ctx, "verification email not sent", err, "user_id", user.ID)
	}
	return nil
}

// =======================
// Account
// =======================

func (s *authService) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(map[string]string{"newPassword": err.Error()})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return handleUserError(err)
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrWrongPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdateFields(tx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return handleUserError(err)
	}
	// every open session ends with the old password
	if err := s.refreshTokenRepo.DeleteByUserID(tx, userID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// =======================
// OAuth
// =======================

func (s *authService) OAuthStart(ctx context.Context, provider repositories.Provider) (*dto.OAuthStartResponse, error) {
	p, ok := s.providers.Get(provider)
	if !ok {
		return nil, apperrors.ErrOAuthProviderDisabled
	}
	state, err := oauth.NewState()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.OAuthStartResponse{URL: p.AuthURL(state), State: state}, nil
}

func (s *authService) OAuthCallback(ctx context.Context, db *gorm.DB, provider repositories.Provider, code string) (*dto.AuthResponse, error) {
	p, ok := s.providers.Get(provider)
	if !ok {
		return nil, apperrors.ErrOAuthProviderDisabled
	}
	identity, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if identity.ProviderID == "" {
		return nil, apperrors.ErrExternalService(errors.New("provider returned no subject"), apperrors.ServiceOAuth)
	}

	user, err := s.upsertOAuthUser(db, identity)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckAccountStatus(user.AccountStatus); err != nil {
		return nil, apperrors.ErrAccountDisabled.WithError(err)
	}
	return s.startSession(ctx, db, user)
}

// upsertOAuthUser matches by provider id first, then links an existing
// account with the same email, and otherwise creates a new one.
func (s *authService) upsertOAuthUser(db *gorm.DB, identity *oauth.Identity) (*models.User, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByProviderID(tx, identity.Provider, identity.ProviderID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if user == nil && identity.Email != "" {
		user, err = s.userRepo.FindByEmail(tx, identity.Email)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	created := false
	if user == nil {
		if identity.Email == "" {
			return nil, apperrors.ValidationError(map[string]string{"email": "provider did not share an email address"})
		}
		// the account gets an unusable password until the user sets one via reset
		secret, err := auth.NewOpaqueToken()
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		hash, err := auth.HashPassword(secret)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		firstName := identity.FirstName
		if firstName == "" {
			firstName = strings.SplitN(identity.Email, "@", 2)[0]
		}
		user = &models.User{
			Email:            identity.Email,
			PasswordHash:     hash,
			FirstName:        firstName,
			LastName:         identity.LastName,
			ProfilePicture:   identity.PictureURL,
			Preferences:      datatypes.NewJSONType(models.DefaultPreferences()),
			AccountStatus:    models.AccountActive,
			SubscriptionType: models.SubscriptionFree,
		}
		created = true
	}

	applyIdentity(user, identity)

	if created {
		err = s.userRepo.Create(tx, user)
	} else {
		err = s.userRepo.Update(tx, user)
	}
	if err != nil {
		return nil, handleUserError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func applyIdentity(user *models.User, identity *oauth.Identity) {
	id := identity.ProviderID
	if identity.EmailVerified {
		user.IsEmailVerified = true
	}
	if user.ProfilePicture == "" {
		user.ProfilePicture = identity.PictureURL
	}

	switch identity.Provider {
	case repositories.ProviderGoogle:
		user.GoogleID = &id
		// the Google consent includes gmail.readonly, so the same token drives inbox sync
		user.Integrations.GmailConnected = true
		user.Integrations.GmailAccessToken = identity.AccessToken
		if identity.RefreshToken != "" {
			user.Integrations.GmailRefreshToken = identity.RefreshToken
		}
		if !identity.Expiry.IsZero() {
			expiry := identity.Expiry
			user.Integrations.GmailTokenExpiry = &expiry
		}
	case repositories.ProviderLinkedIn:
		user.LinkedInID = &id
		user.Integrations.LinkedInConnected = true
	}
}

// =======================
// Helpers
// =======================

func (s *authService) startSession(ctx context.Context, db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	now := s.now()
	if err := s.userRepo.RecordLogin(tx, user.ID, now); err != nil {
		return nil, handleUserError(err)
	}
	user.LastLoginAt = &now
	user.LoginCount++
	user.AccountStatus = models.AccountActive

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user signed in", "user_id", user.ID)
	return resp, nil
}

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	access, accessExp, err := s.tokens.Generate(user.ID, user.Email, auth.TokenAccess)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	refresh, refreshExp, err := s.tokens.Generate(user.ID, user.Email, auth.TokenRefresh)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(accessExp.Sub(s.now()).Seconds()),
		RefreshExpiresAt: refreshExp,
		User:             dto.NewUserResponse(user),
	}, nil
}
