package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

type AuthHandler struct {
	*BaseHandler
	authService   services.AuthService
	secureCookies bool
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   base,
		authService:   authService,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(h.guards.chain(h.guards.AuthLimit)...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", h.Logout)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.GET("/verify-email/:token", h.VerifyEmail)
		auth.POST("/resend-verification", h.ResendVerification)

		auth.GET("/google", h.OAuthStart(repositories.ProviderGoogle))
		auth.GET("/google/callback", h.OAuthCallback(repositories.ProviderGoogle))
		auth.GET("/linkedin", h.OAuthStart(repositories.ProviderLinkedIn))
		auth.GET("/linkedin/callback", h.OAuthCallback(repositories.ProviderLinkedIn))
	}

	session := rg.Group("/auth", h.guards.chain(h.guards.Auth)...)
	{
		session.GET("/me", h.Me)
		session.PUT("/change-password", h.ChangePassword)
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Account data"
// @Success 201 {object} Response{data=dto.AuthResponse}
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Registration successful. Please check your email to verify your account.", resp)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} Response{data=dto.AuthResponse}
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, resp)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), h.GetDB(c), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), h.GetDB(c), req.RefreshToken); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Logged out")
}

// ForgotPassword answers the same way whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "If the email is registered, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Password has been reset")
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), h.GetDB(c), c.Param("token")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Email verified")
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "If the account exists and is unverified, a new link has been sent")
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=dto.UserResponse}
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Password changed")
}

// =======================
// OAuth
// =======================

// OAuthStart stores a state cookie and redirects to the provider consent page.
func (h *AuthHandler) OAuthStart(provider repositories.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := h.authService.OAuthStart(c.Request.Context(), provider)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, start.State, oauthStateMaxAge, "/", "", h.secureCookies, true)
		c.Redirect(http.StatusFound, start.URL)
	}
}

// OAuthCallback checks the state against the cookie and signs the user in.
func (h *AuthHandler) OAuthCallback(provider repositories.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if errParam := c.Query("error"); errParam != "" {
			h.HandleServiceError(c, apperrors.NewUnauthorizedError("Authorization was denied: "+errParam))
			return
		}

		cookie, err := c.Cookie(oauthStateCookie)
		state := c.Query("state")
		if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(state)) != 1 {
			h.HandleServiceError(c, apperrors.NewUnauthorizedError("Invalid OAuth state"))
			return
		}
		c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookies, true)

		code := c.Query("code")
		if code == "" {
			h.HandleServiceError(c, apperrors.NewBadRequestError("Missing authorization code"))
			return
		}

		resp, err := h.authService.OAuthCallback(c.Request.Context(), h.GetDB(c), provider, code)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		h.OK(c, resp)
	}
}
