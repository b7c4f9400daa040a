package apperrors

import (
	"jobtracker_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure form of the API envelope.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    ErrorCode   `json:"code,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// GinErrorHandler writes errors as envelopes. Debug exposes wrapped causes of unknown errors.
type GinErrorHandler struct {
	Debug bool
}

var defaultHandler = &GinErrorHandler{}

// SetDebug toggles detail exposure for HandleError; enabled in development only.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
		if h.Debug {
			appErr = appErr.WithDetails(err.Error())
		}
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(c.Request.Context(), "request failed", errOrSelf(appErr),
			"path", c.Request.URL.Path,
			"code", appErr.Code,
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Details,
	})
}

// HandleError writes err with the process-wide handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HandleValidationError reports a binding failure as a 400.
func HandleValidationError(c *gin.Context, err error) {
	HandleError(c, ValidationError(map[string]string{"body": err.Error()}))
}

func errOrSelf(e *AppError) error {
	if e.Err != nil {
		return e.Err
	}
	return e
}
