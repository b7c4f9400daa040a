package apperrors

// ErrorCode is the stable, machine-readable part of an AppError.
type ErrorCode string

// Cross-cutting codes
const (
	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Business logic
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeAlreadyExists          ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed       ErrorCode = "VALIDATION_ERROR"
	CodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	CodeRateLimited            ErrorCode = "RATE_LIMITED"

	// Authentication
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

// External collaborators reported through ExternalServiceError.
const (
	ServiceAI      = "ai"
	ServiceEmail   = "email"
	ServicePDF     = "pdf"
	ServiceOAuth   = "oauth"
	ServiceGmail   = "gmail"
	ServiceStorage = "storage"
)
