package apperrors

import (
	"fmt"
	"net/http"
)

// =========================================================================
// Factories
// =========================================================================

// ErrNotFound reports an absent record. Records owned by another user are
// reported the same way.
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrAlreadyExists reports a unique constraint violation.
func ErrAlreadyExists(err error, domain, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, message, http.StatusConflict)
}

// ErrInvalidTransition reports a status, reminder state or recurrence value
// outside its vocabulary or not reachable from the current state.
func ErrInvalidTransition(err error, domain, message string) *AppError {
	return Wrap(err, CodeInvalidStateTransition, domain, message, http.StatusBadRequest)
}

// ErrExternalService reports a failed call to ai, email, pdf, oauth, gmail or storage.
// Local state committed before the call stays committed.
func ErrExternalService(err error, service string) *AppError {
	return Wrap(err, CodeExternalServiceError, service,
		fmt.Sprintf("External service %s is unavailable", service), http.StatusBadGateway)
}

// =========================================================================
// Predefined errors
// =========================================================================

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User with this email already exists",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken covers refresh, verification and reset tokens.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrAccountDisabled = New(
	CodeForbidden,
	"auth",
	"Account is not active",
	http.StatusForbidden,
)

var ErrWrongPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest,
)

// --- Resources ---

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

var ErrJobNotFound = New(CodeNotFound, "job", "Job application not found", http.StatusNotFound)

var ErrResumeNotFound = New(CodeNotFound, "resume", "Resume not found", http.StatusNotFound)

var ErrReminderNotFound = New(CodeNotFound, "reminder", "Reminder not found", http.StatusNotFound)

var ErrInterviewNotFound = New(CodeNotFound, "job", "Interview not found", http.StatusNotFound)

var ErrContactNotFound = New(CodeNotFound, "job", "Contact not found", http.StatusNotFound)

// --- Integrations ---

var ErrGmailNotConnected = New(
	CodeValidationFailed,
	"gmail",
	"Gmail account is not connected",
	http.StatusBadRequest,
)

var ErrOAuthProviderDisabled = New(
	CodeValidationFailed,
	"oauth",
	"OAuth provider is not configured",
	http.StatusBadRequest,
)
