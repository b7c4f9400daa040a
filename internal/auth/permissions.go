package auth

import (
	"errors"

	"jobtracker_backend/internal/models"
)

var (
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountDeleted   = errors.New("account is deleted")
)

// CheckAccountStatus decides whether an account may sign in or call the API.
// Inactive accounts may sign in; signing in reactivates them.
func CheckAccountStatus(status models.AccountStatus) error {
	switch status {
	case models.AccountSuspended:
		return ErrAccountSuspended
	case models.AccountDeleted:
		return ErrAccountDeleted
	default:
		return nil
	}
}

