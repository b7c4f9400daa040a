package services

import (
	"errors"

	"gorm.io/gorm"

	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/pkg/apperrors"
)

// classified reports whether err already carries an AppError.
func classified(err error) bool {
	_, ok := apperrors.AsAppError(err)
	return ok
}

func handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrEmailAlreadyExists
	default:
		return apperrors.InternalError(err)
	}
}

func handleJobError(err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrJobNotFound):
		return apperrors.ErrJobNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrAlreadyExists(err, "job", "Job application already exists")
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		return apperrors.ErrInvalidTransition(err, "job", "Invalid job status")
	default:
		return apperrors.InternalError(err)
	}
}

func handleResumeError(err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrResumeNotFound):
		return apperrors.ErrResumeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrAlreadyExists(err, "resume", "Resume already exists")
	default:
		return apperrors.InternalError(err)
	}
}

func handleReminderError(err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrReminderNotFound):
		return apperrors.ErrReminderNotFound
	case errors.Is(err, repositories.ErrJobNotFound):
		return apperrors.ErrJobNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return apperrors.ErrInvalidTransition(err, "reminder", "Reminder is already completed or cancelled")
	case errors.Is(err, lifecycle.ErrInvalidRecurrence):
		return apperrors.ErrInvalidTransition(err, "reminder", "Invalid recurrence pattern")
	case errors.Is(err, lifecycle.ErrInvalidSnooze):
		return apperrors.ValidationError(map[string]string{"minutes": "must be greater than 0"})
	default:
		return apperrors.InternalError(err)
	}
}
