package dto

import (
	"time"

	"jobtracker_backend/internal/models"
)

type RecurringPatternInput struct {
	Type     models.RecurrenceType `json:"type" validate:"required,is-recurrence-type"`
	Interval int                   `json:"interval,omitempty" validate:"omitempty,min=1,max=365"`
	EndDate  *time.Time            `json:"endDate,omitempty"`
}

type NotificationsInput struct {
	Email *bool `json:"email,omitempty"`
	Push  bool  `json:"push"`
	SMS   bool  `json:"sms"`
}

type CreateReminderRequest struct {
	JobApplicationID string                  `json:"jobApplicationId" validate:"required,uuid"`
	Title            string                  `json:"title" validate:"required,max=200"`
	Description      string                  `json:"description,omitempty" validate:"omitempty,max=1000"`
	ReminderDate     time.Time               `json:"reminderDate" validate:"required"`
	Type             models.ReminderType     `json:"type" validate:"required,is-reminder-type"`
	Priority         models.ReminderPriority `json:"priority,omitempty" validate:"omitempty,is-reminder-priority"`
	IsRecurring      bool                    `json:"isRecurring"`
	RecurringPattern *RecurringPatternInput  `json:"recurringPattern,omitempty" validate:"required_if=IsRecurring true,omitempty"`
	Notifications    *NotificationsInput     `json:"notifications,omitempty"`
	Notes            string                  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Tags             []string                `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

type UpdateReminderRequest struct {
	Title            *string                  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description      *string                  `json:"description,omitempty" validate:"omitempty,max=1000"`
	ReminderDate     *time.Time               `json:"reminderDate,omitempty"`
	Type             *models.ReminderType     `json:"type,omitempty" validate:"omitempty,is-reminder-type"`
	Priority         *models.ReminderPriority `json:"priority,omitempty" validate:"omitempty,is-reminder-priority"`
	IsRecurring      *bool                    `json:"isRecurring,omitempty"`
	RecurringPattern *RecurringPatternInput   `json:"recurringPattern,omitempty"`
	Notifications    *NotificationsInput      `json:"notifications,omitempty"`
	Notes            *string                  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Tags             []string                 `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

type ReminderListQuery struct {
	Status           models.ReminderStatus   `form:"status" validate:"omitempty,is-reminder-status"`
	Type             models.ReminderType     `form:"type" validate:"omitempty,is-reminder-type"`
	Priority         models.ReminderPriority `form:"priority" validate:"omitempty,is-reminder-priority"`
	JobApplicationID string                  `form:"jobApplicationId" validate:"omitempty,uuid"`
	From             *time.Time              `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To               *time.Time              `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=43200"`
}

type CompleteReminderRequest struct {
	Notes string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type BulkReminderAction string

const (
	BulkReminderComplete BulkReminderAction = "complete"
	BulkReminderCancel   BulkReminderAction = "cancel"
	BulkReminderSnooze   BulkReminderAction = "snooze"
	BulkReminderDelete   BulkReminderAction = "delete"
)

type BulkReminderRequest struct {
	IDs     []string           `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
	Action  BulkReminderAction `json:"action" validate:"required,oneof=complete cancel snooze delete"`
	Minutes int                `json:"minutes,omitempty" validate:"required_if=Action snooze,omitempty,min=1,max=43200"`
}

// ReminderResponse adds the derived fields to the stored record.
type ReminderResponse struct {
	models.Reminder
	IsOverdue bool `json:"isOverdue"`
	DaysUntil int  `json:"daysUntil"`
}

// CompleteReminderResponse returns the completed reminder and the spawned next occurrence, if any.
type CompleteReminderResponse struct {
	Completed ReminderResponse  `json:"completed"`
	Next      *ReminderResponse `json:"next,omitempty"`
}
