package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salary struct {
	Min int `json:"min"`
	Max int `json:"max" validate:"omitempty,gtefield=Min"`
}

type jobRequest struct {
	JobTitle string  `json:"jobTitle" validate:"required,max=10"`
	Status   string  `json:"status" validate:"omitempty,is-job-status"`
	Reminder string  `json:"reminderType" validate:"omitempty,is-reminder-type"`
	Salary   *salary `json:"salary"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8,is-strong-password"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(jobRequest{JobTitle: "Engineer", Status: "Phone Screen", Reminder: "follow_up"})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(jobRequest{Status: "Ghosted", Reminder: "nag", Salary: &salary{Min: 10, Max: 5}})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["jobTitle"])
	assert.Contains(t, vErr.Errors["status"], "Offer Extended")
	assert.Contains(t, vErr.Errors["reminderType"], "follow_up")
	assert.Contains(t, vErr.Errors, "salary.max")
}

func TestValidate_StrongPassword(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(passwordRequest{Password: "Secret123"}))

	err := v.Validate(passwordRequest{Password: "secret123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}
