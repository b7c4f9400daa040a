package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/models"
	"jobtracker_backend/pkg/apperrors"
)

type captureSender struct {
	to, subject, body string
	err               error
}

func (s *captureSender) Send(_ context.Context, to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

func newTestNotifier(t *testing.T, sender Sender) Notifier {
	t.Helper()
	tm, err := NewTemplateManager()
	require.NoError(t, err)
	return NewNotifier(sender, tm, "Job Tracker", "http://localhost:3000/")
}

func TestTemplateManager_Builtins(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	assert.Equal(t, []string{
		TemplatePasswordReset, TemplateReminder, TemplateStatusUpdate, TemplateVerifyEmail, TemplateWelcome,
	}, tm.TemplateNames())

	_, err = tm.Render("missing", TemplateData{})
	assert.Error(t, err)
}

func TestTemplateManager_EscapesData(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)
	require.NoError(t, tm.AddTemplate("custom", `{{define "content"}}<p>{{.Name}}</p>{{end}}`))

	out, err := tm.Render("custom", TemplateData{"Name": "<script>", "AppName": "X"})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestNotifier_PasswordReset(t *testing.T) {
	sender := &captureSender{}
	n := newTestNotifier(t, sender)
	user := &models.User{Email: "ann@example.com", FirstName: "Ann"}

	require.NoError(t, n.SendPasswordReset(context.Background(), user, "abc123", time.Hour))

	assert.Equal(t, "ann@example.com", sender.to)
	assert.Equal(t, "Reset your password", sender.subject)
	assert.Contains(t, sender.body, "http://localhost:3000/reset-password?token=abc123")
	assert.Contains(t, sender.body, "1 hour")
	assert.Contains(t, sender.body, "Hi Ann")
}

func TestNotifier_Reminder(t *testing.T) {
	sender := &captureSender{}
	n := newTestNotifier(t, sender)
	user := &models.User{Email: "ann@example.com", FirstName: "Ann"}
	reminder := &models.Reminder{
		Title:        "Follow up with Acme",
		ReminderDate: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Type:         models.ReminderFollowUp,
		Priority:     models.ReminderPriorityHigh,
	}
	job := &models.JobApplication{JobTitle: "Backend Engineer", Company: "Acme"}

	require.NoError(t, n.SendReminder(context.Background(), user, reminder, job))

	assert.Equal(t, "Reminder: Follow up with Acme", sender.subject)
	assert.Contains(t, sender.body, "follow up")
	assert.Contains(t, sender.body, "Backend Engineer at Acme")
}

func TestNotifier_SendFailureIsExternalServiceError(t *testing.T) {
	n := newTestNotifier(t, &captureSender{err: errors.New("dial tcp: refused")})

	err := n.SendWelcome(context.Background(), &models.User{Email: "a@b.c", FirstName: "A"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeExternalServiceError, appErr.Code)
	assert.Equal(t, apperrors.ServiceEmail, appErr.Domain)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "3 days", humanDuration(72*time.Hour))
}
