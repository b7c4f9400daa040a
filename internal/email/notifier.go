package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/pkg/apperrors"
)

// Notifier renders and sends the transactional emails of the tracker.
type Notifier interface {
	SendWelcome(ctx context.Context, user *models.User) error
	SendVerification(ctx context.Context, user *models.User, token string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration) error
	SendReminder(ctx context.Context, user *models.User, reminder *models.Reminder, job *models.JobApplication) error
	SendStatusUpdate(ctx context.Context, user *models.User, job *models.JobApplication, oldStatus models.JobStatus, notes string) error
}

type notifier struct {
	sender      Sender
	templates   *TemplateManager
	appName     string
	frontendURL string
}

func NewNotifier(sender Sender, templates *TemplateManager, appName, frontendURL string) Notifier {
	return &notifier{
		sender:      sender,
		templates:   templates,
		appName:     appName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (n *notifier) SendWelcome(ctx context.Context, user *models.User) error {
	return n.send(ctx, user.Email, "Welcome to "+n.appName, TemplateWelcome, TemplateData{
		"Name":         user.FirstName,
		"DashboardURL": n.frontendURL + "/dashboard",
	})
}

func (n *notifier) SendVerification(ctx context.Context, user *models.User, token string, ttl time.Duration) error {
	return n.send(ctx, user.Email, "Verify your email", TemplateVerifyEmail, TemplateData{
		"Name":      user.FirstName,
		"Link":      fmt.Sprintf("%s/verify-email?token=%s", n.frontendURL, token),
		"ExpiresIn": humanDuration(ttl),
	})
}

func (n *notifier) SendPasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration) error {
	return n.send(ctx, user.Email, "Reset your password", TemplatePasswordReset, TemplateData{
		"Name":      user.FirstName,
		"Link":      fmt.Sprintf("%s/reset-password?token=%s", n.frontendURL, token),
		"ExpiresIn": humanDuration(ttl),
	})
}

func (n *notifier) SendReminder(ctx context.Context, user *models.User, reminder *models.Reminder, job *models.JobApplication) error {
	data := TemplateData{
		"Name":         user.FirstName,
		"Title":        reminder.Title,
		"Description":  reminder.Description,
		"DueAt":        reminder.ReminderDate.Format("Mon, 02 Jan 2006 15:04 MST"),
		"Type":         strings.ReplaceAll(string(reminder.Type), "_", " "),
		"Priority":     reminder.Priority,
		"DashboardURL": n.frontendURL + "/reminders",
	}
	if job != nil {
		data["JobTitle"] = job.JobTitle
		data["Company"] = job.Company
	}
	return n.send(ctx, user.Email, "Reminder: "+reminder.Title, TemplateReminder, data)
}

func (n *notifier) SendStatusUpdate(ctx context.Context, user *models.User, job *models.JobApplication, oldStatus models.JobStatus, notes string) error {
	subject := fmt.Sprintf("%s at %s: %s", job.JobTitle, job.Company, job.Status)
	return n.send(ctx, user.Email, subject, TemplateStatusUpdate, TemplateData{
		"Name":         user.FirstName,
		"JobTitle":     job.JobTitle,
		"Company":      job.Company,
		"OldStatus":    oldStatus,
		"NewStatus":    job.Status,
		"Notes":        notes,
		"DashboardURL": fmt.Sprintf("%s/jobs/%s", n.frontendURL, job.ID),
	})
}

func (n *notifier) send(ctx context.Context, to, subject, name string, data TemplateData) error {
	data["AppName"] = n.appName
	data["Subject"] = subject

	body, err := n.templates.Render(name, data)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		logger.CtxWithError(ctx, "Failed to send email", err, "template", name, "to", to)
		return apperrors.ErrExternalService(err, apperrors.ServiceEmail)
	}
	logger.CtxDebug(ctx, "Email sent", "template", name, "to", to)
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
