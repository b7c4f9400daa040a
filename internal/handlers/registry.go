package handlers

import (
	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/validator"
)

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	JobHandler       *JobHandler
	ResumeHandler    *ResumeHandler
	ReminderHandler  *ReminderHandler
	AnalyticsHandler *AnalyticsHandler
}

func NewAppHandlers(svc *services.ServiceContainer, v *validator.Validator, guards Guards, secureCookies bool) *AppHandlers {
	base := NewBaseHandler(v, guards)
	return &AppHandlers{
		AuthHandler:      NewAuthHandler(base, svc.AuthService, secureCookies),
		UserHandler:      NewUserHandler(base, svc.UserService),
		JobHandler:       NewJobHandler(base, svc.JobService),
		ResumeHandler:    NewResumeHandler(base, svc.ResumeService),
		ReminderHandler:  NewReminderHandler(base, svc.ReminderService),
		AnalyticsHandler: NewAnalyticsHandler(base, svc.AnalyticsService),
	}
}
