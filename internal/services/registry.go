package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService      AuthService
	UserService      UserService
	JobService       JobService
	ResumeService    ResumeService
	ReminderService  ReminderService
	AnalyticsService AnalyticsService
}
