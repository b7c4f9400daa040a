package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobtracker_backend/internal/ai"
	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

// recordingNotifier counts emails and fails for the listed reminder IDs.
type recordingNotifier struct {
	mu        sync.Mutex
	reminders []string
	statuses  []models.JobStatus
	failFor   map[string]bool
}

func (n *recordingNotifier) SendWelcome(context.Context, *models.User) error { return nil }
func (n *recordingNotifier) SendVerification(context.Context, *models.User, string, time.Duration) error {
	return nil
}
func (n *recordingNotifier) SendPasswordReset(context.Context, *models.User, string, time.Duration) error {
	return nil
}

func (n *recordingNotifier) SendReminder(_ context.Context, _ *models.User, r *models.Reminder, _ *models.JobApplication) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[r.ID] {
		return errors.New("smtp unavailable")
	}
	n.reminders = append(n.reminders, r.ID)
	return nil
}

func (n *recordingNotifier) SendStatusUpdate(_ context.Context, _ *models.User, job *models.JobApplication, _ models.JobStatus, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, job.Status)
	return nil
}

func (n *recordingNotifier) sentReminder(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, r := range n.reminders {
		if r == id {
			return true
		}
	}
	return false
}

// Services open their own transactions, so these tests run against the
// database directly and remove their user afterwards.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.JobApplication{},
		&models.Resume{},
		&models.Reminder{},
		&models.AnalyticsSnapshot{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, emailOptIn bool) *models.User {
	t.Helper()
	prefs := models.DefaultPreferences()
	prefs.EmailNotifications = emailOptIn
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Preferences:  datatypes.NewJSONType(prefs),
	}
	require.NoError(t, repositories.NewUserRepository().Create(db, user))

	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&models.Reminder{})
		db.Where("user_id = ?", user.ID).Delete(&models.JobApplication{})
		db.Where("user_id = ?", user.ID).Delete(&models.AnalyticsSnapshot{})
		db.Where("id = ?", user.ID).Delete(&models.User{})
	})
	return user
}

type testServices struct {
	jobs      JobService
	reminders ReminderService
	notifier  *recordingNotifier
}

func newTestServices(t *testing.T, db *gorm.DB) testServices {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)

	notifier := &recordingNotifier{failFor: map[string]bool{}}
	jobRepo := repositories.NewJobRepository()
	reminderRepo := repositories.NewReminderRepository()
	userRepo := repositories.NewUserRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()
	generator, err := ai.NewGenerator(context.Background(), &config.Config{})
	require.NoError(t, err)

	return testServices{
		jobs: NewJobService(jobRepo, reminderRepo, repositories.NewResumeRepository(), userRepo,
			repositories.NewStatsRepository(sqlDB), analyticsRepo, notifier, generator, nil),
		reminders: NewReminderService(reminderRepo, jobRepo, userRepo, analyticsRepo, notifier),
		notifier:  notifier,
	}
}

func TestJobStatusHistory(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(t, db)
	user := createUser(t, db, true)
	ctx := context.Background()

	job, err := svc.jobs.CreateJob(ctx, db, user.ID, &dto.CreateJobRequest{
		JobTitle: "Backend Engineer",
		Company:  "Acme",
		Status:   models.StatusApplied,
	})
	require.NoError(t, err)
	require.Len(t, job.StatusHistory, 1)

	job, err = svc.jobs.UpdateStatus(ctx, db, user.ID, job.ID, &dto.UpdateStatusRequest{Status: models.StatusFirstInterview})
	require.NoError(t, err)
	assert.Len(t, job.StatusHistory, 2)

	// repeating the current status is not recorded and sends nothing
	job, err = svc.jobs.UpdateStatus(ctx, db, user.ID, job.ID, &dto.UpdateStatusRequest{Status: models.StatusFirstInterview})
	require.NoError(t, err)
	assert.Len(t, job.StatusHistory, 2)
	assert.Equal(t, []models.JobStatus{models.StatusFirstInterview}, svc.notifier.statuses)

	_, err = svc.jobs.UpdateStatus(ctx, db, user.ID, job.ID, &dto.UpdateStatusRequest{Status: "Hired"})
	assert.Error(t, err)
}

func TestJobOwnership(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(t, db)
	owner := createUser(t, db, false)
	other := createUser(t, db, false)
	ctx := context.Background()

	job, err := svc.jobs.CreateJob(ctx, db, owner.ID, &dto.CreateJobRequest{JobTitle: "SRE", Company: "Initech"})
	require.NoError(t, err)

	_, err = svc.jobs.GetJob(ctx, db, other.ID, job.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestDuplicateJob(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(t, db)
	user := createUser(t, db, false)
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	src, err := svc.jobs.CreateJob(ctx, db, user.ID, &dto.CreateJobRequest{
		JobTitle:            "Data Engineer",
		Company:             "Globex",
		Status:              models.StatusApplied,
		ApplicationDeadline: &past,
		Tags:                []string{"remote"},
	})
	require.NoError(t, err)
	_, err = svc.jobs.UpdateStatus(ctx, db, user.ID, src.ID, &dto.UpdateStatusRequest{Status: models.StatusFirstInterview})
	require.NoError(t, err)

	dup, err := svc.jobs.DuplicateJob(ctx, db, user.ID, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, models.StatusWishlist, dup.Status)
	assert.Nil(t, dup.ApplicationDeadline)
	assert.Equal(t, []string{"remote"}, []string(dup.Tags))
	require.Len(t, dup.StatusHistory, 1)
	assert.Equal(t, "Duplicated from "+src.ID, dup.StatusHistory[0].Notes)
}

func TestDeleteJob(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(t, db)
	user := createUser(t, db, false)
	ctx := context.Background()

	job, err := svc.jobs.CreateJob(ctx, db, user.ID, &dto.CreateJobRequest{
		JobTitle:      "QA Engineer",
		Company:       "Umbrella",
		AutoReminders: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.jobs.DeleteJob(ctx, db, user.ID, job.ID, false))
	archived, err := svc.jobs.GetJob(ctx, db, user.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, "Deleted", archived.ArchivedReason)

	require.NoError(t, svc.jobs.DeleteJob(ctx, db, user.ID, job.ID, true))
	_, err = svc.jobs.GetJob(ctx, db, user.ID, job.ID)
	assert.Error(t, err)

	reminders, err := repositories.NewReminderRepository().FindByJob(db, user.ID, job.ID)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestProcessDueReminders(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(t, db)
	optedIn := createUser(t, db, true)
	optedOut := createUser(t, db, false)
	ctx := context.Background()
	reminderRepo := repositories.NewReminderRepository()

	due := func(user *models.User) *models.Reminder {
		job, err := svc.jobs.CreateJob(ctx, db, user.ID, &dto.CreateJobRequest{JobTitle: "Engineer", Company: "Acme"})
		require.NoError(t, err)
		r := &models.Reminder{
			BaseModel:        models.BaseModel{ID: uuid.NewString()},
			UserID:           user.ID,
			JobApplicationID: job.ID,
			Title:            "Follow up",
			ReminderDate:     time.Now().Add(-time.Hour),
			Type:             models.ReminderFollowUp,
			Status:           models.ReminderPending,
			Notifications:    models.Notifications{Email: true},
		}
		require.NoError(t, reminderRepo.Create(db, r))
		return r
	}

	delivered := due(optedIn)
	failing := due(optedIn)
	silent := due(optedOut)
	svc.notifier.failFor[failing.ID] = true

	_, err := svc.reminders.ProcessDueReminders(ctx, db, 1000)
	require.NoError(t, err)

	assert.True(t, svc.notifier.sentReminder(delivered.ID))
	assert.False(t, svc.notifier.sentReminder(silent.ID))

	reload := func(r *models.Reminder) *models.Reminder {
		got, err := reminderRepo.FindByID(db, r.UserID, r.ID)
		require.NoError(t, err)
		return got
	}
	assert.True(t, reload(delivered).EmailSent)
	assert.True(t, reload(silent).EmailSent)
	assert.False(t, reload(failing).EmailSent)
	assert.Equal(t, 1, reload(failing).EmailAttempts)
	assert.NotNil(t, reload(failing).LastEmailAttemptAt)
}
