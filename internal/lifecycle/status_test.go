package lifecycle

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/models"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newJob(t *testing.T, status models.JobStatus) models.JobApplication {
	t.Helper()
	job := models.JobApplication{
		BaseModel:       models.BaseModel{ID: "job-1"},
		UserID:          "user-1",
		JobTitle:        "Backend Engineer",
		Company:         "Acme",
		Status:          status,
		ApplicationDate: t0,
	}
	require.NoError(t, SeedStatusHistory(&job, t0))
	return job
}

func TestSeedStatusHistory(t *testing.T) {
	t.Run("defaults to Applied", func(t *testing.T) {
		job := models.JobApplication{}
		require.NoError(t, SeedStatusHistory(&job, t0))

		assert.Equal(t, models.StatusApplied, job.Status)
		require.Len(t, job.StatusHistory, 1)
		assert.Equal(t, models.StatusApplied, job.StatusHistory[0].Status)
		assert.Equal(t, t0, job.ApplicationDate)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		job := models.JobApplication{Status: "Ghosted"}
		assert.ErrorIs(t, SeedStatusHistory(&job, t0), ErrInvalidStatus)
		assert.Empty(t, job.StatusHistory)
	})
}

func TestUpdateStatus_AppliedToOfferExtended(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	changed, err := UpdateStatus(&job, models.StatusOfferExtended, "verbal offer", models.AddedByUser, t0.Add(48*time.Hour))
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, models.StatusOfferExtended, job.Status)
	require.Len(t, job.StatusHistory, 2)
	assert.Equal(t, models.StatusOfferExtended, job.StatusHistory[1].Status)
	assert.Equal(t, "verbal offer", job.StatusHistory[1].Notes)
}

func TestUpdateStatus_RepeatedStatusIsNoop(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	_, err := UpdateStatus(&job, models.StatusPhoneScreen, "", models.AddedByUser, t0.Add(time.Hour))
	require.NoError(t, err)
	changed, err := UpdateStatus(&job, models.StatusPhoneScreen, "", models.AddedByUser, t0.Add(2*time.Hour))
	require.NoError(t, err)

	assert.False(t, changed)
	count := 0
	for _, h := range job.StatusHistory {
		if h.Status == models.StatusPhoneScreen {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdateStatus_RevisitAppendsAgain(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	_, _ = UpdateStatus(&job, models.StatusFirstInterview, "", models.AddedByUser, t0.Add(time.Hour))
	changed, err := UpdateStatus(&job, models.StatusApplied, "", models.AddedByUser, t0.Add(2*time.Hour))

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, job.StatusHistory, 3)
}

func TestUpdateStatus_InvalidStatusLeavesJobUntouched(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	changed, err := UpdateStatus(&job, "Hired", "", models.AddedByUser, t0)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, changed)
	assert.Equal(t, models.StatusApplied, job.Status)
	assert.Len(t, job.StatusHistory, 1)
}

func TestUpdateStatus_HistoryStaysSorted(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	// clock earlier than the application date
	_, err := UpdateStatus(&job, models.StatusUnderReview, "", models.AddedBySystem, t0.Add(-time.Hour))
	require.NoError(t, err)
	_, err = UpdateStatus(&job, models.StatusRejected, "", models.AddedByUser, t0.Add(24*time.Hour))
	require.NoError(t, err)

	assert.NotEmpty(t, job.StatusHistory)
	assert.True(t, sort.SliceIsSorted(job.StatusHistory, func(i, j int) bool {
		return job.StatusHistory[i].Date.Before(job.StatusHistory[j].Date)
	}))
}

func TestUpdateStatus_TracksTimeInStatus(t *testing.T) {
	job := newJob(t, models.StatusApplied)

	_, _ = UpdateStatus(&job, models.StatusPhoneScreen, "", models.AddedByUser, t0.Add(72*time.Hour))

	require.Len(t, job.Analytics.TimeSpentInStatus, 1)
	assert.Equal(t, models.StatusApplied, job.Analytics.TimeSpentInStatus[0].Status)
	assert.InDelta(t, 3.0, job.Analytics.TimeSpentInStatus[0].Days, 0.001)
}

func TestReachedAnyAndFirstResponse(t *testing.T) {
	job := newJob(t, models.StatusApplied)
	_, _ = UpdateStatus(&job, models.StatusPhoneScreen, "", models.AddedByUser, t0.Add(5*24*time.Hour))
	_, _ = UpdateStatus(&job, models.StatusRejected, "", models.AddedByUser, t0.Add(9*24*time.Hour))

	assert.True(t, ReachedAny(job, models.InterviewStages))
	assert.False(t, ReachedAny(job, models.OfferStages))

	first, ok := FirstResponse(job)
	require.True(t, ok)
	assert.Equal(t, models.StatusPhoneScreen, first.Status)
}
