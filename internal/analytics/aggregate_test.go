package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/models"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func job(t *testing.T, company string, applied time.Time, statuses ...models.JobStatus) models.JobApplication {
	t.Helper()
	j := models.JobApplication{
		BaseModel:       models.BaseModel{ID: fmt.Sprintf("%s-%d", company, applied.Unix())},
		UserID:          "user-1",
		JobTitle:        "Engineer",
		Company:         company,
		Status:          models.StatusApplied,
		ApplicationDate: applied,
		JobType:         models.JobTypeFullTime,
		Source:          models.Source{Platform: models.SourceLinkedIn},
	}
	require.NoError(t, lifecycle.SeedStatusHistory(&j, applied))
	for i, st := range statuses {
		_, err := lifecycle.UpdateStatus(&j, st, "", models.AddedByUser, applied.Add(time.Duration(i+1)*48*time.Hour))
		require.NoError(t, err)
	}
	return j
}

func TestAggregate_ZeroRecords(t *testing.T) {
	s := Aggregate(Input{}, Options{}, now)

	assert.Equal(t, 0, s.TotalApplications)
	assert.Equal(t, ConversionRates{}, s.ConversionRates)
	assert.Equal(t, ResponseTime{}, s.ResponseTime)
	assert.Empty(t, s.TopCompanies)
	assert.Equal(t, 0, s.ByStatus[models.StatusApplied])
	assert.Len(t, s.Monthly, 12)
	assert.Len(t, s.TimeSeries, 30)
	assert.Equal(t, Activity{}, s.Activity)
}

func TestAggregate_OverallSuccessRate(t *testing.T) {
	var jobs []models.JobApplication
	for i := 0; i < 7; i++ {
		jobs = append(jobs, job(t, fmt.Sprintf("Company %d", i), now.AddDate(0, 0, -20+i)))
	}
	jobs = append(jobs,
		job(t, "Offer A", now.AddDate(0, 0, -30), models.StatusOfferExtended),
		job(t, "Offer B", now.AddDate(0, 0, -31), models.StatusOfferExtended),
		job(t, "Offer C", now.AddDate(0, 0, -32), models.StatusFirstInterview, models.StatusOfferAccepted),
	)
	require.Len(t, jobs, 10)

	s := Aggregate(Input{Jobs: jobs}, Options{}, now)

	assert.Equal(t, 10, s.TotalApplications)
	assert.Equal(t, 30.0, s.ConversionRates.OverallSuccessRate)
	assert.Equal(t, 30.0, s.ConversionRates.ApplicationToInterview)
	assert.Equal(t, 100.0, s.ConversionRates.InterviewToOffer)
	assert.Equal(t, 2, s.ByStatus[models.StatusOfferExtended])
	assert.Equal(t, 1, s.ByStatus[models.StatusOfferAccepted])
	assert.Equal(t, 7, s.ByStatus[models.StatusApplied])
	assert.Equal(t, 10, s.Sources["LinkedIn"])
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	jobs := []models.JobApplication{job(t, "Acme", now.AddDate(0, 0, -3), models.StatusPhoneScreen)}
	before := len(jobs[0].StatusHistory)

	first := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodYear}, now)
	second := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodYear}, now)

	assert.Equal(t, first, second)
	assert.Len(t, jobs[0].StatusHistory, before)
}

func TestAggregate_TopCompanies(t *testing.T) {
	jobs := []models.JobApplication{
		job(t, "Globex", now.AddDate(0, 0, -1)),
		job(t, "acme", now.AddDate(0, 0, -2), models.StatusRejected),
		job(t, "Acme", now.AddDate(0, 0, -3)),
		job(t, "Initech", now.AddDate(0, 0, -4)),
	}

	s := Aggregate(Input{Jobs: jobs}, Options{TopN: 2}, now)

	require.Len(t, s.TopCompanies, 2)
	assert.Equal(t, "acme", s.TopCompanies[0].Company)
	assert.Equal(t, 2, s.TopCompanies[0].Count)
	assert.Equal(t, 1, s.TopCompanies[0].Statuses[models.StatusRejected])
	assert.Equal(t, "Globex", s.TopCompanies[1].Company)
}

func TestAggregate_ResponseTime(t *testing.T) {
	jobs := []models.JobApplication{
		// responses after 2 and 4 days
		job(t, "A", now.AddDate(0, 0, -10), models.StatusUnderReview),
		job(t, "B", now.AddDate(0, 0, -10), models.StatusWithdrawn, models.StatusRejected),
		// no response
		job(t, "C", now.AddDate(0, 0, -10)),
	}

	s := Aggregate(Input{Jobs: jobs}, Options{}, now)

	assert.Equal(t, 2, s.ResponseTime.SampleSize)
	assert.Equal(t, 3.0, s.ResponseTime.Average)
	assert.Equal(t, 2.0, s.ResponseTime.Fastest)
	assert.Equal(t, 4.0, s.ResponseTime.Slowest)
}

func TestAggregate_TimeSeriesBuckets(t *testing.T) {
	jobs := []models.JobApplication{
		job(t, "A", now.AddDate(0, 0, -1)),
		job(t, "B", now.AddDate(0, 0, -1)),
		job(t, "C", now.AddDate(0, -2, 0)),
	}

	week := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodWeek}, now)
	assert.Equal(t, "day", week.BucketWidth)
	require.Len(t, week.TimeSeries, 7)
	assert.Equal(t, "2024-06-14", week.TimeSeries[5].Key)
	assert.Equal(t, 2, week.TimeSeries[5].Count)

	quarter := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodQuarter}, now)
	assert.Equal(t, "month", quarter.BucketWidth)
	require.Len(t, quarter.TimeSeries, 3)
	assert.Equal(t, Bucket{Key: "2024-04", Count: 1}, quarter.TimeSeries[0])
	assert.Equal(t, Bucket{Key: "2024-06", Count: 2}, quarter.TimeSeries[2])

	year := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodYear}, now)
	assert.Len(t, year.TimeSeries, 12)

	all := Aggregate(Input{Jobs: jobs}, Options{Period: PeriodAllTime}, now)
	require.Len(t, all.TimeSeries, 3)
	assert.Equal(t, "2024-04", all.TimeSeries[0].Key)
}

func TestAggregate_Window(t *testing.T) {
	jobs := []models.JobApplication{
		job(t, "A", now.AddDate(0, 0, -1)),
		job(t, "B", now.AddDate(0, -3, 0)),
	}
	from := now.AddDate(0, -1, 0)

	s := Aggregate(Input{Jobs: jobs}, Options{From: &from}, now)

	assert.Equal(t, 1, s.TotalApplications)
}

func TestAggregate_Activity(t *testing.T) {
	jobs := []models.JobApplication{
		job(t, "A", now),
		job(t, "B", now.AddDate(0, 0, -1)),
		job(t, "C", now.AddDate(0, 0, -2)),
		job(t, "D", now.AddDate(0, 0, -10)),
		job(t, "E", now.AddDate(0, 0, -11)),
		job(t, "F", now.AddDate(0, 0, -12)),
		job(t, "G", now.AddDate(0, 0, -13)),
	}

	s := Aggregate(Input{Jobs: jobs}, Options{}, now)

	assert.Equal(t, 3, s.Activity.CurrentStreak)
	assert.Equal(t, 4, s.Activity.LongestStreak)
	assert.NotEmpty(t, s.Activity.MostActiveDay)
	assert.Greater(t, s.Activity.AveragePerWeek, 0.0)
}

func TestAggregate_ResumesAndReminders(t *testing.T) {
	resumes := []models.Resume{
		{Status: models.ResumeActive, Type: models.ResumeMaster, Analytics: models.ResumeAnalytics{DownloadCount: 3}},
		{Status: models.ResumeDraft, Type: models.ResumeAIGenerated, Analytics: models.ResumeAnalytics{DownloadCount: 1}},
	}
	reminders := []models.Reminder{
		{Status: models.ReminderPending, ReminderDate: now.Add(-time.Hour)},
		{Status: models.ReminderPending, ReminderDate: now.Add(time.Hour)},
		{Status: models.ReminderCompleted, ReminderDate: now.Add(-time.Hour)},
	}

	s := Aggregate(Input{Resumes: resumes, Reminders: reminders}, Options{}, now)

	assert.Equal(t, ResumeStats{Total: 2, Active: 1, AIGenerated: 1, TotalDownloads: 4}, s.Resumes)
	assert.Equal(t, ReminderStats{Total: 3, Pending: 2, Completed: 1, Overdue: 1}, s.Reminders)
}

func TestRows(t *testing.T) {
	s := Aggregate(Input{}, Options{}, now)
	rows := Rows(s)

	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"section", "metric", "value"}, rows[0])
	assert.Contains(t, rows, []string{"overview", "totalApplications", "0"})
	assert.Contains(t, rows, []string{"conversion", "overallSuccessRate", "0"})
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodQuarter, ParsePeriod("quarter"))
	assert.Equal(t, PeriodMonth, ParsePeriod("decade"))
}
