// Package analytics reduces a user's job applications, resumes and reminders
// into dashboard statistics. Aggregate is pure: it never mutates its input and
// returns the same summary for the same records and clock.
package analytics

import (
	"time"

	"jobtracker_backend/internal/models"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAllTime Period = "all_time"
)

// ParsePeriod falls back to month for unknown values.
func ParsePeriod(s string) Period {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAllTime:
		return p
	}
	return PeriodMonth
}

const DefaultTopN = 10

type Input struct {
	Jobs      []models.JobApplication
	Resumes   []models.Resume
	Reminders []models.Reminder
}

type Options struct {
	Period Period
	// From and To bound the job application date. Nil means unbounded.
	From *time.Time
	To   *time.Time
	TopN int
}

type Summary struct {
	TotalApplications int                      `json:"totalApplications"`
	ByStatus          map[models.JobStatus]int `json:"byStatus"`
	Period            Period                   `json:"period"`
	BucketWidth       string                   `json:"bucketWidth"`
	TimeSeries        []Bucket                 `json:"timeSeries"`
	TopCompanies      []CompanyStat            `json:"topCompanies"`
	ConversionRates   ConversionRates          `json:"conversionRates"`
	ResponseTime      ResponseTime             `json:"responseTime"`
	Monthly           []MonthlyStat            `json:"monthly"`
	Sources           map[string]int           `json:"sources"`
	JobTypes          map[string]int           `json:"jobTypes"`
	Activity          Activity                 `json:"activity"`
	Resumes           ResumeStats              `json:"resumes"`
	Reminders         ReminderStats            `json:"reminders"`
	GeneratedAt       time.Time                `json:"generatedAt"`
}

type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type CompanyStat struct {
	Company  string                   `json:"company"`
	Count    int                      `json:"count"`
	Statuses map[models.JobStatus]int `json:"statuses"`
}

// ConversionRates are percentages rounded to two decimals.
type ConversionRates struct {
	ApplicationToInterview float64 `json:"applicationToInterview"`
	InterviewToOffer       float64 `json:"interviewToOffer"`
	OverallSuccessRate     float64 `json:"overallSuccessRate"`
}

// ResponseTime is measured in days.
type ResponseTime struct {
	Average    float64 `json:"average"`
	Fastest    float64 `json:"fastest"`
	Slowest    float64 `json:"slowest"`
	SampleSize int     `json:"sampleSize"`
}

type MonthlyStat struct {
	Month        string `json:"month"`
	Applications int    `json:"applications"`
	Interviews   int    `json:"interviews"`
	Offers       int    `json:"offers"`
	Rejections   int    `json:"rejections"`
}

type Activity struct {
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	MostActiveDay  string  `json:"mostActiveDay,omitempty"`
	AveragePerWeek float64 `json:"averagePerWeek"`
}

type ResumeStats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	AIGenerated    int `json:"aiGenerated"`
	TotalDownloads int `json:"totalDownloads"`
}

type ReminderStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}
