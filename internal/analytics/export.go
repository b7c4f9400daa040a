package analytics

import (
	"strconv"

	"jobtracker_backend/internal/models"
)

// Rows flattens a summary into section,metric,value rows for CSV export.
func Rows(s Summary) [][]string {
	rows := [][]string{{"section", "metric", "value"}}
	add := func(section, metric string, v any) {
		var str string
		switch x := v.(type) {
		case int:
			str = strconv.Itoa(x)
		case float64:
			str = strconv.FormatFloat(x, 'f', -1, 64)
		case string:
			str = x
		}
		rows = append(rows, []string{section, metric, str})
	}

	add("overview", "totalApplications", s.TotalApplications)
	for _, st := range models.JobStatuses {
		add("status", string(st), s.ByStatus[st])
	}
	add("conversion", "applicationToInterview", s.ConversionRates.ApplicationToInterview)
	add("conversion", "interviewToOffer", s.ConversionRates.InterviewToOffer)
	add("conversion", "overallSuccessRate", s.ConversionRates.OverallSuccessRate)
	add("responseTime", "average", s.ResponseTime.Average)
	add("responseTime", "fastest", s.ResponseTime.Fastest)
	add("responseTime", "slowest", s.ResponseTime.Slowest)
	for _, c := range s.TopCompanies {
		add("company", c.Company, c.Count)
	}
	for _, m := range s.Monthly {
		add("monthly", m.Month, m.Applications)
	}
	for _, b := range s.TimeSeries {
		add("timeSeries", b.Key, b.Count)
	}
	add("activity", "currentStreak", s.Activity.CurrentStreak)
	add("activity", "longestStreak", s.Activity.LongestStreak)
	add("reminders", "overdue", s.Reminders.Overdue)
	return rows
}
