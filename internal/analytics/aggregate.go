package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"jobtracker_backend/internal/lifecycle"
	"jobtracker_backend/internal/models"
)

const (
	dayKey   = "2006-01-02"
	monthKey = "2006-01"
)

// Aggregate computes the full summary. Zero records yield a zeroed summary.
func Aggregate(in Input, opts Options, now time.Time) Summary {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Period == "" {
		opts.Period = PeriodMonth
	}

	jobs := inWindow(in.Jobs, opts.From, opts.To)

	s := Summary{
		TotalApplications: len(jobs),
		ByStatus:          make(map[models.JobStatus]int, len(models.JobStatuses)),
		Period:            opts.Period,
		Sources:           map[string]int{},
		JobTypes:          map[string]int{},
		GeneratedAt:       now,
	}
	for _, st := range models.JobStatuses {
		s.ByStatus[st] = 0
	}

	for _, j := range jobs {
		s.ByStatus[j.Status]++
		if j.Source.Platform != "" {
			s.Sources[string(j.Source.Platform)]++
		}
		if j.JobType != "" {
			s.JobTypes[string(j.JobType)]++
		}
	}

	s.BucketWidth, s.TimeSeries = timeSeries(jobs, opts.Period, now)
	s.TopCompanies = topCompanies(jobs, opts.TopN)
	s.ConversionRates = conversionRates(jobs)
	s.ResponseTime = responseTime(jobs)
	s.Monthly = monthly(jobs, now)
	s.Activity = activity(jobs, now)
	s.Resumes = resumeStats(in.Resumes)
	s.Reminders = reminderStats(in.Reminders, now)
	return s
}

// appliedAt is the date a record counts under; imported rows may lack an application date.
func appliedAt(j models.JobApplication) time.Time {
	if j.ApplicationDate.IsZero() {
		return j.CreatedAt
	}
	return j.ApplicationDate
}

func inWindow(jobs []models.JobApplication, from, to *time.Time) []models.JobApplication {
	if from == nil && to == nil {
		return jobs
	}
	out := make([]models.JobApplication, 0, len(jobs))
	for _, j := range jobs {
		at := appliedAt(j)
		if from != nil && at.Before(*from) {
			continue
		}
		if to != nil && at.After(*to) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// ---------------- Time series ----------------

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func timeSeries(jobs []models.JobApplication, period Period, now time.Time) (string, []Bucket) {
	daily := period == PeriodWeek || period == PeriodMonth

	var start time.Time
	switch period {
	case PeriodWeek:
		start = startOfDay(now).AddDate(0, 0, -6)
	case PeriodMonth:
		start = startOfDay(now).AddDate(0, 0, -29)
	case PeriodQuarter:
		start = startOfMonth(now).AddDate(0, -2, 0)
	case PeriodYear:
		start = startOfMonth(now).AddDate(0, -11, 0)
	default:
		if len(jobs) == 0 {
			return "month", []Bucket{}
		}
		earliest := now
		for _, j := range jobs {
			if at := appliedAt(j).In(now.Location()); at.Before(earliest) {
				earliest = at
			}
		}
		start = startOfMonth(earliest)
	}

	width, layout := "month", monthKey
	if daily {
		width, layout = "day", dayKey
	}

	counts := make(map[string]int)
	for _, j := range jobs {
		at := appliedAt(j).In(now.Location())
		if at.Before(start) || at.After(now) {
			continue
		}
		counts[at.Format(layout)]++
	}

	buckets := []Bucket{}
	if daily {
		for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
			key := d.Format(layout)
			buckets = append(buckets, Bucket{Key: key, Count: counts[key]})
		}
	} else {
		for m := start; !m.After(now); m = m.AddDate(0, 1, 0) {
			key := m.Format(layout)
			buckets = append(buckets, Bucket{Key: key, Count: counts[key]})
		}
	}
	return width, buckets
}

// ---------------- Companies ----------------

func topCompanies(jobs []models.JobApplication, n int) []CompanyStat {
	byKey := make(map[string]*CompanyStat)
	for _, j := range jobs {
		name := strings.TrimSpace(j.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		stat, ok := byKey[key]
		if !ok {
			stat = &CompanyStat{Company: name, Statuses: map[models.JobStatus]int{}}
			byKey[key] = stat
		}
		stat.Count++
		stat.Statuses[j.Status]++
	}

	out := make([]CompanyStat, 0, len(byKey))
	for _, stat := range byKey {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Count != out[k].Count {
			return out[i].Count > out[k].Count
		}
		return out[i].Company < out[k].Company
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ---------------- Rates ----------------

func conversionRates(jobs []models.JobApplication) ConversionRates {
	var interviews, offers int
	for _, j := range jobs {
		if lifecycle.ReachedAny(j, models.InterviewStages) {
			interviews++
		}
		if lifecycle.ReachedAny(j, models.OfferStages) {
			offers++
		}
	}
	return ConversionRates{
		ApplicationToInterview: percent(interviews, len(jobs)),
		InterviewToOffer:       percent(offers, interviews),
		OverallSuccessRate:     percent(offers, len(jobs)),
	}
}

func responseTime(jobs []models.JobApplication) ResponseTime {
	var days []float64
	for _, j := range jobs {
		if j.ApplicationDate.IsZero() {
			continue
		}
		first, ok := lifecycle.FirstResponse(j)
		if !ok || first.Date.Before(j.ApplicationDate) {
			continue
		}
		days = append(days, first.Date.Sub(j.ApplicationDate).Hours()/24)
	}
	if len(days) == 0 {
		return ResponseTime{}
	}

	sum, lo, hi := 0.0, days[0], days[0]
	for _, d := range days {
		sum += d
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return ResponseTime{
		Average:    round(sum/float64(len(days)), 1),
		Fastest:    round(lo, 1),
		Slowest:    round(hi, 1),
		SampleSize: len(days),
	}
}

// ---------------- Breakdowns ----------------

func monthly(jobs []models.JobApplication, now time.Time) []MonthlyStat {
	first := startOfMonth(now).AddDate(0, -11, 0)
	out := make([]MonthlyStat, 0, 12)
	index := make(map[string]int, 12)
	for m := first; !m.After(now); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthKey)
		index[key] = len(out)
		out = append(out, MonthlyStat{Month: key})
	}

	for _, j := range jobs {
		i, ok := index[appliedAt(j).In(now.Location()).Format(monthKey)]
		if !ok {
			continue
		}
		out[i].Applications++
		if lifecycle.ReachedAny(j, models.InterviewStages) {
			out[i].Interviews++
		}
		if lifecycle.ReachedAny(j, models.OfferStages) {
			out[i].Offers++
		}
		if j.Status == models.StatusRejected {
			out[i].Rejections++
		}
	}
	return out
}

func activity(jobs []models.JobApplication, now time.Time) Activity {
	if len(jobs) == 0 {
		return Activity{}
	}

	days := make(map[string]bool)
	var weekdays [7]int
	earliest := now
	for _, j := range jobs {
		at := appliedAt(j).In(now.Location())
		days[at.Format(dayKey)] = true
		weekdays[at.Weekday()]++
		if at.Before(earliest) {
			earliest = at
		}
	}

	var a Activity

	// current streak ends today, or yesterday when nothing was sent today yet
	cursor := startOfDay(now)
	if !days[cursor.Format(dayKey)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[cursor.Format(dayKey)] {
		a.CurrentStreak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	run := 0
	var prev time.Time
	for i, key := range sorted {
		d, _ := time.ParseInLocation(dayKey, key, now.Location())
		if i > 0 && d.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > a.LongestStreak {
			a.LongestStreak = run
		}
		prev = d
	}

	best := -1
	for wd, count := range weekdays {
		if count > 0 && (best < 0 || count > weekdays[best]) {
			best = wd
		}
	}
	if best >= 0 {
		a.MostActiveDay = time.Weekday(best).String()
	}

	weeks := now.Sub(earliest).Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}
	a.AveragePerWeek = round(float64(len(jobs))/weeks, 2)
	return a
}

func resumeStats(resumes []models.Resume) ResumeStats {
	var s ResumeStats
	for _, r := range resumes {
		s.Total++
		if r.Status == models.ResumeActive {
			s.Active++
		}
		if r.Type == models.ResumeAIGenerated || r.AIGeneration.Data().IsAIGenerated {
			s.AIGenerated++
		}
		s.TotalDownloads += r.Analytics.DownloadCount
	}
	return s
}

func reminderStats(reminders []models.Reminder, now time.Time) ReminderStats {
	var s ReminderStats
	for _, r := range reminders {
		s.Total++
		switch r.Status {
		case models.ReminderPending, models.ReminderSnoozed:
			s.Pending++
		case models.ReminderCompleted:
			s.Completed++
		}
		if lifecycle.ReminderIsOverdue(r, now) {
			s.Overdue++
		}
	}
	return s
}

// ---------------- Arithmetic ----------------

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)*100/float64(whole), 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
