package dto

import (
	"time"

	"jobtracker_backend/internal/analytics"
)

type AnalyticsQuery struct {
	Period string     `form:"period" validate:"omitempty,oneof=week month quarter year all_time"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

type DashboardResponse struct {
	Summary        analytics.Summary `json:"summary"`
	FromCache      bool              `json:"fromCache"`
	LastCalculated time.Time         `json:"lastCalculated"`
}

type TrendsResponse struct {
	Period      analytics.Period        `json:"period"`
	BucketWidth string                  `json:"bucketWidth"`
	TimeSeries  []analytics.Bucket      `json:"timeSeries"`
	Monthly     []analytics.MonthlyStat `json:"monthly"`
}

type SuccessMetricsResponse struct {
	TotalApplications int                       `json:"totalApplications"`
	ConversionRates   analytics.ConversionRates `json:"conversionRates"`
	ResponseTime      analytics.ResponseTime    `json:"responseTime"`
}
