package dto

// AnalyticsQuery carries GET /dashboard/analytics query parameters.
type AnalyticsQuery struct {
	Window  string `form:"window"`
	Buckets int    `form:"buckets"`
}

// DailyReportQuery carries GET /dashboard/reports/daily query parameters.
type DailyReportQuery struct {
	Date     string `form:"date"`
	Detailed bool   `form:"detailed"`
}
