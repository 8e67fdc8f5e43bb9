package models

import "time"

// AnalyticsWindow selects the bucket granularity of a dashboard series.
type AnalyticsWindow string

const (
	WindowDays   AnalyticsWindow = "days"
	WindowWeeks  AnalyticsWindow = "weeks"
	WindowMonths AnalyticsWindow = "months"
)

// DefaultBuckets is the look-back used when the caller gives none.
func (w AnalyticsWindow) DefaultBuckets() int {
	switch w {
	case WindowDays:
		return 14
	case WindowWeeks, WindowMonths:
		return 6
	}
	return 0
}

// Valid reports whether w is a known window.
func (w AnalyticsWindow) Valid() bool {
	return w.DefaultBuckets() > 0
}

// AnalyticsBucket holds per-kind request counts created within one bucket.
type AnalyticsBucket struct {
	Date        string    `json:"date"`
	Start       time.Time `json:"start"`
	Guests      int       `json:"guests"`
	Sleepover   int       `json:"sleepover"`
	Maintenance int       `json:"maintenance"`
	Complaints  int       `json:"complaints"`
}

// Total sums all kinds in the bucket.
func (b AnalyticsBucket) Total() int {
	return b.Guests + b.Sleepover + b.Maintenance + b.Complaints
}

// AnalyticsSeries is a dense, chronologically ordered bucket list.
type AnalyticsSeries struct {
	Window      AnalyticsWindow   `json:"window"`
	Buckets     []AnalyticsBucket `json:"buckets"`
	Timezone    string            `json:"timezone"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// KindTally splits one kind's requests for a report day by outcome.
type KindTally struct {
	Kind           Kind   `json:"kind"`
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	Open           int    `json:"open"`
	Resolved       int    `json:"resolved"`
	Denied         int    `json:"denied"`
	ResolutionRate string `json:"resolutionRate"`
}

// ReportItem is one request listed in a detailed daily report.
type ReportItem struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	RequesterID string        `json:"userId"`
	Status      RequestStatus `json:"status"`
	Outcome     string        `json:"outcome"`
	Summary     string        `json:"summary"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// DailyReport summarises requests created on one calendar day.
type DailyReport struct {
	Date    string       `json:"date"`
	Tallies []KindTally  `json:"tallies"`
	Items   []ReportItem `json:"items,omitempty"`
}
