package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/export"
)

// Report outcome buckets.
const (
	OutcomePending  = "pending"
	OutcomeOpen     = "open"
	OutcomeResolved = "resolved"
	OutcomeDenied   = "denied"
)

// ReportService summarises a calendar day of requests for the back office.
type ReportService struct {
	requests requestLister
	loc      *time.Location
	now      func() time.Time
}

// NewReportService constructs the service. Days are interpreted in loc.
func NewReportService(requests requestLister, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{requests: requests, loc: loc, now: time.Now}
}

// Daily tallies requests created on date (YYYY-MM-DD, empty for today) per kind and outcome.
func (s *ReportService) Daily(ctx context.Context, date string, detailed bool) (*models.DailyReport, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	from := day.UTC()
	to := day.AddDate(0, 0, 1).Add(-time.Microsecond).UTC()

	report := &models.DailyReport{Date: day.Format("2006-01-02")}
	for _, kind := range models.Kinds {
		items, err := s.requests.List(ctx, kind, models.RequestFilter{
			CreatedFrom: &from,
			CreatedTo:   &to,
			SortBy:      "createdAt",
		})
		if err != nil {
			return nil, appErrors.Unavailable(err, "failed to load requests for report")
		}
		tally := models.KindTally{Kind: kind}
		for _, item := range items {
			outcome := Outcome(item.Status)
			tally.Total++
			switch outcome {
			case OutcomePending:
				tally.Pending++
			case OutcomeOpen:
				tally.Open++
			case OutcomeResolved:
				tally.Resolved++
			case OutcomeDenied:
				tally.Denied++
			}
			if detailed {
				report.Items = append(report.Items, models.ReportItem{
					ID:          item.ID,
					Kind:        kind,
					RequesterID: item.RequesterID,
					Status:      item.Status,
					Outcome:     outcome,
					Summary:     summarise(item.Payload),
					CreatedAt:   item.CreatedAt,
				})
			}
		}
		tally.ResolutionRate = resolutionRate(tally.Resolved, tally.Total)
		report.Tallies = append(report.Tallies, tally)
	}
	return report, nil
}

func (s *ReportService) parseDay(date string) (time.Time, error) {
	if date == "" {
		y, m, d := s.now().In(s.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, s.loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, fieldError("date", "date must use the YYYY-MM-DD format")
	}
	return day, nil
}

// Outcome folds the per-kind status vocabularies into report buckets.
func Outcome(status models.RequestStatus) string {
	switch status {
	case models.StatusPending:
		return OutcomePending
	case models.StatusInProgress, models.StatusApproved, models.StatusActive:
		return OutcomeOpen
	case models.StatusCompleted, models.StatusResolved, models.StatusCheckedOut:
		return OutcomeResolved
	case models.StatusRejected, models.StatusDeclined:
		return OutcomeDenied
	}
	return OutcomePending
}

// resolutionRate is resolved/total as a percentage with two decimals.
func resolutionRate(resolved, total int) string {
	if total == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.NewFromInt(int64(resolved)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(2)
}

func summarise(payload models.RequestPayload) string {
	switch p := payload.(type) {
	case models.GuestVisit:
		return fmt.Sprintf("%s %s visiting room %s", p.FirstName, p.LastName, p.RoomNumber)
	case models.SleepoverRequest:
		return fmt.Sprintf("%s %s in room %s, %s to %s", p.GuestName, p.GuestSurname, p.RoomNumber, p.StartDate, p.EndDate)
	case models.MaintenanceTicket:
		return fmt.Sprintf("%s (%s, %s priority)", p.Title, p.Category, p.Priority)
	case models.Complaint:
		return fmt.Sprintf("%s (%s)", p.Title, p.Category)
	}
	return ""
}

// ReportTable lays a daily report out for the CSV and PDF renderers.
func ReportTable(r *models.DailyReport) export.Table {
	t := export.Table{
		Title:    "Daily Residence Report",
		Subtitle: r.Date,
		Columns:  []string{"Kind", "Total", "Pending", "Open", "Resolved", "Denied", "Resolution %"},
	}
	for _, tally := range r.Tallies {
		t.Rows = append(t.Rows, []string{
			kindLabel(tally.Kind),
			strconv.Itoa(tally.Total),
			strconv.Itoa(tally.Pending),
			strconv.Itoa(tally.Open),
			strconv.Itoa(tally.Resolved),
			strconv.Itoa(tally.Denied),
			tally.ResolutionRate,
		})
	}
	return t
}
