package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

func reportLister() *stubLister {
	day := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	complaint := models.Complaint{Title: "Noise", Category: "noise", Description: "Loud"}
	return &stubLister{byKind: map[models.Kind][]models.Request{
		models.KindComplaint: {
			{ID: "c1", Status: models.StatusResolved, Payload: complaint, CreatedAt: day},
			{ID: "c2", Status: models.StatusPending, Payload: complaint, CreatedAt: day.Add(time.Hour)},
			{ID: "c3", Status: models.StatusInProgress, Payload: complaint, CreatedAt: day.Add(2 * time.Hour)},
			{ID: "c4", Status: models.StatusRejected, Payload: complaint, CreatedAt: day.Add(3 * time.Hour)},
			{ID: "c5", Status: models.StatusResolved, Payload: complaint, CreatedAt: day.AddDate(0, 0, 1)},
		},
		models.KindGuest: {
			{ID: "g1", Status: models.StatusCheckedOut, Payload: models.GuestVisit{FirstName: "Sipho", LastName: "Mokoena", RoomNumber: "A4"}, CreatedAt: day},
		},
	}}
}

func TestDailyReportTalliesOutcomes(t *testing.T) {
	svc := NewReportService(reportLister(), time.UTC)

	report, err := svc.Daily(context.Background(), "2024-06-10", false)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", report.Date)
	require.Len(t, report.Tallies, len(models.Kinds))
	assert.Empty(t, report.Items)

	byKind := map[models.Kind]models.KindTally{}
	for _, tally := range report.Tallies {
		byKind[tally.Kind] = tally
	}
	complaints := byKind[models.KindComplaint]
	assert.Equal(t, 4, complaints.Total)
	assert.Equal(t, 1, complaints.Pending)
	assert.Equal(t, 1, complaints.Open)
	assert.Equal(t, 1, complaints.Resolved)
	assert.Equal(t, 1, complaints.Denied)
	assert.Equal(t, "25.00", complaints.ResolutionRate)

	assert.Equal(t, "100.00", byKind[models.KindGuest].ResolutionRate)
	assert.Equal(t, "0.00", byKind[models.KindMaintenance].ResolutionRate)
	assert.Zero(t, byKind[models.KindMaintenance].Total)
}

func TestDailyReportDetailedListsItems(t *testing.T) {
	svc := NewReportService(reportLister(), time.UTC)

	report, err := svc.Daily(context.Background(), "2024-06-10", true)
	require.NoError(t, err)
	require.Len(t, report.Items, 5)
	for _, item := range report.Items {
		if item.ID == "g1" {
			assert.Equal(t, OutcomeResolved, item.Outcome)
			assert.Equal(t, "Sipho Mokoena visiting room A4", item.Summary)
		}
	}
}

func TestDailyReportDefaultsToToday(t *testing.T) {
	svc := NewReportService(reportLister(), time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 6, 11, 23, 0, 0, 0, time.UTC) }

	report, err := svc.Daily(context.Background(), "", false)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11", report.Date)
	for _, tally := range report.Tallies {
		if tally.Kind == models.KindComplaint {
			assert.Equal(t, 1, tally.Total)
		}
	}
}

func TestDailyReportRejectsBadDate(t *testing.T) {
	svc := NewReportService(reportLister(), time.UTC)
	_, err := svc.Daily(context.Background(), "10/06/2024", false)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestOutcome(t *testing.T) {
	cases := map[models.RequestStatus]string{
		models.StatusPending:    OutcomePending,
		models.StatusActive:     OutcomeOpen,
		models.StatusApproved:   OutcomeOpen,
		models.StatusInProgress: OutcomeOpen,
		models.StatusCompleted:  OutcomeResolved,
		models.StatusResolved:   OutcomeResolved,
		models.StatusCheckedOut: OutcomeResolved,
		models.StatusRejected:   OutcomeDenied,
		models.StatusDeclined:   OutcomeDenied,
	}
	for status, want := range cases {
		assert.Equal(t, want, Outcome(status), string(status))
	}
}

func TestResolutionRateRounding(t *testing.T) {
	assert.Equal(t, "33.33", resolutionRate(1, 3))
	assert.Equal(t, "66.67", resolutionRate(2, 3))
	assert.Equal(t, "0.00", resolutionRate(0, 0))
}
