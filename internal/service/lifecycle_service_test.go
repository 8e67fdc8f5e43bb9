package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/pkg/config"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type lifecycleFixture struct {
	svc           *LifecycleService
	requests      *repository.RequestRepository
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	codes         *SecurityCodeService
	clock         *testClock
}

var (
	student  = models.Actor{UserID: "student-1", Role: models.RoleStudent, Name: "Lerato Dlamini"}
	other    = models.Actor{UserID: "student-2", Role: models.RoleStudent}
	admin    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	guard    = models.Actor{UserID: "guard-1", Role: models.RoleSecurity}
	superAdm = models.Actor{UserID: "root", Role: models.RoleSuperAdmin}
)

func newLifecycleFixture(t *testing.T, secCfg config.SecurityConfig, opts ...LifecycleOption) *lifecycleFixture {
	t.Helper()
	store := repository.NewMemoryDocumentStore()
	f := &lifecycleFixture{
		requests:      repository.NewRequestRepository(store),
		notifications: repository.NewNotificationRepository(store),
		users:         repository.NewUserRepository(store),
		clock:         &testClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	if secCfg.CheckoutPIN == "" {
		secCfg.CheckoutPIN = "1005"
	}
	f.codes = NewSecurityCodeService(repository.NewSettingsRepository(store), secCfg, nil, nil)
	require.NoError(t, f.codes.Init(context.Background()))

	notifier := NewNotificationService(f.notifications, nil, nil, nil, nil)
	opts = append([]LifecycleOption{WithLifecycleClock(f.clock.Now), WithCommunicationLog(f.users)}, opts...)
	f.svc = NewLifecycleService(f.requests, notifier, f.codes, nil, nil, opts...)
	return f
}

func sleepoverPayload() models.SleepoverRequest {
	return models.SleepoverRequest{
		GuestName:    "Thabo",
		GuestSurname: "Nkosi",
		RoomNumber:   "B12",
		StartDate:    "2024-06-01",
		EndDate:      "2024-06-03",
	}
}

func guestPayload() models.GuestVisit {
	return models.GuestVisit{FirstName: "Sipho", LastName: "Mokoena", PhoneNumber: "0821234567", RoomNumber: "A4"}
}

func maintenancePayload() models.MaintenanceTicket {
	return models.MaintenanceTicket{Title: "Leaking tap", Category: "bathroom", Description: "Drips all night", RoomNumber: "C3", Priority: "high"}
}

func complaintPayload() models.Complaint {
	return models.Complaint{Title: "Noise after hours", Description: "Music at 2am", Category: "noise"}
}

func strPtr(s string) *string { return &s }

func (f *lifecycleFixture) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	items, err := f.notifications.ListForUser(context.Background(), userID, models.NotificationFilter{})
	require.NoError(t, err)
	return items
}

func TestSubmitRejectsMissingFieldsWithoutWriting(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()

	cases := map[models.Kind]models.RequestPayload{
		models.KindGuest:       models.GuestVisit{FirstName: "Sipho", PhoneNumber: "1", RoomNumber: "A4"},
		models.KindSleepover:   models.SleepoverRequest{GuestName: "Thabo", RoomNumber: "B12", StartDate: "2024-06-01", EndDate: "2024-06-03"},
		models.KindMaintenance: models.MaintenanceTicket{Title: "Tap", Category: "bathroom", RoomNumber: "C3", Priority: "low"},
		models.KindComplaint:   models.Complaint{Description: "Loud", Category: "noise"},
	}
	for kind, payload := range cases {
		t.Run(string(kind), func(t *testing.T) {
			_, err := f.svc.Submit(ctx, kind, student.UserID, payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)

			items, err := f.requests.List(ctx, kind, models.RequestFilter{})
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestSubmitSleepoverRejectsInvertedDates(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	payload := sleepoverPayload()
	payload.StartDate, payload.EndDate = "2024-06-05", "2024-06-03"

	_, err := f.svc.Submit(context.Background(), models.KindSleepover, student.UserID, payload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details["fields"], "endDate")
}

func TestSubmitRejectsBlankRequiredFields(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()

	sleepover := sleepoverPayload()
	sleepover.GuestName = "   "
	_, err := f.svc.Submit(ctx, models.KindSleepover, student.UserID, sleepover)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "guestName must not be blank", appErr.Message)

	ticket := maintenancePayload()
	ticket.RoomNumber = "\t"
	_, err = f.svc.Submit(ctx, models.KindMaintenance, student.UserID, ticket)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	for _, kind := range []models.Kind{models.KindSleepover, models.KindMaintenance} {
		items, err := f.requests.List(ctx, kind, models.RequestFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func TestSubmitRejectsPayloadOfAnotherKind(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	_, err := f.svc.Submit(context.Background(), models.KindComplaint, student.UserID, maintenancePayload())
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubmitThenGetRoundTrip(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()

	cases := map[models.Kind]models.RequestPayload{
		models.KindGuest:       guestPayload(),
		models.KindSleepover:   sleepoverPayload(),
		models.KindMaintenance: maintenancePayload(),
		models.KindComplaint:   complaintPayload(),
	}
	for kind, payload := range cases {
		t.Run(string(kind), func(t *testing.T) {
			created, err := f.svc.Submit(ctx, kind, student.UserID, payload)
			require.NoError(t, err)
			assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

			got, err := f.svc.Get(ctx, kind, created.ID, student)
			require.NoError(t, err)
			assert.Equal(t, initialStatus(kind), got.Status)
			assert.Equal(t, payload, got.Payload)
			assert.Equal(t, student.UserID, got.RequesterID)
			assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
			assert.Empty(t, f.notificationsFor(t, student.UserID), "submission does not notify")
		})
	}
}

func TestSleepoverApproveScenario(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{CodeLength: 6})
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindSleepover, student.UserID, sleepoverPayload())
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	approved, err := f.svc.Transition(ctx, models.KindSleepover, req.ID, admin, TransitionRequest{
		Action:   models.ActionApprove,
		Response: strPtr("enjoy your stay"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.True(t, approved.IsActive)
	assert.Equal(t, "enjoy your stay", approved.AdminResponse)
	assert.Len(t, approved.SecurityCode, 6)
	require.NotNil(t, approved.CheckInTime)
	assert.True(t, approved.UpdatedAt.After(req.UpdatedAt))

	stored, err := f.requests.Get(ctx, models.KindSleepover, req.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.SecurityCode, stored.SecurityCode)
	assert.True(t, stored.IsActive)

	notes := f.notificationsFor(t, student.UserID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Title, "Sleepover")
	assert.Contains(t, notes[0].Message, "approved")
	assert.Equal(t, models.NotificationSleepover, notes[0].Type)
}

func TestSleepoverSignOutRequiresMatchingCode(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{SleepoverFixedCode: "7788"})
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindSleepover, student.UserID, sleepoverPayload())
	require.NoError(t, err)
	approved, err := f.svc.Transition(ctx, models.KindSleepover, req.ID, admin, TransitionRequest{Action: models.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, "7788", approved.SecurityCode)

	_, err = f.svc.Transition(ctx, models.KindSleepover, req.ID, guard, TransitionRequest{Action: models.ActionSignOut, Code: "0000"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCode)
	_, err = f.svc.Transition(ctx, models.KindSleepover, req.ID, guard, TransitionRequest{Action: models.ActionSignOut})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCode)

	stored, err := f.requests.Get(ctx, models.KindSleepover, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.True(t, stored.IsActive)

	f.clock.Advance(time.Hour)
	out, err := f.svc.Transition(ctx, models.KindSleepover, req.ID, guard, TransitionRequest{Action: models.ActionSignOut, Code: "7788"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, out.Status)
	assert.False(t, out.IsActive)
	require.NotNil(t, out.SignOutTime)
	assert.Empty(t, out.SecurityCode, "security staff do not see the code")
}

func TestGuestCheckoutWithPIN(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{CheckoutPIN: "2468"})
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &models.User{ID: student.UserID, Email: "s@res.test", Role: models.RoleStudent, CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}))

	req, err := f.svc.Submit(ctx, models.KindGuest, student.UserID, guestPayload())
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, req.Status)
	assert.True(t, req.IsActive)

	_, err = f.svc.Transition(ctx, models.KindGuest, req.ID, student, TransitionRequest{Action: models.ActionCheckout, Code: "1005"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCode)

	out, err := f.svc.Transition(ctx, models.KindGuest, req.ID, student, TransitionRequest{Action: models.ActionCheckout, Code: "2468"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, out.Status)
	assert.False(t, out.IsActive)
	require.NotNil(t, out.CheckOutTime)

	_, err = f.svc.Transition(ctx, models.KindGuest, req.ID, student, TransitionRequest{Action: models.ActionCheckout, Code: "2468"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	user, err := f.users.Get(ctx, student.UserID)
	require.NoError(t, err)
	require.Len(t, user.CommunicationLog, 1)
	assert.Equal(t, "Guest Sipho Mokoena checked out successfully", user.CommunicationLog[0].Message)
	assert.Len(t, f.notificationsFor(t, student.UserID), 1)
}

func TestTransitionUpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.NoError(t, err)

	started, err := f.svc.Transition(ctx, models.KindComplaint, req.ID, admin, TransitionRequest{Action: models.ActionStart})
	require.NoError(t, err)
	assert.True(t, started.UpdatedAt.After(req.UpdatedAt))
	assert.NotEmpty(t, started.AdminResponse)

	resolved, err := f.svc.Transition(ctx, models.KindComplaint, req.ID, admin, TransitionRequest{Action: models.ActionResolve, Response: strPtr("Spoke to the residents")})
	require.NoError(t, err)
	assert.True(t, resolved.UpdatedAt.After(started.UpdatedAt))
	assert.True(t, resolved.UpdatedAt.After(resolved.CreatedAt))
	assert.False(t, resolved.IsActive)

	notes := f.notificationsFor(t, student.UserID)
	require.Len(t, notes, 2)
	messages := []string{notes[0].Message, notes[1].Message}
	assert.Contains(t, strings.Join(messages, "|"), "resolved")
	assert.Contains(t, strings.Join(messages, "|"), "in_progress")
}

func TestBlankResponseKeepsAdminResponse(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindMaintenance, student.UserID, maintenancePayload())
	require.NoError(t, err)

	started, err := f.svc.Transition(ctx, models.KindMaintenance, req.ID, admin, TransitionRequest{Action: models.ActionStart, Response: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)
	assert.NotEmpty(t, started.AdminResponse)

	completed, err := f.svc.Transition(ctx, models.KindMaintenance, req.ID, admin, TransitionRequest{Action: models.ActionComplete, Response: strPtr("   ")})
	require.NoError(t, err)
	stored, err := f.requests.Get(ctx, models.KindMaintenance, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotEmpty(t, strings.TrimSpace(stored.AdminResponse))
	assert.Equal(t, stored.AdminResponse, completed.AdminResponse)

	complaint, err := f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, models.KindComplaint, complaint.ID, admin, TransitionRequest{Action: models.ActionStart, Response: strPtr("  Plumber booked  ")})
	require.NoError(t, err)
	resolved, err := f.svc.Transition(ctx, models.KindComplaint, complaint.ID, admin, TransitionRequest{Action: models.ActionResolve, Response: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Plumber booked", resolved.AdminResponse)
}

func TestEveryTransitionNotifiesRequesterOnce(t *testing.T) {
	ctx := context.Background()
	paths := []struct {
		kind    models.Kind
		payload models.RequestPayload
		steps   []TransitionRequest
		final   models.RequestStatus
	}{
		{models.KindMaintenance, maintenancePayload(), []TransitionRequest{{Action: models.ActionStart}, {Action: models.ActionComplete}}, models.StatusCompleted},
		{models.KindMaintenance, maintenancePayload(), []TransitionRequest{{Action: models.ActionStart}, {Action: models.ActionReject}}, models.StatusRejected},
		{models.KindComplaint, complaintPayload(), []TransitionRequest{{Action: models.ActionReject}}, models.StatusRejected},
		{models.KindSleepover, sleepoverPayload(), []TransitionRequest{{Action: models.ActionReject}}, models.StatusRejected},
		{models.KindGuest, guestPayload(), []TransitionRequest{{Action: models.ActionDecline}}, models.StatusDeclined},
	}
	for _, p := range paths {
		t.Run(string(p.kind)+"-"+string(p.final), func(t *testing.T) {
			f := newLifecycleFixture(t, config.SecurityConfig{})
			req, err := f.svc.Submit(ctx, p.kind, student.UserID, p.payload)
			require.NoError(t, err)

			var last *models.Request
			for i, step := range p.steps {
				last, err = f.svc.Transition(ctx, p.kind, req.ID, admin, step)
				require.NoError(t, err)
				notes := f.notificationsFor(t, student.UserID)
				require.Len(t, notes, i+1)
				found := false
				for _, n := range notes {
					assert.Equal(t, student.UserID, n.UserID)
					found = found || strings.Contains(n.Message, string(last.Status))
				}
				assert.True(t, found, "no notification mentions %s", last.Status)
			}
			assert.Equal(t, p.final, last.Status)
			assert.False(t, last.IsActive)
			assert.Empty(t, f.notificationsFor(t, admin.UserID))
		})
	}
}

func TestTransitionErrors(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()
	req, err := f.svc.Submit(ctx, models.KindMaintenance, student.UserID, maintenancePayload())
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, models.KindMaintenance, "missing", admin, TransitionRequest{Action: models.ActionStart})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Transition(ctx, models.KindMaintenance, req.ID, student, TransitionRequest{Action: models.ActionStart})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Transition(ctx, models.KindMaintenance, req.ID, admin, TransitionRequest{Action: models.ActionComplete})
	require.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	assert.Equal(t, models.StatusPending, appErrors.FromError(err).Details["currentStatus"])

	_, err = f.svc.Transition(ctx, models.KindMaintenance, req.ID, admin, TransitionRequest{Action: models.ActionSignOut})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = f.svc.Transition(ctx, models.KindMaintenance, req.ID, admin, TransitionRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	stored, err := f.requests.Get(ctx, models.KindMaintenance, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Empty(t, f.notificationsFor(t, student.UserID))
}

func TestTypedAdminScopedToKinds(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()
	maintenanceAdmin := models.Actor{UserID: "m-admin", Role: models.RoleAdmin, AdminType: models.AdminTypeMaintenance}

	complaint, err := f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, models.KindComplaint, complaint.ID, maintenanceAdmin, TransitionRequest{Action: models.ActionStart})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	ticket, err := f.svc.Submit(ctx, models.KindMaintenance, student.UserID, maintenancePayload())
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, models.KindMaintenance, ticket.ID, maintenanceAdmin, TransitionRequest{Action: models.ActionStart})
	assert.NoError(t, err)

	_, err = f.svc.Transition(ctx, models.KindComplaint, complaint.ID, superAdm, TransitionRequest{Action: models.ActionStart})
	assert.NoError(t, err)
}

type failingEmitter struct{ calls int }

func (e *failingEmitter) Emit(context.Context, string, models.NotificationType, string, string) (*models.Notification, error) {
	e.calls++
	return nil, errors.New("notification store down")
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	emitter := &failingEmitter{}
	f.svc.notifier = emitter
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.NoError(t, err)
	out, err := f.svc.Transition(ctx, models.KindComplaint, req.ID, admin, TransitionRequest{Action: models.ActionStart})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, out.Status)
	assert.Equal(t, 1, emitter.calls)
}

// brokenStore reads through to a working repository but fails every write.
type brokenStore struct {
	*repository.RequestRepository
	writes int
}

func (b *brokenStore) Create(context.Context, *models.Request) error {
	b.writes++
	return errors.New("connection refused")
}

func (b *brokenStore) Transition(context.Context, models.Kind, string, models.RequestStatus, repository.RequestChanges) error {
	b.writes++
	return errors.New("connection refused")
}

func TestStoreFailureIsRetryableAndSkipsSideEffects(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	emitter := &failingEmitter{}
	f.svc.notifier = emitter
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, models.KindSleepover, student.UserID, sleepoverPayload())
	require.NoError(t, err)

	broken := &brokenStore{RequestRepository: f.requests}
	f.svc.repo = broken

	_, err = f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
	assert.True(t, appErr.Retryable())
	complaints, err := f.requests.List(ctx, models.KindComplaint, models.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, complaints)

	_, err = f.svc.Transition(ctx, models.KindSleepover, req.ID, admin, TransitionRequest{Action: models.ActionApprove, Response: strPtr("enjoy your stay")})
	require.Error(t, err)
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
	assert.True(t, appErr.Retryable())
	assert.Equal(t, 2, broken.writes)

	stored, err := f.requests.Get(ctx, models.KindSleepover, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.False(t, stored.IsActive)
	assert.Empty(t, stored.SecurityCode)
	assert.Empty(t, stored.AdminResponse)
	assert.True(t, req.UpdatedAt.Equal(stored.UpdatedAt))

	assert.Equal(t, 0, emitter.calls)
	assert.Empty(t, f.notificationsFor(t, student.UserID))
}

func TestConcurrentTransitionsHaveSingleWinner(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()
	req, err := f.svc.Submit(ctx, models.KindSleepover, student.UserID, sleepoverPayload())
	require.NoError(t, err)

	actions := []models.Action{models.ActionApprove, models.ActionReject, models.ActionApprove, models.ActionReject}
	errs := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, a := range actions {
		wg.Add(1)
		go func(i int, a models.Action) {
			defer wg.Done()
			_, errs[i] = f.svc.Transition(ctx, models.KindSleepover, req.ID, admin, TransitionRequest{Action: a})
		}(i, a)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		code := appErrors.FromError(err).Code
		assert.Contains(t, []string{appErrors.ErrConflict.Code, appErrors.ErrInvalidTransition.Code}, code)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, f.notificationsFor(t, student.UserID), 1)
}

func TestListScopesResidentsToOwnRequests(t *testing.T) {
	f := newLifecycleFixture(t, config.SecurityConfig{})
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, models.KindComplaint, student.UserID, complaintPayload())
	require.NoError(t, err)
	theirs, err := f.svc.Submit(ctx, models.KindComplaint, other.UserID, complaintPayload())
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, models.KindComplaint, models.RequestFilter{RequesterID: other.UserID}, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, student.UserID, mine[0].RequesterID)

	all, err := f.svc.List(ctx, models.KindComplaint, models.RequestFilter{}, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.List(ctx, models.KindComplaint, models.RequestFilter{}, guard)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Get(ctx, models.KindComplaint, theirs.ID, student)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.List(ctx, models.KindComplaint, models.RequestFilter{SortBy: "payload"}, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestActionsFor(t *testing.T) {
	assert.Equal(t, []models.Action{models.ActionApprove, models.ActionReject}, ActionsFor(models.KindSleepover, models.StatusPending))
	assert.Equal(t, []models.Action{models.ActionComplete, models.ActionReject}, ActionsFor(models.KindMaintenance, models.StatusInProgress))
	assert.Empty(t, ActionsFor(models.KindGuest, models.StatusCheckedOut))
}
