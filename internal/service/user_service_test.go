package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type userFixture struct {
	svc           *UserService
	users         *repository.UserRepository
	notifications *repository.NotificationRepository
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	store := repository.NewMemoryDocumentStore()
	f := &userFixture{
		users:         repository.NewUserRepository(store),
		notifications: repository.NewNotificationRepository(store),
	}
	notifier := NewNotificationService(f.notifications, nil, nil, nil, nil)
	f.svc = NewUserService(f.users, notifier, nil, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, u := range []*models.User{
		{ID: "newbie-1", Email: "n1@res.test", Name: "Ayanda", Surname: "Zulu", Role: models.RoleNewbie, ApplicationStatus: models.ApplicationPending, CreatedAt: created, UpdatedAt: created},
		{ID: "newbie-2", Email: "n2@res.test", Name: "Kea", Role: models.RoleNewbie, ApplicationStatus: models.ApplicationDenied, CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour)},
		{ID: "student-1", Email: "s1@res.test", Role: models.RoleStudent, ApplicationStatus: models.ApplicationAccepted, CreatedAt: created, UpdatedAt: created},
	} {
		require.NoError(t, f.users.Create(context.Background(), u))
	}
	return f
}

func TestListApplications(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	all, err := f.svc.ListApplications(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.ListApplications(ctx, models.ApplicationPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "newbie-1", pending[0].ID)

	_, err = f.svc.ListApplications(ctx, "maybe", 0)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDecideAcceptPromotesToStudent(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Decide(ctx, admin, "newbie-1", DecisionRequest{Status: models.ApplicationAccepted, Message: "Room B4 is yours"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, user.ApplicationStatus)
	assert.Equal(t, models.RoleStudent, user.Role)

	stored, err := f.users.Get(ctx, "newbie-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, stored.Role)
	require.Len(t, stored.CommunicationLog, 1)
	assert.Equal(t, "Application accepted: Room B4 is yours", stored.CommunicationLog[0].Message)
	assert.Equal(t, admin.UserID, stored.CommunicationLog[0].SentBy)

	notes, err := f.notifications.ListForUser(ctx, "newbie-1", models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Application Approved", notes[0].Title)
	assert.Equal(t, models.NotificationMessage, notes[0].Type)

	_, err = f.svc.Decide(ctx, admin, "newbie-1", DecisionRequest{Status: models.ApplicationDenied})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestDecideDenyKeepsRole(t *testing.T) {
	f := newUserFixture(t)
	user, err := f.svc.Decide(context.Background(), admin, "newbie-1", DecisionRequest{Status: models.ApplicationDenied})
	require.NoError(t, err)
	assert.Equal(t, models.RoleNewbie, user.Role)
	assert.Equal(t, "Application denied", user.CommunicationLog[0].Message)
}

func TestDecideErrors(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Decide(ctx, admin, "newbie-1", DecisionRequest{Status: "pending"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Decide(ctx, admin, "ghost", DecisionRequest{Status: models.ApplicationAccepted})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAppendMessage(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	resident := models.Actor{UserID: "student-1", Role: models.RoleStudent}

	user, err := f.svc.AppendMessage(ctx, resident, "student-1", MessageRequest{Message: "When is the water back?"})
	require.NoError(t, err)
	require.Len(t, user.CommunicationLog, 1)
	notes, err := f.notifications.ListForUser(ctx, "student-1", models.NotificationFilter{})
	require.NoError(t, err)
	assert.Empty(t, notes, "writing to your own log does not notify you")

	user, err = f.svc.AppendMessage(ctx, admin, "student-1", MessageRequest{Message: "Tomorrow at 10"})
	require.NoError(t, err)
	require.Len(t, user.CommunicationLog, 2)
	assert.Equal(t, "Tomorrow at 10", user.CommunicationLog[1].Message)
	notes, err = f.notifications.ListForUser(ctx, "student-1", models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "New Message", notes[0].Title)

	_, err = f.svc.AppendMessage(ctx, resident, "newbie-1", MessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.AppendMessage(ctx, resident, "student-1", MessageRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGetProfileOwnership(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, models.Actor{UserID: "student-1", Role: models.RoleStudent}, "newbie-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	user, err := f.svc.Get(ctx, admin, "newbie-1")
	require.NoError(t, err)
	assert.Equal(t, "Ayanda Zulu", user.FullName())
}
