package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

func TestNotificationRepositoryReadFlow(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(NewMemoryDocumentStore())
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		n := &models.Notification{UserID: "u1", Title: "Complaint Update", Message: "m", Type: models.NotificationComplaint, CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base}
		require.NoError(t, repo.Create(ctx, n))
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: "u2", Title: "x", CreatedAt: base, UpdatedAt: base}))

	list, err := repo.ListForUser(ctx, "u1", models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[2].CreatedAt))

	require.NoError(t, repo.MarkRead(ctx, list[0].ID, base.Add(time.Hour)))
	count, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := repo.MarkAllRead(ctx, "u1", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	count, err = repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	other, err := repo.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing", base), ErrDocumentNotFound)
}
