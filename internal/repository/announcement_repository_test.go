package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

func TestAnnouncementRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(NewMemoryDocumentStore())
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	expires := now.Add(48 * time.Hour)

	a := &models.Announcement{Title: "Water outage", Content: "Tuesday 9-11", Status: models.AnnouncementActive, ExpiresAt: &expires, CreatedBy: "admin", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, a))

	inactive := models.AnnouncementInactive
	require.NoError(t, repo.Update(ctx, a.ID, AnnouncementUpdate{Status: &inactive, ClearExpiry: true, UpdatedAt: now.Add(time.Hour)}))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementInactive, got.Status)
	assert.Nil(t, got.ExpiresAt)
	assert.Equal(t, "Water outage", got.Title)

	active, err := repo.List(ctx, models.AnnouncementActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSettingsRepositoryUpsertsPIN(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(NewMemoryDocumentStore())

	_, err := repo.CheckoutPIN(ctx)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveCheckoutPIN(ctx, models.CheckoutSetting{PIN: "2468", UpdatedBy: "admin", UpdatedAt: now}))
	require.NoError(t, repo.SaveCheckoutPIN(ctx, models.CheckoutSetting{PIN: "1357", UpdatedBy: "admin", UpdatedAt: now.Add(time.Minute)}))

	got, err := repo.CheckoutPIN(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1357", got.PIN)
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Minute)))
}
