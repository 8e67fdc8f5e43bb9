package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

const (
	checkoutCollection = "checkout"
	checkoutPINID      = "pin"
)

// SettingsRepository stores the shared guest checkout PIN.
type SettingsRepository struct {
	store DocumentStore
}

func NewSettingsRepository(store DocumentStore) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// CheckoutPIN returns the persisted PIN, or ErrDocumentNotFound when none was ever saved.
func (r *SettingsRepository) CheckoutPIN(ctx context.Context) (*models.CheckoutSetting, error) {
	doc, err := r.store.Get(ctx, checkoutCollection, checkoutPINID)
	if err != nil {
		return nil, err
	}
	setting := &models.CheckoutSetting{
		PIN:       doc.String("code"),
		UpdatedBy: doc.String("updatedBy"),
	}
	setting.UpdatedAt, _ = doc.Time("updatedAt")
	return setting, nil
}

// SaveCheckoutPIN upserts the PIN document.
func (r *SettingsRepository) SaveCheckoutPIN(ctx context.Context, setting models.CheckoutSetting) error {
	fields := Document{
		"code":      setting.PIN,
		"updatedBy": setting.UpdatedBy,
		"updatedAt": setting.UpdatedAt,
	}
	err := r.store.Update(ctx, checkoutCollection, checkoutPINID, fields)
	if errors.Is(err, ErrDocumentNotFound) {
		fields["id"] = checkoutPINID
		if _, err = r.store.Create(ctx, checkoutCollection, fields); err != nil {
			return fmt.Errorf("create checkout pin: %w", err)
		}
		return nil
	}
	return err
}
