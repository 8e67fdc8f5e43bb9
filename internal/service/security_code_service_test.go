package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/pkg/config"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

func TestCheckoutPINRotationPersists(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	ctx := context.Background()

	svc := NewSecurityCodeService(repository.NewSettingsRepository(store), config.SecurityConfig{CheckoutPIN: "1005"}, nil, nil)
	require.NoError(t, svc.Init(ctx))
	assert.True(t, svc.Initialized())
	assert.True(t, svc.VerifyCheckoutPIN("1005"))

	setting, err := svc.RotateCheckoutPIN(ctx, admin, RotatePINRequest{PIN: "975310"})
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, setting.UpdatedBy)
	assert.False(t, svc.VerifyCheckoutPIN("1005"))
	assert.True(t, svc.VerifyCheckoutPIN("975310"))

	restarted := NewSecurityCodeService(repository.NewSettingsRepository(store), config.SecurityConfig{CheckoutPIN: "1005"}, nil, nil)
	require.NoError(t, restarted.Init(ctx))
	assert.True(t, restarted.VerifyCheckoutPIN("975310"))
	assert.Equal(t, admin.UserID, restarted.CheckoutSetting().UpdatedBy)
}

func TestRotateCheckoutPINValidates(t *testing.T) {
	svc := NewSecurityCodeService(nil, config.SecurityConfig{CheckoutPIN: "1005"}, nil, nil)
	for _, pin := range []string{"", "12", "12ab", "1234567890123"} {
		_, err := svc.RotateCheckoutPIN(context.Background(), admin, RotatePINRequest{PIN: pin})
		assert.ErrorIs(t, err, appErrors.ErrValidation, pin)
	}
	assert.True(t, svc.VerifyCheckoutPIN("1005"))
}

func TestEmptyCheckoutPINNeverMatches(t *testing.T) {
	svc := NewSecurityCodeService(nil, config.SecurityConfig{}, nil, nil)
	assert.False(t, svc.VerifyCheckoutPIN(""))
	assert.False(t, svc.VerifyCheckoutPIN("1005"))
}

func TestIssueSleepoverCode(t *testing.T) {
	random := NewSecurityCodeService(nil, config.SecurityConfig{CodeLength: 6}, nil, nil)
	code, err := random.IssueSleepoverCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	short := NewSecurityCodeService(nil, config.SecurityConfig{CodeLength: 2}, nil, nil)
	code, err = short.IssueSleepoverCode()
	require.NoError(t, err)
	assert.Len(t, code, 4)

	fixed := NewSecurityCodeService(nil, config.SecurityConfig{SleepoverFixedCode: "1234"}, nil, nil)
	code, err = fixed.IssueSleepoverCode()
	require.NoError(t, err)
	assert.Equal(t, "1234", code)
}
