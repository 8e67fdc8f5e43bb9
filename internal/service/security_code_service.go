package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/pkg/config"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type checkoutSettingStore interface {
	CheckoutPIN(ctx context.Context) (*models.CheckoutSetting, error)
	SaveCheckoutPIN(ctx context.Context, setting models.CheckoutSetting) error
}

// RotatePINRequest is the payload for replacing the shared checkout PIN.
type RotatePINRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=12"`
}

// SecurityCodeService owns the shared guest checkout PIN and issues sleepover sign-out codes.
type SecurityCodeService struct {
	store     checkoutSettingStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.RWMutex
	setting     models.CheckoutSetting
	fixedCode   string
	codeLength  int
	initialized bool
}

// NewSecurityCodeService seeds the codes from configuration. Call Init before serving traffic
// so a PIN persisted by an earlier rotation takes precedence.
func NewSecurityCodeService(store checkoutSettingStore, cfg config.SecurityConfig, validate *validator.Validate, logger *zap.Logger) *SecurityCodeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	length := cfg.CodeLength
	if length < 4 {
		length = 4
	}
	return &SecurityCodeService{
		store:      store,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		setting:    models.CheckoutSetting{PIN: cfg.CheckoutPIN},
		fixedCode:  cfg.SleepoverFixedCode,
		codeLength: length,
	}
}

// Init loads the persisted checkout PIN, if any.
func (s *SecurityCodeService) Init(ctx context.Context) error {
	if s.store == nil {
		s.markInitialized()
		return nil
	}
	stored, err := s.store.CheckoutPIN(ctx)
	switch {
	case errors.Is(err, repository.ErrDocumentNotFound):
		s.logger.Info("no persisted checkout pin, using configured value")
	case err != nil:
		return appErrors.Unavailable(err, "failed to load checkout pin")
	case stored.PIN != "":
		s.mu.Lock()
		s.setting = *stored
		s.mu.Unlock()
	}
	s.markInitialized()
	return nil
}

func (s *SecurityCodeService) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

// Initialized reports whether Init has completed.
func (s *SecurityCodeService) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// CheckoutSetting returns the current PIN and who last changed it.
func (s *SecurityCodeService) CheckoutSetting() models.CheckoutSetting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setting
}

// VerifyCheckoutPIN compares supplied against the shared guest checkout PIN.
func (s *SecurityCodeService) VerifyCheckoutPIN(supplied string) bool {
	s.mu.RLock()
	pin := s.setting.PIN
	s.mu.RUnlock()
	return codesEqual(pin, supplied)
}

// RotateCheckoutPIN persists a new shared PIN and swaps it in.
func (s *SecurityCodeService) RotateCheckoutPIN(ctx context.Context, actor models.Actor, req RotatePINRequest) (*models.CheckoutSetting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	setting := models.CheckoutSetting{PIN: req.PIN, UpdatedBy: actor.UserID, UpdatedAt: s.now().UTC()}
	if s.store != nil {
		if err := s.store.SaveCheckoutPIN(ctx, setting); err != nil {
			return nil, appErrors.Unavailable(err, "failed to save checkout pin")
		}
	}
	s.mu.Lock()
	s.setting = setting
	s.mu.Unlock()
	s.logger.Info("checkout pin rotated", zap.String("updated_by", actor.UserID))
	return &setting, nil
}

// IssueSleepoverCode returns the code a sleepover guest must present at sign-out.
func (s *SecurityCodeService) IssueSleepoverCode() (string, error) {
	s.mu.RLock()
	fixed, length := s.fixedCode, s.codeLength
	s.mu.RUnlock()
	if fixed != "" {
		return fixed, nil
	}
	return randomDigits(length)
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

// codesEqual compares two codes in constant time. An empty expected code never matches.
func codesEqual(expected, supplied string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
