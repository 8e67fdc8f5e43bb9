package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/middleware/requestid"
)

type requestStore interface {
	Create(ctx context.Context, req *models.Request) error
	Get(ctx context.Context, kind models.Kind, id string) (*models.Request, error)
	List(ctx context.Context, kind models.Kind, filter models.RequestFilter) ([]models.Request, error)
	Transition(ctx context.Context, kind models.Kind, id string, expected models.RequestStatus, changes repository.RequestChanges) error
}

type notificationEmitter interface {
	Emit(ctx context.Context, userID string, typ models.NotificationType, title, message string) (*models.Notification, error)
}

type communicationLogger interface {
	AppendCommunication(ctx context.Context, id string, entry models.CommunicationEntry) error
}

type codeKeeper interface {
	VerifyCheckoutPIN(supplied string) bool
	IssueSleepoverCode() (string, error)
}

// TransitionRequest asks the engine to apply action to a request.
type TransitionRequest struct {
	Action   models.Action `json:"action" validate:"required"`
	Response *string       `json:"response" validate:"omitempty,max=2000"`
	Code     string        `json:"code" validate:"omitempty,max=32"`
}

// LifecycleOption customises a LifecycleService.
type LifecycleOption func(*LifecycleService)

// WithLifecycleClock overrides the clock used for timestamps.
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(s *LifecycleService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCommunicationLog records departures on the requester's communication log.
func WithCommunicationLog(log communicationLogger) LifecycleOption {
	return func(s *LifecycleService) {
		s.commLog = log
	}
}

// WithLifecycleMetrics records transition outcomes.
func WithLifecycleMetrics(m *MetricsService) LifecycleOption {
	return func(s *LifecycleService) {
		s.metrics = m
	}
}

// WithNotifyTimeout bounds the best-effort notification write.
func WithNotifyTimeout(d time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// LifecycleService submits requests and moves them through their per-kind state machines.
type LifecycleService struct {
	repo          requestStore
	notifier      notificationEmitter
	codes         codeKeeper
	commLog       communicationLogger
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration
}

// NewLifecycleService wires the engine.
func NewLifecycleService(repo requestStore, notifier notificationEmitter, codes codeKeeper, validate *validator.Validate, logger *zap.Logger, opts ...LifecycleOption) *LifecycleService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LifecycleService{
		repo:          repo,
		notifier:      notifier,
		codes:         codes,
		validator:     validate,
		logger:        logger,
		now:           time.Now,
		notifyTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit validates payload and stores a new request in its kind's initial status.
func (s *LifecycleService) Submit(ctx context.Context, kind models.Kind, requesterID string, payload models.RequestPayload) (*models.Request, error) {
	if payload == nil || payload.Kind() != kind {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("payload does not describe a %s request", kind))
	}
	if requesterID == "" {
		return nil, fieldError("userId", "userId is a required field")
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, validationError(err)
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	now := s.timestamp()
	req := &models.Request{
		RequesterID: requesterID,
		Kind:        kind,
		Status:      initialStatus(kind),
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind == models.KindGuest {
		req.IsActive = true
		req.CheckInTime = &now
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Unavailable(err, "failed to store request")
	}
	s.logger.Info("request submitted",
		zap.String("kind", string(kind)),
		zap.String("request_id", req.ID),
		zap.String("user_id", requesterID),
	)
	return req, nil
}

func validatePayload(payload models.RequestPayload) error {
	p, ok := payload.(models.SleepoverRequest)
	if !ok {
		return nil
	}
	start, err := time.Parse("2006-01-02", p.StartDate)
	if err != nil {
		return fieldError("startDate", "startDate must be a valid date")
	}
	end, err := time.Parse("2006-01-02", p.EndDate)
	if err != nil {
		return fieldError("endDate", "endDate must be a valid date")
	}
	if start.After(end) {
		return fieldError("endDate", "endDate must not be before startDate")
	}
	return nil
}

// Get returns one request. Residents may only read their own.
func (s *LifecycleService) Get(ctx context.Context, kind models.Kind, id string, actor models.Actor) (*models.Request, error) {
	req, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, kind, req.RequesterID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("you may not view this %s request", kind))
	}
	return redact(req, actor), nil
}

// List returns requests of kind visible to actor. Residents are always scoped to their own.
func (s *LifecycleService) List(ctx context.Context, kind models.Kind, filter models.RequestFilter, actor models.Actor) ([]models.Request, error) {
	switch {
	case actor.Role.IsStaff():
	case actor.Role == models.RoleSecurity:
		if !presenceKind(kind) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("security may not list %s requests", kind))
		}
	default:
		filter.RequesterID = actor.UserID
	}
	if err := validateSort(filter.SortBy); err != nil {
		return nil, err
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return nil, fieldError("createdTo", "createdTo must not be before createdFrom")
	}
	items, err := s.repo.List(ctx, kind, filter)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to list requests")
	}
	for i := range items {
		items[i] = *redact(&items[i], actor)
	}
	return items, nil
}

var sortableFields = map[string]struct{}{
	"createdAt":    {},
	"updatedAt":    {},
	"checkInTime":  {},
	"checkOutTime": {},
	"signOutTime":  {},
	"status":       {},
}

func validateSort(field string) error {
	if field == "" {
		return nil
	}
	if _, ok := sortableFields[field]; !ok {
		return fieldError("sort", fmt.Sprintf("cannot sort by %q", field))
	}
	return nil
}

// Transition applies req.Action to the request identified by kind and id on behalf of actor.
func (s *LifecycleService) Transition(ctx context.Context, kind models.Kind, id string, actor models.Actor, tr TransitionRequest) (*models.Request, error) {
	if err := s.validator.Struct(tr); err != nil {
		return nil, validationError(err)
	}
	current, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	rule, ok := lifecycleRules[kind][tr.Action]
	if !ok {
		s.metrics.ObserveTransition(kind, tr.Action, "invalid")
		return nil, appErrors.WithDetails(appErrors.ErrInvalidTransition,
			fmt.Sprintf("%s requests do not support %s", kind, tr.Action),
			map[string]interface{}{"currentStatus": current.Status, "action": tr.Action})
	}
	if !rule.permits(actor, kind, current.RequesterID) {
		s.metrics.ObserveTransition(kind, tr.Action, "forbidden")
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not %s %s requests", actor.Role, tr.Action, kind))
	}
	if !rule.allowsFrom(current.Status) {
		s.metrics.ObserveTransition(kind, tr.Action, "invalid")
		return nil, appErrors.WithDetails(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot %s a %s request that is %s", tr.Action, kind, current.Status),
			map[string]interface{}{"currentStatus": current.Status, "action": tr.Action, "allowedActions": ActionsFor(kind, current.Status)})
	}
	if err := s.checkCode(rule.code, current, tr.Code); err != nil {
		s.metrics.ObserveTransition(kind, tr.Action, "bad_code")
		return nil, err
	}

	changes, err := s.changesFor(kind, rule, current, tr.Response)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Transition(ctx, kind, id, current.Status, changes); err != nil {
		switch {
		case errors.Is(err, repository.ErrGuardFailed):
			s.metrics.ObserveTransition(kind, tr.Action, "conflict")
			return nil, appErrors.WithDetails(appErrors.ErrConflict,
				fmt.Sprintf("%s request was changed by someone else, reload and retry", kind),
				map[string]interface{}{"expectedStatus": current.Status})
		case errors.Is(err, repository.ErrDocumentNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s request not found", kind))
		default:
			s.metrics.ObserveTransition(kind, tr.Action, "error")
			return nil, appErrors.Unavailable(err, "failed to update request")
		}
	}
	s.metrics.ObserveTransition(kind, tr.Action, "ok")

	updated := apply(*current, changes)
	s.logger.Info("request transitioned",
		zap.String("kind", string(kind)),
		zap.String("request_id", id),
		zap.String("action", string(tr.Action)),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.UserID),
		zap.String("http_request_id", requestid.FromContext(ctx)),
	)

	s.afterTransition(ctx, &updated, actor)
	return redact(&updated, actor), nil
}

func (s *LifecycleService) checkCode(req codeRequirement, current *models.Request, supplied string) error {
	switch req {
	case codeCheckoutPIN:
		if supplied == "" {
			return appErrors.Clone(appErrors.ErrInvalidCode, "checkout PIN is required to check out a guest")
		}
		if !s.codes.VerifyCheckoutPIN(supplied) {
			return appErrors.Clone(appErrors.ErrInvalidCode, "checkout PIN does not match")
		}
	case codeSecurity:
		if supplied == "" {
			return appErrors.Clone(appErrors.ErrInvalidCode, "security code is required to sign out a sleepover guest")
		}
		if !codesEqual(current.SecurityCode, supplied) {
			return appErrors.Clone(appErrors.ErrInvalidCode, "security code does not match this sleepover")
		}
	}
	return nil
}

// changesFor derives every field the target status implies.
func (s *LifecycleService) changesFor(kind models.Kind, rule transitionRule, current *models.Request, response *string) (repository.RequestChanges, error) {
	now := s.timestamp()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Microsecond)
	}
	changes := repository.RequestChanges{Status: rule.to, UpdatedAt: now}

	// A blank response never clears an earlier one.
	switch {
	case response != nil && strings.TrimSpace(*response) != "":
		text := strings.TrimSpace(*response)
		changes.AdminResponse = &text
	case current.AdminResponse == "":
		text := defaultResponse(kind, rule.to)
		changes.AdminResponse = &text
	}

	active := presenceKind(kind) && (rule.to == models.StatusApproved || rule.to == models.StatusActive)
	if active != current.IsActive {
		changes.IsActive = &active
	}

	switch rule.to {
	case models.StatusApproved:
		code, err := s.codes.IssueSleepoverCode()
		if err != nil {
			return changes, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue security code")
		}
		changes.SecurityCode = &code
		changes.CheckInTime = &now
	case models.StatusCheckedOut:
		if kind == models.KindSleepover {
			changes.SignOutTime = &now
		} else {
			changes.CheckOutTime = &now
		}
	}
	return changes, nil
}

func (s *LifecycleService) afterTransition(ctx context.Context, req *models.Request, actor models.Actor) {
	// The status write has succeeded; side effects get their own deadline.
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if s.notifier != nil {
		title, message := TransitionMessage(req.Kind, req.Status, req.Payload)
		if _, err := s.notifier.Emit(sideCtx, req.RequesterID, models.NotificationTypeFor(req.Kind), title, message); err != nil {
			s.logger.Warn("transition notification failed",
				zap.String("request_id", req.ID),
				zap.String("user_id", req.RequesterID),
				zap.Error(err),
			)
		}
	}

	if s.commLog != nil && req.Status == models.StatusCheckedOut {
		entry := models.CommunicationEntry{Message: departureEntry(req), SentBy: actor.UserID, Timestamp: req.UpdatedAt}
		if err := s.commLog.AppendCommunication(sideCtx, req.RequesterID, entry); err != nil {
			s.logger.Warn("communication log append failed",
				zap.String("request_id", req.ID),
				zap.String("user_id", req.RequesterID),
				zap.Error(err),
			)
		}
	}
}

func (s *LifecycleService) load(ctx context.Context, kind models.Kind, id string) (*models.Request, error) {
	req, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s request not found", kind))
		}
		return nil, appErrors.Unavailable(err, "failed to load request")
	}
	return req, nil
}

// timestamp returns now at the store's microsecond precision.
func (s *LifecycleService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func apply(req models.Request, c repository.RequestChanges) models.Request {
	req.Status = c.Status
	req.UpdatedAt = c.UpdatedAt
	if c.AdminResponse != nil {
		req.AdminResponse = *c.AdminResponse
	}
	if c.IsActive != nil {
		req.IsActive = *c.IsActive
	}
	if c.SecurityCode != nil {
		req.SecurityCode = *c.SecurityCode
	}
	if c.CheckInTime != nil {
		req.CheckInTime = c.CheckInTime
	}
	if c.CheckOutTime != nil {
		req.CheckOutTime = c.CheckOutTime
	}
	if c.SignOutTime != nil {
		req.SignOutTime = c.SignOutTime
	}
	return req
}

func canRead(actor models.Actor, kind models.Kind, requesterID string) bool {
	switch {
	case actor.Role.IsStaff():
		return true
	case actor.Role == models.RoleSecurity:
		return presenceKind(kind)
	}
	return actor.UserID != "" && actor.UserID == requesterID
}

// redact hides the sleepover sign-out code from anyone but its requester and staff.
func redact(req *models.Request, actor models.Actor) *models.Request {
	if req.SecurityCode == "" || actor.Role.IsStaff() || actor.UserID == req.RequesterID {
		return req
	}
	clone := *req
	clone.SecurityCode = ""
	return &clone
}
