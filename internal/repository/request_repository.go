package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

// RequestChanges lists the fields a lifecycle transition writes. Nil pointers are left untouched.
type RequestChanges struct {
	Status        models.RequestStatus
	AdminResponse *string
	IsActive      *bool
	SecurityCode  *string
	CheckInTime   *time.Time
	CheckOutTime  *time.Time
	SignOutTime   *time.Time
	UpdatedAt     time.Time
}

// RequestRepository maps requests of every kind onto their document collections.
type RequestRepository struct {
	store DocumentStore
}

func NewRequestRepository(store DocumentStore) *RequestRepository {
	return &RequestRepository{store: store}
}

// Create persists req and fills in its generated id.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	doc, err := encodeRequest(req)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, req.Kind.Collection(), doc)
	if err != nil {
		return fmt.Errorf("create %s request: %w", req.Kind, err)
	}
	req.ID = id
	return nil
}

// Get loads a request. Missing ids yield ErrDocumentNotFound.
func (r *RequestRepository) Get(ctx context.Context, kind models.Kind, id string) (*models.Request, error) {
	doc, err := r.store.Get(ctx, kind.Collection(), id)
	if err != nil {
		return nil, err
	}
	return decodeRequest(kind, doc)
}

// List returns requests of kind matching filter, newest first unless SortBy says otherwise.
func (r *RequestRepository) List(ctx context.Context, kind models.Kind, filter models.RequestFilter) ([]models.Request, error) {
	q := Query{OrderBy: "createdAt", Desc: true, Limit: filter.Limit}
	if filter.SortBy != "" {
		q.OrderBy = filter.SortBy
		q.Desc = filter.SortDesc
	}
	if filter.RequesterID != "" {
		q.Filters = append(q.Filters, Eq("userId", filter.RequesterID))
	}
	if filter.Status != "" {
		q.Filters = append(q.Filters, Eq("status", filter.Status))
	}
	if filter.Active != nil {
		q.Filters = append(q.Filters, Eq("isActive", *filter.Active))
	}
	if filter.CreatedFrom != nil {
		q.Filters = append(q.Filters, Filter{Field: "createdAt", Op: OpGte, Value: *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		q.Filters = append(q.Filters, Filter{Field: "createdAt", Op: OpLte, Value: *filter.CreatedTo})
	}

	docs, err := r.store.Query(ctx, kind.Collection(), q)
	if err != nil {
		return nil, fmt.Errorf("list %s requests: %w", kind, err)
	}
	out := make([]models.Request, 0, len(docs))
	for _, doc := range docs {
		req, err := decodeRequest(kind, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, nil
}

// Transition writes changes only while the stored status still equals expected.
func (r *RequestRepository) Transition(ctx context.Context, kind models.Kind, id string, expected models.RequestStatus, changes RequestChanges) error {
	fields := Document{
		"status":    changes.Status,
		"updatedAt": changes.UpdatedAt,
	}
	if changes.AdminResponse != nil {
		fields["adminResponse"] = *changes.AdminResponse
	}
	if changes.IsActive != nil {
		fields["isActive"] = *changes.IsActive
	}
	if changes.SecurityCode != nil {
		fields["securityCode"] = *changes.SecurityCode
	}
	if changes.CheckInTime != nil {
		fields["checkInTime"] = *changes.CheckInTime
	}
	if changes.CheckOutTime != nil {
		fields["checkOutTime"] = *changes.CheckOutTime
	}
	if changes.SignOutTime != nil {
		fields["signOutTime"] = *changes.SignOutTime
	}
	return r.store.UpdateIf(ctx, kind.Collection(), id, Eq("status", expected), fields)
}

func encodeRequest(req *models.Request) (Document, error) {
	payload, err := toMap(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", req.Kind, err)
	}
	doc := Document{
		"userId":    req.RequesterID,
		"kind":      req.Kind,
		"status":    req.Status,
		"payload":   payload,
		"isActive":  req.IsActive,
		"createdAt": req.CreatedAt,
		"updatedAt": req.UpdatedAt,
	}
	if req.ID != "" {
		doc["id"] = req.ID
	}
	if req.AdminResponse != "" {
		doc["adminResponse"] = req.AdminResponse
	}
	if req.SecurityCode != "" {
		doc["securityCode"] = req.SecurityCode
	}
	if req.CheckInTime != nil {
		doc["checkInTime"] = *req.CheckInTime
	}
	if req.CheckOutTime != nil {
		doc["checkOutTime"] = *req.CheckOutTime
	}
	if req.SignOutTime != nil {
		doc["signOutTime"] = *req.SignOutTime
	}
	return doc, nil
}

func decodeRequest(kind models.Kind, doc Document) (*models.Request, error) {
	payload, err := decodePayload(kind, doc["payload"])
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, doc.String("id"), err)
	}
	req := &models.Request{
		ID:            doc.String("id"),
		RequesterID:   doc.String("userId"),
		Kind:          kind,
		Status:        models.RequestStatus(doc.String("status")),
		Payload:       payload,
		AdminResponse: doc.String("adminResponse"),
		IsActive:      doc.Bool("isActive"),
		SecurityCode:  doc.String("securityCode"),
		CheckInTime:   doc.TimePtr("checkInTime"),
		CheckOutTime:  doc.TimePtr("checkOutTime"),
		SignOutTime:   doc.TimePtr("signOutTime"),
	}
	req.CreatedAt, _ = doc.Time("createdAt")
	req.UpdatedAt, _ = doc.Time("updatedAt")
	if req.UpdatedAt.Before(req.CreatedAt) {
		req.UpdatedAt = req.CreatedAt
	}
	return req, nil
}

func decodePayload(kind models.Kind, raw interface{}) (models.RequestPayload, error) {
	var target interface{}
	switch kind {
	case models.KindGuest:
		target = &models.GuestVisit{}
	case models.KindSleepover:
		target = &models.SleepoverRequest{}
	case models.KindMaintenance:
		target = &models.MaintenanceTicket{}
	case models.KindComplaint:
		target = &models.Complaint{}
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, err
		}
	}
	switch p := target.(type) {
	case *models.GuestVisit:
		return *p, nil
	case *models.SleepoverRequest:
		return *p, nil
	case *models.MaintenanceTicket:
		return *p, nil
	default:
		return *(p.(*models.Complaint)), nil
	}
}

func toMap(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
