package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

const usersCollection = "users"

// UserRepository reads and updates resident profiles.
type UserRepository struct {
	store DocumentStore
}

func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

// Create stores a profile under its own id. Profiles are keyed by the identity provider's user id.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	doc, err := toMap(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	doc["createdAt"] = u.CreatedAt
	doc["updatedAt"] = u.UpdatedAt
	id, err := r.store.Create(ctx, usersCollection, Document(doc))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, usersCollection, id)
	if err != nil {
		return nil, err
	}
	return decodeUser(doc)
}

// List returns profiles matching filter ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	q := Query{OrderBy: "createdAt", Desc: true, Limit: filter.Limit}
	if filter.Role != "" {
		q.Filters = append(q.Filters, Eq("role", filter.Role))
	}
	if filter.ApplicationStatus != "" {
		q.Filters = append(q.Filters, Eq("applicationStatus", filter.ApplicationStatus))
	}
	docs, err := r.store.Query(ctx, usersCollection, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

// Decide records an application decision while the application is still pending.
func (r *UserRepository) Decide(ctx context.Context, id string, status models.ApplicationStatus, role models.UserRole, log []models.CommunicationEntry, at time.Time) error {
	fields := Document{
		"applicationStatus": status,
		"role":              role,
		"communicationLog":  encodeLog(log),
		"updatedAt":         at,
	}
	return r.store.UpdateIf(ctx, usersCollection, id, Eq("applicationStatus", models.ApplicationPending), fields)
}

// AppendCommunication adds entry to the user's log. The write is guarded on the
// stored updatedAt so concurrent appends never drop each other's entries.
func (r *UserRepository) AppendCommunication(ctx context.Context, id string, entry models.CommunicationEntry) error {
	const attempts = 3
	for i := 0; i < attempts; i++ {
		doc, err := r.store.Get(ctx, usersCollection, id)
		if err != nil {
			return err
		}
		log, _ := doc["communicationLog"].([]interface{})
		log = append(log, encodeLog([]models.CommunicationEntry{entry})...)
		fields := Document{"communicationLog": log, "updatedAt": entry.Timestamp}

		prev, ok := doc["updatedAt"]
		if _, isObject := prev.(map[string]interface{}); !ok || isObject {
			return r.store.Update(ctx, usersCollection, id, fields)
		}
		err = r.store.UpdateIf(ctx, usersCollection, id, Eq("updatedAt", prev), fields)
		if err != ErrGuardFailed {
			return err
		}
	}
	return ErrGuardFailed
}

func encodeLog(log []models.CommunicationEntry) []interface{} {
	out := make([]interface{}, 0, len(log))
	for _, e := range log {
		out = append(out, map[string]interface{}{
			"message":   e.Message,
			"sentBy":    e.SentBy,
			"timestamp": e.Timestamp,
		})
	}
	return out
}

func decodeUser(doc Document) (*models.User, error) {
	u := &models.User{
		ID:                doc.String("id"),
		Email:             doc.String("email"),
		Name:              doc.String("name"),
		Surname:           doc.String("surname"),
		Phone:             doc.String("phone"),
		Role:              models.UserRole(doc.String("role")),
		ApplicationStatus: models.ApplicationStatus(doc.String("applicationStatus")),
		PlaceOfStudy:      doc.String("placeOfStudy"),
		RoomNumber:        doc.String("roomNumber"),
		TenantCode:        doc.String("tenantCode"),
	}
	u.CreatedAt, _ = doc.Time("createdAt")
	u.UpdatedAt, _ = doc.Time("updatedAt")

	if details := doc.Map("requestDetails"); details != nil {
		d := Document(details)
		u.RequestDetails = &models.ApplicationDetails{
			AccommodationType: d.String("accommodationType"),
			Location:          d.String("location"),
			DateSubmitted:     d.TimePtr("dateSubmitted"),
		}
	}
	if raw, ok := doc["communicationLog"].([]interface{}); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			e := Document(entry)
			ts, _ := e.Time("timestamp")
			u.CommunicationLog = append(u.CommunicationLog, models.CommunicationEntry{
				Message:   e.String("message"),
				SentBy:    e.String("sentBy"),
				Timestamp: ts,
			})
		}
	}
	return u, nil
}
