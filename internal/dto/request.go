package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

// DecodePayload parses a submission body into the payload type of kind. Unknown fields are rejected.
func DecodePayload(kind models.Kind, body []byte) (models.RequestPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var err error
	var payload models.RequestPayload
	switch kind {
	case models.KindGuest:
		var p models.GuestVisit
		err = dec.Decode(&p)
		payload = p
	case models.KindSleepover:
		var p models.SleepoverRequest
		err = dec.Decode(&p)
		payload = p
	case models.KindMaintenance:
		var p models.MaintenanceTicket
		err = dec.Decode(&p)
		payload = p
	case models.KindComplaint:
		var p models.Complaint
		err = dec.Decode(&p)
		payload = p
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown request kind %q", kind))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return payload, nil
}

// ListRequestsQuery carries GET /requests/:kind query parameters.
type ListRequestsQuery struct {
	Status string `form:"status"`
	UserID string `form:"userId"`
	Active string `form:"active"`
	From   string `form:"from"`
	To     string `form:"to"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
	Limit  int    `form:"limit"`
}

// ToFilter converts the query into a store filter. Bare dates are read in loc; "to" covers the whole day.
func (q ListRequestsQuery) ToFilter(loc *time.Location) (models.RequestFilter, error) {
	filter := models.RequestFilter{
		RequesterID: q.UserID,
		Status:      models.RequestStatus(q.Status),
		SortBy:      q.Sort,
		Limit:       q.Limit,
	}
	switch q.Order {
	case "", "desc":
		filter.SortDesc = true
	case "asc":
	default:
		return filter, invalidParam("order", "order must be asc or desc")
	}
	if filter.SortBy == "" {
		filter.SortBy = "createdAt"
	}
	if q.Limit < 0 || q.Limit > 500 {
		return filter, invalidParam("limit", "limit must be between 0 and 500")
	}
	switch q.Active {
	case "":
	case "true", "1":
		active := true
		filter.Active = &active
	case "false", "0":
		active := false
		filter.Active = &active
	default:
		return filter, invalidParam("active", "active must be true or false")
	}
	if q.From != "" {
		from, err := parseInstant(q.From, loc, false)
		if err != nil {
			return filter, invalidParam("from", "from must be RFC3339 or YYYY-MM-DD")
		}
		filter.CreatedFrom = &from
	}
	if q.To != "" {
		to, err := parseInstant(q.To, loc, true)
		if err != nil {
			return filter, invalidParam("to", "to must be RFC3339 or YYYY-MM-DD")
		}
		filter.CreatedTo = &to
	}
	return filter, nil
}

func parseInstant(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return day.UTC(), nil
}

func invalidParam(field, message string) error {
	return appErrors.WithDetails(appErrors.ErrValidation, message, map[string]interface{}{
		"fields": map[string]interface{}{field: message},
	})
}

// RequestView is a request plus the actions its current status allows.
type RequestView struct {
	models.Request
	AllowedActions []models.Action `json:"allowedActions"`
}
