package models

import "time"

// Kind identifies the category of a residence request.
type Kind string

const (
	KindGuest       Kind = "guest"
	KindSleepover   Kind = "sleepover"
	KindMaintenance Kind = "maintenance"
	KindComplaint   Kind = "complaint"
)

// Kinds lists every request kind in display order.
var Kinds = []Kind{KindGuest, KindSleepover, KindMaintenance, KindComplaint}

// ParseKind accepts the singular kind name or its collection alias.
func ParseKind(raw string) (Kind, bool) {
	switch raw {
	case "guest", "guests":
		return KindGuest, true
	case "sleepover", "sleepovers", "sleepover_requests":
		return KindSleepover, true
	case "maintenance", "maintenance_requests":
		return KindMaintenance, true
	case "complaint", "complaints":
		return KindComplaint, true
	}
	return "", false
}

// Collection returns the document collection holding requests of this kind.
func (k Kind) Collection() string {
	switch k {
	case KindGuest:
		return "guests"
	case KindSleepover:
		return "sleepover_requests"
	case KindMaintenance:
		return "maintenance_requests"
	case KindComplaint:
		return "complaints"
	}
	return ""
}

// RequestStatus is a lifecycle state. Each kind uses its own subset.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusActive     RequestStatus = "active"
	StatusApproved   RequestStatus = "approved"
	StatusInProgress RequestStatus = "in_progress"
	StatusCheckedOut RequestStatus = "checked-out"
	StatusDeclined   RequestStatus = "declined"
	StatusRejected   RequestStatus = "rejected"
	StatusCompleted  RequestStatus = "completed"
	StatusResolved   RequestStatus = "resolved"
)

// Action names a transition an actor asks for.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionResolve  Action = "resolve"
	ActionCheckout Action = "checkout"
	ActionSignOut  Action = "sign_out"
	ActionDecline  Action = "decline"
)

// Request is the common record shared by all request kinds.
type Request struct {
	ID            string         `json:"id"`
	RequesterID   string         `json:"userId"`
	Kind          Kind           `json:"kind"`
	Status        RequestStatus  `json:"status"`
	Payload       RequestPayload `json:"payload"`
	AdminResponse string         `json:"adminResponse,omitempty"`
	IsActive      bool           `json:"isActive"`
	SecurityCode  string         `json:"securityCode,omitempty"`
	CheckInTime   *time.Time     `json:"checkInTime,omitempty"`
	CheckOutTime  *time.Time     `json:"checkOutTime,omitempty"`
	SignOutTime   *time.Time     `json:"signOutTime,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// RequestPayload is implemented only by the kind-specific payloads in this package.
type RequestPayload interface {
	Kind() Kind
	isRequestPayload()
}

// Companion is an additional visitor accompanying a guest or sleepover guest.
type Companion struct {
	FirstName   string `json:"firstName" validate:"required,notblank,max=80"`
	LastName    string `json:"lastName" validate:"required,notblank,max=80"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// GuestVisit is a day visitor registered on arrival.
type GuestVisit struct {
	FirstName        string      `json:"firstName" validate:"required,notblank,max=80"`
	LastName         string      `json:"lastName" validate:"required,notblank,max=80"`
	PhoneNumber      string      `json:"phoneNumber" validate:"required,notblank,max=32"`
	RoomNumber       string      `json:"roomNumber" validate:"required,notblank,max=16"`
	Purpose          string      `json:"purpose" validate:"omitempty,max=500"`
	FromDate         string      `json:"fromDate" validate:"omitempty,datetime=2006-01-02"`
	AdditionalGuests []Companion `json:"additionalGuests" validate:"max=10,dive"`
}

func (GuestVisit) Kind() Kind        { return KindGuest }
func (GuestVisit) isRequestPayload() {}

// SleepoverRequest asks for an overnight stay of a guest.
type SleepoverRequest struct {
	GuestName        string      `json:"guestName" validate:"required,notblank,max=80"`
	GuestSurname     string      `json:"guestSurname" validate:"required,notblank,max=80"`
	GuestPhone       string      `json:"guestPhone" validate:"omitempty,max=32"`
	RoomNumber       string      `json:"roomNumber" validate:"required,notblank,max=16"`
	TenantCode       string      `json:"tenantCode" validate:"omitempty,max=32"`
	AdditionalGuests []Companion `json:"additionalGuests" validate:"max=10,dive"`
	StartDate        string      `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string      `json:"endDate" validate:"required,datetime=2006-01-02"`
}

func (SleepoverRequest) Kind() Kind        { return KindSleepover }
func (SleepoverRequest) isRequestPayload() {}

// MaintenanceTicket reports a fault in a room or shared space.
type MaintenanceTicket struct {
	Title         string `json:"title" validate:"required,notblank,max=120"`
	Category      string `json:"category" validate:"required,oneof=bedroom bathroom kitchen furniture other"`
	Description   string `json:"description" validate:"required,notblank,max=2000"`
	RoomNumber    string `json:"roomNumber" validate:"required,notblank,max=16"`
	TimeSlot      string `json:"timeSlot" validate:"omitempty,max=40"`
	PreferredDate string `json:"preferredDate" validate:"omitempty,datetime=2006-01-02"`
	Priority      string `json:"priority" validate:"required,oneof=low medium high"`
}

func (MaintenanceTicket) Kind() Kind        { return KindMaintenance }
func (MaintenanceTicket) isRequestPayload() {}

// Complaint is a grievance raised by a resident.
type Complaint struct {
	Title       string `json:"title" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"required,notblank,max=2000"`
	Category    string `json:"category" validate:"required,oneof=maintenance security noise cleanliness other"`
	Location    string `json:"location" validate:"omitempty,max=120"`
}

func (Complaint) Kind() Kind        { return KindComplaint }
func (Complaint) isRequestPayload() {}

// RequestFilter narrows request listings. Zero values are ignored.
type RequestFilter struct {
	RequesterID string
	Status      RequestStatus
	Active      *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	SortDesc    bool
	Limit       int
}
