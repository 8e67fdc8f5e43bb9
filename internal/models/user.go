package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleSecurity   UserRole = "SECURITY"
	RoleStudent    UserRole = "STUDENT"
	RoleNewbie     UserRole = "NEWBIE"
)

// IsStaff reports whether the role belongs to the back office.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminType narrows an ADMIN to one area of the back office. Empty means unrestricted.
type AdminType string

const (
	AdminTypeMaintenance     AdminType = "admin-maintenance"
	AdminTypeSecurity        AdminType = "admin-security"
	AdminTypeComplaints      AdminType = "admin-complaints"
	AdminTypeGuestManagement AdminType = "admin-guest-management"
)

// ApplicationStatus tracks a newbie's residence application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationDenied   ApplicationStatus = "denied"
)

// CommunicationEntry is one message on a resident's communication log.
type CommunicationEntry struct {
	Message   string    `json:"message"`
	SentBy    string    `json:"sentBy"`
	Timestamp time.Time `json:"timestamp"`
}

// ApplicationDetails describes what a newbie applied for.
type ApplicationDetails struct {
	AccommodationType string     `json:"accommodationType,omitempty"`
	Location          string     `json:"location,omitempty"`
	DateSubmitted     *time.Time `json:"dateSubmitted,omitempty"`
}

// User is a resident or applicant profile stored in the users collection.
type User struct {
	ID                string               `json:"id"`
	Email             string               `json:"email"`
	Name              string               `json:"name"`
	Surname           string               `json:"surname"`
	Phone             string               `json:"phone,omitempty"`
	Role              UserRole             `json:"role"`
	ApplicationStatus ApplicationStatus    `json:"applicationStatus,omitempty"`
	PlaceOfStudy      string               `json:"placeOfStudy,omitempty"`
	RoomNumber        string               `json:"roomNumber,omitempty"`
	TenantCode        string               `json:"tenantCode,omitempty"`
	RequestDetails    *ApplicationDetails  `json:"requestDetails,omitempty"`
	CommunicationLog  []CommunicationEntry `json:"communicationLog,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// FullName joins name and surname.
func (u User) FullName() string {
	switch {
	case u.Name == "":
		return u.Surname
	case u.Surname == "":
		return u.Name
	}
	return u.Name + " " + u.Surname
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role              UserRole
	ApplicationStatus ApplicationStatus
	Limit             int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
