package service

import (
	"github.com/noah-isme/residence-portal-api/internal/models"
)

type codeRequirement int

const (
	codeNone codeRequirement = iota
	codeCheckoutPIN
	codeSecurity
)

// transitionRule is one edge of a kind's state machine.
type transitionRule struct {
	from  []models.RequestStatus
	to    models.RequestStatus
	roles []models.UserRole
	// owner lets the requester perform the action on their own request.
	owner bool
	code  codeRequirement
}

func (r transitionRule) allowsFrom(status models.RequestStatus) bool {
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

var (
	staffRoles    = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin}
	presenceRoles = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin, models.RoleSecurity}
)

var lifecycleRules = map[models.Kind]map[models.Action]transitionRule{
	models.KindGuest: {
		models.ActionCheckout: {
			from:  []models.RequestStatus{models.StatusActive},
			to:    models.StatusCheckedOut,
			roles: presenceRoles,
			owner: true,
			code:  codeCheckoutPIN,
		},
		models.ActionDecline: {
			from:  []models.RequestStatus{models.StatusActive},
			to:    models.StatusDeclined,
			roles: staffRoles,
		},
	},
	models.KindSleepover: {
		models.ActionApprove: {
			from:  []models.RequestStatus{models.StatusPending},
			to:    models.StatusApproved,
			roles: staffRoles,
		},
		models.ActionReject: {
			from:  []models.RequestStatus{models.StatusPending},
			to:    models.StatusRejected,
			roles: staffRoles,
		},
		models.ActionSignOut: {
			from:  []models.RequestStatus{models.StatusApproved},
			to:    models.StatusCheckedOut,
			roles: presenceRoles,
			owner: true,
			code:  codeSecurity,
		},
	},
	models.KindMaintenance: {
		models.ActionStart: {
			from:  []models.RequestStatus{models.StatusPending},
			to:    models.StatusInProgress,
			roles: staffRoles,
		},
		models.ActionComplete: {
			from:  []models.RequestStatus{models.StatusInProgress},
			to:    models.StatusCompleted,
			roles: staffRoles,
		},
		models.ActionReject: {
			from:  []models.RequestStatus{models.StatusPending, models.StatusInProgress},
			to:    models.StatusRejected,
			roles: staffRoles,
		},
	},
	models.KindComplaint: {
		models.ActionStart: {
			from:  []models.RequestStatus{models.StatusPending},
			to:    models.StatusInProgress,
			roles: staffRoles,
		},
		models.ActionResolve: {
			from:  []models.RequestStatus{models.StatusInProgress},
			to:    models.StatusResolved,
			roles: staffRoles,
		},
		models.ActionReject: {
			from:  []models.RequestStatus{models.StatusPending, models.StatusInProgress},
			to:    models.StatusRejected,
			roles: staffRoles,
		},
	},
}

// initialStatus is the status a freshly submitted request starts in.
func initialStatus(kind models.Kind) models.RequestStatus {
	if kind == models.KindGuest {
		return models.StatusActive
	}
	return models.StatusPending
}

// adminTypeKinds lists the kinds each admin type may transition.
var adminTypeKinds = map[models.AdminType][]models.Kind{
	models.AdminTypeMaintenance:     {models.KindMaintenance},
	models.AdminTypeComplaints:      {models.KindComplaint},
	models.AdminTypeSecurity:        {models.KindGuest, models.KindSleepover},
	models.AdminTypeGuestManagement: {models.KindGuest, models.KindSleepover},
}

// adminCovers reports whether a typed admin may act on kind. Untyped admins cover every kind.
func adminCovers(t models.AdminType, kind models.Kind) bool {
	kinds, ok := adminTypeKinds[t]
	if !ok {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// permits reports whether actor may perform rule on a request owned by requesterID.
func (r transitionRule) permits(actor models.Actor, kind models.Kind, requesterID string) bool {
	if r.owner && actor.UserID != "" && actor.UserID == requesterID {
		return true
	}
	for _, role := range r.roles {
		if role != actor.Role {
			continue
		}
		if role == models.RoleAdmin {
			return adminCovers(actor.AdminType, kind)
		}
		return true
	}
	return false
}

// presenceKind reports whether the kind models someone physically on the premises.
func presenceKind(kind models.Kind) bool {
	return kind == models.KindGuest || kind == models.KindSleepover
}

// ActionsFor lists the actions available from status for kind, in a stable order.
func ActionsFor(kind models.Kind, status models.RequestStatus) []models.Action {
	order := []models.Action{
		models.ActionApprove, models.ActionStart, models.ActionComplete, models.ActionResolve,
		models.ActionCheckout, models.ActionSignOut, models.ActionReject, models.ActionDecline,
	}
	var out []models.Action
	for _, a := range order {
		if rule, ok := lifecycleRules[kind][a]; ok && rule.allowsFrom(status) {
			out = append(out, a)
		}
	}
	return out
}
