// Package authz decides whether a principal may perform an action on a
// platform record. Evaluation is pure and stateless: identical inputs
// always produce identical decisions, and absence of a granting rule is a
// deny.
package authz

import (
	"strings"
)

// Role describes the platform role assigned to a principal.
type Role int

const (
	// RoleUnspecified represents a missing or unknown role value.
	RoleUnspecified Role = iota
	// RoleDonor indicates a registered blood donor.
	RoleDonor
	// RoleRecipient indicates a registered blood recipient.
	RoleRecipient
	// RoleAdmin indicates platform staff with elevated access.
	RoleAdmin
)

// roleLabels are the stable wire labels for roles.
var roleLabels = map[Role]string{
	RoleDonor:     "DONOR",
	RoleRecipient: "RECIPIENT",
	RoleAdmin:     "ADMIN",
}

// Label returns a stable label for the role.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return "UNSPECIFIED"
}

// ParseRole maps a stable label back to a role.
func ParseRole(label string) Role {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "DONOR":
		return RoleDonor
	case "RECIPIENT":
		return RoleRecipient
	case "ADMIN":
		return RoleAdmin
	default:
		return RoleUnspecified
	}
}

// Identity is the resolved calling principal for one request. The zero
// value is the anonymous identity.
type Identity struct {
	// Subject is the opaque subject identifier assigned by the external
	// authentication collaborator. Empty means anonymous.
	Subject string
	// Role is the role resolved once per request for the subject.
	Role Role
}

// Anonymous is the unauthenticated identity.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no subject.
func (id Identity) IsAnonymous() bool {
	return strings.TrimSpace(id.Subject) == ""
}

// IsAdmin reports whether the identity is an authenticated admin.
func (id Identity) IsAdmin() bool {
	return !id.IsAnonymous() && id.Role == RoleAdmin
}

// Action is the operation a principal attempts on a record.
type Action int

const (
	// ActionUnspecified represents an unknown action value.
	ActionUnspecified Action = iota
	// ActionCreate writes a record that does not yet exist.
	ActionCreate
	// ActionRead returns a stored record.
	ActionRead
	// ActionUpdate mutates a stored record.
	ActionUpdate
	// ActionDelete removes a stored record.
	ActionDelete
)

// Label returns a stable label for the action.
func (a Action) Label() string {
	switch a {
	case ActionCreate:
		return "CREATE"
	case ActionRead:
		return "READ"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	default:
		return "UNSPECIFIED"
	}
}

// Kind identifies one of the platform record collections.
type Kind int

const (
	// KindUnspecified represents an unknown record kind.
	KindUnspecified Kind = iota
	// KindUser is a user profile record.
	KindUser
	// KindBloodBank is a blood bank facility record.
	KindBloodBank
	// KindCampaign is a donation campaign record.
	KindCampaign
	// KindBloodRequest is a blood request record.
	KindBloodRequest
	// KindDonation is a recorded donation.
	KindDonation
	// KindNotification is a user-targeted notification.
	KindNotification
)

// Label returns a stable label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindUser:
		return "USER"
	case KindBloodBank:
		return "BLOOD_BANK"
	case KindCampaign:
		return "CAMPAIGN"
	case KindBloodRequest:
		return "BLOOD_REQUEST"
	case KindDonation:
		return "DONATION"
	case KindNotification:
		return "NOTIFICATION"
	default:
		return "UNSPECIFIED"
	}
}

// Resource is a typed view of the record under evaluation. For create
// actions the record does not exist yet and the descriptor carries the
// proposed owner and fields of the incoming write.
type Resource struct {
	// Kind is the record collection the resource belongs to.
	Kind Kind
	// ID is the record identity key. Empty for create.
	ID string
	// OwnerID is the owning user reference, when the kind is owned.
	OwnerID string
	// Status is the lifecycle status label, when the kind carries one.
	Status string
	// Fields holds the stored field values relevant to field-level
	// invariants. Nil outside update evaluation.
	Fields map[string]string
	// Proposed holds the incoming field values for create and update.
	Proposed map[string]string
}

// Reason explains a deny decision.
type Reason int

const (
	// ReasonNone accompanies allow decisions.
	ReasonNone Reason = iota
	// ReasonNotAuthenticated denies anonymous callers.
	ReasonNotAuthenticated
	// ReasonNotOwner denies a failed self-ownership check.
	ReasonNotOwner
	// ReasonNotAdmin denies a failed role check.
	ReasonNotAdmin
	// ReasonInvalidLifecycleState denies a status-gated action attempted
	// outside its allowed states.
	ReasonInvalidLifecycleState
	// ReasonFieldNotUpdatable denies an update that changes a protected field.
	ReasonFieldNotUpdatable
	// ReasonUnsupported denies unknown kinds and actions.
	ReasonUnsupported
)

// Label returns a stable label for the reason.
func (r Reason) Label() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonNotAuthenticated:
		return "NOT_AUTHENTICATED"
	case ReasonNotOwner:
		return "NOT_OWNER"
	case ReasonNotAdmin:
		return "NOT_ADMIN"
	case ReasonInvalidLifecycleState:
		return "INVALID_LIFECYCLE_STATE"
	case ReasonFieldNotUpdatable:
		return "FIELD_NOT_UPDATABLE"
	case ReasonUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNSPECIFIED"
	}
}

// Decision is the outcome of one policy evaluation.
type Decision struct {
	// Allowed reports whether the action is permitted.
	Allowed bool
	// Reason explains a deny. ReasonNone on allow.
	Reason Reason
	// DeniedFields names the fields that violated a field-level
	// invariant. Populated only with ReasonFieldNotUpdatable.
	DeniedFields []string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}
