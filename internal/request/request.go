// Package request manages blood request records. A request is owned by
// the user who raised it; its lifecycle status gates both who may edit it
// and who may see it.
package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

// Status describes the lifecycle of a blood request.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusPendingVerification indicates the request awaits staff review.
	StatusPendingVerification
	// StatusPending indicates a verified request not yet published.
	StatusPending
	// StatusActive indicates the request is published and seeking donors.
	StatusActive
	// StatusPartiallyFulfilled indicates some but not all units arrived.
	StatusPartiallyFulfilled
	// StatusFulfilled indicates every required unit arrived.
	StatusFulfilled
	// StatusCancelled indicates the requester or staff called it off.
	StatusCancelled
	// StatusExpired indicates the request lapsed without fulfillment.
	StatusExpired
)

// Urgency ranks how quickly a request needs donors.
type Urgency int

const (
	// UrgencyUnspecified represents a missing urgency value.
	UrgencyUnspecified Urgency = iota
	UrgencyLow
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

var (
	// ErrNotFound indicates a request record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "blood request not found")
	// ErrConflict indicates a write conflicted with the stored record
	// state, including a lifecycle gate that moved between check and write.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "blood request was modified concurrently")
	// ErrEmptyRequester indicates a missing owner reference.
	ErrEmptyRequester = apperrors.New(apperrors.CodeRequestEmptyRequester, "requester uid is required")
	// ErrInvalidBloodGroup indicates an unknown blood group.
	ErrInvalidBloodGroup = apperrors.New(apperrors.CodeRequestInvalidBloodGroup, "blood group is not recognized")
	// ErrInvalidUnits indicates a non-positive required unit count.
	ErrInvalidUnits = apperrors.New(apperrors.CodeRequestInvalidUnits, "required units must be positive")
)

// BloodRequest is one request record owned by its requester.
type BloodRequest struct {
	ID             string
	RequesterUID   string
	PatientName    string
	Hospital       string
	BloodGroup     blood.Group
	UnitsRequired  int
	UnitsFulfilled int
	Urgency        Urgency
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateInput describes a new blood request. The requester uid comes
// from the resolved identity, never from the input.
type CreateInput struct {
	PatientName   string
	Hospital      string
	BloodGroup    blood.Group
	UnitsRequired int
	Urgency       Urgency
}

// UpdateInput describes a partial request update by its owner or staff.
// Nil fields are left unchanged.
type UpdateInput struct {
	PatientName   *string
	Hospital      *string
	BloodGroup    *blood.Group
	UnitsRequired *int
	Urgency       *Urgency
}

// NormalizeCreateInput trims and validates request input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.Hospital = strings.TrimSpace(input.Hospital)
	if !input.BloodGroup.Valid() {
		return CreateInput{}, ErrInvalidBloodGroup
	}
	if input.UnitsRequired <= 0 {
		return CreateInput{}, ErrInvalidUnits
	}
	return input, nil
}

// Editable reports whether the owner may still mutate the request.
func (s Status) Editable() bool {
	for _, label := range authz.RequestEditableStatuses() {
		if s.Label() == label {
			return true
		}
	}
	return false
}

// Public reports whether the request is visible to authenticated
// principals other than its owner.
func (s Status) Public() bool {
	for _, label := range authz.RequestPublicStatuses() {
		if s.Label() == label {
			return true
		}
	}
	return false
}

// Transition applies a status change and updates the timestamp.
func Transition(req BloodRequest, target Status, now func() time.Time) (BloodRequest, error) {
	if now == nil {
		now = time.Now
	}
	if !transitionAllowed(req.Status, target) {
		return BloodRequest{}, apperrors.WithMetadata(
			apperrors.CodeRequestInvalidStatusTransition,
			fmt.Sprintf("blood request status transition not allowed: %s -> %s", req.Status.Label(), target.Label()),
			map[string]string{"FromStatus": req.Status.Label(), "ToStatus": target.Label()},
		)
	}
	req.Status = target
	req.UpdatedAt = now().UTC()
	return req, nil
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusPendingVerification:
		return to == StatusPending || to == StatusCancelled
	case StatusPending:
		return to == StatusActive || to == StatusCancelled || to == StatusExpired
	case StatusActive:
		return to == StatusPartiallyFulfilled || to == StatusFulfilled ||
			to == StatusCancelled || to == StatusExpired
	case StatusPartiallyFulfilled:
		return to == StatusFulfilled || to == StatusCancelled || to == StatusExpired
	default:
		return false
	}
}

// Label returns the stable label the policy rule tables use.
func (s Status) Label() string {
	switch s {
	case StatusPendingVerification:
		return authz.RequestStatusPendingVerification
	case StatusPending:
		return authz.RequestStatusPending
	case StatusActive:
		return authz.RequestStatusActive
	case StatusPartiallyFulfilled:
		return authz.RequestStatusPartiallyFulfilled
	case StatusFulfilled:
		return authz.RequestStatusFulfilled
	case StatusCancelled:
		return authz.RequestStatusCancelled
	case StatusExpired:
		return authz.RequestStatusExpired
	default:
		return "UNSPECIFIED"
	}
}

// ParseStatus maps a stable label back to a status.
func ParseStatus(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case authz.RequestStatusPendingVerification:
		return StatusPendingVerification
	case authz.RequestStatusPending:
		return StatusPending
	case authz.RequestStatusActive:
		return StatusActive
	case authz.RequestStatusPartiallyFulfilled:
		return StatusPartiallyFulfilled
	case authz.RequestStatusFulfilled:
		return StatusFulfilled
	case authz.RequestStatusCancelled:
		return StatusCancelled
	case authz.RequestStatusExpired:
		return StatusExpired
	default:
		return StatusUnspecified
	}
}

// Label returns a stable label for the urgency.
func (u Urgency) Label() string {
	switch u {
	case UrgencyLow:
		return "LOW"
	case UrgencyMedium:
		return "MEDIUM"
	case UrgencyHigh:
		return "HIGH"
	case UrgencyCritical:
		return "CRITICAL"
	default:
		return "UNSPECIFIED"
	}
}

// ParseUrgency maps a stable label back to an urgency.
func ParseUrgency(label string) Urgency {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LOW":
		return UrgencyLow
	case "MEDIUM":
		return UrgencyMedium
	case "HIGH":
		return UrgencyHigh
	case "CRITICAL":
		return UrgencyCritical
	default:
		return UrgencyUnspecified
	}
}

// Descriptor returns the policy view of a stored request.
func Descriptor(req BloodRequest) authz.Resource {
	return authz.Resource{
		Kind:    authz.KindBloodRequest,
		ID:      req.ID,
		OwnerID: req.RequesterUID,
		Status:  req.Status.Label(),
	}
}
