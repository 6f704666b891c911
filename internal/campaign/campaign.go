// Package campaign manages donation drive records. Campaigns are
// public-readable; all mutation is staff-only.
package campaign

import (
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

// Status describes the lifecycle of a donation drive.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusUpcoming indicates the drive has not started yet.
	StatusUpcoming
	// StatusOngoing indicates the drive is collecting donations.
	StatusOngoing
	// StatusCompleted indicates the drive finished.
	StatusCompleted
	// StatusCancelled indicates the drive was called off.
	StatusCancelled
)

var (
	// ErrNotFound indicates a campaign record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "campaign not found")
	// ErrConflict indicates a write conflicted with an existing record.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "campaign already exists")
	// ErrEmptyName indicates a missing campaign name.
	ErrEmptyName = apperrors.New(apperrors.CodeCampaignEmptyName, "campaign name is required")
	// ErrInvalidSchedule indicates an end time before the start time.
	ErrInvalidSchedule = apperrors.New(apperrors.CodeCampaignInvalidSchedule, "campaign end time must not precede start time")
	// ErrInvalidGoal indicates a non-positive unit goal.
	ErrInvalidGoal = apperrors.New(apperrors.CodeCampaignInvalidGoal, "campaign goal units must be positive")
)

// Campaign is one donation drive record. It has no owner.
type Campaign struct {
	ID          string
	Name        string
	Description string
	// BankID optionally links the drive to a hosting blood bank.
	BankID         string
	Location       string
	StartAt        time.Time
	EndAt          time.Time
	GoalUnits      int
	CollectedUnits int
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateInput describes a new donation drive.
type CreateInput struct {
	Name        string
	Description string
	BankID      string
	Location    string
	StartAt     time.Time
	EndAt       time.Time
	GoalUnits   int
}

// UpdateInput describes a partial drive update. Nil fields are left
// unchanged.
type UpdateInput struct {
	Name           *string
	Description    *string
	Location       *string
	StartAt        *time.Time
	EndAt          *time.Time
	GoalUnits      *int
	CollectedUnits *int
}

// NormalizeCreateInput trims and validates drive input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.BankID = strings.TrimSpace(input.BankID)
	input.Location = strings.TrimSpace(input.Location)
	if input.Name == "" {
		return CreateInput{}, ErrEmptyName
	}
	if input.EndAt.Before(input.StartAt) {
		return CreateInput{}, ErrInvalidSchedule
	}
	if input.GoalUnits <= 0 {
		return CreateInput{}, ErrInvalidGoal
	}
	return input, nil
}

// Transition applies a status change and updates the timestamp.
func Transition(drive Campaign, target Status, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if !transitionAllowed(drive.Status, target) {
		return Campaign{}, apperrors.WithMetadata(
			apperrors.CodeCampaignInvalidStatusTransition,
			fmt.Sprintf("campaign status transition not allowed: %s -> %s", drive.Status.Label(), target.Label()),
			map[string]string{"FromStatus": drive.Status.Label(), "ToStatus": target.Label()},
		)
	}
	drive.Status = target
	drive.UpdatedAt = now().UTC()
	return drive, nil
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusUpcoming:
		return to == StatusOngoing || to == StatusCancelled
	case StatusOngoing:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Label returns a stable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusUpcoming:
		return "UPCOMING"
	case StatusOngoing:
		return "ONGOING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseStatus maps a stable label back to a status.
func ParseStatus(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "UPCOMING":
		return StatusUpcoming
	case "ONGOING":
		return StatusOngoing
	case "COMPLETED":
		return StatusCompleted
	case "CANCELLED":
		return StatusCancelled
	default:
		return StatusUnspecified
	}
}

// Descriptor returns the policy view of a drive record.
func Descriptor(drive Campaign) authz.Resource {
	return authz.Resource{
		Kind:   authz.KindCampaign,
		ID:     drive.ID,
		Status: drive.Status.Label(),
	}
}
