// Package donation keeps the ledger of completed donations. Records are
// written by staff at collection time; donors can read their own history
// but never rewrite it.
package donation

import (
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

var (
	// ErrNotFound indicates a donation record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "donation not found")
	// ErrConflict indicates a donation id collision.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "donation already exists")
	// ErrEmptyDonor indicates a missing donor reference.
	ErrEmptyDonor = apperrors.New(apperrors.CodeDonationEmptyDonor, "donor uid is required")
	// ErrInvalidBloodGroup indicates an unknown blood group.
	ErrInvalidBloodGroup = apperrors.New(apperrors.CodeDonationInvalidBloodGroup, "blood group is not recognized")
	// ErrInvalidUnits indicates a non-positive unit count.
	ErrInvalidUnits = apperrors.New(apperrors.CodeDonationInvalidUnits, "donated units must be positive")
)

// Donation is one collected unit batch credited to a donor.
type Donation struct {
	ID         string
	DonorUID   string
	BankID     string
	CampaignID string
	RequestID  string
	BloodGroup blood.Group
	Units      int
	Notes      string
	DonatedAt  time.Time
	CreatedAt  time.Time
}

// CreateInput describes a donation being recorded by staff.
type CreateInput struct {
	DonorUID   string
	BankID     string
	CampaignID string
	RequestID  string
	BloodGroup blood.Group
	Units      int
	Notes      string
	DonatedAt  time.Time
}

// UpdateInput corrects a recorded donation. Nil fields stay unchanged.
type UpdateInput struct {
	BankID *string
	Units  *int
	Notes  *string
}

// NormalizeCreateInput trims and validates donation input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.DonorUID = strings.TrimSpace(input.DonorUID)
	input.BankID = strings.TrimSpace(input.BankID)
	input.CampaignID = strings.TrimSpace(input.CampaignID)
	input.RequestID = strings.TrimSpace(input.RequestID)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.DonorUID == "" {
		return CreateInput{}, ErrEmptyDonor
	}
	if !input.BloodGroup.Valid() {
		return CreateInput{}, ErrInvalidBloodGroup
	}
	if input.Units <= 0 {
		return CreateInput{}, ErrInvalidUnits
	}
	return input, nil
}

// Descriptor returns the policy view of a stored donation. The donor is
// the owner for read purposes only.
func Descriptor(record Donation) authz.Resource {
	return authz.Resource{
		Kind:    authz.KindDonation,
		ID:      record.ID,
		OwnerID: record.DonorUID,
	}
}
