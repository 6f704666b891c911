// Package profile manages user profile records. Every profile mirrors an
// external authentication identity 1:1: the uid is the authenticated
// subject and the role is assigned by the authentication collaborator.
package profile

import (
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

var (
	// ErrNotFound indicates a profile record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "user profile not found")
	// ErrConflict indicates a profile already exists for the uid.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "user profile already exists")
	// ErrEmptyUID indicates a missing identity key.
	ErrEmptyUID = apperrors.New(apperrors.CodeUserEmptyUID, "user uid is required")
	// ErrEmptyName indicates a missing display name.
	ErrEmptyName = apperrors.New(apperrors.CodeUserEmptyName, "user name is required")
	// ErrInvalidRole indicates a missing or unknown role.
	ErrInvalidRole = apperrors.New(apperrors.CodeUserInvalidRole, "user role is required")
	// ErrInvalidBloodGroup indicates an unknown blood group.
	ErrInvalidBloodGroup = apperrors.New(apperrors.CodeUserInvalidBloodGroup, "blood group is not recognized")
)

// DonationCooldown is how long a donor waits between whole-blood donations.
const DonationCooldown = 90 * 24 * time.Hour

// User is one profile record keyed by the external authentication subject.
type User struct {
	UID        string
	Role       authz.Role
	Name       string
	Email      string
	Phone      string
	City       string
	BloodGroup blood.Group
	// Donor eligibility bookkeeping.
	Eligible       bool
	NextEligibleAt *time.Time
	TotalDonations int
	LastDonationAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SignupInput describes the profile fields supplied at signup. The uid
// and role come from the resolved identity, never from the input.
type SignupInput struct {
	Name       string
	Email      string
	Phone      string
	City       string
	BloodGroup blood.Group
}

// UpdateInput describes a partial profile update. Nil fields are left
// unchanged. Role changes pass the policy engine's field-level invariant
// and are therefore admin-only.
type UpdateInput struct {
	Name       *string
	Email      *string
	Phone      *string
	City       *string
	BloodGroup *blood.Group
	Role       *authz.Role
}

// NormalizeSignupInput trims and validates signup fields.
func NormalizeSignupInput(input SignupInput) (SignupInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.City = strings.TrimSpace(input.City)
	if input.Name == "" {
		return SignupInput{}, ErrEmptyName
	}
	if input.BloodGroup != blood.GroupUnspecified && !input.BloodGroup.Valid() {
		return SignupInput{}, ErrInvalidBloodGroup
	}
	return input, nil
}

// NextEligibleAfter returns when a donor becomes eligible again after
// donating at the given time.
func NextEligibleAfter(donatedAt time.Time) time.Time {
	return donatedAt.UTC().Add(DonationCooldown)
}

// Descriptor returns the policy view of a stored profile.
func Descriptor(user User) authz.Resource {
	return authz.Resource{
		Kind:    authz.KindUser,
		ID:      user.UID,
		OwnerID: user.UID,
		Fields:  map[string]string{"role": user.Role.Label()},
	}
}

// apply copies the changed fields of an update onto a stored profile and
// reports the proposed policy field values.
func apply(user User, input UpdateInput) (User, map[string]string) {
	proposed := map[string]string{}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.BloodGroup != nil {
		user.BloodGroup = *input.BloodGroup
	}
	if input.Role != nil {
		user.Role = *input.Role
		proposed["role"] = input.Role.Label()
	}
	return user, proposed
}
