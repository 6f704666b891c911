// Package bank manages blood bank facility records. Facility details and
// inventory are public-readable; all mutation is staff-only.
package bank

import (
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

var (
	// ErrNotFound indicates a blood bank record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "blood bank not found")
	// ErrConflict indicates a write conflicted with an existing record.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "blood bank already exists")
	// ErrEmptyName indicates a missing facility name.
	ErrEmptyName = apperrors.New(apperrors.CodeBankEmptyName, "blood bank name is required")
	// ErrInvalidBloodGroup indicates an unknown inventory blood group.
	ErrInvalidBloodGroup = apperrors.New(apperrors.CodeBankInvalidBloodGroup, "inventory blood group is not recognized")
	// ErrNegativeUnits indicates a negative inventory unit count.
	ErrNegativeUnits = apperrors.New(apperrors.CodeBankNegativeUnits, "inventory units must be non-negative")
)

// BloodBank is one facility record. It has no owner.
type BloodBank struct {
	ID             string
	Name           string
	Address        string
	City           string
	Phone          string
	OperatingHours string
	// Inventory maps blood group to available unit count.
	Inventory map[blood.Group]int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput describes a new facility record.
type CreateInput struct {
	Name           string
	Address        string
	City           string
	Phone          string
	OperatingHours string
	Inventory      map[blood.Group]int
}

// UpdateInput describes a partial facility update. Nil fields are left
// unchanged; a non-nil Inventory replaces the stored mapping whole.
type UpdateInput struct {
	Name           *string
	Address        *string
	City           *string
	Phone          *string
	OperatingHours *string
	Inventory      map[blood.Group]int
}

// NormalizeCreateInput trims and validates facility input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.City = strings.TrimSpace(input.City)
	input.Phone = strings.TrimSpace(input.Phone)
	input.OperatingHours = strings.TrimSpace(input.OperatingHours)
	if input.Name == "" {
		return CreateInput{}, ErrEmptyName
	}
	if err := validateInventory(input.Inventory); err != nil {
		return CreateInput{}, err
	}
	return input, nil
}

func validateInventory(inventory map[blood.Group]int) error {
	for group, units := range inventory {
		if !group.Valid() {
			return ErrInvalidBloodGroup
		}
		if units < 0 {
			return ErrNegativeUnits
		}
	}
	return nil
}

// Descriptor returns the policy view of a facility record.
func Descriptor(bank BloodBank) authz.Resource {
	return authz.Resource{Kind: authz.KindBloodBank, ID: bank.ID}
}
