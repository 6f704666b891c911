package bank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	"github.com/Youssef-Elmorali/studio/internal/platform/id"
)

// Store is the persistence boundary for facility records.
type Store interface {
	PutBank(ctx context.Context, bank BloodBank) error
	GetBank(ctx context.Context, bankID string) (BloodBank, error)
	UpdateBank(ctx context.Context, bank BloodBank) error
	DeleteBank(ctx context.Context, bankID string) error
	ListBanks(ctx context.Context) ([]BloodBank, error)
}

// Service guards facility access with the policy engine.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
	newID   func() (string, error)
}

// NewService constructs the facility service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, auditor: auditor, clock: clock, newID: newID}
}

// Create registers a new facility. Staff only.
func (s *Service) Create(ctx context.Context, identity authz.Identity, input CreateInput) (BloodBank, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return BloodBank{}, err
	}

	proposed := authz.Resource{Kind: authz.KindBloodBank}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return BloodBank{}, authz.Denied(decision)
	}

	bankID, err := s.newID()
	if err != nil {
		return BloodBank{}, fmt.Errorf("generate bank id: %w", err)
	}
	inventory := normalized.Inventory
	if inventory == nil {
		inventory = map[blood.Group]int{}
	}
	now := s.clock().UTC()
	bank := BloodBank{
		ID:             bankID,
		Name:           normalized.Name,
		Address:        normalized.Address,
		City:           normalized.City,
		Phone:          normalized.Phone,
		OperatingHours: normalized.OperatingHours,
		Inventory:      inventory,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.PutBank(ctx, bank); err != nil {
		return BloodBank{}, err
	}
	return bank, nil
}

// Get returns one facility. Public read, no identity required.
func (s *Service) Get(ctx context.Context, identity authz.Identity, bankID string) (BloodBank, error) {
	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return BloodBank{}, ErrNotFound
	}
	bank, err := s.store.GetBank(ctx, bankID)
	if err != nil {
		return BloodBank{}, err
	}

	resource := Descriptor(bank)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return BloodBank{}, authz.Denied(decision)
	}
	return bank, nil
}

// List returns all facilities. Public read.
func (s *Service) List(ctx context.Context, identity authz.Identity) ([]BloodBank, error) {
	banks, err := s.store.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]BloodBank, 0, len(banks))
	for _, bank := range banks {
		if authz.Evaluate(identity, authz.ActionRead, Descriptor(bank)).Allowed {
			visible = append(visible, bank)
		}
	}
	return visible, nil
}

// Update applies a partial facility update. Staff only.
func (s *Service) Update(ctx context.Context, identity authz.Identity, bankID string, input UpdateInput) (BloodBank, error) {
	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return BloodBank{}, ErrNotFound
	}
	stored, err := s.store.GetBank(ctx, bankID)
	if err != nil {
		return BloodBank{}, err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return BloodBank{}, authz.Denied(decision)
	}

	if input.Name != nil {
		stored.Name = strings.TrimSpace(*input.Name)
		if stored.Name == "" {
			return BloodBank{}, ErrEmptyName
		}
	}
	if input.Address != nil {
		stored.Address = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		stored.City = strings.TrimSpace(*input.City)
	}
	if input.Phone != nil {
		stored.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.OperatingHours != nil {
		stored.OperatingHours = strings.TrimSpace(*input.OperatingHours)
	}
	if input.Inventory != nil {
		if err := validateInventory(input.Inventory); err != nil {
			return BloodBank{}, err
		}
		stored.Inventory = input.Inventory
	}

	stored.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateBank(ctx, stored); err != nil {
		return BloodBank{}, err
	}
	return stored, nil
}

// Delete removes one facility. Staff only.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, bankID string) error {
	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return ErrNotFound
	}
	stored, err := s.store.GetBank(ctx, bankID)
	if err != nil {
		return err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteBank(ctx, bankID)
}
