package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/platform/id"
)

// Store is the persistence boundary for drive records.
type Store interface {
	PutCampaign(ctx context.Context, drive Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (Campaign, error)
	UpdateCampaign(ctx context.Context, drive Campaign) error
	DeleteCampaign(ctx context.Context, campaignID string) error
	ListCampaigns(ctx context.Context) ([]Campaign, error)
}

// Service guards drive access with the policy engine.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
	newID   func() (string, error)
}

// NewService constructs the campaign service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, auditor: auditor, clock: clock, newID: newID}
}

// Create registers a new drive in the Upcoming state. Staff only.
func (s *Service) Create(ctx context.Context, identity authz.Identity, input CreateInput) (Campaign, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Campaign{}, err
	}

	proposed := authz.Resource{Kind: authz.KindCampaign, Status: StatusUpcoming.Label()}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return Campaign{}, authz.Denied(decision)
	}

	campaignID, err := s.newID()
	if err != nil {
		return Campaign{}, fmt.Errorf("generate campaign id: %w", err)
	}
	now := s.clock().UTC()
	drive := Campaign{
		ID:          campaignID,
		Name:        normalized.Name,
		Description: normalized.Description,
		BankID:      normalized.BankID,
		Location:    normalized.Location,
		StartAt:     normalized.StartAt.UTC(),
		EndAt:       normalized.EndAt.UTC(),
		GoalUnits:   normalized.GoalUnits,
		Status:      StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutCampaign(ctx, drive); err != nil {
		return Campaign{}, err
	}
	return drive, nil
}

// Get returns one drive. Public read.
func (s *Service) Get(ctx context.Context, identity authz.Identity, campaignID string) (Campaign, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return Campaign{}, ErrNotFound
	}
	drive, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return Campaign{}, err
	}

	resource := Descriptor(drive)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return Campaign{}, authz.Denied(decision)
	}
	return drive, nil
}

// List returns all drives. Public read.
func (s *Service) List(ctx context.Context, identity authz.Identity) ([]Campaign, error) {
	drives, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Campaign, 0, len(drives))
	for _, drive := range drives {
		if authz.Evaluate(identity, authz.ActionRead, Descriptor(drive)).Allowed {
			visible = append(visible, drive)
		}
	}
	return visible, nil
}

// Update applies a partial drive update. Staff only.
func (s *Service) Update(ctx context.Context, identity authz.Identity, campaignID string, input UpdateInput) (Campaign, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return Campaign{}, ErrNotFound
	}
	stored, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return Campaign{}, err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return Campaign{}, authz.Denied(decision)
	}

	if input.Name != nil {
		stored.Name = strings.TrimSpace(*input.Name)
		if stored.Name == "" {
			return Campaign{}, ErrEmptyName
		}
	}
	if input.Description != nil {
		stored.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		stored.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartAt != nil {
		stored.StartAt = input.StartAt.UTC()
	}
	if input.EndAt != nil {
		stored.EndAt = input.EndAt.UTC()
	}
	if stored.EndAt.Before(stored.StartAt) {
		return Campaign{}, ErrInvalidSchedule
	}
	if input.GoalUnits != nil {
		if *input.GoalUnits <= 0 {
			return Campaign{}, ErrInvalidGoal
		}
		stored.GoalUnits = *input.GoalUnits
	}
	if input.CollectedUnits != nil && *input.CollectedUnits >= 0 {
		stored.CollectedUnits = *input.CollectedUnits
	}

	stored.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateCampaign(ctx, stored); err != nil {
		return Campaign{}, err
	}
	return stored, nil
}

// TransitionStatus moves a drive through its lifecycle. Staff only.
func (s *Service) TransitionStatus(ctx context.Context, identity authz.Identity, campaignID string, target Status) (Campaign, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return Campaign{}, ErrNotFound
	}
	stored, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return Campaign{}, err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return Campaign{}, authz.Denied(decision)
	}

	updated, err := Transition(stored, target, s.clock)
	if err != nil {
		return Campaign{}, err
	}
	if err := s.store.UpdateCampaign(ctx, updated); err != nil {
		return Campaign{}, err
	}
	return updated, nil
}

// Delete removes one drive. Staff only.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, campaignID string) error {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return ErrNotFound
	}
	stored, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteCampaign(ctx, campaignID)
}
