package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/platform/id"
)

// Store is the persistence boundary for donation records.
type Store interface {
	PutDonation(ctx context.Context, record Donation) error
	GetDonation(ctx context.Context, donationID string) (Donation, error)
	UpdateDonation(ctx context.Context, record Donation) error
	DeleteDonation(ctx context.Context, donationID string) error
	ListDonations(ctx context.Context) ([]Donation, error)
	ListDonationsByDonor(ctx context.Context, donorUID string) ([]Donation, error)
}

// Service guards donation access with the policy engine.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
	newID   func() (string, error)
}

// NewService constructs the donation service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, auditor: auditor, clock: clock, newID: newID}
}

// Create records a completed donation. Staff only: donors never write
// their own ledger entries.
func (s *Service) Create(ctx context.Context, identity authz.Identity, input CreateInput) (Donation, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Donation{}, err
	}

	proposed := authz.Resource{Kind: authz.KindDonation, OwnerID: normalized.DonorUID}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return Donation{}, authz.Denied(decision)
	}

	donationID, err := s.newID()
	if err != nil {
		return Donation{}, fmt.Errorf("generate donation id: %w", err)
	}
	now := s.clock().UTC()
	donatedAt := normalized.DonatedAt
	if donatedAt.IsZero() {
		donatedAt = now
	}
	record := Donation{
		ID:         donationID,
		DonorUID:   normalized.DonorUID,
		BankID:     normalized.BankID,
		CampaignID: normalized.CampaignID,
		RequestID:  normalized.RequestID,
		BloodGroup: normalized.BloodGroup,
		Units:      normalized.Units,
		Notes:      normalized.Notes,
		DonatedAt:  donatedAt.UTC(),
		CreatedAt:  now,
	}
	if err := s.store.PutDonation(ctx, record); err != nil {
		return Donation{}, err
	}
	return record, nil
}

// Get returns one donation. The donor it credits and staff may read it.
func (s *Service) Get(ctx context.Context, identity authz.Identity, donationID string) (Donation, error) {
	record, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return Donation{}, err
	}
	resource := Descriptor(record)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return Donation{}, authz.Denied(decision)
	}
	return record, nil
}

// History returns one donor's donation history, newest first. The donor
// may read their own; staff may read any donor's.
func (s *Service) History(ctx context.Context, identity authz.Identity, donorUID string) ([]Donation, error) {
	probe := authz.Resource{Kind: authz.KindDonation, OwnerID: donorUID}
	decision := authz.Evaluate(identity, authz.ActionRead, probe)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, probe, decision)
	if !decision.Allowed {
		return nil, authz.Denied(decision)
	}
	return s.store.ListDonationsByDonor(ctx, donorUID)
}

// List returns the donations the caller may see, filtered per record.
func (s *Service) List(ctx context.Context, identity authz.Identity) ([]Donation, error) {
	records, err := s.store.ListDonations(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Donation, 0, len(records))
	for _, record := range records {
		if authz.Evaluate(identity, authz.ActionRead, Descriptor(record)).Allowed {
			visible = append(visible, record)
		}
	}
	return visible, nil
}

// Update corrects a recorded donation. Staff only: the ledger is
// immutable to the donor it credits.
func (s *Service) Update(ctx context.Context, identity authz.Identity, donationID string, input UpdateInput) (Donation, error) {
	record, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return Donation{}, err
	}
	resource := Descriptor(record)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return Donation{}, authz.Denied(decision)
	}

	if input.BankID != nil {
		record.BankID = *input.BankID
	}
	if input.Units != nil {
		if *input.Units <= 0 {
			return Donation{}, ErrInvalidUnits
		}
		record.Units = *input.Units
	}
	if input.Notes != nil {
		record.Notes = *input.Notes
	}
	if err := s.store.UpdateDonation(ctx, record); err != nil {
		return Donation{}, err
	}
	return record, nil
}

// Delete removes a donation record. Staff only.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, donationID string) error {
	record, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return err
	}
	resource := Descriptor(record)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteDonation(ctx, donationID)
}
