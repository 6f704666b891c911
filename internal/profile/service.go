package profile

import (
	"context"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
)

// Store is the persistence boundary for profile records.
type Store interface {
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, uid string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// Service guards profile access with the policy engine before touching
// the store.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
}

// NewService constructs the profile service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, auditor: auditor, clock: clock}
}

// Signup creates the profile record for the authenticated subject. The
// record's uid and role mirror the resolved identity, which closes the
// signup path without letting a caller claim another uid.
func (s *Service) Signup(ctx context.Context, identity authz.Identity, input SignupInput) (User, error) {
	normalized, err := NormalizeSignupInput(input)
	if err != nil {
		return User{}, err
	}
	if identity.Role == authz.RoleUnspecified {
		return User{}, ErrInvalidRole
	}

	proposed := authz.Resource{
		Kind:    authz.KindUser,
		OwnerID: identity.Subject,
	}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return User{}, authz.Denied(decision)
	}

	now := s.clock().UTC()
	user := User{
		UID:        identity.Subject,
		Role:       identity.Role,
		Name:       normalized.Name,
		Email:      normalized.Email,
		Phone:      normalized.Phone,
		City:       normalized.City,
		BloodGroup: normalized.BloodGroup,
		Eligible:   identity.Role == authz.RoleDonor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.PutUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Get returns one profile when the identity may read it.
func (s *Service) Get(ctx context.Context, identity authz.Identity, uid string) (User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return User{}, ErrEmptyUID
	}
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return User{}, err
	}

	resource := Descriptor(user)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return User{}, authz.Denied(decision)
	}
	return user, nil
}

// Update applies a partial profile update. Role changes are rejected for
// non-admin callers by the engine's field-level invariant.
func (s *Service) Update(ctx context.Context, identity authz.Identity, uid string, input UpdateInput) (User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return User{}, ErrEmptyUID
	}
	stored, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return User{}, err
	}

	updated, proposed := apply(stored, input)
	if updated.Name == "" {
		return User{}, ErrEmptyName
	}
	if updated.BloodGroup != stored.BloodGroup && !updated.BloodGroup.Valid() {
		return User{}, ErrInvalidBloodGroup
	}
	if input.Role != nil && *input.Role == authz.RoleUnspecified {
		return User{}, ErrInvalidRole
	}

	resource := Descriptor(stored)
	resource.Proposed = proposed
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return User{}, authz.Denied(decision)
	}

	updated.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateUser(ctx, updated); err != nil {
		return User{}, err
	}
	return updated, nil
}

// RecordDonation refreshes the donor eligibility bookkeeping after staff
// record a donation.
func (s *Service) RecordDonation(ctx context.Context, identity authz.Identity, uid string, donatedAt time.Time) (User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return User{}, ErrEmptyUID
	}
	stored, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return User{}, err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return User{}, authz.Denied(decision)
	}

	donated := donatedAt.UTC()
	nextEligible := NextEligibleAfter(donated)
	stored.TotalDonations++
	stored.LastDonationAt = &donated
	stored.NextEligibleAt = &nextEligible
	stored.Eligible = false
	stored.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateUser(ctx, stored); err != nil {
		return User{}, err
	}
	return stored, nil
}

// Delete removes one profile. Admin only; profile deletion cascades from
// the external identity, never from the owner directly.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrEmptyUID
	}
	stored, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return err
	}

	resource := Descriptor(stored)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteUser(ctx, uid)
}

// List returns the profiles the identity may read, filtered per record.
func (s *Service) List(ctx context.Context, identity authz.Identity) ([]User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]User, 0, len(users))
	for _, user := range users {
		if authz.Evaluate(identity, authz.ActionRead, Descriptor(user)).Allowed {
			visible = append(visible, user)
		}
	}
	return visible, nil
}
