package request

import (
	"context"
	"fmt"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/platform/id"
)

// Store is the persistence boundary for blood request records.
type Store interface {
	PutRequest(ctx context.Context, req BloodRequest) error
	GetRequest(ctx context.Context, requestID string) (BloodRequest, error)
	// UpdateRequestInStatuses writes the request only while the stored
	// record's status is in allowed. An empty slice writes
	// unconditionally. Returns ErrConflict when the guard fails.
	UpdateRequestInStatuses(ctx context.Context, req BloodRequest, allowed []Status) error
	DeleteRequest(ctx context.Context, requestID string) error
	ListRequests(ctx context.Context) ([]BloodRequest, error)
}

// Service guards blood request access with the policy engine.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
	newID   func() (string, error)
}

// NewService constructs the request service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, auditor: auditor, clock: clock, newID: newID}
}

// Create raises a new request owned by the caller. New requests start
// pending verification.
func (s *Service) Create(ctx context.Context, identity authz.Identity, input CreateInput) (BloodRequest, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return BloodRequest{}, err
	}

	proposed := authz.Resource{Kind: authz.KindBloodRequest, OwnerID: identity.Subject}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return BloodRequest{}, authz.Denied(decision)
	}

	requestID, err := s.newID()
	if err != nil {
		return BloodRequest{}, fmt.Errorf("generate request id: %w", err)
	}
	now := s.clock().UTC()
	req := BloodRequest{
		ID:            requestID,
		RequesterUID:  identity.Subject,
		PatientName:   normalized.PatientName,
		Hospital:      normalized.Hospital,
		BloodGroup:    normalized.BloodGroup,
		UnitsRequired: normalized.UnitsRequired,
		Urgency:       normalized.Urgency,
		Status:        StatusPendingVerification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.PutRequest(ctx, req); err != nil {
		return BloodRequest{}, err
	}
	return req, nil
}

// Get returns one request. Owner and staff always see the record; other
// authenticated users only while it is public.
func (s *Service) Get(ctx context.Context, identity authz.Identity, requestID string) (BloodRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return BloodRequest{}, err
	}
	resource := Descriptor(req)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return BloodRequest{}, authz.Denied(decision)
	}
	return req, nil
}

// List returns the requests the caller may see, filtered per record.
func (s *Service) List(ctx context.Context, identity authz.Identity) ([]BloodRequest, error) {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]BloodRequest, 0, len(requests))
	for _, req := range requests {
		if authz.Evaluate(identity, authz.ActionRead, Descriptor(req)).Allowed {
			visible = append(visible, req)
		}
	}
	return visible, nil
}

// Update applies a partial edit. The owner may edit only while the
// request sits in an editable status; staff may edit at any point. The
// store re-checks the owner's lifecycle gate so a concurrent transition
// cannot slip an edit past a closed status.
func (s *Service) Update(ctx context.Context, identity authz.Identity, requestID string, input UpdateInput) (BloodRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return BloodRequest{}, err
	}
	resource := Descriptor(req)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return BloodRequest{}, authz.Denied(decision)
	}

	updated, err := apply(req, input)
	if err != nil {
		return BloodRequest{}, err
	}
	updated.UpdatedAt = s.clock().UTC()

	guard := editableStatuses()
	if identity.IsAdmin() {
		guard = nil
	}
	if err := s.store.UpdateRequestInStatuses(ctx, updated, guard); err != nil {
		return BloodRequest{}, err
	}
	return updated, nil
}

// TransitionStatus moves a request along its lifecycle. Cancellation by
// the owner rides the same update rule as field edits; every other
// transition requires staff.
func (s *Service) TransitionStatus(ctx context.Context, identity authz.Identity, requestID string, target Status) (BloodRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return BloodRequest{}, err
	}
	resource := Descriptor(req)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return BloodRequest{}, authz.Denied(decision)
	}
	if !identity.IsAdmin() && target != StatusCancelled {
		return BloodRequest{}, authz.Denied(authz.Decision{Reason: authz.ReasonNotAdmin})
	}

	updated, err := Transition(req, target, s.clock)
	if err != nil {
		return BloodRequest{}, err
	}
	if err := s.store.UpdateRequestInStatuses(ctx, updated, []Status{req.Status}); err != nil {
		return BloodRequest{}, err
	}
	return updated, nil
}

// RecordFulfillment credits delivered units against a request and
// advances it to partially or fully fulfilled. Staff only.
func (s *Service) RecordFulfillment(ctx context.Context, identity authz.Identity, requestID string, units int) (BloodRequest, error) {
	if units <= 0 {
		return BloodRequest{}, ErrInvalidUnits
	}
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return BloodRequest{}, err
	}
	resource := Descriptor(req)
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return BloodRequest{}, authz.Denied(decision)
	}
	if !identity.IsAdmin() {
		return BloodRequest{}, authz.Denied(authz.Decision{Reason: authz.ReasonNotAdmin})
	}

	target := StatusPartiallyFulfilled
	if req.UnitsFulfilled+units >= req.UnitsRequired {
		target = StatusFulfilled
	}
	updated := req
	if updated.Status != target {
		updated, err = Transition(updated, target, s.clock)
		if err != nil {
			return BloodRequest{}, err
		}
	}
	updated.UnitsFulfilled = req.UnitsFulfilled + units
	updated.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateRequestInStatuses(ctx, updated, []Status{req.Status}); err != nil {
		return BloodRequest{}, err
	}
	return updated, nil
}

// Delete removes a request. Owner or staff.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, requestID string) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	resource := Descriptor(req)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteRequest(ctx, requestID)
}

func editableStatuses() []Status {
	labels := authz.RequestEditableStatuses()
	statuses := make([]Status, 0, len(labels))
	for _, label := range labels {
		statuses = append(statuses, ParseStatus(label))
	}
	return statuses
}

func apply(req BloodRequest, input UpdateInput) (BloodRequest, error) {
	if input.PatientName != nil {
		req.PatientName = *input.PatientName
	}
	if input.Hospital != nil {
		req.Hospital = *input.Hospital
	}
	if input.BloodGroup != nil {
		if !input.BloodGroup.Valid() {
			return BloodRequest{}, ErrInvalidBloodGroup
		}
		req.BloodGroup = *input.BloodGroup
	}
	if input.UnitsRequired != nil {
		if *input.UnitsRequired <= 0 {
			return BloodRequest{}, ErrInvalidUnits
		}
		req.UnitsRequired = *input.UnitsRequired
	}
	if input.Urgency != nil {
		req.Urgency = *input.Urgency
	}
	return req, nil
}
