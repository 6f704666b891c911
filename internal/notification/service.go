package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/platform/id"
)

// Store is the persistence boundary for notification records.
type Store interface {
	PutNotification(ctx context.Context, note Notification) error
	GetNotification(ctx context.Context, notificationID string) (Notification, error)
	UpdateNotification(ctx context.Context, note Notification) error
	DeleteNotification(ctx context.Context, notificationID string) error
	ListNotificationsByRecipient(ctx context.Context, recipientUID string) ([]Notification, error)
}

// Service guards notification access with the policy engine.
type Service struct {
	store   Store
	auditor *audit.Emitter
	clock   func() time.Time
	newID   func() (string, error)
}

// NewService constructs the notification service.
func NewService(store Store, auditor *audit.Emitter, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, auditor: auditor, clock: clock, newID: newID}
}

// Publish addresses a notification to one user. Staff only.
func (s *Service) Publish(ctx context.Context, identity authz.Identity, input CreateInput) (Notification, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Notification{}, err
	}

	proposed := authz.Resource{Kind: authz.KindNotification, OwnerID: normalized.RecipientUID}
	decision := authz.Evaluate(identity, authz.ActionCreate, proposed)
	_ = s.auditor.Record(ctx, identity, authz.ActionCreate, proposed, decision)
	if !decision.Allowed {
		return Notification{}, authz.Denied(decision)
	}

	notificationID, err := s.newID()
	if err != nil {
		return Notification{}, fmt.Errorf("generate notification id: %w", err)
	}
	note := Notification{
		ID:           notificationID,
		RecipientUID: normalized.RecipientUID,
		Type:         normalized.Type,
		Message:      normalized.Message,
		Link:         normalized.Link,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.store.PutNotification(ctx, note); err != nil {
		return Notification{}, err
	}
	return note, nil
}

// Get returns one notification. Recipient or staff.
func (s *Service) Get(ctx context.Context, identity authz.Identity, notificationID string) (Notification, error) {
	note, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return Notification{}, err
	}
	resource := Descriptor(note)
	decision := authz.Evaluate(identity, authz.ActionRead, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, resource, decision)
	if !decision.Allowed {
		return Notification{}, authz.Denied(decision)
	}
	return note, nil
}

// Inbox returns the notifications addressed to recipientUID. Recipient
// or staff.
func (s *Service) Inbox(ctx context.Context, identity authz.Identity, recipientUID string) ([]Notification, error) {
	probe := authz.Resource{Kind: authz.KindNotification, OwnerID: recipientUID}
	decision := authz.Evaluate(identity, authz.ActionRead, probe)
	_ = s.auditor.Record(ctx, identity, authz.ActionRead, probe, decision)
	if !decision.Allowed {
		return nil, authz.Denied(decision)
	}
	return s.store.ListNotificationsByRecipient(ctx, recipientUID)
}

// Update edits a notification. The engine's field invariant limits
// non-staff callers to the read flag; staff may rewrite the body.
func (s *Service) Update(ctx context.Context, identity authz.Identity, notificationID string, input UpdateInput) (Notification, error) {
	note, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return Notification{}, err
	}
	updated, proposed := apply(note, input, s.clock)
	if updated.Message == "" {
		return Notification{}, ErrEmptyMessage
	}

	resource := Descriptor(note)
	resource.Proposed = proposed
	decision := authz.Evaluate(identity, authz.ActionUpdate, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionUpdate, resource, decision)
	if !decision.Allowed {
		return Notification{}, authz.Denied(decision)
	}

	if err := s.store.UpdateNotification(ctx, updated); err != nil {
		return Notification{}, err
	}
	return updated, nil
}

// MarkRead flips the read flag on one of the caller's notifications.
func (s *Service) MarkRead(ctx context.Context, identity authz.Identity, notificationID string) (Notification, error) {
	read := true
	return s.Update(ctx, identity, notificationID, UpdateInput{Read: &read})
}

// Delete removes a notification. Staff only.
func (s *Service) Delete(ctx context.Context, identity authz.Identity, notificationID string) error {
	note, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	resource := Descriptor(note)
	decision := authz.Evaluate(identity, authz.ActionDelete, resource)
	_ = s.auditor.Record(ctx, identity, authz.ActionDelete, resource, decision)
	if !decision.Allowed {
		return authz.Denied(decision)
	}
	return s.store.DeleteNotification(ctx, notificationID)
}
