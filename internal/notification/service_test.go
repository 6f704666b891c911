package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

type fakeStore struct {
	mu    sync.Mutex
	notes map[string]Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[string]Notification)}
}

func (s *fakeStore) PutNotification(_ context.Context, note Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[note.ID]; ok {
		return ErrConflict
	}
	s.notes[note.ID] = note
	return nil
}

func (s *fakeStore) GetNotification(_ context.Context, notificationID string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[notificationID]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return note, nil
}

func (s *fakeStore) UpdateNotification(_ context.Context, note Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[note.ID]; !ok {
		return ErrNotFound
	}
	s.notes[note.ID] = note
	return nil
}

func (s *fakeStore) DeleteNotification(_ context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[notificationID]; !ok {
		return ErrNotFound
	}
	delete(s.notes, notificationID)
	return nil
}

func (s *fakeStore) ListNotificationsByRecipient(_ context.Context, recipientUID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notes []Notification
	for _, note := range s.notes {
		if note.RecipientUID == recipientUID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

var (
	admin     = authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	recipient = authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	stranger  = authz.Identity{Subject: "user-2", Role: authz.RoleDonor}
)

func permissionDenied(t *testing.T, err error, reason string) {
	t.Helper()
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodePermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if domainErr.Metadata["Reason"] != reason {
		t.Fatalf("deny reason = %q, want %q", domainErr.Metadata["Reason"], reason)
	}
}

func seedNotification(t *testing.T, svc *Service) Notification {
	t.Helper()
	note, err := svc.Publish(context.Background(), admin, CreateInput{
		RecipientUID: recipient.Subject,
		Type:         "REQUEST_MATCH",
		Message:      "A matching blood request was posted near you.",
		Link:         "/requests/req-1",
	})
	if err != nil {
		t.Fatalf("publish notification: %v", err)
	}
	return note
}

func TestPublishIsStaffOnly(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	seedNotification(t, svc)

	_, err := svc.Publish(context.Background(), recipient, CreateInput{
		RecipientUID: recipient.Subject, Message: "self-addressed",
	})
	permissionDenied(t, err, "NOT_ADMIN")
}

func TestInboxScopedToRecipient(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	note := seedNotification(t, svc)

	if _, err := svc.Get(context.Background(), recipient, note.ID); err != nil {
		t.Fatalf("recipient read: %v", err)
	}
	_, err := svc.Get(context.Background(), stranger, note.ID)
	permissionDenied(t, err, "NOT_OWNER")

	inbox, err := svc.Inbox(context.Background(), recipient, recipient.Subject)
	if err != nil {
		t.Fatalf("recipient inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("inbox = %d records, want 1", len(inbox))
	}
	_, err = svc.Inbox(context.Background(), stranger, recipient.Subject)
	permissionDenied(t, err, "NOT_OWNER")
	if _, err := svc.Inbox(context.Background(), admin, recipient.Subject); err != nil {
		t.Fatalf("staff inbox: %v", err)
	}
}

func TestRecipientMayOnlyFlipReadFlag(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	note := seedNotification(t, svc)

	read, err := svc.MarkRead(context.Background(), recipient, note.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.Read || read.ReadAt.IsZero() {
		t.Fatalf("read flag not set: %+v", read)
	}

	message := "rewritten"
	link := "/elsewhere"
	_, err = svc.Update(context.Background(), recipient, note.ID, UpdateInput{Message: &message, Link: &link})
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["Reason"] != "FIELD_NOT_UPDATABLE" {
		t.Fatalf("expected FIELD_NOT_UPDATABLE deny, got %v", err)
	}
	if denied := domainErr.Metadata["DeniedFields"]; denied != "link,message" {
		t.Fatalf("denied fields = %q, want link,message", denied)
	}

	// Staff may rewrite the body.
	if _, err := svc.Update(context.Background(), admin, note.ID, UpdateInput{Message: &message}); err != nil {
		t.Fatalf("staff rewrite: %v", err)
	}
}

func TestDeleteIsStaffOnly(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	note := seedNotification(t, svc)

	err := svc.Delete(context.Background(), recipient, note.ID)
	permissionDenied(t, err, "NOT_ADMIN")
	if err := svc.Delete(context.Background(), admin, note.ID); err != nil {
		t.Fatalf("staff delete: %v", err)
	}
}

func TestNormalizeCreateInput(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeCreateInput(CreateInput{Message: "hello"}); !errors.Is(err, ErrEmptyRecipient) {
		t.Fatalf("expected ErrEmptyRecipient, got %v", err)
	}
	if _, err := NormalizeCreateInput(CreateInput{RecipientUID: "user-1", Message: "  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}
