package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
)

type fakeStore struct {
	mu     sync.Mutex
	events []Event
}

func (s *fakeStore) AppendDecision(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func TestRecordPersistsDecision(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	emitter := NewEmitter(store)
	emitter.clock = func() time.Time {
		return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	}

	identity := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	resource := authz.Resource{Kind: authz.KindBloodRequest, ID: "req-1", OwnerID: "user-1"}
	decision := authz.Decision{Reason: authz.ReasonInvalidLifecycleState}

	if err := emitter.Record(context.Background(), identity, authz.ActionUpdate, resource, decision); err != nil {
		t.Fatalf("record decision: %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	event := store.events[0]
	if event.Subject != "user-1" || event.Role != "DONOR" {
		t.Fatalf("unexpected principal: %+v", event)
	}
	if event.Kind != "BLOOD_REQUEST" || event.Action != "UPDATE" || event.ResourceID != "req-1" {
		t.Fatalf("unexpected resource: %+v", event)
	}
	if event.Allowed || event.Reason != "INVALID_LIFECYCLE_STATE" {
		t.Fatalf("unexpected verdict: %+v", event)
	}
	if !event.Timestamp.Equal(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", event.Timestamp)
	}
}

func TestRecordDeniedFieldsJoined(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	emitter := NewEmitter(store)

	decision := authz.Decision{Reason: authz.ReasonFieldNotUpdatable, DeniedFields: []string{"link", "message"}}
	if err := emitter.Record(context.Background(), authz.Identity{Subject: "user-1"}, authz.ActionUpdate, authz.Resource{Kind: authz.KindNotification, ID: "notif-1"}, decision); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if got := store.events[0].DeniedFields; got != "link,message" {
		t.Fatalf("denied fields = %q, want %q", got, "link,message")
	}
}

func TestRecordNilEmitterIsNoOp(t *testing.T) {
	t.Parallel()

	var emitter *Emitter
	if err := emitter.Record(context.Background(), authz.Anonymous, authz.ActionRead, authz.Resource{}, authz.Decision{}); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
	if err := NewEmitter(nil).Record(context.Background(), authz.Anonymous, authz.ActionRead, authz.Resource{}, authz.Decision{}); err != nil {
		t.Fatalf("nil store: %v", err)
	}
}
