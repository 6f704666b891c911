// Package audit records policy decisions for operational review.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
)

// Event is one recorded policy decision.
type Event struct {
	Timestamp    time.Time
	Subject      string
	Role         string
	Kind         string
	Action       string
	ResourceID   string
	Allowed      bool
	Reason       string
	DeniedFields string
}

// Store is the persistence boundary for decision events.
type Store interface {
	AppendDecision(ctx context.Context, event Event) error
}

// Emitter records policy decisions through a store boundary.
type Emitter struct {
	store Store
	clock func() time.Time
}

// NewEmitter creates a decision emitter. A nil store makes the emitter a
// no-op.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Record persists one policy decision. It is a no-op when the emitter or
// its store is nil, so callers never guard the call.
func (e *Emitter) Record(ctx context.Context, identity authz.Identity, action authz.Action, resource authz.Resource, decision authz.Decision) error {
	if e == nil || e.store == nil {
		return nil
	}
	now := time.Now
	if e.clock != nil {
		now = e.clock
	}
	event := Event{
		Timestamp:  now().UTC(),
		Subject:    identity.Subject,
		Role:       identity.Role.Label(),
		Kind:       resource.Kind.Label(),
		Action:     action.Label(),
		ResourceID: resource.ID,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason.Label(),
	}
	if len(decision.DeniedFields) > 0 {
		event.DeniedFields = strings.Join(decision.DeniedFields, ",")
	}
	return e.store.AppendDecision(ctx, event)
}
