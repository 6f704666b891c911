package authz

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

// Evaluate decides whether the identity may perform the action on the
// resource. It never panics on malformed input: unknown kinds and actions
// deny with ReasonUnsupported so the deny-by-default posture holds even
// for unhandled cases.
func Evaluate(identity Identity, action Action, resource Resource) Decision {
	rules, ok := ruleset[resource.Kind]
	if !ok {
		return deny(ReasonUnsupported)
	}
	rule, ok := rules[action]
	if !ok {
		return deny(ReasonUnsupported)
	}

	for _, grant := range rule.grants {
		if !grant(identity, resource) {
			continue
		}
		if action == ActionUpdate && !identity.IsAdmin() {
			if denied := violatedFields(resource); len(denied) > 0 {
				return Decision{Reason: ReasonFieldNotUpdatable, DeniedFields: denied}
			}
		}
		return allow()
	}
	return deny(rule.denyReason(identity, resource))
}

// violatedFields returns the proposed field changes that break the
// kind's field-level invariant, sorted for deterministic output.
func violatedFields(resource Resource) []string {
	invariant, ok := fieldInvariants[resource.Kind]
	if !ok {
		return nil
	}

	var denied []string
	for field, proposed := range resource.Proposed {
		if proposed == resource.Fields[field] {
			continue
		}
		if invariant.denies(field) {
			denied = append(denied, field)
		}
	}
	sort.Strings(denied)
	return denied
}

func (fi fieldInvariant) denies(field string) bool {
	for _, name := range fi.immutable {
		if name == field {
			return true
		}
	}
	if len(fi.mutable) == 0 {
		return false
	}
	for _, name := range fi.mutable {
		if name == field {
			return false
		}
	}
	return true
}

// Denied converts a deny decision into the domain permission error. The
// reason and any denied fields travel as metadata so callers can report
// them back for client-side correction.
func Denied(decision Decision) error {
	if decision.Allowed {
		return nil
	}
	metadata := map[string]string{"Reason": decision.Reason.Label()}
	if len(decision.DeniedFields) > 0 {
		metadata["DeniedFields"] = strings.Join(decision.DeniedFields, ",")
	}
	return apperrors.WithMetadata(
		apperrors.CodePermissionDenied,
		fmt.Sprintf("permission denied: %s", decision.Reason.Label()),
		metadata,
	)
}
