package authz

// BloodRequest lifecycle labels used by the rule tables. The request
// domain reuses these so the gate has a single source of truth.
const (
	RequestStatusPendingVerification = "PENDING_VERIFICATION"
	RequestStatusPending             = "PENDING"
	RequestStatusActive              = "ACTIVE"
	RequestStatusPartiallyFulfilled  = "PARTIALLY_FULFILLED"
	RequestStatusFulfilled           = "FULFILLED"
	RequestStatusCancelled           = "CANCELLED"
	RequestStatusExpired             = "EXPIRED"
)

// RequestEditableStatuses returns the statuses in which the owner may
// still mutate a blood request.
func RequestEditableStatuses() []string {
	return []string{
		RequestStatusPendingVerification,
		RequestStatusPending,
		RequestStatusActive,
	}
}

// RequestPublicStatuses returns the statuses in which a blood request is
// visible to authenticated principals other than its owner.
func RequestPublicStatuses() []string {
	return []string{
		RequestStatusActive,
		RequestStatusPartiallyFulfilled,
		RequestStatusFulfilled,
	}
}

// predicate grants an action when it reports true for the identity and
// resource under evaluation.
type predicate func(Identity, Resource) bool

func isSelf(id Identity, res Resource) bool {
	return !id.IsAnonymous() && res.OwnerID != "" && id.Subject == res.OwnerID
}

func isAdmin(id Identity, _ Resource) bool {
	return id.IsAdmin()
}

func isAuthenticated(id Identity, _ Resource) bool {
	return !id.IsAnonymous()
}

func isPublic(_ Identity, _ Resource) bool {
	return true
}

func statusIn(statuses ...string) predicate {
	return func(_ Identity, res Resource) bool {
		for _, status := range statuses {
			if res.Status == status {
				return true
			}
		}
		return false
	}
}

func allOf(predicates ...predicate) predicate {
	return func(id Identity, res Resource) bool {
		for _, p := range predicates {
			if !p(id, res) {
				return false
			}
		}
		return true
	}
}

// actionRule is the OR-combined grant set for one kind/action pair, plus
// the hints used to pick a deny reason when no grant holds.
type actionRule struct {
	grants []predicate
	// adminOnly marks rules whose only grant is the admin override.
	adminOnly bool
	// gated marks rules where the owner path is lifecycle-gated, so an
	// owner failing the rule failed on record state, not ownership.
	gated bool
}

func (r actionRule) denyReason(id Identity, res Resource) Reason {
	if id.IsAnonymous() {
		return ReasonNotAuthenticated
	}
	if r.adminOnly {
		return ReasonNotAdmin
	}
	if r.gated && isSelf(id, res) {
		return ReasonInvalidLifecycleState
	}
	return ReasonNotOwner
}

// ruleset is the fixed per-kind policy table. Rules are compiled into the
// engine; there is no dynamic loading.
var ruleset = map[Kind]map[Action]actionRule{
	KindUser: {
		// Signup mirrors the external authentication record: the subject
		// creates its own profile.
		ActionCreate: {grants: []predicate{isSelf}},
		ActionRead:   {grants: []predicate{isSelf, isAdmin}},
		ActionUpdate: {grants: []predicate{isSelf, isAdmin}},
		ActionDelete: {grants: []predicate{isAdmin}, adminOnly: true},
	},
	KindBloodBank: {
		ActionCreate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionRead:   {grants: []predicate{isPublic}},
		ActionUpdate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionDelete: {grants: []predicate{isAdmin}, adminOnly: true},
	},
	KindCampaign: {
		ActionCreate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionRead:   {grants: []predicate{isPublic}},
		ActionUpdate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionDelete: {grants: []predicate{isAdmin}, adminOnly: true},
	},
	KindBloodRequest: {
		ActionCreate: {grants: []predicate{allOf(isAuthenticated, isSelf)}},
		ActionRead: {grants: []predicate{
			isSelf,
			isAdmin,
			allOf(isAuthenticated, statusIn(RequestPublicStatuses()...)),
		}},
		ActionUpdate: {
			grants: []predicate{
				allOf(isSelf, statusIn(RequestEditableStatuses()...)),
				isAdmin,
			},
			gated: true,
		},
		ActionDelete: {grants: []predicate{isSelf, isAdmin}},
	},
	KindDonation: {
		// Donations are recorded by staff, never by the donor directly,
		// and are immutable once written.
		ActionCreate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionRead:   {grants: []predicate{isSelf, isAdmin}},
		ActionUpdate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionDelete: {grants: []predicate{isAdmin}, adminOnly: true},
	},
	KindNotification: {
		ActionCreate: {grants: []predicate{isAdmin}, adminOnly: true},
		ActionRead:   {grants: []predicate{isSelf, isAdmin}},
		ActionUpdate: {grants: []predicate{isSelf, isAdmin}},
		ActionDelete: {grants: []predicate{isAdmin}, adminOnly: true},
	},
}

// fieldInvariant restricts which fields a non-admin update may change
// even after the action-level rule granted the update.
type fieldInvariant struct {
	// immutable fields may never change through a non-admin update.
	immutable []string
	// mutable, when non-empty, is the only set of fields a non-admin
	// update may change.
	mutable []string
}

var fieldInvariants = map[Kind]fieldInvariant{
	// Role self-elevation is prevented: role changes are admin-only.
	KindUser: {immutable: []string{"role"}},
	// The recipient may flip the read flag but not alter the payload.
	KindNotification: {mutable: []string{"read"}},
}
