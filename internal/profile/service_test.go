package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

type fakeStore struct {
	mu    sync.Mutex
	users map[string]User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]User)}
}

func (s *fakeStore) PutUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UID]; ok {
		return ErrConflict
	}
	s.users[user.UID] = user
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, uid string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[uid]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UID]; !ok {
		return ErrNotFound
	}
	s.users[user.UID] = user
	return nil
}

func (s *fakeStore) DeleteUser(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[uid]; !ok {
		return ErrNotFound
	}
	delete(s.users, uid)
	return nil
}

func (s *fakeStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })
	return users, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func permissionDenied(t *testing.T, err error) *apperrors.Error {
	t.Helper()
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code != apperrors.CodePermissionDenied {
		t.Fatalf("code = %s, want PERMISSION_DENIED", domainErr.Code)
	}
	return domainErr
}

func TestSignupCreatesOwnProfile(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now))

	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	user, err := svc.Signup(context.Background(), donor, SignupInput{
		Name:       " Dana Reyes ",
		Email:      "dana@example.com",
		City:       "Cairo",
		BloodGroup: blood.GroupONegative,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.UID != "user-1" || user.Role != authz.RoleDonor {
		t.Fatalf("unexpected identity mirror: %+v", user)
	}
	if user.Name != "Dana Reyes" {
		t.Fatalf("name not trimmed: %q", user.Name)
	}
	if !user.Eligible {
		t.Fatal("new donor should start eligible")
	}
	if !user.CreatedAt.Equal(now) || !user.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps: %+v", user)
	}
}

func TestSignupAnonymousDenied(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.Signup(context.Background(), authz.Identity{Role: authz.RoleDonor}, SignupInput{Name: "Ghost"})
	denied := permissionDenied(t, err)
	if denied.Metadata["Reason"] != "NOT_AUTHENTICATED" {
		t.Fatalf("reason = %q, want NOT_AUTHENTICATED", denied.Metadata["Reason"])
	}
}

func TestGetVisibleToSelfAndAdminOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, nil)
	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	if _, err := svc.Signup(context.Background(), donor, SignupInput{Name: "Dana"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Get(context.Background(), donor, "user-1"); err != nil {
		t.Fatalf("self read: %v", err)
	}
	if _, err := svc.Get(context.Background(), authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}, "user-1"); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	other := authz.Identity{Subject: "user-2", Role: authz.RoleRecipient}
	otherUser, otherErr := svc.Get(context.Background(), other, "user-1")
	denied := permissionDenied(t, mustErr(t, otherUser, otherErr))
	if denied.Metadata["Reason"] != "NOT_OWNER" {
		t.Fatalf("reason = %q, want NOT_OWNER", denied.Metadata["Reason"])
	}
}

func TestUpdateRoleSelfElevationDenied(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, nil)
	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	if _, err := svc.Signup(context.Background(), donor, SignupInput{Name: "Dana"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	adminRole := authz.RoleAdmin
	_, err := svc.Update(context.Background(), donor, "user-1", UpdateInput{Role: &adminRole})
	denied := permissionDenied(t, err)
	if denied.Metadata["Reason"] != "FIELD_NOT_UPDATABLE" {
		t.Fatalf("reason = %q, want FIELD_NOT_UPDATABLE", denied.Metadata["Reason"])
	}
	if denied.Metadata["DeniedFields"] != "role" {
		t.Fatalf("denied fields = %q, want role", denied.Metadata["DeniedFields"])
	}

	// The same change by an admin is allowed.
	admin := authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	updated, err := svc.Update(context.Background(), admin, "user-1", UpdateInput{Role: &adminRole})
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if updated.Role != authz.RoleAdmin {
		t.Fatalf("role = %v, want RoleAdmin", updated.Role)
	}
}

func TestUpdateProfileFieldsBySelf(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, nil)
	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	if _, err := svc.Signup(context.Background(), donor, SignupInput{Name: "Dana"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	city := "Alexandria"
	updated, err := svc.Update(context.Background(), donor, "user-1", UpdateInput{City: &city})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.City != "Alexandria" {
		t.Fatalf("city = %q", updated.City)
	}
	if updated.Role != authz.RoleDonor {
		t.Fatalf("role drifted: %v", updated.Role)
	}
}

func TestRecordDonationRefreshesEligibility(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now))
	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	if _, err := svc.Signup(context.Background(), donor, SignupInput{Name: "Dana"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	admin := authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	donatedAt := now.Add(-time.Hour)
	updated, err := svc.RecordDonation(context.Background(), admin, "user-1", donatedAt)
	if err != nil {
		t.Fatalf("record donation: %v", err)
	}
	if updated.TotalDonations != 1 {
		t.Fatalf("total donations = %d, want 1", updated.TotalDonations)
	}
	if updated.Eligible {
		t.Fatal("donor should be ineligible during cooldown")
	}
	if updated.NextEligibleAt == nil || !updated.NextEligibleAt.Equal(donatedAt.Add(DonationCooldown)) {
		t.Fatalf("next eligible = %v", updated.NextEligibleAt)
	}

	// A donor cannot record donations for another donor's ledger.
	other := authz.Identity{Subject: "user-2", Role: authz.RoleDonor}
	if _, err := svc.RecordDonation(context.Background(), other, "user-1", donatedAt); err == nil {
		t.Fatal("expected non-owner eligibility update to be denied")
	}
}

func TestDeleteIsAdminOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, nil)
	donor := authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
	if _, err := svc.Signup(context.Background(), donor, SignupInput{Name: "Dana"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	denied := permissionDenied(t, svc.Delete(context.Background(), donor, "user-1"))
	if denied.Metadata["Reason"] != "NOT_ADMIN" {
		t.Fatalf("reason = %q, want NOT_ADMIN", denied.Metadata["Reason"])
	}

	admin := authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	if err := svc.Delete(context.Background(), admin, "user-1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := store.GetUser(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected profile removed, got %v", err)
	}
}

func TestListFiltersPerRecord(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, nil)
	for _, subject := range []string{"user-1", "user-2", "user-3"} {
		identity := authz.Identity{Subject: subject, Role: authz.RoleDonor}
		if _, err := svc.Signup(context.Background(), identity, SignupInput{Name: subject}); err != nil {
			t.Fatalf("signup %s: %v", subject, err)
		}
	}

	donor := authz.Identity{Subject: "user-2", Role: authz.RoleDonor}
	visible, err := svc.List(context.Background(), donor)
	if err != nil {
		t.Fatalf("list as donor: %v", err)
	}
	if len(visible) != 1 || visible[0].UID != "user-2" {
		t.Fatalf("donor list = %+v, want only self", visible)
	}

	admin := authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	visible, err = svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(visible) != 3 {
		t.Fatalf("admin list = %d records, want 3", len(visible))
	}
}

func mustErr(t *testing.T, _ User, err error) error {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	return err
}
