package campaign

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

type fakeStore struct {
	mu     sync.Mutex
	drives map[string]Campaign
}

func newFakeStore() *fakeStore {
	return &fakeStore{drives: make(map[string]Campaign)}
}

func (s *fakeStore) PutCampaign(_ context.Context, drive Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drives[drive.ID]; ok {
		return ErrConflict
	}
	s.drives[drive.ID] = drive
	return nil
}

func (s *fakeStore) GetCampaign(_ context.Context, campaignID string) (Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drive, ok := s.drives[campaignID]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return drive, nil
}

func (s *fakeStore) UpdateCampaign(_ context.Context, drive Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drives[drive.ID]; !ok {
		return ErrNotFound
	}
	s.drives[drive.ID] = drive
	return nil
}

func (s *fakeStore) DeleteCampaign(_ context.Context, campaignID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drives[campaignID]; !ok {
		return ErrNotFound
	}
	delete(s.drives, campaignID)
	return nil
}

func (s *fakeStore) ListCampaigns(_ context.Context) ([]Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drives := make([]Campaign, 0, len(s.drives))
	for _, drive := range s.drives {
		drives = append(drives, drive)
	}
	sort.Slice(drives, func(i, j int) bool { return drives[i].ID < drives[j].ID })
	return drives, nil
}

var (
	admin = authz.Identity{Subject: "staff-1", Role: authz.RoleAdmin}
	donor = authz.Identity{Subject: "user-1", Role: authz.RoleDonor}
)

func seedDrive(t *testing.T, svc *Service) Campaign {
	t.Helper()
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	drive, err := svc.Create(context.Background(), admin, CreateInput{
		Name:      "University Drive",
		Location:  "Main Hall",
		StartAt:   start,
		EndAt:     start.Add(6 * time.Hour),
		GoalUnits: 50,
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return drive
}

func TestCreateStartsUpcomingAndIsAdminOnly(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	drive := seedDrive(t, svc)
	if drive.Status != StatusUpcoming {
		t.Fatalf("status = %s, want UPCOMING", drive.Status.Label())
	}

	start := time.Now().UTC()
	_, err := svc.Create(context.Background(), donor, CreateInput{
		Name: "Rogue Drive", StartAt: start, EndAt: start, GoalUnits: 1,
	})
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["Reason"] != "NOT_ADMIN" {
		t.Fatalf("expected NOT_ADMIN deny, got %v", err)
	}
}

func TestReadIsPublic(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	drive := seedDrive(t, svc)

	if _, err := svc.Get(context.Background(), authz.Anonymous, drive.ID); err != nil {
		t.Fatalf("anonymous read: %v", err)
	}
	drives, err := svc.List(context.Background(), authz.Anonymous)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(drives) != 1 {
		t.Fatalf("anonymous list = %d records, want 1", len(drives))
	}
}

func TestTransitionStatusGuarded(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	drive := seedDrive(t, svc)

	if _, err := svc.TransitionStatus(context.Background(), donor, drive.ID, StatusOngoing); err == nil {
		t.Fatal("expected donor transition to be denied")
	}

	ongoing, err := svc.TransitionStatus(context.Background(), admin, drive.ID, StatusOngoing)
	if err != nil {
		t.Fatalf("admin transition: %v", err)
	}
	if ongoing.Status != StatusOngoing {
		t.Fatalf("status = %s, want ONGOING", ongoing.Status.Label())
	}

	if _, err := svc.TransitionStatus(context.Background(), admin, drive.ID, StatusUpcoming); err == nil {
		t.Fatal("expected backwards transition to fail")
	}
}

func TestUpdateKeepsScheduleInvariant(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, nil, nil)
	drive := seedDrive(t, svc)

	badEnd := drive.StartAt.Add(-time.Hour)
	if _, err := svc.Update(context.Background(), admin, drive.ID, UpdateInput{EndAt: &badEnd}); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}

	collected := 12
	updated, err := svc.Update(context.Background(), admin, drive.ID, UpdateInput{CollectedUnits: &collected})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.CollectedUnits != 12 {
		t.Fatalf("collected units = %d, want 12", updated.CollectedUnits)
	}
}
