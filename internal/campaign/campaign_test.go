package campaign

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

func TestNormalizeCreateInput(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	input, err := NormalizeCreateInput(CreateInput{
		Name:      "  City Drive  ",
		StartAt:   start,
		EndAt:     start.Add(8 * time.Hour),
		GoalUnits: 40,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if input.Name != "City Drive" {
		t.Fatalf("name not trimmed: %q", input.Name)
	}

	if _, err := NormalizeCreateInput(CreateInput{StartAt: start, EndAt: start, GoalUnits: 1}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NormalizeCreateInput(CreateInput{Name: "Drive", StartAt: start, EndAt: start.Add(-time.Minute), GoalUnits: 1}); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NormalizeCreateInput(CreateInput{Name: "Drive", StartAt: start, EndAt: start, GoalUnits: 0}); !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestTransitionGraph(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from Status
		to   Status
	}{
		{StatusUpcoming, StatusOngoing},
		{StatusUpcoming, StatusCancelled},
		{StatusOngoing, StatusCompleted},
		{StatusOngoing, StatusCancelled},
	}
	for _, tc := range allowed {
		drive := Campaign{ID: "camp-1", Status: tc.from}
		updated, err := Transition(drive, tc.to, nil)
		if err != nil {
			t.Errorf("%s -> %s: %v", tc.from.Label(), tc.to.Label(), err)
			continue
		}
		if updated.Status != tc.to {
			t.Errorf("%s -> %s: status = %s", tc.from.Label(), tc.to.Label(), updated.Status.Label())
		}
	}

	forbidden := []struct {
		from Status
		to   Status
	}{
		{StatusUpcoming, StatusCompleted},
		{StatusCompleted, StatusOngoing},
		{StatusCancelled, StatusUpcoming},
		{StatusCompleted, StatusCancelled},
	}
	for _, tc := range forbidden {
		_, err := Transition(Campaign{ID: "camp-1", Status: tc.from}, tc.to, nil)
		var domainErr *apperrors.Error
		if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeCampaignInvalidStatusTransition {
			t.Errorf("%s -> %s: expected transition error, got %v", tc.from.Label(), tc.to.Label(), err)
		}
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled} {
		if got := ParseStatus(status.Label()); got != status {
			t.Errorf("ParseStatus(%q) = %v, want %v", status.Label(), got, status)
		}
	}
	if got := ParseStatus("archived"); got != StatusUnspecified {
		t.Errorf("ParseStatus unknown = %v, want StatusUnspecified", got)
	}
}
