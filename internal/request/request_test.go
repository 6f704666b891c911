package request

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

func TestStatusLabelRoundTrip(t *testing.T) {
	t.Parallel()

	statuses := []Status{
		StatusPendingVerification, StatusPending, StatusActive,
		StatusPartiallyFulfilled, StatusFulfilled, StatusCancelled, StatusExpired,
	}
	for _, status := range statuses {
		if got := ParseStatus(status.Label()); got != status {
			t.Errorf("ParseStatus(%q) = %v, want %v", status.Label(), got, status)
		}
	}
	if got := ParseStatus("bogus"); got != StatusUnspecified {
		t.Errorf("ParseStatus(bogus) = %v, want unspecified", got)
	}
}

func TestUrgencyLabelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, urgency := range []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical} {
		if got := ParseUrgency(urgency.Label()); got != urgency {
			t.Errorf("ParseUrgency(%q) = %v, want %v", urgency.Label(), got, urgency)
		}
	}
}

func TestEditableAndPublicSubsets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status   Status
		editable bool
		public   bool
	}{
		{StatusPendingVerification, true, false},
		{StatusPending, true, false},
		{StatusActive, true, true},
		{StatusPartiallyFulfilled, false, true},
		{StatusFulfilled, false, true},
		{StatusCancelled, false, false},
		{StatusExpired, false, false},
	}
	for _, tc := range cases {
		if got := tc.status.Editable(); got != tc.editable {
			t.Errorf("%s.Editable() = %t, want %t", tc.status.Label(), got, tc.editable)
		}
		if got := tc.status.Public(); got != tc.public {
			t.Errorf("%s.Public() = %t, want %t", tc.status.Label(), got, tc.public)
		}
	}
}

func TestTransitionGraph(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	req := BloodRequest{ID: "req-1", Status: StatusActive}

	moved, err := Transition(req, StatusFulfilled, now)
	if err != nil {
		t.Fatalf("active -> fulfilled: %v", err)
	}
	if moved.Status != StatusFulfilled {
		t.Fatalf("status = %s, want FULFILLED", moved.Status.Label())
	}
	if !moved.UpdatedAt.Equal(now()) {
		t.Fatalf("UpdatedAt = %v, want %v", moved.UpdatedAt, now())
	}

	_, err = Transition(moved, StatusActive, now)
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeRequestInvalidStatusTransition {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
	if domainErr.Metadata["FromStatus"] != "FULFILLED" || domainErr.Metadata["ToStatus"] != "ACTIVE" {
		t.Fatalf("unexpected transition metadata: %v", domainErr.Metadata)
	}
}

func TestNormalizeCreateInput(t *testing.T) {
	t.Parallel()

	input, err := NormalizeCreateInput(CreateInput{
		PatientName:   "  Sara Adel  ",
		Hospital:      " Kasr El Aini ",
		BloodGroup:    mustGroup(t, "O-"),
		UnitsRequired: 3,
		Urgency:       UrgencyHigh,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if input.PatientName != "Sara Adel" || input.Hospital != "Kasr El Aini" {
		t.Fatalf("fields not trimmed: %+v", input)
	}

	if _, err := NormalizeCreateInput(CreateInput{BloodGroup: mustGroup(t, "A+"), UnitsRequired: 0}); !errors.Is(err, ErrInvalidUnits) {
		t.Fatalf("expected ErrInvalidUnits, got %v", err)
	}
	if _, err := NormalizeCreateInput(CreateInput{UnitsRequired: 1}); !errors.Is(err, ErrInvalidBloodGroup) {
		t.Fatalf("expected ErrInvalidBloodGroup, got %v", err)
	}
}
