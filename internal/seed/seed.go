// Package seed loads demo fixtures into a local database by exercising
// the guarded services under real identities, so every seeded record
// passes the same policy checks production traffic would.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/bank"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	"github.com/Youssef-Elmorali/studio/internal/campaign"
	"github.com/Youssef-Elmorali/studio/internal/donation"
	"github.com/Youssef-Elmorali/studio/internal/notification"
	"github.com/Youssef-Elmorali/studio/internal/profile"
	"github.com/Youssef-Elmorali/studio/internal/request"
)

// Services bundles the guarded services the fixtures run through.
type Services struct {
	Profiles      *profile.Service
	Banks         *bank.Service
	Campaigns     *campaign.Service
	Requests      *request.Service
	Donations     *donation.Service
	Notifications *notification.Service
}

// Identities are the principals the fixtures act as. Staff must be an
// admin identity; the donor and recipient are ordinary users.
type Identities struct {
	Staff     authz.Identity
	Donor     authz.Identity
	Recipient authz.Identity
}

// Run loads the demo fixtures. It is not idempotent: run it against a
// fresh database.
func Run(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !ids.Staff.IsAdmin() {
		return fmt.Errorf("staff identity must be an admin")
	}

	if err := seedProfiles(ctx, logger, svcs, ids); err != nil {
		return err
	}
	facility, err := seedBank(ctx, logger, svcs, ids)
	if err != nil {
		return err
	}
	if err := seedCampaign(ctx, logger, svcs, ids, facility.ID); err != nil {
		return err
	}
	req, err := seedRequest(ctx, logger, svcs, ids)
	if err != nil {
		return err
	}
	if err := seedDonation(ctx, logger, svcs, ids, facility.ID, req.ID); err != nil {
		return err
	}
	if err := seedNotifications(ctx, logger, svcs, ids, req.ID); err != nil {
		return err
	}

	logger.Info("seed complete")
	return nil
}

func seedProfiles(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities) error {
	fixtures := []struct {
		identity authz.Identity
		input    profile.SignupInput
	}{
		{ids.Staff, profile.SignupInput{Name: "Platform Staff", Email: "staff@example.com", City: "Cairo"}},
		{ids.Donor, profile.SignupInput{Name: "Omar Hassan", Email: "omar@example.com", City: "Giza", BloodGroup: blood.ParseGroup("O-")}},
		{ids.Recipient, profile.SignupInput{Name: "Sara Adel", Email: "sara@example.com", City: "Cairo", BloodGroup: blood.ParseGroup("AB+")}},
	}
	for _, fixture := range fixtures {
		user, err := svcs.Profiles.Signup(ctx, fixture.identity, fixture.input)
		if err != nil {
			return fmt.Errorf("signup %s: %w", fixture.identity.Subject, err)
		}
		logger.Info("seeded profile",
			zap.String("uid", user.UID),
			zap.String("role", user.Role.Label()))
	}
	return nil
}

func seedBank(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities) (bank.BloodBank, error) {
	facility, err := svcs.Banks.Create(ctx, ids.Staff, bank.CreateInput{
		Name:           "Central Blood Bank",
		Address:        "12 Corniche El Nil",
		City:           "Cairo",
		Phone:          "+20 2 0000 0000",
		OperatingHours: "09:00-21:00",
		Inventory: map[blood.Group]int{
			blood.ParseGroup("A+"): 14,
			blood.ParseGroup("O-"): 3,
			blood.ParseGroup("B+"): 8,
		},
	})
	if err != nil {
		return bank.BloodBank{}, fmt.Errorf("create bank: %w", err)
	}
	logger.Info("seeded bank", zap.String("id", facility.ID))
	return facility, nil
}

func seedCampaign(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities, bankID string) error {
	start := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	drive, err := svcs.Campaigns.Create(ctx, ids.Staff, campaign.CreateInput{
		Name:        "University Blood Drive",
		Description: "Quarterly drive at the main campus.",
		BankID:      bankID,
		Location:    "Main Hall",
		StartAt:     start,
		EndAt:       start.Add(8 * time.Hour),
		GoalUnits:   50,
	})
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	logger.Info("seeded campaign", zap.String("id", drive.ID))
	return nil
}

func seedRequest(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities) (request.BloodRequest, error) {
	req, err := svcs.Requests.Create(ctx, ids.Recipient, request.CreateInput{
		PatientName:   "Sara Adel",
		Hospital:      "Kasr El Aini",
		BloodGroup:    blood.ParseGroup("AB+"),
		UnitsRequired: 3,
		Urgency:       request.UrgencyHigh,
	})
	if err != nil {
		return request.BloodRequest{}, fmt.Errorf("create request: %w", err)
	}
	// Staff verify and publish the request.
	for _, target := range []request.Status{request.StatusPending, request.StatusActive} {
		if req, err = svcs.Requests.TransitionStatus(ctx, ids.Staff, req.ID, target); err != nil {
			return request.BloodRequest{}, fmt.Errorf("transition request to %s: %w", target.Label(), err)
		}
	}
	logger.Info("seeded request",
		zap.String("id", req.ID),
		zap.String("status", req.Status.Label()))
	return req, nil
}

func seedDonation(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities, bankID, requestID string) error {
	record, err := svcs.Donations.Create(ctx, ids.Staff, donation.CreateInput{
		DonorUID:   ids.Donor.Subject,
		BankID:     bankID,
		RequestID:  requestID,
		BloodGroup: blood.ParseGroup("O-"),
		Units:      1,
	})
	if err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	if _, err := svcs.Profiles.RecordDonation(ctx, ids.Staff, ids.Donor.Subject, record.DonatedAt); err != nil {
		return fmt.Errorf("record donation on profile: %w", err)
	}
	if _, err := svcs.Requests.RecordFulfillment(ctx, ids.Staff, requestID, record.Units); err != nil {
		return fmt.Errorf("record fulfillment: %w", err)
	}
	logger.Info("seeded donation", zap.String("id", record.ID))
	return nil
}

func seedNotifications(ctx context.Context, logger *zap.Logger, svcs Services, ids Identities, requestID string) error {
	note, err := svcs.Notifications.Publish(ctx, ids.Staff, notification.CreateInput{
		RecipientUID: ids.Donor.Subject,
		Type:         "REQUEST_MATCH",
		Message:      "A blood request matching your group was posted near you.",
		Link:         "/requests/" + requestID,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	// The donor opens it.
	if _, err := svcs.Notifications.MarkRead(ctx, ids.Donor, note.ID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	logger.Info("seeded notification", zap.String("id", note.ID))
	return nil
}
