package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/blood"
	"github.com/Youssef-Elmorali/studio/internal/donation"
)

const donationColumns = `id, donor_uid, bank_id, campaign_id, request_id,
blood_group, units, notes, donated_at, created_at`

// PutDonation persists a new donation ledger entry.
func (s *Store) PutDonation(ctx context.Context, record donation.Donation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("donation id is required")
	}
	if strings.TrimSpace(record.DonorUID) == "" {
		return donation.ErrEmptyDonor
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO donations (`+donationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.DonorUID, record.BankID, record.CampaignID,
		record.RequestID, record.BloodGroup.Label(), record.Units,
		record.Notes, toMillis(record.DonatedAt), toMillis(record.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return donation.ErrConflict
		}
		return fmt.Errorf("put donation: %w", err)
	}
	return nil
}

// GetDonation fetches a donation ledger entry by id.
func (s *Store) GetDonation(ctx context.Context, donationID string) (donation.Donation, error) {
	if err := ctx.Err(); err != nil {
		return donation.Donation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return donation.Donation{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(donationID) == "" {
		return donation.Donation{}, fmt.Errorf("donation id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+donationColumns+` FROM donations WHERE id = ?`, donationID)
	record, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return donation.Donation{}, donation.ErrNotFound
	}
	if err != nil {
		return donation.Donation{}, fmt.Errorf("get donation: %w", err)
	}
	return record, nil
}

// UpdateDonation overwrites a stored donation ledger entry.
func (s *Store) UpdateDonation(ctx context.Context, record donation.Donation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("donation id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE donations SET donor_uid = ?, bank_id = ?, campaign_id = ?,
request_id = ?, blood_group = ?, units = ?, notes = ?, donated_at = ?
WHERE id = ?`,
		record.DonorUID, record.BankID, record.CampaignID, record.RequestID,
		record.BloodGroup.Label(), record.Units, record.Notes,
		toMillis(record.DonatedAt), record.ID)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	return requireRowsAffected(result, donation.ErrNotFound)
}

// DeleteDonation removes a donation ledger entry.
func (s *Store) DeleteDonation(ctx context.Context, donationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(donationID) == "" {
		return fmt.Errorf("donation id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, donationID)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return requireRowsAffected(result, donation.ErrNotFound)
}

// ListDonations returns every donation ledger entry, newest first.
func (s *Store) ListDonations(ctx context.Context) ([]donation.Donation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return s.queryDonations(ctx, `
SELECT `+donationColumns+` FROM donations ORDER BY donated_at DESC, id`)
}

// ListDonationsByDonor returns one donor's ledger entries, newest first.
func (s *Store) ListDonationsByDonor(ctx context.Context, donorUID string) ([]donation.Donation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(donorUID) == "" {
		return nil, donation.ErrEmptyDonor
	}
	return s.queryDonations(ctx, `
SELECT `+donationColumns+` FROM donations WHERE donor_uid = ?
ORDER BY donated_at DESC, id`, donorUID)
}

func (s *Store) queryDonations(ctx context.Context, query string, args ...any) ([]donation.Donation, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var records []donation.Donation
	for rows.Next() {
		record, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return records, nil
}

func scanDonation(row rowScanner) (donation.Donation, error) {
	var (
		record               donation.Donation
		group                string
		donatedAt, createdAt int64
	)
	err := row.Scan(&record.ID, &record.DonorUID, &record.BankID,
		&record.CampaignID, &record.RequestID, &group, &record.Units,
		&record.Notes, &donatedAt, &createdAt)
	if err != nil {
		return donation.Donation{}, err
	}
	record.BloodGroup = blood.ParseGroup(group)
	record.DonatedAt = fromMillis(donatedAt)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}
