package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/campaign"
)

const campaignColumns = `id, name, description, bank_id, location,
start_at, end_at, goal_units, collected_units, status, created_at, updated_at`

// PutCampaign persists a new drive record.
func (s *Store) PutCampaign(ctx context.Context, drive campaign.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(drive.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO campaigns (`+campaignColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		drive.ID, drive.Name, drive.Description, drive.BankID, drive.Location,
		toMillis(drive.StartAt), toMillis(drive.EndAt), drive.GoalUnits,
		drive.CollectedUnits, drive.Status.Label(),
		toMillis(drive.CreatedAt), toMillis(drive.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return campaign.ErrConflict
		}
		return fmt.Errorf("put campaign: %w", err)
	}
	return nil
}

// GetCampaign fetches a drive record by id.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (campaign.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return campaign.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return campaign.Campaign{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return campaign.Campaign{}, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, campaignID)
	drive, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return campaign.Campaign{}, campaign.ErrNotFound
	}
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return drive, nil
}

// UpdateCampaign overwrites a stored drive record.
func (s *Store) UpdateCampaign(ctx context.Context, drive campaign.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(drive.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaigns SET name = ?, description = ?, bank_id = ?, location = ?,
start_at = ?, end_at = ?, goal_units = ?, collected_units = ?, status = ?,
updated_at = ?
WHERE id = ?`,
		drive.Name, drive.Description, drive.BankID, drive.Location,
		toMillis(drive.StartAt), toMillis(drive.EndAt), drive.GoalUnits,
		drive.CollectedUnits, drive.Status.Label(), toMillis(drive.UpdatedAt),
		drive.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRowsAffected(result, campaign.ErrNotFound)
}

// DeleteCampaign removes a drive record.
func (s *Store) DeleteCampaign(ctx context.Context, campaignID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, campaignID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRowsAffected(result, campaign.ErrNotFound)
}

// ListCampaigns returns every drive record ordered by start time.
func (s *Store) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+campaignColumns+` FROM campaigns ORDER BY start_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var drives []campaign.Campaign
	for rows.Next() {
		drive, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		drives = append(drives, drive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return drives, nil
}

func scanCampaign(row rowScanner) (campaign.Campaign, error) {
	var (
		drive                campaign.Campaign
		status               string
		startAt, endAt       int64
		createdAt, updatedAt int64
	)
	err := row.Scan(&drive.ID, &drive.Name, &drive.Description, &drive.BankID,
		&drive.Location, &startAt, &endAt, &drive.GoalUnits,
		&drive.CollectedUnits, &status, &createdAt, &updatedAt)
	if err != nil {
		return campaign.Campaign{}, err
	}
	drive.StartAt = fromMillis(startAt)
	drive.EndAt = fromMillis(endAt)
	drive.Status = campaign.ParseStatus(status)
	drive.CreatedAt = fromMillis(createdAt)
	drive.UpdatedAt = fromMillis(updatedAt)
	return drive, nil
}
