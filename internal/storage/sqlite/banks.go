package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/bank"
	"github.com/Youssef-Elmorali/studio/internal/blood"
)

// PutBank persists a facility record and its inventory atomically.
func (s *Store) PutBank(ctx context.Context, facility bank.BloodBank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(facility.ID) == "" {
		return fmt.Errorf("bank id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO blood_banks (id, name, address, city, phone, operating_hours, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		facility.ID, facility.Name, facility.Address, facility.City,
		facility.Phone, facility.OperatingHours,
		toMillis(facility.CreatedAt), toMillis(facility.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return bank.ErrConflict
		}
		return fmt.Errorf("put bank: %w", err)
	}
	if err := replaceInventory(ctx, tx, facility.ID, facility.Inventory); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bank: %w", err)
	}
	return nil
}

// GetBank fetches a facility record with its inventory.
func (s *Store) GetBank(ctx context.Context, bankID string) (bank.BloodBank, error) {
	if err := ctx.Err(); err != nil {
		return bank.BloodBank{}, err
	}
	if s == nil || s.sqlDB == nil {
		return bank.BloodBank{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(bankID) == "" {
		return bank.BloodBank{}, fmt.Errorf("bank id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, address, city, phone, operating_hours, created_at, updated_at
FROM blood_banks WHERE id = ?`, bankID)
	facility, err := scanBank(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bank.BloodBank{}, bank.ErrNotFound
	}
	if err != nil {
		return bank.BloodBank{}, fmt.Errorf("get bank: %w", err)
	}
	facility.Inventory, err = s.loadInventory(ctx, facility.ID)
	if err != nil {
		return bank.BloodBank{}, err
	}
	return facility, nil
}

// UpdateBank overwrites a facility record and replaces its inventory.
func (s *Store) UpdateBank(ctx context.Context, facility bank.BloodBank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(facility.ID) == "" {
		return fmt.Errorf("bank id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE blood_banks SET name = ?, address = ?, city = ?, phone = ?,
operating_hours = ?, updated_at = ?
WHERE id = ?`,
		facility.Name, facility.Address, facility.City, facility.Phone,
		facility.OperatingHours, toMillis(facility.UpdatedAt), facility.ID)
	if err != nil {
		return fmt.Errorf("update bank: %w", err)
	}
	if err := requireRowsAffected(result, bank.ErrNotFound); err != nil {
		return err
	}
	if err := replaceInventory(ctx, tx, facility.ID, facility.Inventory); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bank: %w", err)
	}
	return nil
}

// DeleteBank removes a facility record. Inventory rows cascade.
func (s *Store) DeleteBank(ctx context.Context, bankID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(bankID) == "" {
		return fmt.Errorf("bank id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM blood_banks WHERE id = ?`, bankID)
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	return requireRowsAffected(result, bank.ErrNotFound)
}

// ListBanks returns every facility record ordered by id.
func (s *Store) ListBanks(ctx context.Context) ([]bank.BloodBank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, address, city, phone, operating_hours, created_at, updated_at
FROM blood_banks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var facilities []bank.BloodBank
	for rows.Next() {
		facility, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	for i := range facilities {
		facilities[i].Inventory, err = s.loadInventory(ctx, facilities[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return facilities, nil
}

func scanBank(row rowScanner) (bank.BloodBank, error) {
	var (
		facility             bank.BloodBank
		createdAt, updatedAt int64
	)
	err := row.Scan(&facility.ID, &facility.Name, &facility.Address,
		&facility.City, &facility.Phone, &facility.OperatingHours,
		&createdAt, &updatedAt)
	if err != nil {
		return bank.BloodBank{}, err
	}
	facility.CreatedAt = fromMillis(createdAt)
	facility.UpdatedAt = fromMillis(updatedAt)
	return facility, nil
}

func (s *Store) loadInventory(ctx context.Context, bankID string) (map[blood.Group]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT blood_group, units FROM bank_inventory WHERE bank_id = ?`, bankID)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	defer rows.Close()

	inventory := make(map[blood.Group]int)
	for rows.Next() {
		var (
			label string
			units int
		)
		if err := rows.Scan(&label, &units); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		group := blood.ParseGroup(label)
		if group.Valid() {
			inventory[group] = units
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return inventory, nil
}

func replaceInventory(ctx context.Context, tx *sql.Tx, bankID string, inventory map[blood.Group]int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM bank_inventory WHERE bank_id = ?`, bankID); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	for group, units := range inventory {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO bank_inventory (bank_id, blood_group, units) VALUES (?, ?, ?)`,
			bankID, group.Label(), units); err != nil {
			return fmt.Errorf("put inventory row: %w", err)
		}
	}
	return nil
}
