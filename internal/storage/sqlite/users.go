package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/blood"
	"github.com/Youssef-Elmorali/studio/internal/profile"
)

const userColumns = `uid, role, name, email, phone, city, blood_group,
eligible, next_eligible_at, total_donations, last_donation_at,
created_at, updated_at`

// PutUser persists a new profile record.
func (s *Store) PutUser(ctx context.Context, u profile.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.UID) == "" {
		return profile.ErrEmptyUID
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UID, u.Role.Label(), u.Name, u.Email, u.Phone, u.City,
		groupLabel(u.BloodGroup), boolToInt(u.Eligible), toMillisPtr(u.NextEligibleAt),
		u.TotalDonations, toMillisPtr(u.LastDonationAt),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return profile.ErrConflict
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches a profile record by uid.
func (s *Store) GetUser(ctx context.Context, uid string) (profile.User, error) {
	if err := ctx.Err(); err != nil {
		return profile.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return profile.User{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(uid) == "" {
		return profile.User{}, profile.ErrEmptyUID
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+userColumns+` FROM users WHERE uid = ?`, uid)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.User{}, profile.ErrNotFound
	}
	if err != nil {
		return profile.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser overwrites a stored profile record.
func (s *Store) UpdateUser(ctx context.Context, u profile.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.UID) == "" {
		return profile.ErrEmptyUID
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE users SET role = ?, name = ?, email = ?, phone = ?, city = ?,
blood_group = ?, eligible = ?, next_eligible_at = ?, total_donations = ?,
last_donation_at = ?, updated_at = ?
WHERE uid = ?`,
		u.Role.Label(), u.Name, u.Email, u.Phone, u.City,
		groupLabel(u.BloodGroup), boolToInt(u.Eligible), toMillisPtr(u.NextEligibleAt),
		u.TotalDonations, toMillisPtr(u.LastDonationAt), toMillis(u.UpdatedAt), u.UID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowsAffected(result, profile.ErrNotFound)
}

// DeleteUser removes a profile record.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(uid) == "" {
		return profile.ErrEmptyUID
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM users WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRowsAffected(result, profile.ErrNotFound)
}

// ListUsers returns every profile record ordered by uid.
func (s *Store) ListUsers(ctx context.Context) ([]profile.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+userColumns+` FROM users ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []profile.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (profile.User, error) {
	var (
		u                       profile.User
		role, group             string
		eligible                int64
		nextEligible, lastDonat sql.NullInt64
		createdAt, updatedAt    int64
	)
	err := row.Scan(&u.UID, &role, &u.Name, &u.Email, &u.Phone, &u.City,
		&group, &eligible, &nextEligible, &u.TotalDonations, &lastDonat,
		&createdAt, &updatedAt)
	if err != nil {
		return profile.User{}, err
	}
	u.Role = authz.ParseRole(role)
	u.BloodGroup = blood.ParseGroup(group)
	u.Eligible = eligible != 0
	u.NextEligibleAt = fromMillisPtr(nextEligible)
	u.LastDonationAt = fromMillisPtr(lastDonat)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func groupLabel(group blood.Group) string {
	if !group.Valid() {
		return ""
	}
	return group.Label()
}

func requireRowsAffected(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "constraint failed")
}
