package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/blood"
	"github.com/Youssef-Elmorali/studio/internal/request"
)

const requestColumns = `id, requester_uid, patient_name, hospital,
blood_group, units_required, units_fulfilled, urgency, status,
created_at, updated_at`

// PutRequest persists a new blood request record.
func (s *Store) PutRequest(ctx context.Context, req request.BloodRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("request id is required")
	}
	if strings.TrimSpace(req.RequesterUID) == "" {
		return request.ErrEmptyRequester
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO blood_requests (`+requestColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.RequesterUID, req.PatientName, req.Hospital,
		req.BloodGroup.Label(), req.UnitsRequired, req.UnitsFulfilled,
		req.Urgency.Label(), req.Status.Label(),
		toMillis(req.CreatedAt), toMillis(req.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return request.ErrConflict
		}
		return fmt.Errorf("put request: %w", err)
	}
	return nil
}

// GetRequest fetches a blood request record by id.
func (s *Store) GetRequest(ctx context.Context, requestID string) (request.BloodRequest, error) {
	if err := ctx.Err(); err != nil {
		return request.BloodRequest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return request.BloodRequest{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(requestID) == "" {
		return request.BloodRequest{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+requestColumns+` FROM blood_requests WHERE id = ?`, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return request.BloodRequest{}, request.ErrNotFound
	}
	if err != nil {
		return request.BloodRequest{}, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// UpdateRequestInStatuses overwrites a stored request only while its
// current status is in allowed. The status guard rides the UPDATE's
// WHERE clause so a concurrent lifecycle transition cannot slip a stale
// edit through.
func (s *Store) UpdateRequestInStatuses(ctx context.Context, req request.BloodRequest, allowed []request.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("request id is required")
	}

	query := `
UPDATE blood_requests SET requester_uid = ?, patient_name = ?, hospital = ?,
blood_group = ?, units_required = ?, units_fulfilled = ?, urgency = ?,
status = ?, updated_at = ?
WHERE id = ?`
	args := []any{
		req.RequesterUID, req.PatientName, req.Hospital,
		req.BloodGroup.Label(), req.UnitsRequired, req.UnitsFulfilled,
		req.Urgency.Label(), req.Status.Label(), toMillis(req.UpdatedAt),
		req.ID,
	}
	if len(allowed) > 0 {
		placeholders := make([]string, len(allowed))
		for i, status := range allowed {
			placeholders[i] = "?"
			args = append(args, status.Label())
		}
		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	result, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing row from a failed status guard.
		var exists int
		err := s.sqlDB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM blood_requests WHERE id = ?`, req.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check request existence: %w", err)
		}
		if exists == 0 {
			return request.ErrNotFound
		}
		return request.ErrConflict
	}
	return nil
}

// DeleteRequest removes a blood request record.
func (s *Store) DeleteRequest(ctx context.Context, requestID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(requestID) == "" {
		return fmt.Errorf("request id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM blood_requests WHERE id = ?`, requestID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireRowsAffected(result, request.ErrNotFound)
}

// ListRequests returns every blood request record, newest first.
func (s *Store) ListRequests(ctx context.Context) ([]request.BloodRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+requestColumns+` FROM blood_requests ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []request.BloodRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

func scanRequest(row rowScanner) (request.BloodRequest, error) {
	var (
		req                  request.BloodRequest
		group, urgency       string
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(&req.ID, &req.RequesterUID, &req.PatientName,
		&req.Hospital, &group, &req.UnitsRequired, &req.UnitsFulfilled,
		&urgency, &status, &createdAt, &updatedAt)
	if err != nil {
		return request.BloodRequest{}, err
	}
	req.BloodGroup = blood.ParseGroup(group)
	req.Urgency = request.ParseUrgency(urgency)
	req.Status = request.ParseStatus(status)
	req.CreatedAt = fromMillis(createdAt)
	req.UpdatedAt = fromMillis(updatedAt)
	return req, nil
}
