package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/Youssef-Elmorali/studio/internal/audit"
)

// AppendDecision records one policy decision in the append-only audit
// trail.
func (s *Store) AppendDecision(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.Kind) == "" || strings.TrimSpace(event.Action) == "" {
		return fmt.Errorf("audit event kind and action are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_decisions (ts, subject, role, kind, action, resource_id, allowed, reason, denied_fields)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(event.Timestamp), event.Subject, event.Role, event.Kind,
		event.Action, event.ResourceID, boolToInt(event.Allowed),
		event.Reason, event.DeniedFields)
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	return nil
}

// ListDecisions returns the recorded policy decisions, oldest first.
func (s *Store) ListDecisions(ctx context.Context) ([]audit.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT ts, subject, role, kind, action, resource_id, allowed, reason, denied_fields
FROM audit_decisions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event   audit.Event
			ts      int64
			allowed int64
		)
		if err := rows.Scan(&ts, &event.Subject, &event.Role, &event.Kind,
			&event.Action, &event.ResourceID, &allowed, &event.Reason,
			&event.DeniedFields); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		event.Timestamp = fromMillis(ts)
		event.Allowed = allowed != 0
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return events, nil
}
