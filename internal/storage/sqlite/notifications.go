package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/notification"
)

const notificationColumns = `id, recipient_uid, type, message, link, read,
created_at, read_at`

// PutNotification persists a new notification record.
func (s *Store) PutNotification(ctx context.Context, note notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(note.ID) == "" {
		return fmt.Errorf("notification id is required")
	}
	if strings.TrimSpace(note.RecipientUID) == "" {
		return notification.ErrEmptyRecipient
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (`+notificationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.RecipientUID, note.Type, note.Message, note.Link,
		boolToInt(note.Read), toMillis(note.CreatedAt), readAtMillis(note.ReadAt))
	if err != nil {
		if isUniqueViolation(err) {
			return notification.ErrConflict
		}
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// GetNotification fetches a notification record by id.
func (s *Store) GetNotification(ctx context.Context, notificationID string) (notification.Notification, error) {
	if err := ctx.Err(); err != nil {
		return notification.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return notification.Notification{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(notificationID) == "" {
		return notification.Notification{}, fmt.Errorf("notification id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, notificationID)
	note, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return note, nil
}

// UpdateNotification overwrites a stored notification record.
func (s *Store) UpdateNotification(ctx context.Context, note notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(note.ID) == "" {
		return fmt.Errorf("notification id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications SET recipient_uid = ?, type = ?, message = ?,
link = ?, read = ?, read_at = ?
WHERE id = ?`,
		note.RecipientUID, note.Type, note.Message, note.Link,
		boolToInt(note.Read), readAtMillis(note.ReadAt), note.ID)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return requireRowsAffected(result, notification.ErrNotFound)
}

// DeleteNotification removes a notification record.
func (s *Store) DeleteNotification(ctx context.Context, notificationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("notification id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, notificationID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireRowsAffected(result, notification.ErrNotFound)
}

// ListNotificationsByRecipient returns one user's notifications, newest
// first.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientUID string) ([]notification.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(recipientUID) == "" {
		return nil, notification.ErrEmptyRecipient
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+notificationColumns+` FROM notifications WHERE recipient_uid = ?
ORDER BY created_at DESC, id`, recipientUID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notes []notification.Notification
	for rows.Next() {
		note, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notes, nil
}

func scanNotification(row rowScanner) (notification.Notification, error) {
	var (
		note      notification.Notification
		read      int64
		createdAt int64
		readAt    sql.NullInt64
	)
	err := row.Scan(&note.ID, &note.RecipientUID, &note.Type, &note.Message,
		&note.Link, &read, &createdAt, &readAt)
	if err != nil {
		return notification.Notification{}, err
	}
	note.Read = read != 0
	note.CreatedAt = fromMillis(createdAt)
	if readAt.Valid {
		note.ReadAt = fromMillis(readAt.Int64)
	}
	return note, nil
}

func readAtMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}
