// Package notification delivers per-user messages. Staff publish them;
// the recipient's only write is flipping the read flag.
package notification

import (
	"strconv"
	"strings"
	"time"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

var (
	// ErrNotFound indicates a notification record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "notification not found")
	// ErrConflict indicates a notification id collision.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "notification already exists")
	// ErrEmptyRecipient indicates a missing recipient reference.
	ErrEmptyRecipient = apperrors.New(apperrors.CodeNotificationEmptyRecipient, "recipient uid is required")
	// ErrEmptyMessage indicates a blank message body.
	ErrEmptyMessage = apperrors.New(apperrors.CodeNotificationEmptyMessage, "notification message is required")
)

// Notification is one message addressed to a single user.
type Notification struct {
	ID           string
	RecipientUID string
	Type         string
	Message      string
	Link         string
	Read         bool
	CreatedAt    time.Time
	ReadAt       time.Time
}

// CreateInput describes a notification being published by staff.
type CreateInput struct {
	RecipientUID string
	Type         string
	Message      string
	Link         string
}

// UpdateInput describes a notification edit. Nil fields stay unchanged.
// Non-staff callers may only flip Read.
type UpdateInput struct {
	Type    *string
	Message *string
	Link    *string
	Read    *bool
}

// NormalizeCreateInput trims and validates notification input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.RecipientUID = strings.TrimSpace(input.RecipientUID)
	input.Type = strings.TrimSpace(input.Type)
	input.Message = strings.TrimSpace(input.Message)
	input.Link = strings.TrimSpace(input.Link)
	if input.RecipientUID == "" {
		return CreateInput{}, ErrEmptyRecipient
	}
	if input.Message == "" {
		return CreateInput{}, ErrEmptyMessage
	}
	return input, nil
}

// Descriptor returns the policy view of a stored notification,
// including the field snapshot the update invariant diffs against.
func Descriptor(note Notification) authz.Resource {
	return authz.Resource{
		Kind:    authz.KindNotification,
		ID:      note.ID,
		OwnerID: note.RecipientUID,
		Fields: map[string]string{
			"type":    note.Type,
			"message": note.Message,
			"link":    note.Link,
			"read":    strconv.FormatBool(note.Read),
		},
	}
}

// apply merges an update into the stored record and returns the
// proposed field snapshot for the policy diff.
func apply(note Notification, input UpdateInput, now func() time.Time) (Notification, map[string]string) {
	updated := note
	if input.Type != nil {
		updated.Type = *input.Type
	}
	if input.Message != nil {
		updated.Message = *input.Message
	}
	if input.Link != nil {
		updated.Link = *input.Link
	}
	if input.Read != nil {
		updated.Read = *input.Read
		if updated.Read && !note.Read {
			updated.ReadAt = now().UTC()
		}
		if !updated.Read {
			updated.ReadAt = time.Time{}
		}
	}
	proposed := map[string]string{
		"type":    updated.Type,
		"message": updated.Message,
		"link":    updated.Link,
		"read":    strconv.FormatBool(updated.Read),
	}
	return updated, proposed
}
