package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATION READ COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadCommand marks one notification as read.
type MarkNotificationReadCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// NotificationID to mark read.
	NotificationID string
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("mark_notification_read: actor is required")
	}
	if c.NotificationID == "" {
		return errors.New("mark_notification_read: notification_id is required")
	}
	return nil
}

// MarkAllNotificationsReadCommand marks all of a student's notifications
// as read.
type MarkAllNotificationsReadCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose notifications are marked. Must equal the actor
	// unless the actor is an admin.
	StudentID string
}

// Validate validates the command.
func (c MarkAllNotificationsReadCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("mark_all_notifications_read: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("mark_all_notifications_read: student_id is required")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadHandler handles both read-marking commands.
type MarkNotificationReadHandler struct {
	notificationRepo notification.Repository
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(notificationRepo notification.Repository) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{notificationRepo: notificationRepo}
}

// Handle marks a single notification as read. Only the owner (or an
// admin) may mark it.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	notif, err := h.notificationRepo.GetByID(ctx, cmd.NotificationID)
	if err != nil {
		return fmt.Errorf("mark_notification_read: %w", err)
	}

	if !cmd.Actor.CanActFor(notif.StudentID) {
		return shared.ErrNotNotificationOwner
	}

	if notif.Read {
		// Already read; marking again is a no-op.
		return nil
	}

	if err := h.notificationRepo.MarkRead(ctx, cmd.NotificationID); err != nil {
		return fmt.Errorf("mark_notification_read: %w", err)
	}
	return nil
}

// HandleAll marks all of a student's notifications as read and returns
// how many were affected.
func (h *MarkNotificationReadHandler) HandleAll(ctx context.Context, cmd MarkAllNotificationsReadCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return 0, shared.ErrAccessDenied
	}

	count, err := h.notificationRepo.MarkAllRead(ctx, cmd.StudentID)
	if err != nil {
		return 0, fmt.Errorf("mark_all_notifications_read: %w", err)
	}
	return count, nil
}
