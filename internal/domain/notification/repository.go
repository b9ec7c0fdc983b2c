package notification

import (
	"context"
	"time"
)

// Repository defines storage operations for notifications.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores a new notification.
	Create(ctx context.Context, n *Notification) error

	// GetByID returns a notification by ID.
	// Returns shared.ErrNotificationNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Notification, error)

	// ListByStudent returns a student's notifications, newest first.
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Notification, error)

	// CountUnread returns the number of unread notifications.
	CountUnread(ctx context.Context, studentID string) (int, error)

	// MarkRead sets the read flag on one notification.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead sets the read flag on all of a student's notifications.
	// Returns the number of notifications affected.
	MarkAllRead(ctx context.Context, studentID string) (int, error)

	// DeleteReadBefore removes read notifications created before the
	// cutoff. Used by the cleanup job.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error)
}
