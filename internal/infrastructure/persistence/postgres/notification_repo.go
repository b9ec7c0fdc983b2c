package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const notificationColumns = `id, student_id, title, message, type, related_id, read, created_at`

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create stores a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, student_id, title, message, type, related_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID,
		n.StudentID,
		n.Title,
		n.Message,
		string(n.Type),
		n.RelatedID,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE id = $1", notificationColumns)

	n, err := scanNotification(r.conn.QueryRow(ctx, query, id))
	if IsNoRows(err) {
		return nil, shared.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByStudent returns a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*notification.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, notificationColumns)

	rows, err := r.conn.Query(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, serr := scanNotification(rows)
		if serr != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", serr)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE student_id = $1 AND NOT read",
		studentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead sets the read flag on one notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1", id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead sets the read flag on all of a student's notifications.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, studentID string) (int, error) {
	result, err := r.conn.Exec(ctx,
		"UPDATE notifications SET read = TRUE WHERE student_id = $1 AND NOT read",
		studentID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// DeleteReadBefore removes read notifications created before the cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM notifications WHERE read AND created_at < $1",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// scanNotification scans one notification from a row.
func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var typ string

	err := row.Scan(
		&n.ID,
		&n.StudentID,
		&n.Title,
		&n.Message,
		&typ,
		&n.RelatedID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = notification.Type(typ)
	return &n, nil
}
