package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST NOTIFICATIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListNotificationsQuery contains the notification list parameters.
type ListNotificationsQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose notifications are listed. Must equal the actor
	// unless the actor is an admin.
	StudentID string

	// Limit and Offset page the result (default 20, max 100).
	Limit  int
	Offset int
}

// Validate validates and normalizes the query.
func (q *ListNotificationsQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("list_notifications: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("list_notifications: student_id is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("list_notifications: limit and offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = shared.DefaultPageSize
	}
	if q.Limit > shared.MaxPageSize {
		q.Limit = shared.MaxPageSize
	}
	return nil
}

// ListNotificationsResult contains the page and the unread counter.
type ListNotificationsResult struct {
	// Notifications, newest first.
	Notifications []*notification.Notification `json:"notifications"`

	// UnreadCount across all of the student's notifications.
	UnreadCount int `json:"unread_count"`
}

// ListNotificationsHandler handles the ListNotificationsQuery.
type ListNotificationsHandler struct {
	notificationRepo notification.Repository
}

// NewListNotificationsHandler creates a new ListNotificationsHandler.
func NewListNotificationsHandler(notificationRepo notification.Repository) *ListNotificationsHandler {
	return &ListNotificationsHandler{notificationRepo: notificationRepo}
}

// Handle executes the notification list query.
func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) (*ListNotificationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	notifications, err := h.notificationRepo.ListByStudent(ctx, q.StudentID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	unread, err := h.notificationRepo.CountUnread(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	return &ListNotificationsResult{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}
