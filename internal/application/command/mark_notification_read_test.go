package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func seedNotification(t *testing.T, repo *fakeNotificationRepo, id, studentID string) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:        id,
		StudentID: studentID,
		Title:     "Test",
		Message:   "test message",
		Type:      notification.TypeSystem,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestMarkNotificationRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	n := seedNotification(t, repo, "notif-1", "stu-1")

	handler := NewMarkNotificationReadHandler(repo)

	cmd := MarkNotificationReadCommand{Actor: actorFor("stu-1"), NotificationID: "notif-1"}
	require.NoError(t, handler.Handle(context.Background(), cmd))
	assert.True(t, n.Read)

	// Marking an already read notification is a no-op.
	require.NoError(t, handler.Handle(context.Background(), cmd))
}

func TestMarkNotificationRead_OwnershipEnforced(t *testing.T) {
	repo := newFakeNotificationRepo()
	n := seedNotification(t, repo, "notif-1", "stu-1")

	handler := NewMarkNotificationReadHandler(repo)

	err := handler.Handle(context.Background(), MarkNotificationReadCommand{
		Actor:          actorFor("stu-2"),
		NotificationID: "notif-1",
	})
	assert.ErrorIs(t, err, shared.ErrNotNotificationOwner)
	assert.False(t, n.Read)

	// Admins may mark anyone's notifications.
	err = handler.Handle(context.Background(), MarkNotificationReadCommand{
		Actor:          adminActor(),
		NotificationID: "notif-1",
	})
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	handler := NewMarkNotificationReadHandler(newFakeNotificationRepo())

	err := handler.Handle(context.Background(), MarkNotificationReadCommand{
		Actor:          actorFor("stu-1"),
		NotificationID: "missing",
	})
	assert.ErrorIs(t, err, shared.ErrNotificationNotFound)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	seedNotification(t, repo, "notif-1", "stu-1")
	seedNotification(t, repo, "notif-2", "stu-1")
	seedNotification(t, repo, "notif-3", "stu-2")

	handler := NewMarkNotificationReadHandler(repo)

	count, err := handler.HandleAll(context.Background(), MarkAllNotificationsReadCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err := repo.CountUnread(context.Background(), "stu-2")
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "other students' notifications are untouched")

	// All read already; the second pass affects nothing.
	count, err = handler.HandleAll(context.Background(), MarkAllNotificationsReadCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkAllNotificationsRead_Authorization(t *testing.T) {
	handler := NewMarkNotificationReadHandler(newFakeNotificationRepo())

	_, err := handler.HandleAll(context.Background(), MarkAllNotificationsReadCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}
