package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestListNotifications(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.seed("notif-1", "stu-1", true)
	repo.seed("notif-2", "stu-1", false)
	repo.seed("notif-3", "stu-2", false)
	repo.seed("notif-4", "stu-1", false)

	handler := NewListNotificationsHandler(repo)

	result, err := handler.Handle(context.Background(), ListNotificationsQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
	})
	require.NoError(t, err)

	require.Len(t, result.Notifications, 3)
	assert.Equal(t, "notif-4", result.Notifications[0].ID, "newest first")
	assert.Equal(t, 2, result.UnreadCount)
}

func TestListNotifications_Paging(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.seed("notif-1", "stu-1", false)
	repo.seed("notif-2", "stu-1", false)
	repo.seed("notif-3", "stu-1", false)

	handler := NewListNotificationsHandler(repo)

	result, err := handler.Handle(context.Background(), ListNotificationsQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Limit:     2,
		Offset:    1,
	})
	require.NoError(t, err)

	require.Len(t, result.Notifications, 2)
	assert.Equal(t, "notif-2", result.Notifications[0].ID)
	assert.Equal(t, "notif-1", result.Notifications[1].ID)
}

func TestListNotifications_LimitNormalization(t *testing.T) {
	q := ListNotificationsQuery{Actor: actorFor("stu-1"), StudentID: "stu-1"}
	require.NoError(t, q.Validate())
	assert.Equal(t, shared.DefaultPageSize, q.Limit)

	q = ListNotificationsQuery{Actor: actorFor("stu-1"), StudentID: "stu-1", Limit: 1000}
	require.NoError(t, q.Validate())
	assert.Equal(t, shared.MaxPageSize, q.Limit)

	q = ListNotificationsQuery{Actor: actorFor("stu-1"), StudentID: "stu-1", Limit: -1}
	assert.Error(t, q.Validate())
}

func TestListNotifications_Authorization(t *testing.T) {
	handler := NewListNotificationsHandler(newFakeNotificationRepo())

	_, err := handler.Handle(context.Background(), ListNotificationsQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}
