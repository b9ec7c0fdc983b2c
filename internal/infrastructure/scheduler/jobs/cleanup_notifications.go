package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
	"github.com/skillforge/skillforge-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLEANUP NOTIFICATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// DefaultNotificationRetention is how long read notifications are kept.
const DefaultNotificationRetention = 90 * 24 * time.Hour

// CleanupNotificationsJob deletes read notifications older than the
// retention window. Unread notifications are never deleted.
type CleanupNotificationsJob struct {
	notificationRepo notification.Repository
	retention        time.Duration
	log              *logger.Logger
}

// NewCleanupNotificationsJob creates a new CleanupNotificationsJob.
func NewCleanupNotificationsJob(
	notificationRepo notification.Repository,
	retention time.Duration,
	log *logger.Logger,
) *CleanupNotificationsJob {
	if retention <= 0 {
		retention = DefaultNotificationRetention
	}
	if log == nil {
		log = logger.Default()
	}
	return &CleanupNotificationsJob{
		notificationRepo: notificationRepo,
		retention:        retention,
		log:              log.With(logger.String("job", "cleanup_notifications")),
	}
}

// Name implements scheduler.Job.
func (j *CleanupNotificationsJob) Name() string {
	return "cleanup_notifications"
}

// Description implements scheduler.Job.
func (j *CleanupNotificationsJob) Description() string {
	return "Deletes read notifications older than the retention window"
}

// Run implements scheduler.Job.
func (j *CleanupNotificationsJob) Run(ctx context.Context) error {
	cutoff := timeutil.Now().Add(-j.retention)

	deleted, err := j.notificationRepo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete read notifications: %w", err)
	}

	j.log.Info("cleanup completed",
		logger.Int("deleted", deleted),
		logger.Time("cutoff", cutoff),
	)
	return nil
}
