// Package jobs contains the scheduled jobs of the learning hub:
// counter reconciliation, leaderboard projection rebuilds and
// notification cleanup.
package jobs

import (
	"context"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/application/query"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardDepth is how many ranked entries the rebuilt
// projection holds. Reads for larger limits fall through to PostgreSQL.
const DefaultLeaderboardDepth = 100

// RebuildLeaderboardJob refreshes the cached leaderboard projection so
// reads stay warm between request-driven refreshes.
type RebuildLeaderboardJob struct {
	studentRepo    student.Repository
	cache          student.LeaderboardCache
	eventPublisher shared.EventPublisher
	log            *logger.Logger
	depth          int
}

// NewRebuildLeaderboardJob creates a new RebuildLeaderboardJob.
func NewRebuildLeaderboardJob(
	studentRepo student.Repository,
	cache student.LeaderboardCache,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RebuildLeaderboardJob {
	if log == nil {
		log = logger.Default()
	}
	return &RebuildLeaderboardJob{
		studentRepo:    studentRepo,
		cache:          cache,
		eventPublisher: eventPublisher,
		log:            log.With(logger.String("job", "rebuild_leaderboard")),
		depth:          DefaultLeaderboardDepth,
	}
}

// Name implements scheduler.Job.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description implements scheduler.Job.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the cached leaderboard projection from student points"
}

// Run implements scheduler.Job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	students, err := j.studentRepo.GetTopByPoints(ctx, j.depth)
	if err != nil {
		return fmt.Errorf("failed to load top students: %w", err)
	}

	entries := query.ProjectLeaderboard(students)
	if err := j.cache.SetTop(ctx, entries); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}

	j.log.Info("leaderboard rebuilt", logger.Int("entries", len(entries)))

	if j.eventPublisher != nil {
		event := shared.NewSystemEvent(shared.EventLeaderboardRebuilt, j.Name(),
			map[string]interface{}{"entries": len(entries)})
		if err := j.eventPublisher.Publish(event); err != nil {
			j.log.Warn("failed to publish event", logger.Err(err))
		}
	}
	return nil
}
