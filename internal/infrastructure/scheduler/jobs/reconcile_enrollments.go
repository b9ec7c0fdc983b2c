package jobs

import (
	"context"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE ENROLLMENT COUNTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileEnrollmentsJob recomputes the denormalized enrolled_count of
// every course from the enrollment ledger. The counters are maintained
// transactionally on enroll/unenroll; this job repairs any drift left
// by manual data fixes.
type ReconcileEnrollmentsJob struct {
	enrollmentRepo enrollment.Repository
	courseRepo     course.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewReconcileEnrollmentsJob creates a new ReconcileEnrollmentsJob.
func NewReconcileEnrollmentsJob(
	enrollmentRepo enrollment.Repository,
	courseRepo course.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *ReconcileEnrollmentsJob {
	if log == nil {
		log = logger.Default()
	}
	return &ReconcileEnrollmentsJob{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
		log:            log.With(logger.String("job", "reconcile_enrollments")),
	}
}

// Name implements scheduler.Job.
func (j *ReconcileEnrollmentsJob) Name() string {
	return "reconcile_enrollments"
}

// Description implements scheduler.Job.
func (j *ReconcileEnrollmentsJob) Description() string {
	return "Recomputes denormalized course enrollment counters from the ledger"
}

// Run implements scheduler.Job.
func (j *ReconcileEnrollmentsJob) Run(ctx context.Context) error {
	counts, err := j.enrollmentRepo.CountsByCourse(ctx)
	if err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}

	courses, err := j.courseRepo.ListCourses(ctx, course.ListFilter{})
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	fixed := 0
	for _, crs := range courses {
		actual := counts[crs.ID]
		if crs.EnrolledCount == actual {
			continue
		}

		if err := j.courseRepo.SetEnrolledCount(ctx, crs.ID, actual); err != nil {
			j.log.Error("failed to fix counter",
				logger.CourseID(crs.ID),
				logger.Err(err),
			)
			continue
		}

		j.log.Warn("enrollment counter drift fixed",
			logger.CourseID(crs.ID),
			logger.Int("stored", crs.EnrolledCount),
			logger.Int("actual", actual),
		)
		fixed++
	}

	j.log.Info("reconciliation completed",
		logger.Int("courses", len(courses)),
		logger.Int("fixed", fixed),
	)

	if j.eventPublisher != nil && fixed > 0 {
		event := shared.NewSystemEvent(shared.EventCountsReconciled, j.Name(),
			map[string]interface{}{"courses": len(courses), "fixed": fixed})
		if err := j.eventPublisher.Publish(event); err != nil {
			j.log.Warn("failed to publish event", logger.Err(err))
		}
	}
	return nil
}
