package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE LESSON PROGRESS COMMAND
// Maintains the enrollment's coarse progress fields: the legacy percent
// and the completed-lesson set. New lesson indexes are merged with the
// stored set; completion is never revoked by omission.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLessonProgressCommand contains the data to update lesson progress.
type UpdateLessonProgressCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// EnrollmentID identifies the enrollment to update.
	EnrollmentID string

	// Progress is the new course percent (0-100). nil keeps the stored value.
	Progress *int

	// CompletedLessons are lesson indexes to merge into the stored set.
	CompletedLessons []int
}

// Validate validates the command.
func (c UpdateLessonProgressCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("update_lesson_progress: actor is required")
	}
	if c.EnrollmentID == "" {
		return errors.New("update_lesson_progress: enrollment_id is required")
	}
	if c.Progress == nil && len(c.CompletedLessons) == 0 {
		return errors.New("update_lesson_progress: nothing to update")
	}
	if c.Progress != nil && (*c.Progress < 0 || *c.Progress > 100) {
		return enrollment.ErrInvalidPercent
	}
	return nil
}

// UpdateLessonProgressResult contains the result of the update.
type UpdateLessonProgressResult struct {
	// Enrollment is the updated enrollment.
	Enrollment *enrollment.Enrollment

	// LessonsAdded is how many lesson indexes were newly merged.
	LessonsAdded int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLessonProgressHandler handles the UpdateLessonProgressCommand.
type UpdateLessonProgressHandler struct {
	enrollmentRepo enrollment.Repository
}

// NewUpdateLessonProgressHandler creates a new UpdateLessonProgressHandler.
func NewUpdateLessonProgressHandler(enrollmentRepo enrollment.Repository) *UpdateLessonProgressHandler {
	return &UpdateLessonProgressHandler{enrollmentRepo: enrollmentRepo}
}

// Handle executes the update lesson progress command.
func (h *UpdateLessonProgressHandler) Handle(ctx context.Context, cmd UpdateLessonProgressCommand) (*UpdateLessonProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("update_lesson_progress: %w", err)
	}

	// Only the enrolled student (or an admin) may touch the enrollment.
	if !cmd.Actor.CanActFor(enr.StudentID) {
		return nil, shared.ErrNotEnrollmentOwner
	}

	added := 0
	if len(cmd.CompletedLessons) > 0 {
		added, err = enr.MergeCompletedLessons(cmd.CompletedLessons)
		if err != nil {
			return nil, fmt.Errorf("update_lesson_progress: %w", err)
		}
	}

	if cmd.Progress != nil {
		if err := enr.SetProgress(*cmd.Progress); err != nil {
			return nil, fmt.Errorf("update_lesson_progress: %w", err)
		}
	}

	if err := h.enrollmentRepo.Update(ctx, enr); err != nil {
		return nil, fmt.Errorf("update_lesson_progress: failed to save enrollment: %w", err)
	}

	return &UpdateLessonProgressResult{
		Enrollment:   enr,
		LessonsAdded: added,
	}, nil
}
