package command

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNENROLL STUDENT COMMAND
// The mirror of enrollment: removes the enrollment row, the student's
// course-list entry and decrements the course counter in one transaction.
// Progress records are kept; re-enrolling resumes where the student left.
// ══════════════════════════════════════════════════════════════════════════════

// UnenrollStudentCommand contains the data to remove an enrollment.
type UnenrollStudentCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID to unenroll. Must equal the actor unless the actor is
	// an admin.
	StudentID string

	// CourseID to unenroll from.
	CourseID string
}

// Validate validates the command.
func (c UnenrollStudentCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("unenroll_student: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("unenroll_student: student_id is required")
	}
	if c.CourseID == "" {
		return errors.New("unenroll_student: course_id is required")
	}
	return nil
}

// UnenrollStudentHandler handles the UnenrollStudentCommand.
type UnenrollStudentHandler struct {
	ledger enrollment.Ledger
}

// NewUnenrollStudentHandler creates a new UnenrollStudentHandler.
func NewUnenrollStudentHandler(ledger enrollment.Ledger) *UnenrollStudentHandler {
	return &UnenrollStudentHandler{ledger: ledger}
}

// Handle executes the unenroll student command.
func (h *UnenrollStudentHandler) Handle(ctx context.Context, cmd UnenrollStudentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return shared.ErrAccessDenied
	}

	return h.ledger.Unenroll(ctx, cmd.StudentID, cmd.CourseID)
}
