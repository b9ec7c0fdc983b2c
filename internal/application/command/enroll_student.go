package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENT COMMAND
// Enrolling touches three records: the enrollment row, the student's
// enrolled-course list and the course's denormalized counter. The Ledger
// applies all three in one transaction; a duplicate enrollment leaves
// every record untouched.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand contains the data to enroll a student in a course.
type EnrollStudentCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID is the student to enroll. Must equal the actor unless
	// the actor is an admin.
	StudentID string

	// CourseID is the course to enroll in.
	CourseID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EnrollStudentCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("enroll_student: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("enroll_student: student_id is required")
	}
	if c.CourseID == "" {
		return errors.New("enroll_student: course_id is required")
	}
	return nil
}

// EnrollStudentResult contains the result of an enrollment.
type EnrollStudentResult struct {
	// EnrollmentID is the ID of the new enrollment.
	EnrollmentID string

	// EnrolledAt is when the enrollment was created.
	EnrolledAt time.Time

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentHandler handles the EnrollStudentCommand.
type EnrollStudentHandler struct {
	ledger           enrollment.Ledger
	courseRepo       course.Repository
	notificationRepo notification.Repository
	eventPublisher   shared.EventPublisher

	// notifyOnEnroll controls the enrollment confirmation notification.
	notifyOnEnroll bool
}

// NewEnrollStudentHandler creates a new EnrollStudentHandler.
func NewEnrollStudentHandler(
	ledger enrollment.Ledger,
	courseRepo course.Repository,
	notificationRepo notification.Repository,
	eventPublisher shared.EventPublisher,
	notifyOnEnroll bool,
) *EnrollStudentHandler {
	return &EnrollStudentHandler{
		ledger:           ledger,
		courseRepo:       courseRepo,
		notificationRepo: notificationRepo,
		eventPublisher:   eventPublisher,
		notifyOnEnroll:   notifyOnEnroll,
	}
}

// Handle executes the enroll student command.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	crs, err := h.courseRepo.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll_student: %w", err)
	}
	if !crs.IsPublished && !cmd.Actor.Role.CanManageContent() {
		return nil, shared.ErrCourseNotPublished
	}

	enr, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        uuid.NewString(),
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
	})
	if err != nil {
		return nil, fmt.Errorf("enroll_student: %w", err)
	}

	// All-or-nothing: enrollment row, student course list, course counter.
	if err := h.ledger.Enroll(ctx, enr); err != nil {
		return nil, err
	}

	event := shared.NewEnrollmentCreatedEvent(enr.ID, enr.StudentID, enr.CourseID, crs.EnrolledCount+1)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	if h.notifyOnEnroll && h.notificationRepo != nil {
		// Notification failures never roll back the enrollment.
		notif, nerr := notification.NewNotification(notification.NewNotificationParams{
			ID:        uuid.NewString(),
			StudentID: cmd.StudentID,
			Title:     "Enrolled",
			Message:   fmt.Sprintf("You are now enrolled in %q.", crs.Title),
			Type:      notification.TypeCourse,
			RelatedID: crs.ID,
		})
		if nerr == nil {
			_ = h.notificationRepo.Create(ctx, notif)
		}
	}

	return &EnrollStudentResult{
		EnrollmentID: enr.ID,
		EnrolledAt:   enr.EnrolledAt,
		Events:       []shared.Event{event},
	}, nil
}
