package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ENROLLMENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListEnrollmentsQuery contains the enrollment list parameters.
type ListEnrollmentsQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose enrollments are listed. Must equal the actor
	// unless the actor is an admin.
	StudentID string
}

// Validate validates the query.
func (q ListEnrollmentsQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("list_enrollments: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("list_enrollments: student_id is required")
	}
	return nil
}

// EnrollmentDTO is an enrollment with its course title resolved.
type EnrollmentDTO struct {
	Enrollment  *enrollment.Enrollment `json:"enrollment"`
	CourseTitle string                 `json:"course_title,omitempty"`
}

// ListEnrollmentsHandler handles the ListEnrollmentsQuery.
type ListEnrollmentsHandler struct {
	enrollmentRepo enrollment.Repository
	courseRepo     course.Repository
}

// NewListEnrollmentsHandler creates a new ListEnrollmentsHandler.
func NewListEnrollmentsHandler(
	enrollmentRepo enrollment.Repository,
	courseRepo course.Repository,
) *ListEnrollmentsHandler {
	return &ListEnrollmentsHandler{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
	}
}

// Handle executes the enrollment list query.
func (h *ListEnrollmentsHandler) Handle(ctx context.Context, q ListEnrollmentsQuery) ([]EnrollmentDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	enrollments, err := h.enrollmentRepo.ListByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	dtos := make([]EnrollmentDTO, len(enrollments))
	for i, enr := range enrollments {
		dto := EnrollmentDTO{Enrollment: enr}
		if crs, cerr := h.courseRepo.GetCourse(ctx, enr.CourseID); cerr == nil {
			dto.CourseTitle = crs.Title
		}
		dtos[i] = dto
	}
	return dtos, nil
}
