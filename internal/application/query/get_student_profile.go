package query

import (
	"context"
	"errors"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT PROFILE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentProfileQuery contains the profile request parameters.
type GetStudentProfileQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose profile is requested. Must equal the actor unless
	// the actor is an admin.
	StudentID string
}

// Validate validates the query.
func (q GetStudentProfileQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("get_student_profile: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("get_student_profile: student_id is required")
	}
	return nil
}

// StudentProfileDTO is the profile projection. The password hash never
// leaves the domain.
type StudentProfileDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	TotalPoints     int        `json:"total_points"`
	EnrolledCourses []string   `json:"enrolled_courses"`
	HasPremium      bool       `json:"has_premium"`
	PremiumPlan     string     `json:"premium_plan,omitempty"`
	PremiumExpires  *time.Time `json:"premium_expires,omitempty"`
	MemberSince     string     `json:"member_since"`
}

// GetStudentProfileHandler handles the GetStudentProfileQuery.
type GetStudentProfileHandler struct {
	studentRepo student.Repository
}

// NewGetStudentProfileHandler creates a new GetStudentProfileHandler.
func NewGetStudentProfileHandler(studentRepo student.Repository) *GetStudentProfileHandler {
	return &GetStudentProfileHandler{studentRepo: studentRepo}
}

// Handle executes the profile query.
func (h *GetStudentProfileHandler) Handle(ctx context.Context, q GetStudentProfileQuery) (*StudentProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	dto := &StudentProfileDTO{
		ID:              stud.ID,
		Name:            stud.Name,
		Email:           stud.Email.String(),
		Role:            stud.Role.String(),
		TotalPoints:     stud.TotalPoints,
		EnrolledCourses: append([]string(nil), stud.EnrolledCourseIDs...),
		HasPremium:      stud.HasPremium(),
		MemberSince:     timeutil.FormatRelative(stud.CreatedAt),
	}
	if dto.HasPremium {
		dto.PremiumPlan = string(stud.Premium.Plan)
		dto.PremiumExpires = stud.Premium.ExpiresAt
	}
	return dto, nil
}
