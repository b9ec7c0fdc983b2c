package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ACCESS QUERY
// Decides whether a student may open a content node. The premium flag is
// checked on the requested node itself; a premium course does not make
// its free subtopics premium and vice versa. Premium is active while the
// access flag is set and the expiry is unset or in the future.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAccessQuery contains the access check parameters.
type CheckAccessQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose access is checked. Must equal the actor unless
	// the actor is an admin.
	StudentID string

	// CourseID is required. The deepest provided node is checked.
	CourseID   string
	UnitID     string
	TopicID    string
	SubtopicID string
}

// Validate validates the query.
func (q CheckAccessQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("check_access: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("check_access: student_id is required")
	}
	if q.CourseID == "" {
		return errors.New("check_access: course_id is required")
	}
	return nil
}

// CheckAccessResult is the access decision.
type CheckAccessResult struct {
	// HasAccess is the final decision for the requested node.
	HasAccess bool `json:"has_access"`

	// HasPremium is the student's current premium state.
	HasPremium bool `json:"has_premium"`

	// RequiresPremium is the requested node's own premium flag.
	RequiresPremium bool `json:"requires_premium"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CheckAccessHandler handles the CheckAccessQuery.
type CheckAccessHandler struct {
	courseRepo  course.Repository
	studentRepo student.Repository
}

// NewCheckAccessHandler creates a new CheckAccessHandler.
func NewCheckAccessHandler(
	courseRepo course.Repository,
	studentRepo student.Repository,
) *CheckAccessHandler {
	return &CheckAccessHandler{
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
	}
}

// Handle executes the access check.
func (h *CheckAccessHandler) Handle(ctx context.Context, q CheckAccessQuery) (*CheckAccessResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	crs, err := h.courseRepo.GetCourse(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	if !crs.IsPublished && !q.Actor.Role.CanManageContent() {
		return nil, shared.ErrCourseNotPublished
	}

	requiresPremium, err := h.nodePremiumFlag(ctx, q)
	if err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}
	hasPremium := stud.HasPremium()

	return &CheckAccessResult{
		HasAccess:       !requiresPremium || hasPremium,
		HasPremium:      hasPremium,
		RequiresPremium: requiresPremium,
	}, nil
}

// nodePremiumFlag reads the premium flag of the deepest requested node.
// Courses themselves carry no premium flag; a course-only check never
// requires premium.
func (h *CheckAccessHandler) nodePremiumFlag(ctx context.Context, q CheckAccessQuery) (bool, error) {
	switch {
	case q.SubtopicID != "":
		st, err := h.courseRepo.GetSubtopic(ctx, q.SubtopicID)
		if err != nil {
			return false, err
		}
		return st.PremiumOnly, nil

	case q.TopicID != "":
		t, err := h.courseRepo.GetTopic(ctx, q.TopicID)
		if err != nil {
			return false, err
		}
		return t.PremiumOnly, nil

	case q.UnitID != "":
		u, err := h.courseRepo.GetUnit(ctx, q.UnitID)
		if err != nil {
			return false, err
		}
		return u.PremiumOnly, nil

	default:
		return false, nil
	}
}
