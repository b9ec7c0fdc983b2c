package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE TREE QUERY
// Assembles the full course hierarchy from flat node lists. Unpublished
// courses are visible to content managers only.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseTreeQuery contains the tree request parameters.
type GetCourseTreeQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// CourseID identifies the course.
	CourseID string
}

// Validate validates the query.
func (q GetCourseTreeQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("get_course_tree: actor is required")
	}
	if q.CourseID == "" {
		return errors.New("get_course_tree: course_id is required")
	}
	return nil
}

// GetCourseTreeHandler handles the GetCourseTreeQuery.
type GetCourseTreeHandler struct {
	courseRepo course.Repository
}

// NewGetCourseTreeHandler creates a new GetCourseTreeHandler.
func NewGetCourseTreeHandler(courseRepo course.Repository) *GetCourseTreeHandler {
	return &GetCourseTreeHandler{courseRepo: courseRepo}
}

// Handle executes the course tree query.
func (h *GetCourseTreeHandler) Handle(ctx context.Context, q GetCourseTreeQuery) (*course.Tree, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetCourse(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	if !crs.IsPublished && !q.Actor.Role.CanManageContent() {
		return nil, shared.ErrCourseNotPublished
	}

	units, err := h.courseRepo.ListUnits(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	topics, err := h.courseRepo.ListTopicsByCourse(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	subtopics, err := h.courseRepo.ListSubtopicsByCourse(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}

	return course.BuildTree(crs, units, topics, subtopics), nil
}
