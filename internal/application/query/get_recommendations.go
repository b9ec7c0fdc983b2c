package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// Suggests published courses the student is not enrolled in. Categories
// of completed courses are preferred; the list is topped up with popular
// courses. Explanations come from the text generator when enabled, with
// a deterministic sentence as the fallback.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRecommendationLimit is used when the caller omits a limit.
const DefaultRecommendationLimit = 5

// ExplanationGenerator produces a one-line reason for a recommendation.
type ExplanationGenerator interface {
	GenerateExplanation(ctx context.Context, courseTitle, category string, completedCategories []string) (string, error)
}

// GetRecommendationsQuery contains the recommendation parameters.
type GetRecommendationsQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID to recommend for. Must equal the actor unless the
	// actor is an admin.
	StudentID string

	// Limit is the number of recommendations (default 5).
	Limit int
}

// Validate validates and normalizes the query.
func (q *GetRecommendationsQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("get_recommendations: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("get_recommendations: student_id is required")
	}
	if q.Limit < 0 {
		return errors.New("get_recommendations: limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultRecommendationLimit
	}
	return nil
}

// Recommendation is one suggested course with its reason.
type Recommendation struct {
	Course      *course.Course `json:"course"`
	Explanation string         `json:"explanation"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetRecommendationsHandler handles the GetRecommendationsQuery.
type GetRecommendationsHandler struct {
	courseRepo     course.Repository
	enrollmentRepo enrollment.Repository
	generator      ExplanationGenerator

	// aiEnabled gates the generator; the fallback covers the rest.
	aiEnabled bool
}

// NewGetRecommendationsHandler creates a new GetRecommendationsHandler.
// The generator may be nil; explanations then always use the fallback.
func NewGetRecommendationsHandler(
	courseRepo course.Repository,
	enrollmentRepo enrollment.Repository,
	generator ExplanationGenerator,
	aiEnabled bool,
) *GetRecommendationsHandler {
	return &GetRecommendationsHandler{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		generator:      generator,
		aiEnabled:      aiEnabled,
	}
}

// Handle executes the recommendation query.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) ([]Recommendation, error) {
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

	enrolledIDs := make([]string, 0, len(enrollments))
	completedCategories := h.completedCategories(ctx, enrollments, &enrolledIDs)

	candidates := make([]*course.Course, 0, q.Limit)
	seen := make(map[string]bool)

	// Preferred categories first.
	for _, category := range completedCategories {
		if len(candidates) >= q.Limit {
			break
		}
		matches, lerr := h.courseRepo.ListCourses(ctx, course.ListFilter{
			Category:      category,
			PublishedOnly: true,
			ExcludeIDs:    enrolledIDs,
			Limit:         q.Limit - len(candidates),
		})
		if lerr != nil {
			return nil, lerr
		}
		for _, c := range matches {
			if !seen[c.ID] {
				seen[c.ID] = true
				candidates = append(candidates, c)
			}
		}
	}

	// Top up with popular courses.
	if len(candidates) < q.Limit {
		popular, perr := h.courseRepo.ListPopular(ctx, q.Limit+len(enrolledIDs))
		if perr != nil {
			return nil, perr
		}
		enrolled := make(map[string]bool, len(enrolledIDs))
		for _, id := range enrolledIDs {
			enrolled[id] = true
		}
		for _, c := range popular {
			if len(candidates) >= q.Limit {
				break
			}
			if !c.IsPublished || seen[c.ID] || enrolled[c.ID] {
				continue
			}
			seen[c.ID] = true
			candidates = append(candidates, c)
		}
	}

	recommendations := make([]Recommendation, len(candidates))
	for i, c := range candidates {
		recommendations[i] = Recommendation{
			Course:      c,
			Explanation: h.explain(ctx, c, completedCategories),
		}
	}
	return recommendations, nil
}

// completedCategories collects the categories of completed enrollments,
// first-completed order, and fills the enrolled course ID list.
func (h *GetRecommendationsHandler) completedCategories(
	ctx context.Context,
	enrollments []*enrollment.Enrollment,
	enrolledIDs *[]string,
) []string {
	var categories []string
	seen := make(map[string]bool)

	for _, enr := range enrollments {
		*enrolledIDs = append(*enrolledIDs, enr.CourseID)
		if !enr.IsCompleted() {
			continue
		}
		crs, err := h.courseRepo.GetCourse(ctx, enr.CourseID)
		if err != nil || crs.Category == "" || seen[crs.Category] {
			continue
		}
		seen[crs.Category] = true
		categories = append(categories, crs.Category)
	}
	return categories
}

// explain produces the recommendation reason. Generator failures fall
// back to the deterministic sentence.
func (h *GetRecommendationsHandler) explain(ctx context.Context, c *course.Course, completedCategories []string) string {
	if h.aiEnabled && h.generator != nil {
		if text, err := h.generator.GenerateExplanation(ctx, c.Title, c.Category, completedCategories); err == nil && text != "" {
			return text
		}
	}
	return fallbackExplanation(c, completedCategories)
}

// fallbackExplanation is the deterministic reason used without AI.
func fallbackExplanation(c *course.Course, completedCategories []string) string {
	for _, category := range completedCategories {
		if category == c.Category {
			return fmt.Sprintf("Recommended because you completed a course in %s.", c.Category)
		}
	}
	if c.EnrolledCount > 0 {
		return fmt.Sprintf("Popular with %d enrolled students.", c.EnrolledCount)
	}
	return "Recommended for you."
}
