package course

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for the content hierarchy.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Courses
	// ─────────────────────────────────────────────────────────────────────────

	// CreateCourse stores a new course.
	CreateCourse(ctx context.Context, c *Course) error

	// GetCourse returns a course by ID.
	// Returns shared.ErrCourseNotFound if it does not exist.
	GetCourse(ctx context.Context, id string) (*Course, error)

	// UpdateCourse updates a course.
	UpdateCourse(ctx context.Context, c *Course) error

	// DeleteCourse removes a course and its child nodes.
	DeleteCourse(ctx context.Context, id string) error

	// ListCourses returns courses matching the filter.
	ListCourses(ctx context.Context, filter ListFilter) ([]*Course, error)

	// ListPopular returns published courses ordered by enrollment count.
	ListPopular(ctx context.Context, limit int) ([]*Course, error)

	// AdjustEnrolledCount atomically changes the denormalized counter.
	AdjustEnrolledCount(ctx context.Context, courseID string, delta int) error

	// SetEnrolledCount sets the denormalized counter to an absolute value
	// (used by the reconciliation job).
	SetEnrolledCount(ctx context.Context, courseID string, count int) error

	// ─────────────────────────────────────────────────────────────────────────
	// Units / Topics / Subtopics
	// ─────────────────────────────────────────────────────────────────────────

	// CreateUnit stores a new unit.
	// Returns shared.ErrCourseNotFound if the parent course does not exist.
	CreateUnit(ctx context.Context, u *Unit) error

	// GetUnit returns a unit by ID.
	GetUnit(ctx context.Context, id string) (*Unit, error)

	// ListUnits returns all units of a course (unsorted).
	ListUnits(ctx context.Context, courseID string) ([]*Unit, error)

	// CreateTopic stores a new topic.
	// Returns shared.ErrUnitNotFound if the parent unit does not exist.
	CreateTopic(ctx context.Context, t *Topic) error

	// GetTopic returns a topic by ID.
	GetTopic(ctx context.Context, id string) (*Topic, error)

	// ListTopicsByCourse returns all topics under a course (unsorted).
	ListTopicsByCourse(ctx context.Context, courseID string) ([]*Topic, error)

	// CreateSubtopic stores a new subtopic.
	// Returns shared.ErrTopicNotFound if the parent topic does not exist.
	CreateSubtopic(ctx context.Context, st *Subtopic) error

	// GetSubtopic returns a subtopic by ID.
	GetSubtopic(ctx context.Context, id string) (*Subtopic, error)

	// ListSubtopicsByCourse returns all subtopics under a course (unsorted).
	ListSubtopicsByCourse(ctx context.Context, courseID string) ([]*Subtopic, error)

	// CountSubtopicsByCourse returns the number of subtopics under a course.
	CountSubtopicsByCourse(ctx context.Context, courseID string) (int, error)
}

// ListFilter narrows course listings.
type ListFilter struct {
	// Category filters by exact category. Empty matches all.
	Category string

	// Difficulty filters by difficulty. Empty matches all.
	Difficulty Difficulty

	// PublishedOnly restricts results to published courses.
	PublishedOnly bool

	// ExcludeIDs removes specific courses from the result.
	ExcludeIDs []string

	// Limit caps the number of results. Zero means no cap.
	Limit int
}
