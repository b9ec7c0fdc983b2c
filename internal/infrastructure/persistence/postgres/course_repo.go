package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// Stores the full content hierarchy: courses, units, topics, subtopics.
// ══════════════════════════════════════════════════════════════════════════════

const courseColumns = `id, title, description, instructor_id, category, difficulty,
	tags, price, enrolled_count, rating, is_published,
	created_at, updated_at`

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// CreateCourse creates a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (
			id, title, description, instructor_id, category, difficulty,
			tags, price, enrolled_count, rating, is_published,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		nilIfEmpty(c.InstructorID),
		c.Category,
		string(c.Difficulty),
		c.Tags,
		c.Price,
		c.EnrolledCount,
		c.Rating,
		c.IsPublished,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetCourse returns a course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id string) (*course.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	return r.scanCourse(r.conn.QueryRow(ctx, query, id))
}

// UpdateCourse updates a course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			description = $2,
			instructor_id = $3,
			category = $4,
			difficulty = $5,
			tags = $6,
			price = $7,
			rating = $8,
			is_published = $9,
			updated_at = $10
		WHERE id = $11
	`

	result, err := r.conn.Exec(ctx, query,
		c.Title,
		c.Description,
		nilIfEmpty(c.InstructorID),
		c.Category,
		string(c.Difficulty),
		c.Tags,
		c.Price,
		c.Rating,
		c.IsPublished,
		time.Now().UTC(),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes a course and, via cascades, its whole hierarchy.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// ListCourses returns courses matching the filter.
func (r *CourseRepository) ListCourses(ctx context.Context, filter course.ListFilter) ([]*course.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses", courseColumns)

	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Difficulty != "" {
		args = append(args, string(filter.Difficulty))
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.PublishedOnly {
		conditions = append(conditions, "is_published")
	}
	if len(filter.ExcludeIDs) > 0 {
		args = append(args, filter.ExcludeIDs)
		conditions = append(conditions, fmt.Sprintf("NOT (id = ANY($%d))", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	return r.scanCourses(rows)
}

// ListPopular returns published courses by enrollment count descending.
func (r *CourseRepository) ListPopular(ctx context.Context, limit int) ([]*course.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses
		WHERE is_published
		ORDER BY enrolled_count DESC, created_at ASC
		LIMIT $1
	`, courseColumns)

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular courses: %w", err)
	}
	defer rows.Close()

	return r.scanCourses(rows)
}

// AdjustEnrolledCount shifts the denormalized counter by delta, floored
// at zero.
func (r *CourseRepository) AdjustEnrolledCount(ctx context.Context, courseID string, delta int) error {
	query := `
		UPDATE courses
		SET enrolled_count = GREATEST(enrolled_count + $1, 0), updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.conn.Exec(ctx, query, delta, courseID)
	if err != nil {
		return fmt.Errorf("failed to adjust enrolled count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// SetEnrolledCount overwrites the denormalized counter. Used by the
// reconciliation job.
func (r *CourseRepository) SetEnrolledCount(ctx context.Context, courseID string, count int) error {
	query := `
		UPDATE courses
		SET enrolled_count = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.conn.Exec(ctx, query, count, courseID)
	if err != nil {
		return fmt.Errorf("failed to set enrolled count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Units
// ─────────────────────────────────────────────────────────────────────────────

// CreateUnit creates a new unit.
func (r *CourseRepository) CreateUnit(ctx context.Context, u *course.Unit) error {
	query := `
		INSERT INTO units (id, course_id, title, ord, premium_only, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID, u.CourseID, u.Title, u.Order, u.PremiumOnly, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

// GetUnit returns a unit by ID.
func (r *CourseRepository) GetUnit(ctx context.Context, id string) (*course.Unit, error) {
	query := `
		SELECT id, course_id, title, ord, premium_only, created_at, updated_at
		FROM units WHERE id = $1
	`

	var u course.Unit
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.CourseID, &u.Title, &u.Order, &u.PremiumOnly, &u.CreatedAt, &u.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &u, nil
}

// ListUnits returns a course's units in display order.
func (r *CourseRepository) ListUnits(ctx context.Context, courseID string) ([]*course.Unit, error) {
	query := `
		SELECT id, course_id, title, ord, premium_only, created_at, updated_at
		FROM units WHERE course_id = $1
		ORDER BY ord, created_at, id
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*course.Unit
	for rows.Next() {
		var u course.Unit
		if err := rows.Scan(&u.ID, &u.CourseID, &u.Title, &u.Order, &u.PremiumOnly, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, &u)
	}
	return units, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Topics
// ─────────────────────────────────────────────────────────────────────────────

// CreateTopic creates a new topic.
func (r *CourseRepository) CreateTopic(ctx context.Context, t *course.Topic) error {
	query := `
		INSERT INTO topics (id, unit_id, title, ord, premium_only, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		t.ID, t.UnitID, t.Title, t.Order, t.PremiumOnly, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetTopic returns a topic by ID.
func (r *CourseRepository) GetTopic(ctx context.Context, id string) (*course.Topic, error) {
	query := `
		SELECT id, unit_id, title, ord, premium_only, created_at, updated_at
		FROM topics WHERE id = $1
	`

	var t course.Topic
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.UnitID, &t.Title, &t.Order, &t.PremiumOnly, &t.CreatedAt, &t.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &t, nil
}

// ListTopicsByCourse returns all topics under a course.
func (r *CourseRepository) ListTopicsByCourse(ctx context.Context, courseID string) ([]*course.Topic, error) {
	query := `
		SELECT t.id, t.unit_id, t.title, t.ord, t.premium_only, t.created_at, t.updated_at
		FROM topics t
		JOIN units u ON u.id = t.unit_id
		WHERE u.course_id = $1
		ORDER BY t.ord, t.created_at, t.id
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*course.Topic
	for rows.Next() {
		var t course.Topic
		if err := rows.Scan(&t.ID, &t.UnitID, &t.Title, &t.Order, &t.PremiumOnly, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, &t)
	}
	return topics, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Subtopics
// ─────────────────────────────────────────────────────────────────────────────

// CreateSubtopic creates a new subtopic.
func (r *CourseRepository) CreateSubtopic(ctx context.Context, st *course.Subtopic) error {
	query := `
		INSERT INTO subtopics (
			id, topic_id, title, content_type, content, video_url,
			duration, quiz_id, ord, premium_only, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		st.ID,
		st.TopicID,
		st.Title,
		string(st.Type),
		st.Content,
		st.VideoURL,
		st.Duration,
		nilIfEmpty(st.QuizID),
		st.Order,
		st.PremiumOnly,
		st.CreatedAt,
		st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subtopic: %w", err)
	}
	return nil
}

// GetSubtopic returns a subtopic by ID.
func (r *CourseRepository) GetSubtopic(ctx context.Context, id string) (*course.Subtopic, error) {
	query := `
		SELECT id, topic_id, title, content_type, content, video_url,
			   duration, quiz_id, ord, premium_only, created_at, updated_at
		FROM subtopics WHERE id = $1
	`

	st, err := scanSubtopic(r.conn.QueryRow(ctx, query, id))
	if IsNoRows(err) {
		return nil, shared.ErrSubtopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subtopic: %w", err)
	}
	return st, nil
}

// ListSubtopicsByCourse returns all subtopics under a course.
func (r *CourseRepository) ListSubtopicsByCourse(ctx context.Context, courseID string) ([]*course.Subtopic, error) {
	query := `
		SELECT s.id, s.topic_id, s.title, s.content_type, s.content, s.video_url,
			   s.duration, s.quiz_id, s.ord, s.premium_only, s.created_at, s.updated_at
		FROM subtopics s
		JOIN topics t ON t.id = s.topic_id
		JOIN units u ON u.id = t.unit_id
		WHERE u.course_id = $1
		ORDER BY s.ord, s.created_at, s.id
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtopics: %w", err)
	}
	defer rows.Close()

	var subtopics []*course.Subtopic
	for rows.Next() {
		st, serr := scanSubtopic(rows)
		if serr != nil {
			return nil, fmt.Errorf("failed to scan subtopic: %w", serr)
		}
		subtopics = append(subtopics, st)
	}
	return subtopics, rows.Err()
}

// CountSubtopicsByCourse returns the number of subtopics under a course.
func (r *CourseRepository) CountSubtopicsByCourse(ctx context.Context, courseID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM subtopics s
		JOIN topics t ON t.id = s.topic_id
		JOIN units u ON u.id = t.unit_id
		WHERE u.course_id = $1
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subtopics: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanCourse scans a single course from a row.
func (r *CourseRepository) scanCourse(row pgx.Row) (*course.Course, error) {
	c, err := scanCourseRow(row.Scan)
	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	return c, nil
}

// scanCourses scans multiple courses from rows.
func (r *CourseRepository) scanCourses(rows pgx.Rows) ([]*course.Course, error) {
	var courses []*course.Course

	for rows.Next() {
		c, err := scanCourseRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return courses, nil
}

// scanCourseRow scans one course from any scan function.
func scanCourseRow(scan func(dest ...any) error) (*course.Course, error) {
	var c course.Course
	var instructorID *string
	var difficulty string

	err := scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&instructorID,
		&c.Category,
		&difficulty,
		&c.Tags,
		&c.Price,
		&c.EnrolledCount,
		&c.Rating,
		&c.IsPublished,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if instructorID != nil {
		c.InstructorID = *instructorID
	}
	c.Difficulty = course.Difficulty(difficulty)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

// scanSubtopic scans one subtopic from a row.
func scanSubtopic(row pgx.Row) (*course.Subtopic, error) {
	var st course.Subtopic
	var contentType string
	var quizID *string

	err := row.Scan(
		&st.ID,
		&st.TopicID,
		&st.Title,
		&contentType,
		&st.Content,
		&st.VideoURL,
		&st.Duration,
		&quizID,
		&st.Order,
		&st.PremiumOnly,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Type = course.ContentType(contentType)
	if quizID != nil {
		st.QuizID = *quizID
	}
	return &st, nil
}

// nilIfEmpty maps an empty string to NULL for nullable UUID columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
