package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// The Ledger methods apply the three enrollment writes (enrollment row,
// student course list, course counter) in a single transaction.
// ══════════════════════════════════════════════════════════════════════════════

const enrollmentColumns = `id, student_id, course_id, progress,
	completed_lessons, quiz_results, enrolled_at, updated_at`

// EnrollmentRepository implements enrollment.Repository and
// enrollment.Ledger for PostgreSQL.
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new enrollment row only. Use Enroll for the full
// three-record write.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	return r.insert(ctx, r.conn, e)
}

// GetByID returns an enrollment by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE id = $1", enrollmentColumns)
	return r.scanEnrollment(r.conn.QueryRow(ctx, query, id))
}

// GetByStudentAndCourse returns the enrollment for a student/course pair.
func (r *EnrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*enrollment.Enrollment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM enrollments WHERE student_id = $1 AND course_id = $2",
		enrollmentColumns,
	)
	return r.scanEnrollment(r.conn.QueryRow(ctx, query, studentID, courseID))
}

// Update updates an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		UPDATE enrollments SET
			progress = $1,
			completed_lessons = $2,
			quiz_results = $3,
			updated_at = $4
		WHERE id = $5
	`

	resultsJSON, err := json.Marshal(e.QuizResults)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz results: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		e.Progress,
		e.CompletedLessons,
		resultsJSON,
		time.Now().UTC(),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotEnrolled
	}
	return nil
}

// Delete removes an enrollment row only. Use Unenroll for the full
// three-record removal.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotEnrolled
	}
	return nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*enrollment.Enrollment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC",
		enrollmentColumns,
	)

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// ListByCourse returns a course's enrollments, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]*enrollment.Enrollment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM enrollments WHERE course_id = $1 ORDER BY enrolled_at DESC",
		enrollmentColumns,
	)

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// Exists checks whether a student is enrolled in a course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)",
		studentID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}
	return exists, nil
}

// CountByCourse returns the true enrollment count for a course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM enrollments WHERE course_id = $1",
		courseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// CountsByCourse returns the true enrollment count for every course.
// Used by the reconciliation job.
func (r *EnrollmentRepository) CountsByCourse(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT course_id, COUNT(*) FROM enrollments GROUP BY course_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments by course: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var courseID string
		var count int
		if err := rows.Scan(&courseID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment count: %w", err)
		}
		counts[courseID] = count
	}
	return counts, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Ledger
// ─────────────────────────────────────────────────────────────────────────────

// Enroll applies the three enrollment writes in one transaction: the
// enrollment row, the student's enrolled list and the course counter.
// A duplicate enrollment rolls everything back.
func (r *EnrollmentRepository) Enroll(ctx context.Context, e *enrollment.Enrollment) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := r.insert(ctx, tx, e); err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `
			UPDATE students
			SET enrolled_course_ids = array_append(enrolled_course_ids, $1), updated_at = NOW()
			WHERE id = $2 AND NOT ($1 = ANY(enrolled_course_ids))
		`, e.CourseID, e.StudentID)
		if err != nil {
			return fmt.Errorf("failed to update student course list: %w", err)
		}
		if result.RowsAffected() == 0 {
			// Either the student is gone or the list already has the
			// course; the unique index on enrollments rules out the latter.
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", e.StudentID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check student: %w", err)
			}
			if !exists {
				return shared.ErrStudentNotFound
			}
		}

		result, err = tx.Exec(ctx, `
			UPDATE courses
			SET enrolled_count = enrolled_count + 1, updated_at = NOW()
			WHERE id = $1
		`, e.CourseID)
		if err != nil {
			return fmt.Errorf("failed to increment course counter: %w", err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrCourseNotFound
		}

		return nil
	})
}

// Unenroll reverses Enroll in one transaction. Progress records are
// intentionally kept.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, studentID, courseID string) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			"DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2",
			studentID, courseID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete enrollment: %w", err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrNotEnrolled
		}

		if _, err := tx.Exec(ctx, `
			UPDATE students
			SET enrolled_course_ids = array_remove(enrolled_course_ids, $1), updated_at = NOW()
			WHERE id = $2
		`, courseID, studentID); err != nil {
			return fmt.Errorf("failed to update student course list: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE courses
			SET enrolled_count = GREATEST(enrolled_count - 1, 0), updated_at = NOW()
			WHERE id = $1
		`, courseID); err != nil {
			return fmt.Errorf("failed to decrement course counter: %w", err)
		}

		return nil
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// insert writes the enrollment row through any querier.
func (r *EnrollmentRepository) insert(ctx context.Context, q Querier, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			id, student_id, course_id, progress,
			completed_lessons, quiz_results, enrolled_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	resultsJSON, err := json.Marshal(e.QuizResults)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz results: %w", err)
	}

	_, err = q.Exec(ctx, query,
		e.ID,
		e.StudentID,
		e.CourseID,
		e.Progress,
		e.CompletedLessons,
		resultsJSON,
		e.EnrolledAt,
		e.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateEnrollment
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

// scanEnrollment scans a single enrollment from a row.
func (r *EnrollmentRepository) scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	e, err := scanEnrollmentRow(row.Scan)
	if IsNoRows(err) {
		return nil, shared.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}
	return e, nil
}

// scanEnrollments scans multiple enrollments from rows.
func (r *EnrollmentRepository) scanEnrollments(rows pgx.Rows) ([]*enrollment.Enrollment, error) {
	var enrollments []*enrollment.Enrollment

	for rows.Next() {
		e, err := scanEnrollmentRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return enrollments, nil
}

// scanEnrollmentRow scans one enrollment from any scan function.
func scanEnrollmentRow(scan func(dest ...any) error) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	var resultsJSON []byte

	err := scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.Progress,
		&e.CompletedLessons,
		&resultsJSON,
		&e.EnrolledAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &e.QuizResults); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiz results: %w", err)
		}
	}
	if e.CompletedLessons == nil {
		e.CompletedLessons = []int{}
	}
	return &e, nil
}
