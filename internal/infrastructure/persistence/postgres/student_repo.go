package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `id, name, email, password_hash, role, total_points,
	premium_access, premium_plan, premium_expires_at, enrolled_course_ids,
	preferences, created_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, name, email, password_hash, role, total_points,
			premium_access, premium_plan, premium_expires_at,
			enrolled_course_ids, preferences, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	prefsJSON, err := json.Marshal(preferencesToMap(s.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Email.String(),
		s.PasswordHash,
		s.Role.String(),
		s.TotalPoints,
		s.Premium.Access,
		string(s.Premium.Plan),
		s.Premium.ExpiresAt,
		s.EnrolledCourseIDs,
		prefsJSON,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrEmailTaken
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	return r.scanStudent(r.conn.QueryRow(ctx, query, id))
}

// GetByEmail returns a student by normalized email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email shared.Email) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = $1", studentColumns)
	return r.scanStudent(r.conn.QueryRow(ctx, query, email.String()))
}

// Update updates a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			total_points = $5,
			premium_access = $6,
			premium_plan = $7,
			premium_expires_at = $8,
			enrolled_course_ids = $9,
			preferences = $10,
			updated_at = $11
		WHERE id = $12
	`

	prefsJSON, err := json.Marshal(preferencesToMap(s.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.Email.String(),
		s.PasswordHash,
		s.Role.String(),
		s.TotalPoints,
		s.Premium.Access,
		string(s.Premium.Plan),
		s.Premium.ExpiresAt,
		s.EnrolledCourseIDs,
		prefsJSON,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all students with pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	orderField := "created_at"
	switch opts.SortBy {
	case "total_points", "points":
		orderField = "total_points"
	case "name":
		orderField = "name"
	case "email":
		orderField = "email"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM students ORDER BY %s %s LIMIT $1 OFFSET $2",
		studentColumns, orderField, direction,
	)

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// GetByIDs returns students by a list of IDs.
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	if len(ids) == 0 {
		return []*student.Student{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE id = ANY($1)", studentColumns)

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by ids: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Leaderboard
// ─────────────────────────────────────────────────────────────────────────────

// GetTopByPoints returns students sorted by points descending.
// Ties resolve by registration time, the earlier account first.
func (r *StudentRepository) GetTopByPoints(ctx context.Context, limit int) ([]*student.Student, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM students
		ORDER BY total_points DESC, created_at ASC
		LIMIT $1
	`, studentColumns)

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Points
// ─────────────────────────────────────────────────────────────────────────────

// AddPoints atomically adds delta to the student's total and returns the
// new value. The total never drops below zero.
func (r *StudentRepository) AddPoints(ctx context.Context, studentID string, delta int) (int, error) {
	query := `
		UPDATE students
		SET total_points = GREATEST(total_points + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING total_points
	`

	var newTotal int
	err := r.conn.QueryRow(ctx, query, delta, studentID).Scan(&newTotal)
	if IsNoRows(err) {
		return 0, shared.ErrStudentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}
	return newTotal, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// Exists checks if a student exists by ID.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if a student exists by email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email shared.Email) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)",
		email.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence by email: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanStudent scans a single student from a row.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	s, err := scanStudentRow(row.Scan)
	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return s, nil
}

// scanStudents scans multiple students from rows.
func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		s, err := scanStudentRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return students, nil
}

// scanStudentRow scans one student from any scan function.
func scanStudentRow(scan func(dest ...any) error) (*student.Student, error) {
	var s student.Student
	var email, role, plan string
	var expiresAt *time.Time
	var prefsJSON []byte

	err := scan(
		&s.ID,
		&s.Name,
		&email,
		&s.PasswordHash,
		&role,
		&s.TotalPoints,
		&s.Premium.Access,
		&plan,
		&expiresAt,
		&s.EnrolledCourseIDs,
		&prefsJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Email = shared.Email(email)
	s.Role = shared.Role(role)
	s.Premium.Plan = student.PremiumPlan(plan)
	s.Premium.ExpiresAt = expiresAt
	s.Preferences = mapToPreferences(prefsJSON)
	if s.EnrolledCourseIDs == nil {
		s.EnrolledCourseIDs = []string{}
	}

	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCES CONVERSION
// ══════════════════════════════════════════════════════════════════════════════

// preferencesToMap converts Preferences to a map for JSON storage.
func preferencesToMap(prefs student.Preferences) map[string]interface{} {
	return map[string]interface{}{
		"notifications": prefs.Notifications,
		"theme":         prefs.Theme,
	}
}

// mapToPreferences converts JSON bytes to Preferences.
func mapToPreferences(data []byte) student.Preferences {
	prefs := student.DefaultPreferences()

	if len(data) == 0 {
		return prefs
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return prefs
	}

	if v, ok := m["notifications"].(bool); ok {
		prefs.Notifications = v
	}
	if v, ok := m["theme"].(string); ok && v != "" {
		prefs.Theme = v
	}

	return prefs
}
