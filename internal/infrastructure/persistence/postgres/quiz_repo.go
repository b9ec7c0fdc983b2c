package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY IMPLEMENTATION
// Questions are stored as a JSONB document; the quiz is always read and
// written as a whole.
// ══════════════════════════════════════════════════════════════════════════════

const quizColumns = `id, course_id, title, questions, ai_evaluation, created_at, updated_at`

// QuizRepository implements quiz.Repository for PostgreSQL.
type QuizRepository struct {
	conn *Connection
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(conn *Connection) *QuizRepository {
	return &QuizRepository{conn: conn}
}

// Create stores a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *quiz.Quiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO quizzes (id, course_id, title, questions, ai_evaluation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.conn.Exec(ctx, query,
		q.ID, q.CourseID, q.Title, questionsJSON, q.AIEvaluation, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID returns a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*quiz.Quiz, error) {
	query := fmt.Sprintf("SELECT %s FROM quizzes WHERE id = $1", quizColumns)

	q, err := scanQuiz(r.conn.QueryRow(ctx, query, id))
	if IsNoRows(err) {
		return nil, shared.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return q, nil
}

// ListByCourse returns a course's quizzes, oldest first.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID string) ([]*quiz.Quiz, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM quizzes WHERE course_id = $1 ORDER BY created_at",
		quizColumns,
	)

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*quiz.Quiz
	for rows.Next() {
		q, serr := scanQuiz(rows)
		if serr != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", serr)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Update updates a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *quiz.Quiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		UPDATE quizzes SET
			title = $1,
			questions = $2,
			ai_evaluation = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		q.Title, questionsJSON, q.AIEvaluation, time.Now().UTC(), q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrQuizNotFound
	}
	return nil
}

// Delete removes a quiz.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrQuizNotFound
	}
	return nil
}

// scanQuiz scans one quiz from a row.
func scanQuiz(row pgx.Row) (*quiz.Quiz, error) {
	var q quiz.Quiz
	var questionsJSON []byte

	err := row.Scan(
		&q.ID,
		&q.CourseID,
		&q.Title,
		&questionsJSON,
		&q.AIEvaluation,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &q.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
		}
	}
	return &q, nil
}
