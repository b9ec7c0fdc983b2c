package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/progress"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// Apply locks the row for the key, decides the first-completion inside
// the same transaction and upserts. Two concurrent calls on one key
// cannot both observe the false -> true transition. The point award
// lands on the student's total inside the same transaction, so the
// record and the award commit together or not at all.
// ══════════════════════════════════════════════════════════════════════════════

const progressColumns = `id, student_id, course_id, level, unit_id, topic_id,
	subtopic_id, completed, completed_at, points, created_at, updated_at`

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Apply atomically creates or updates the record for the key.
func (r *ProgressRepository) Apply(ctx context.Context, params progress.ApplyParams) (progress.ApplyResult, error) {
	var result progress.ApplyResult

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		key := params.Key

		query := fmt.Sprintf(`
			SELECT %s FROM progress_records
			WHERE student_id = $1 AND course_id = $2 AND level = $3
			  AND COALESCE(unit_id::text, '') = $4
			  AND COALESCE(topic_id::text, '') = $5
			  AND COALESCE(subtopic_id::text, '') = $6
			FOR UPDATE
		`, progressColumns)

		record, err := scanProgressRecord(tx.QueryRow(ctx, query,
			key.StudentID, key.CourseID, key.Level.String(),
			key.UnitID, key.TopicID, key.SubtopicID,
		))

		switch {
		case IsNoRows(err):
			record, err = r.insertRecord(ctx, tx, params)
			if err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to load progress record: %w", err)
		}

		first := false
		if params.Completed {
			first = record.MarkCompleted(params.Points, params.At)
		} else {
			// Completion is never revoked; only the touch time moves.
			record.Touch(params.At)
		}

		if err := r.updateRecord(ctx, tx, record); err != nil {
			return err
		}

		result = progress.ApplyResult{Record: record, FirstCompletion: first}

		if first && params.Points > 0 {
			err := tx.QueryRow(ctx, `
				UPDATE students
				SET total_points = total_points + $1, updated_at = $2
				WHERE id = $3
				RETURNING total_points
			`, params.Points, params.At, key.StudentID).Scan(&result.NewTotalPoints)
			if IsNoRows(err) {
				return shared.ErrStudentNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to award points: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return progress.ApplyResult{}, err
	}
	return result, nil
}

// GetByKey returns the record for a key.
func (r *ProgressRepository) GetByKey(ctx context.Context, key progress.Key) (*progress.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM progress_records
		WHERE student_id = $1 AND course_id = $2 AND level = $3
		  AND COALESCE(unit_id::text, '') = $4
		  AND COALESCE(topic_id::text, '') = $5
		  AND COALESCE(subtopic_id::text, '') = $6
	`, progressColumns)

	record, err := scanProgressRecord(r.conn.QueryRow(ctx, query,
		key.StudentID, key.CourseID, key.Level.String(),
		key.UnitID, key.TopicID, key.SubtopicID,
	))
	if IsNoRows(err) {
		return nil, shared.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}
	return record, nil
}

// ListByStudent returns all of a student's progress records.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]*progress.Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM progress_records WHERE student_id = $1 ORDER BY created_at",
		progressColumns,
	)

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}
	defer rows.Close()

	return scanProgressRecords(rows)
}

// ListByStudentAndCourse returns a student's records for one course.
func (r *ProgressRepository) ListByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]*progress.Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM progress_records WHERE student_id = $1 AND course_id = $2 ORDER BY created_at",
		progressColumns,
	)

	rows, err := r.conn.Query(ctx, query, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}
	defer rows.Close()

	return scanProgressRecords(rows)
}

// CountCompletedByCourse counts a student's completed records for a course.
func (r *ProgressRepository) CountCompletedByCourse(ctx context.Context, studentID, courseID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM progress_records WHERE student_id = $1 AND course_id = $2 AND completed",
		studentID, courseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed records: %w", err)
	}
	return count, nil
}

// DeleteByStudent removes all of a student's progress records.
func (r *ProgressRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.conn.Exec(ctx,
		"DELETE FROM progress_records WHERE student_id = $1", studentID,
	); err != nil {
		return fmt.Errorf("failed to delete progress records: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// insertRecord creates a fresh unfinished record inside the transaction.
// A unique violation means a concurrent writer created the row between
// our SELECT and INSERT; the caller retries and resolves to an update.
func (r *ProgressRepository) insertRecord(ctx context.Context, tx pgx.Tx, params progress.ApplyParams) (*progress.Record, error) {
	record, err := progress.NewRecord(progress.NewRecordParams{
		ID:  params.NewID,
		Key: params.Key,
	})
	if err != nil {
		return nil, err
	}

	key := params.Key
	_, err = tx.Exec(ctx, `
		INSERT INTO progress_records (
			id, student_id, course_id, level, unit_id, topic_id, subtopic_id,
			completed, completed_at, points, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		record.ID,
		key.StudentID,
		key.CourseID,
		key.Level.String(),
		nilIfEmpty(key.UnitID),
		nilIfEmpty(key.TopicID),
		nilIfEmpty(key.SubtopicID),
		record.Completed,
		record.CompletedAt,
		record.Points,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, shared.ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to insert progress record: %w", err)
	}
	return record, nil
}

// updateRecord persists the record's mutable state.
func (r *ProgressRepository) updateRecord(ctx context.Context, tx pgx.Tx, record *progress.Record) error {
	_, err := tx.Exec(ctx, `
		UPDATE progress_records
		SET completed = $1, completed_at = $2, points = $3, updated_at = $4
		WHERE id = $5
	`,
		record.Completed,
		record.CompletedAt,
		record.Points,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress record: %w", err)
	}
	return nil
}

// scanProgressRecord scans one record from a row.
func scanProgressRecord(row pgx.Row) (*progress.Record, error) {
	var rec progress.Record
	var level string
	var unitID, topicID, subtopicID *string
	var completedAt *time.Time

	err := row.Scan(
		&rec.ID,
		&rec.Key.StudentID,
		&rec.Key.CourseID,
		&level,
		&unitID,
		&topicID,
		&subtopicID,
		&rec.Completed,
		&completedAt,
		&rec.Points,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Key.Level = progress.Level(level)
	if unitID != nil {
		rec.Key.UnitID = *unitID
	}
	if topicID != nil {
		rec.Key.TopicID = *topicID
	}
	if subtopicID != nil {
		rec.Key.SubtopicID = *subtopicID
	}
	rec.CompletedAt = completedAt

	return &rec, nil
}

// scanProgressRecords scans multiple records from rows.
func scanProgressRecords(rows pgx.Rows) ([]*progress.Record, error) {
	var records []*progress.Record

	for rows.Next() {
		rec, err := scanProgressRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}
