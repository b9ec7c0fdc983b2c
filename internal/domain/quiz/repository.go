package quiz

import "context"

// Repository defines storage operations for quizzes.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores a new quiz.
	Create(ctx context.Context, q *Quiz) error

	// GetByID returns a quiz by ID.
	// Returns shared.ErrQuizNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Quiz, error)

	// ListByCourse returns all quizzes of a course.
	ListByCourse(ctx context.Context, courseID string) ([]*Quiz, error)

	// Update updates a quiz definition.
	Update(ctx context.Context, q *Quiz) error

	// Delete removes a quiz.
	Delete(ctx context.Context, id string) error
}
