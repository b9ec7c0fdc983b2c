package payment

import "context"

// Repository defines storage operations for payments.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores a new payment.
	Create(ctx context.Context, p *Payment) error

	// GetByID returns a payment by ID.
	// Returns shared.ErrPaymentNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Payment, error)

	// Update updates a payment's status and transaction reference.
	Update(ctx context.Context, p *Payment) error

	// ListByStudent returns all payments of a student, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*Payment, error)
}
