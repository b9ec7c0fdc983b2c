package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/payment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const paymentColumns = `id, student_id, plan, amount, status, method,
	course_id, unit_id, topic_id,
	transaction_id, premium_expires_at, created_at, updated_at`

// PaymentRepository implements payment.Repository for PostgreSQL.
type PaymentRepository struct {
	conn *Connection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(conn *Connection) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

// Create stores a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, student_id, plan, amount, status, method,
			course_id, unit_id, topic_id,
			transaction_id, premium_expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.StudentID,
		string(p.Plan),
		p.Amount,
		string(p.Status),
		p.Method,
		p.Target.CourseID,
		p.Target.UnitID,
		p.Target.TopicID,
		p.TransactionID,
		p.PremiumExpiresAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID returns a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)

	p, err := scanPayment(r.conn.QueryRow(ctx, query, id))
	if IsNoRows(err) {
		return nil, shared.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Update updates a payment's mutable state.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = $1,
			transaction_id = $2,
			premium_expires_at = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		string(p.Status),
		p.TransactionID,
		p.PremiumExpiresAt,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrPaymentNotFound
	}
	return nil
}

// ListByStudent returns a student's payments, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]*payment.Payment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM payments WHERE student_id = $1 ORDER BY created_at DESC",
		paymentColumns,
	)

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, serr := scanPayment(rows)
		if serr != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", serr)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// scanPayment scans one payment from a row.
func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	var plan, status string

	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&plan,
		&p.Amount,
		&status,
		&p.Method,
		&p.Target.CourseID,
		&p.Target.UnitID,
		&p.Target.TopicID,
		&p.TransactionID,
		&p.PremiumExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Plan = payment.Plan(plan)
	p.Status = payment.Status(status)
	return &p, nil
}
