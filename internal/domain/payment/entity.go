// Package payment contains the payment domain model. The gateway is a
// mock: every processed payment completes and grants a premium window.
package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS & ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Plan is the premium plan purchased with a payment.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

// IsValid checks if the plan is one of the known values.
func (p Plan) IsValid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanPremium:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Plan) String() string {
	return string(p)
}

// Amount returns the standard price of the plan.
func (p Plan) Amount() float64 {
	switch p {
	case PlanBasic:
		return 9.99
	case PlanPro:
		return 19.99
	case PlanPremium:
		return 29.99
	default:
		return 0
	}
}

// ParsePlan parses a plan string, case-insensitively.
func ParsePlan(value string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", ErrUnknownPlan
	}
	return p, nil
}

// Target is the optional content node a purchase unlocks. A checkout
// may name a course, a unit inside it or a topic inside that unit; a
// plain plan purchase carries a zero target.
type Target struct {
	CourseID string
	UnitID   string
	TopicID  string
}

// IsZero reports whether the target names no content node.
func (t Target) IsZero() bool {
	return t.CourseID == "" && t.UnitID == "" && t.TopicID == ""
}

// Validate checks that a named node carries its ancestors.
func (t Target) Validate() error {
	if t.UnitID != "" && t.CourseID == "" {
		return errors.New("payment target: unit requires its course")
	}
	if t.TopicID != "" && (t.CourseID == "" || t.UnitID == "") {
		return errors.New("payment target: topic requires its course and unit")
	}
	return nil
}

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid checks if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnknownPlan - plan string is not basic, pro or premium.
	ErrUnknownPlan = errors.New("unknown premium plan")

	// ErrNonPositiveAmount - payment amount must be positive.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")

	// ErrAlreadyFinalized - payment already reached a terminal state.
	ErrAlreadyFinalized = errors.New("payment is already finalized")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PAYMENT
// ══════════════════════════════════════════════════════════════════════════════

// Payment represents one premium purchase by a student.
type Payment struct {
	// ID is the unique identifier (UUID string).
	ID string

	// StudentID is the paying student.
	StudentID string

	// Plan purchased with this payment.
	Plan Plan

	// Amount charged.
	Amount float64

	// Method is the declared payment method (e.g. "card").
	Method string

	// Target is the content node this purchase unlocks, when the
	// checkout named one.
	Target Target

	// Status of the payment.
	Status Status

	// TransactionID is the gateway transaction reference ("TXN-..." for
	// the mock gateway).
	TransactionID string

	// PremiumExpiresAt is the premium window granted by this payment.
	// Set when the payment completes.
	PremiumExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPaymentParams holds parameters for creating a payment.
type NewPaymentParams struct {
	ID        string
	StudentID string
	Plan      Plan
	Amount    float64
	Method    string
	Target    Target
}

// NewPayment creates a new pending payment with validation.
// A zero Amount defaults to the plan's standard price.
func NewPayment(params NewPaymentParams) (*Payment, error) {
	if params.ID == "" {
		return nil, errors.New("payment id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if !params.Plan.IsValid() {
		return nil, ErrUnknownPlan
	}
	if err := params.Target.Validate(); err != nil {
		return nil, err
	}

	amount := params.Amount
	if amount == 0 {
		amount = params.Plan.Amount()
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	method := strings.TrimSpace(params.Method)
	if method == "" {
		method = "card"
	}

	now := time.Now().UTC()

	return &Payment{
		ID:        params.ID,
		StudentID: params.StudentID,
		Plan:      params.Plan,
		Amount:    amount,
		Method:    method,
		Target:    params.Target,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Complete marks the payment as completed with the gateway transaction
// reference and records the premium window it grants.
func (p *Payment) Complete(transactionID string, premiumExpiresAt time.Time) error {
	if p.Status != StatusPending {
		return ErrAlreadyFinalized
	}

	p.Status = StatusCompleted
	p.TransactionID = transactionID
	exp := premiumExpiresAt.UTC()
	p.PremiumExpiresAt = &exp
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the payment as failed.
func (p *Payment) Fail() error {
	if p.Status != StatusPending {
		return ErrAlreadyFinalized
	}

	p.Status = StatusFailed
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsCompleted returns true for completed payments.
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// String returns a log-friendly representation.
func (p *Payment) String() string {
	return fmt.Sprintf("Payment{ID: %s, Student: %s, Plan: %s, Status: %s}",
		p.ID, p.StudentID, p.Plan, p.Status)
}
