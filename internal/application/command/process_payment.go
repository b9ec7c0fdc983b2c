package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/payment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS PAYMENT COMMAND
// The gateway is a mock: every payment completes immediately with a
// generated transaction reference. A completed payment grants a premium
// window of one calendar month from now, overwriting any previous window.
// ══════════════════════════════════════════════════════════════════════════════

// ProcessPaymentCommand contains the data to process a premium purchase.
type ProcessPaymentCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID is the paying student. Must equal the actor unless the
	// actor is an admin.
	StudentID string

	// Plan to purchase: basic, pro or premium.
	Plan string

	// Amount charged. Zero selects the plan's standard price.
	Amount float64

	// Method is the declared payment method.
	Method string

	// CourseID, UnitID, TopicID name the content node the purchase
	// unlocks. All optional; a named unit requires its course and a
	// named topic requires both parents.
	CourseID string
	UnitID   string
	TopicID  string

	// CorrelationID for tracing.
	CorrelationID string
}

// Target builds the payment target from the command.
func (c ProcessPaymentCommand) Target() payment.Target {
	return payment.Target{
		CourseID: c.CourseID,
		UnitID:   c.UnitID,
		TopicID:  c.TopicID,
	}
}

// Validate validates the command.
func (c ProcessPaymentCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("process_payment: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("process_payment: student_id is required")
	}
	if _, err := payment.ParsePlan(c.Plan); err != nil {
		return err
	}
	if c.Amount < 0 {
		return payment.ErrNonPositiveAmount
	}
	return c.Target().Validate()
}

// ProcessPaymentResult contains the result of a payment.
type ProcessPaymentResult struct {
	// Payment is the completed payment.
	Payment *payment.Payment

	// PremiumExpiresAt is the granted premium window.
	PremiumExpiresAt time.Time

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProcessPaymentHandler handles the ProcessPaymentCommand.
type ProcessPaymentHandler struct {
	paymentRepo      payment.Repository
	studentRepo      student.Repository
	notificationRepo notification.Repository
	eventPublisher   shared.EventPublisher

	// notifyOnPayment controls the payment receipt notification.
	notifyOnPayment bool

	// now is injectable for tests.
	now func() time.Time
}

// NewProcessPaymentHandler creates a new ProcessPaymentHandler.
func NewProcessPaymentHandler(
	paymentRepo payment.Repository,
	studentRepo student.Repository,
	notificationRepo notification.Repository,
	eventPublisher shared.EventPublisher,
	notifyOnPayment bool,
) *ProcessPaymentHandler {
	return &ProcessPaymentHandler{
		paymentRepo:      paymentRepo,
		studentRepo:      studentRepo,
		notificationRepo: notificationRepo,
		eventPublisher:   eventPublisher,
		notifyOnPayment:  notifyOnPayment,
		now:              timeutil.Now,
	}
}

// WithClock sets a custom clock (tests).
func (h *ProcessPaymentHandler) WithClock(now func() time.Time) *ProcessPaymentHandler {
	if now != nil {
		h.now = now
	}
	return h
}

// Handle executes the process payment command.
func (h *ProcessPaymentHandler) Handle(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	plan, _ := payment.ParsePlan(cmd.Plan)

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("process_payment: %w", err)
	}

	pay, err := payment.NewPayment(payment.NewPaymentParams{
		ID:        uuid.NewString(),
		StudentID: cmd.StudentID,
		Plan:      plan,
		Amount:    cmd.Amount,
		Method:    cmd.Method,
		Target:    cmd.Target(),
	})
	if err != nil {
		return nil, fmt.Errorf("process_payment: %w", err)
	}

	now := h.now()
	expiresAt := timeutil.PremiumExpiry(now)
	transactionID := fmt.Sprintf("TXN-%d-%s", now.UnixNano(), pay.ID[:8])

	if err := pay.Complete(transactionID, expiresAt); err != nil {
		return nil, fmt.Errorf("process_payment: %w", err)
	}

	if err := h.paymentRepo.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("process_payment: failed to save payment: %w", err)
	}

	// Overwrite, never extend: the window always runs from this payment.
	if err := stud.GrantPremium(student.PremiumPlan(plan), expiresAt); err != nil {
		return nil, fmt.Errorf("process_payment: %w", err)
	}
	if err := h.studentRepo.Update(ctx, stud); err != nil {
		return nil, fmt.Errorf("process_payment: failed to update student: %w", err)
	}

	events := []shared.Event{
		shared.NewPaymentCompletedEvent(pay.ID, cmd.StudentID, pay.Amount, plan.String(), transactionID),
		shared.NewPremiumGrantedEvent(cmd.StudentID, plan.String(), expiresAt, pay.ID),
	}
	if h.eventPublisher != nil {
		for _, event := range events {
			_ = h.eventPublisher.Publish(event)
		}
	}

	if h.notifyOnPayment && h.notificationRepo != nil {
		notif, nerr := notification.NewNotification(notification.NewNotificationParams{
			ID:        uuid.NewString(),
			StudentID: cmd.StudentID,
			Title:     "Payment successful",
			Message:   fmt.Sprintf("Your %s plan is active until %s.", plan, timeutil.FormatDateStr(expiresAt)),
			Type:      notification.TypePayment,
			RelatedID: pay.ID,
		})
		if nerr == nil {
			_ = h.notificationRepo.Create(ctx, notif)
		}
	}

	return &ProcessPaymentResult{
		Payment:          pay,
		PremiumExpiresAt: expiresAt,
		Events:           events,
	}, nil
}
