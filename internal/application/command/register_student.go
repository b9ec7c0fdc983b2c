// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Creates a new student account. Passwords are hashed with bcrypt before
// they ever reach the repository.
// ══════════════════════════════════════════════════════════════════════════════

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	// Name is the display name.
	Name string

	// Email must be unique across students.
	Email string

	// Password in plain text; hashed inside the handler.
	Password string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("register_student: name is required")
	}
	if !shared.Email(c.Email).Normalize().IsValid() {
		return errors.New("register_student: invalid email")
	}
	if len(c.Password) < MinPasswordLength {
		return fmt.Errorf("register_student: password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// RegisterStudentResult contains the result of a registration.
type RegisterStudentResult struct {
	// StudentID is the ID of the new student.
	StudentID string

	// Email is the normalized email.
	Email string

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher

	// bcryptCost overrides the default bcrypt cost (tests use the minimum).
	bcryptCost int
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterStudentHandler {
	return &RegisterStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// WithBcryptCost sets a custom bcrypt cost.
func (h *RegisterStudentHandler) WithBcryptCost(cost int) *RegisterStudentHandler {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		h.bcryptCost = cost
	}
	return h
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	email := shared.Email(cmd.Email).Normalize()

	// Fast pre-check; the unique index on email is the real guard.
	taken, err := h.studentRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register_student: email check failed: %w", err)
	}
	if taken {
		return nil, shared.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), h.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register_student: password hashing failed: %w", err)
	}

	stud, err := student.NewStudent(student.NewStudentParams{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         shared.RoleStudent,
	})
	if err != nil {
		return nil, fmt.Errorf("register_student: %w", err)
	}

	if err := h.studentRepo.Create(ctx, stud); err != nil {
		return nil, fmt.Errorf("register_student: failed to create student: %w", err)
	}

	event := shared.NewStudentRegisteredEvent(stud.ID, stud.Email.String(), stud.Name, stud.Role.String())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return &RegisterStudentResult{
		StudentID: stud.ID,
		Email:     stud.Email.String(),
		Events:    []shared.Event{event},
	}, nil
}

// VerifyPassword compares a plain password against a student's stored hash.
// Exposed for the authentication layer outside the core.
func VerifyPassword(passwordHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}
