package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADJUST POINTS COMMAND
// Instructor/admin tooling for manual point corrections. The adjustment
// is a direct set or increment on the cumulative total; it does not
// touch progress records.
// ══════════════════════════════════════════════════════════════════════════════

// AdjustMode selects how the adjustment is applied.
type AdjustMode string

const (
	// AdjustModeIncrement adds the delta to the current total.
	AdjustModeIncrement AdjustMode = "increment"
	// AdjustModeSet overwrites the total with the given value.
	AdjustModeSet AdjustMode = "set"
)

// AdjustPointsCommand contains the data to adjust a student's points.
type AdjustPointsCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	// StudentID whose total is adjusted.
	StudentID string

	// Mode selects set or increment.
	Mode AdjustMode

	// Value is the delta (increment) or the new total (set). A set below
	// zero is rejected; an increment below the floor clamps at zero.
	Value int

	// Reason is recorded on the emitted event.
	Reason string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AdjustPointsCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("adjust_points: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("adjust_points: student_id is required")
	}
	switch c.Mode {
	case AdjustModeIncrement, AdjustModeSet:
	default:
		return fmt.Errorf("adjust_points: unknown mode %q", c.Mode)
	}
	if c.Mode == AdjustModeSet && c.Value < 0 {
		return shared.ErrNegativePoints
	}
	return nil
}

// AdjustPointsResult contains the result of the adjustment.
type AdjustPointsResult struct {
	// NewTotalPoints is the student's total after the adjustment.
	NewTotalPoints int

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AdjustPointsHandler handles the AdjustPointsCommand.
type AdjustPointsHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewAdjustPointsHandler creates a new AdjustPointsHandler.
func NewAdjustPointsHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *AdjustPointsHandler {
	return &AdjustPointsHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the adjust points command.
func (h *AdjustPointsHandler) Handle(ctx context.Context, cmd AdjustPointsCommand) (*AdjustPointsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.Role.CanManageContent() {
		return nil, shared.ErrAccessDenied
	}

	var newTotal int
	switch cmd.Mode {
	case AdjustModeIncrement:
		total, err := h.studentRepo.AddPoints(ctx, cmd.StudentID, cmd.Value)
		if err != nil {
			return nil, fmt.Errorf("adjust_points: %w", err)
		}
		newTotal = total

	case AdjustModeSet:
		stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
		if err != nil {
			return nil, fmt.Errorf("adjust_points: %w", err)
		}
		if err := stud.SetPoints(cmd.Value); err != nil {
			return nil, fmt.Errorf("adjust_points: %w", err)
		}
		if err := h.studentRepo.Update(ctx, stud); err != nil {
			return nil, fmt.Errorf("adjust_points: failed to save student: %w", err)
		}
		newTotal = stud.TotalPoints
	}

	event := shared.NewPointsAwardedEvent(cmd.StudentID, cmd.Value, newTotal, "admin_adjustment", "")
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return &AdjustPointsResult{
		NewTotalPoints: newTotal,
		Events:         []shared.Event{event},
	}, nil
}
