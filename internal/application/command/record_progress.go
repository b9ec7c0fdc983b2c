package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/progress"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROGRESS COMMAND
// The heart of the progress aggregator. Upserts a progress record by its
// full key and awards points exactly once, on the record's first
// transition to completed. The prior-state check, the write and the
// point award all happen in the same storage transaction, so concurrent
// calls on one key cannot both win the first-completion award and a
// failed award never leaves a committed completion behind.
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressCommand contains the data to record progress.
type RecordProgressCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose progress is recorded. Must equal the actor unless
	// the actor is an admin.
	StudentID string

	// CourseID is required on every record.
	CourseID string

	// UnitID, TopicID, SubtopicID select the record's level. The deepest
	// provided ID determines the level; parents of a provided node are
	// required.
	UnitID     string
	TopicID    string
	SubtopicID string

	// Completed is the requested completion state. Defaults to true
	// when the zero-value command is built from transport input.
	Completed bool

	// Points awarded on first completion. nil awards nothing: points
	// only move when the caller names an amount.
	Points *int

	// CorrelationID for tracing.
	CorrelationID string
}

// Key builds the progress key for the command.
func (c RecordProgressCommand) Key() progress.Key {
	key := progress.Key{
		StudentID:  c.StudentID,
		CourseID:   c.CourseID,
		UnitID:     c.UnitID,
		TopicID:    c.TopicID,
		SubtopicID: c.SubtopicID,
	}

	switch {
	case c.SubtopicID != "":
		key.Level = progress.LevelSubtopic
	case c.TopicID != "":
		key.Level = progress.LevelTopic
	case c.UnitID != "":
		key.Level = progress.LevelUnit
	default:
		key.Level = progress.LevelCourse
	}

	return key
}

// Validate validates the command.
func (c RecordProgressCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("record_progress: actor is required")
	}
	if c.Points != nil && *c.Points < 0 {
		return shared.ErrNegativePoints
	}
	return c.Key().Validate()
}

// RecordProgressResult contains the result of recording progress.
type RecordProgressResult struct {
	// Record is the resulting state of the progress record.
	Record *progress.Record

	// FirstCompletion is true when this call completed the record.
	FirstCompletion bool

	// PointsAwarded to the student's cumulative total by this call.
	// Zero unless FirstCompletion.
	PointsAwarded int

	// NewTotalPoints is the student's cumulative total after the award.
	NewTotalPoints int

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressHandler handles the RecordProgressCommand.
type RecordProgressHandler struct {
	progressRepo     progress.Repository
	enrollmentRepo   enrollment.Repository
	notificationRepo notification.Repository
	eventPublisher   shared.EventPublisher

	// notifyOnComplete controls completion notifications.
	notifyOnComplete bool
}

// NewRecordProgressHandler creates a new RecordProgressHandler.
func NewRecordProgressHandler(
	progressRepo progress.Repository,
	enrollmentRepo enrollment.Repository,
	notificationRepo notification.Repository,
	eventPublisher shared.EventPublisher,
	notifyOnComplete bool,
) *RecordProgressHandler {
	return &RecordProgressHandler{
		progressRepo:     progressRepo,
		enrollmentRepo:   enrollmentRepo,
		notificationRepo: notificationRepo,
		eventPublisher:   eventPublisher,
		notifyOnComplete: notifyOnComplete,
	}
}

// Handle executes the record progress command.
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	key := cmd.Key()

	enrolled, err := h.enrollmentRepo.Exists(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("record_progress: enrollment check failed: %w", err)
	}
	if !enrolled {
		return nil, shared.ErrNotEnrolled
	}

	// Omitted points award nothing; completion alone moves no score.
	points := 0
	if cmd.Points != nil {
		points = *cmd.Points
	}

	params := progress.ApplyParams{
		NewID:     uuid.NewString(),
		Key:       key,
		Completed: cmd.Completed,
		Points:    points,
		At:        time.Now().UTC(),
	}

	result, err := h.progressRepo.Apply(ctx, params)
	if errors.Is(err, shared.ErrConcurrentModification) {
		// Two writers raced to create the same key; the row exists now,
		// so a single retry resolves to an in-place update.
		result, err = h.progressRepo.Apply(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("record_progress: %w", err)
	}

	out := &RecordProgressResult{
		Record:          result.Record,
		FirstCompletion: result.FirstCompletion,
	}

	if result.FirstCompletion && points > 0 {
		// Apply committed the award with the record; here it only gets
		// reported and announced.
		out.PointsAwarded = points
		out.NewTotalPoints = result.NewTotalPoints

		event := shared.NewPointsAwardedEvent(cmd.StudentID, points, result.NewTotalPoints, "progress", cmd.CourseID)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		out.Events = append(out.Events, event)
	}

	progressEvent := shared.NewProgressRecordedEvent(
		cmd.StudentID, cmd.CourseID, key.Level.String(),
		result.Record.Completed, result.FirstCompletion, out.PointsAwarded,
	)
	if cmd.CorrelationID != "" {
		progressEvent.BaseEvent = progressEvent.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	out.Events = append(out.Events, progressEvent)

	if h.eventPublisher != nil {
		for _, event := range out.Events {
			_ = h.eventPublisher.Publish(event)
		}
	}

	if result.FirstCompletion && h.notifyOnComplete && h.notificationRepo != nil {
		message := fmt.Sprintf("You completed a %s.", key.Level)
		if out.PointsAwarded > 0 {
			message = fmt.Sprintf("You completed a %s and earned %d points.", key.Level, out.PointsAwarded)
		}
		notif, nerr := notification.NewNotification(notification.NewNotificationParams{
			ID:        uuid.NewString(),
			StudentID: cmd.StudentID,
			Title:     "Progress recorded",
			Message:   message,
			Type:      notification.TypeCourse,
			RelatedID: cmd.CourseID,
		})
		if nerr == nil {
			_ = h.notificationRepo.Create(ctx, notif)
		}
	}

	return out, nil
}
