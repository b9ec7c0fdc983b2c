package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE CONTENT COMMANDS
// Instructor-facing authoring operations for the course hierarchy:
// course -> unit -> topic -> subtopic. Each child command verifies that
// its parent exists before creating the node.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand contains the data to create a course.
type CreateCourseCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	Title       string
	Description string
	Category    string
	Difficulty  string
	Tags        []string
	Price       float64
}

// Validate validates the command.
func (c CreateCourseCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("create_course: actor is required")
	}
	if c.Title == "" {
		return course.ErrEmptyTitle
	}
	return nil
}

// CreateUnitCommand contains the data to create a unit inside a course.
type CreateUnitCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	CourseID    string
	Title       string
	Order       int
	PremiumOnly bool
}

// Validate validates the command.
func (c CreateUnitCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("create_unit: actor is required")
	}
	if c.CourseID == "" {
		return errors.New("create_unit: course_id is required")
	}
	if c.Title == "" {
		return course.ErrEmptyTitle
	}
	return nil
}

// CreateTopicCommand contains the data to create a topic inside a unit.
type CreateTopicCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	UnitID      string
	Title       string
	Order       int
	PremiumOnly bool
}

// Validate validates the command.
func (c CreateTopicCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("create_topic: actor is required")
	}
	if c.UnitID == "" {
		return errors.New("create_topic: unit_id is required")
	}
	if c.Title == "" {
		return course.ErrEmptyTitle
	}
	return nil
}

// CreateSubtopicCommand contains the data to create a subtopic inside a topic.
type CreateSubtopicCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	TopicID     string
	Title       string
	Type        string
	Content     string
	VideoURL    string
	Duration    int
	QuizID      string
	Order       int
	PremiumOnly bool
}

// Validate validates the command.
func (c CreateSubtopicCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("create_subtopic: actor is required")
	}
	if c.TopicID == "" {
		return errors.New("create_subtopic: topic_id is required")
	}
	if c.Title == "" {
		return course.ErrEmptyTitle
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateContentHandler handles the content authoring commands.
type CreateContentHandler struct {
	courseRepo course.Repository
}

// NewCreateContentHandler creates a new CreateContentHandler.
func NewCreateContentHandler(courseRepo course.Repository) *CreateContentHandler {
	return &CreateContentHandler{courseRepo: courseRepo}
}

func (h *CreateContentHandler) authorize(actor shared.Actor) error {
	if !actor.Role.CanManageContent() {
		return shared.ErrAccessDenied
	}
	return nil
}

// HandleCreateCourse creates a new course. The course starts unpublished.
func (h *CreateContentHandler) HandleCreateCourse(ctx context.Context, cmd CreateCourseCommand) (*course.Course, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.authorize(cmd.Actor); err != nil {
		return nil, err
	}

	crs, err := course.NewCourse(course.NewCourseParams{
		ID:           uuid.NewString(),
		Title:        cmd.Title,
		Description:  cmd.Description,
		InstructorID: cmd.Actor.StudentID,
		Category:     cmd.Category,
		Difficulty:   course.Difficulty(cmd.Difficulty),
		Tags:         cmd.Tags,
		Price:        cmd.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("create_course: %w", err)
	}

	if err := h.courseRepo.CreateCourse(ctx, crs); err != nil {
		return nil, fmt.Errorf("create_course: %w", err)
	}
	return crs, nil
}

// HandleCreateUnit creates a new unit. The parent course must exist.
func (h *CreateContentHandler) HandleCreateUnit(ctx context.Context, cmd CreateUnitCommand) (*course.Unit, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.authorize(cmd.Actor); err != nil {
		return nil, err
	}

	if _, err := h.courseRepo.GetCourse(ctx, cmd.CourseID); err != nil {
		return nil, fmt.Errorf("create_unit: %w", err)
	}

	unit, err := course.NewUnit(course.NewUnitParams{
		ID:          uuid.NewString(),
		CourseID:    cmd.CourseID,
		Title:       cmd.Title,
		Order:       cmd.Order,
		PremiumOnly: cmd.PremiumOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("create_unit: %w", err)
	}

	if err := h.courseRepo.CreateUnit(ctx, unit); err != nil {
		return nil, fmt.Errorf("create_unit: %w", err)
	}
	return unit, nil
}

// HandleCreateTopic creates a new topic. The parent unit must exist.
func (h *CreateContentHandler) HandleCreateTopic(ctx context.Context, cmd CreateTopicCommand) (*course.Topic, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.authorize(cmd.Actor); err != nil {
		return nil, err
	}

	if _, err := h.courseRepo.GetUnit(ctx, cmd.UnitID); err != nil {
		return nil, fmt.Errorf("create_topic: %w", err)
	}

	topic, err := course.NewTopic(course.NewTopicParams{
		ID:          uuid.NewString(),
		UnitID:      cmd.UnitID,
		Title:       cmd.Title,
		Order:       cmd.Order,
		PremiumOnly: cmd.PremiumOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("create_topic: %w", err)
	}

	if err := h.courseRepo.CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("create_topic: %w", err)
	}
	return topic, nil
}

// HandleCreateSubtopic creates a new subtopic. The parent topic must exist.
func (h *CreateContentHandler) HandleCreateSubtopic(ctx context.Context, cmd CreateSubtopicCommand) (*course.Subtopic, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.authorize(cmd.Actor); err != nil {
		return nil, err
	}

	if _, err := h.courseRepo.GetTopic(ctx, cmd.TopicID); err != nil {
		return nil, fmt.Errorf("create_subtopic: %w", err)
	}

	st, err := course.NewSubtopic(course.NewSubtopicParams{
		ID:          uuid.NewString(),
		TopicID:     cmd.TopicID,
		Title:       cmd.Title,
		Type:        course.ContentType(cmd.Type),
		Content:     cmd.Content,
		VideoURL:    cmd.VideoURL,
		Duration:    cmd.Duration,
		QuizID:      cmd.QuizID,
		Order:       cmd.Order,
		PremiumOnly: cmd.PremiumOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("create_subtopic: %w", err)
	}

	if err := h.courseRepo.CreateSubtopic(ctx, st); err != nil {
		return nil, fmt.Errorf("create_subtopic: %w", err)
	}
	return st, nil
}

// HandlePublishCourse flips a course to published.
func (h *CreateContentHandler) HandlePublishCourse(ctx context.Context, actor shared.Actor, courseID string) (*course.Course, error) {
	if err := h.authorize(actor); err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("publish_course: %w", err)
	}

	crs.Publish()

	if err := h.courseRepo.UpdateCourse(ctx, crs); err != nil {
		return nil, fmt.Errorf("publish_course: %w", err)
	}
	return crs, nil
}
