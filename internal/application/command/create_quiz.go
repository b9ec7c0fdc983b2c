package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE QUIZ COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateQuizCommand contains the data to author a quiz for a course.
type CreateQuizCommand struct {
	// Actor must be an instructor or admin.
	Actor shared.Actor

	CourseID     string
	Title        string
	Questions    []quiz.Question
	AIEvaluation bool
}

// Validate validates the command.
func (c CreateQuizCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("create_quiz: actor is required")
	}
	if c.CourseID == "" {
		return errors.New("create_quiz: course_id is required")
	}
	if len(c.Questions) == 0 {
		return quiz.ErrNoQuestions
	}
	return nil
}

// CreateQuizHandler handles the CreateQuizCommand.
type CreateQuizHandler struct {
	quizRepo   quiz.Repository
	courseRepo course.Repository
}

// NewCreateQuizHandler creates a new CreateQuizHandler.
func NewCreateQuizHandler(quizRepo quiz.Repository, courseRepo course.Repository) *CreateQuizHandler {
	return &CreateQuizHandler{
		quizRepo:   quizRepo,
		courseRepo: courseRepo,
	}
}

// Handle executes the create quiz command.
func (h *CreateQuizHandler) Handle(ctx context.Context, cmd CreateQuizCommand) (*quiz.Quiz, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.Role.CanManageContent() {
		return nil, shared.ErrAccessDenied
	}

	if _, err := h.courseRepo.GetCourse(ctx, cmd.CourseID); err != nil {
		return nil, fmt.Errorf("create_quiz: %w", err)
	}

	qz, err := quiz.NewQuiz(quiz.NewQuizParams{
		ID:           uuid.NewString(),
		CourseID:     cmd.CourseID,
		Title:        cmd.Title,
		Questions:    cmd.Questions,
		AIEvaluation: cmd.AIEvaluation,
	})
	if err != nil {
		return nil, fmt.Errorf("create_quiz: %w", err)
	}

	if err := h.quizRepo.Create(ctx, qz); err != nil {
		return nil, fmt.Errorf("create_quiz: %w", err)
	}
	return qz, nil
}
