package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE QUIZ COMMAND
// Multiple-choice answers are graded deterministically. Short answers go
// to the external evaluator when the quiz enables it; when the evaluator
// is down or disabled they are flagged for manual review and award no
// points. Grading must never fail because the evaluator did.
// ══════════════════════════════════════════════════════════════════════════════

// ManualReviewFeedback is recorded when a short answer could not be
// evaluated automatically.
const ManualReviewFeedback = "needs manual review"

// AnswerEvaluator scores a free-form answer against a question.
type AnswerEvaluator interface {
	// EvaluateAnswer returns the points awarded (0..maxPoints) and a
	// short feedback line.
	EvaluateAnswer(ctx context.Context, question, answer string, maxPoints int) (int, string, error)
}

// GradeQuizCommand contains the data to grade a quiz attempt.
type GradeQuizCommand struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID taking the quiz. Must equal the actor unless the actor
	// is an admin.
	StudentID string

	// QuizID to grade.
	QuizID string

	// Answers, one per question, in question order.
	Answers []string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c GradeQuizCommand) Validate() error {
	if !c.Actor.IsValid() {
		return errors.New("grade_quiz: actor is required")
	}
	if c.StudentID == "" {
		return errors.New("grade_quiz: student_id is required")
	}
	if c.QuizID == "" {
		return errors.New("grade_quiz: quiz_id is required")
	}
	if len(c.Answers) == 0 {
		return errors.New("grade_quiz: answers are required")
	}
	return nil
}

// GradedAnswer is the per-question outcome returned to the caller.
type GradedAnswer struct {
	QuestionIndex int    `json:"question_index"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	Feedback      string `json:"feedback,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// GradeQuizResult contains the result of a graded attempt.
type GradeQuizResult struct {
	// Score achieved out of MaxScore.
	Score    int
	MaxScore int

	// Answers in question order.
	Answers []GradedAnswer

	// AIEvaluated is true when at least one answer was scored by the
	// external evaluator.
	AIEvaluated bool

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GradeQuizHandler handles the GradeQuizCommand.
type GradeQuizHandler struct {
	quizRepo       quiz.Repository
	enrollmentRepo enrollment.Repository
	evaluator      AnswerEvaluator
	eventPublisher shared.EventPublisher

	// aiFeedback gates evaluator use on top of the quiz's own flag.
	aiFeedback bool
}

// NewGradeQuizHandler creates a new GradeQuizHandler. The evaluator may
// be nil; short answers then always fall back to manual review.
func NewGradeQuizHandler(
	quizRepo quiz.Repository,
	enrollmentRepo enrollment.Repository,
	evaluator AnswerEvaluator,
	eventPublisher shared.EventPublisher,
	aiFeedback bool,
) *GradeQuizHandler {
	return &GradeQuizHandler{
		quizRepo:       quizRepo,
		enrollmentRepo: enrollmentRepo,
		evaluator:      evaluator,
		eventPublisher: eventPublisher,
		aiFeedback:     aiFeedback,
	}
}

// Handle executes the grade quiz command.
func (h *GradeQuizHandler) Handle(ctx context.Context, cmd GradeQuizCommand) (*GradeQuizResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Actor.CanActFor(cmd.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	qz, err := h.quizRepo.GetByID(ctx, cmd.QuizID)
	if err != nil {
		return nil, fmt.Errorf("grade_quiz: %w", err)
	}

	enr, err := h.enrollmentRepo.GetByStudentAndCourse(ctx, cmd.StudentID, qz.CourseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrNotEnrolled
		}
		return nil, fmt.Errorf("grade_quiz: %w", err)
	}

	outcomes, score, err := qz.GradeDeterministic(cmd.Answers)
	if err != nil {
		return nil, shared.ErrAnswerCountWrong
	}

	result := &GradeQuizResult{
		MaxScore: qz.TotalPoints(),
		Answers:  make([]GradedAnswer, len(outcomes)),
	}

	useAI := h.aiFeedback && qz.AIEvaluation && h.evaluator != nil

	for i, outcome := range outcomes {
		graded := GradedAnswer{
			QuestionIndex: outcome.QuestionIndex,
			Correct:       outcome.Correct,
			PointsAwarded: outcome.PointsAwarded,
			Explanation:   outcome.Explanation,
		}

		if outcome.NeedsEvaluation {
			question := qz.Questions[i]
			awarded, feedback, evalErr := 0, ManualReviewFeedback, error(nil)
			if useAI {
				awarded, feedback, evalErr = h.evaluator.EvaluateAnswer(ctx, question.Text, cmd.Answers[i], question.Points)
			}
			if !useAI || evalErr != nil {
				awarded, feedback = 0, ManualReviewFeedback
			} else {
				if awarded < 0 {
					awarded = 0
				}
				if awarded > question.Points {
					awarded = question.Points
				}
				result.AIEvaluated = true
				graded.Correct = awarded == question.Points
			}
			graded.PointsAwarded = awarded
			graded.Feedback = feedback
			score += awarded
		}

		result.Answers[i] = graded
	}
	result.Score = score

	quizResult := enrollment.QuizResult{
		QuizID:   qz.ID,
		Score:    result.Score,
		MaxScore: result.MaxScore,
		TakenAt:  time.Now().UTC(),
	}
	if result.AIEvaluated {
		quizResult.AIFeedback = joinFeedback(result.Answers)
	} else {
		quizResult.Feedback = joinFeedback(result.Answers)
	}
	enr.AddQuizResult(quizResult)

	if err := h.enrollmentRepo.Update(ctx, enr); err != nil {
		return nil, fmt.Errorf("grade_quiz: failed to save result: %w", err)
	}

	event := shared.NewQuizGradedEvent(cmd.StudentID, qz.ID, qz.CourseID, result.Score, result.MaxScore)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}
	result.Events = []shared.Event{event}

	return result, nil
}

// joinFeedback collapses per-answer feedback into one stored line.
func joinFeedback(answers []GradedAnswer) string {
	out := ""
	for _, a := range answers {
		if a.Feedback == "" {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += fmt.Sprintf("Q%d: %s", a.QuestionIndex+1, a.Feedback)
	}
	return out
}
