// Package quiz contains the quiz domain model and deterministic grading.
// Multiple-choice questions are graded locally; short-answer questions may
// be evaluated by the external text generation service with a deterministic
// fallback.
package quiz

import (
	"errors"
	"strings"
	"time"
)

// QuestionType determines how a question is graded.
type QuestionType string

const (
	// QuestionMultipleChoice is graded by exact answer comparison.
	QuestionMultipleChoice QuestionType = "multiple-choice"
	// QuestionShortAnswer is graded by the AI evaluator when available.
	QuestionShortAnswer QuestionType = "short-answer"
)

// IsValid checks if the question type is one of the known values.
func (q QuestionType) IsValid() bool {
	switch q {
	case QuestionMultipleChoice, QuestionShortAnswer:
		return true
	default:
		return false
	}
}

var (
	// ErrEmptyTitle - quiz title is required.
	ErrEmptyTitle = errors.New("quiz title is required")

	// ErrNoQuestions - a quiz must carry at least one question.
	ErrNoQuestions = errors.New("quiz must have at least one question")

	// ErrInvalidQuestion - malformed question definition.
	ErrInvalidQuestion = errors.New("invalid question definition")
)

// Question is a single quiz question.
type Question struct {
	// Text of the question.
	Text string `json:"text"`

	// Type of the question.
	Type QuestionType `json:"type"`

	// Options for multiple-choice questions.
	Options []string `json:"options,omitempty"`

	// CorrectAnswer for multiple-choice questions. Compared
	// case-insensitively after trimming.
	CorrectAnswer string `json:"correct_answer,omitempty"`

	// Points awarded for a correct answer.
	Points int `json:"points"`

	// Explanation shown after grading.
	Explanation string `json:"explanation,omitempty"`
}

// Quiz is a set of questions attached to a course.
type Quiz struct {
	// ID is the unique identifier (UUID string).
	ID string

	// CourseID the quiz belongs to.
	CourseID string

	// Title of the quiz.
	Title string

	// Questions in presentation order.
	Questions []Question

	// AIEvaluation enables AI grading of short answers.
	AIEvaluation bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuizParams holds parameters for creating a quiz.
type NewQuizParams struct {
	ID           string
	CourseID     string
	Title        string
	Questions    []Question
	AIEvaluation bool
}

// NewQuiz creates a quiz with validation.
func NewQuiz(params NewQuizParams) (*Quiz, error) {
	if params.ID == "" {
		return nil, errors.New("quiz id is required")
	}
	if params.CourseID == "" {
		return nil, errors.New("course id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	if len(params.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	for _, q := range params.Questions {
		if strings.TrimSpace(q.Text) == "" || !q.Type.IsValid() || q.Points < 0 {
			return nil, ErrInvalidQuestion
		}
		if q.Type == QuestionMultipleChoice && strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, ErrInvalidQuestion
		}
	}

	now := time.Now().UTC()

	return &Quiz{
		ID:           params.ID,
		CourseID:     params.CourseID,
		Title:        title,
		Questions:    append([]Question(nil), params.Questions...),
		AIEvaluation: params.AIEvaluation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TotalPoints returns the maximum score achievable on the quiz.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADING
// ══════════════════════════════════════════════════════════════════════════════

// AnswerOutcome is the grading result of one answer.
type AnswerOutcome struct {
	// QuestionIndex within the quiz.
	QuestionIndex int

	// Correct for multiple-choice questions.
	Correct bool

	// NeedsEvaluation is true for short-answer questions that require
	// external evaluation.
	NeedsEvaluation bool

	// PointsAwarded for this answer (deterministic portion only).
	PointsAwarded int

	// Explanation from the question definition.
	Explanation string
}

// GradeDeterministic grades the answers against the quiz locally.
// Multiple-choice answers are compared case-insensitively after trimming.
// Short-answer questions are marked NeedsEvaluation and award no points
// here. Returns an error if the answer count does not match.
func (q *Quiz) GradeDeterministic(answers []string) ([]AnswerOutcome, int, error) {
	if len(answers) != len(q.Questions) {
		return nil, 0, errors.New("answer count does not match question count")
	}

	outcomes := make([]AnswerOutcome, len(answers))
	score := 0

	for i, question := range q.Questions {
		outcome := AnswerOutcome{
			QuestionIndex: i,
			Explanation:   question.Explanation,
		}

		switch question.Type {
		case QuestionMultipleChoice:
			outcome.Correct = answersEqual(answers[i], question.CorrectAnswer)
			if outcome.Correct {
				outcome.PointsAwarded = question.Points
				score += question.Points
			}
		case QuestionShortAnswer:
			outcome.NeedsEvaluation = true
		}

		outcomes[i] = outcome
	}

	return outcomes, score, nil
}

// answersEqual compares answers case-insensitively after trimming.
func answersEqual(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}
