package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func seedQuiz(t *testing.T, repo *fakeQuizRepo, aiEvaluation bool) *quiz.Quiz {
	t.Helper()
	q, err := quiz.NewQuiz(quiz.NewQuizParams{
		ID:       "quiz-1",
		CourseID: "course-1",
		Title:    "Go Basics",
		Questions: []quiz.Question{
			{
				Text:          "Which keyword starts a goroutine?",
				Type:          quiz.QuestionMultipleChoice,
				Options:       []string{"go", "run", "spawn"},
				CorrectAnswer: "go",
				Points:        5,
			},
			{
				Text:   "Describe what a channel is used for.",
				Type:   quiz.QuestionShortAnswer,
				Points: 10,
			},
		},
		AIEvaluation: aiEvaluation,
	})
	require.NoError(t, err)
	return repo.add(q)
}

func gradeCommand() GradeQuizCommand {
	return GradeQuizCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		QuizID:    "quiz-1",
		Answers:   []string{"go", "channels pass values between goroutines"},
	}
}

func TestGradeQuiz_DeterministicOnly(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	pub := &recordingPublisher{}
	seedQuiz(t, quizzes, false)
	seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewGradeQuizHandler(quizzes, enrollments, nil, pub, false)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Score)
	assert.Equal(t, 15, result.MaxScore)
	assert.False(t, result.AIEvaluated)

	require.Len(t, result.Answers, 2)
	assert.True(t, result.Answers[0].Correct)
	assert.Equal(t, 5, result.Answers[0].PointsAwarded)
	assert.Equal(t, 0, result.Answers[1].PointsAwarded)
	assert.Equal(t, ManualReviewFeedback, result.Answers[1].Feedback)

	// The attempt is stored on the enrollment.
	enr, err := enrollments.GetByStudentAndCourse(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	latest := enr.LatestQuizResult("quiz-1")
	require.NotNil(t, latest)
	assert.Equal(t, 5, latest.Score)
	assert.Equal(t, 15, latest.MaxScore)
	assert.Contains(t, latest.Feedback, ManualReviewFeedback)

	assert.Equal(t, []shared.EventType{shared.EventQuizGraded}, pub.types())
}

func TestGradeQuiz_AIEvaluatesShortAnswers(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, true)
	seedEnrollment(enrollments, "stu-1", "course-1")

	evaluator := &stubEvaluator{points: 8, feedback: "good answer"}
	handler := NewGradeQuizHandler(quizzes, enrollments, evaluator, nil, true)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err)

	assert.Equal(t, 13, result.Score)
	assert.True(t, result.AIEvaluated)
	assert.Equal(t, 1, evaluator.calls, "only short answers reach the evaluator")
	assert.Equal(t, 8, result.Answers[1].PointsAwarded)
	assert.Equal(t, "good answer", result.Answers[1].Feedback)
	assert.False(t, result.Answers[1].Correct, "partial credit is not a correct answer")

	enr, err := enrollments.GetByStudentAndCourse(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	assert.Contains(t, enr.LatestQuizResult("quiz-1").AIFeedback, "good answer")
}

func TestGradeQuiz_FullAIScoreMarksCorrect(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, true)
	seedEnrollment(enrollments, "stu-1", "course-1")

	evaluator := &stubEvaluator{points: 10, feedback: "perfect"}
	handler := NewGradeQuizHandler(quizzes, enrollments, evaluator, nil, true)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err)

	assert.Equal(t, 15, result.Score)
	assert.True(t, result.Answers[1].Correct)
}

func TestGradeQuiz_ClampsEvaluatorScore(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, true)
	seedEnrollment(enrollments, "stu-1", "course-1")

	// The evaluator exceeds the question's maximum.
	evaluator := &stubEvaluator{points: 100, feedback: "too generous"}
	handler := NewGradeQuizHandler(quizzes, enrollments, evaluator, nil, true)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err)

	assert.Equal(t, 10, result.Answers[1].PointsAwarded)
	assert.Equal(t, 15, result.Score)
}

func TestGradeQuiz_EvaluatorFailureFallsBack(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, true)
	seedEnrollment(enrollments, "stu-1", "course-1")

	evaluator := &stubEvaluator{err: errors.New("service down")}
	handler := NewGradeQuizHandler(quizzes, enrollments, evaluator, nil, true)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err, "grading must never fail because the evaluator did")

	assert.Equal(t, 5, result.Score)
	assert.False(t, result.AIEvaluated)
	assert.Equal(t, ManualReviewFeedback, result.Answers[1].Feedback)
}

func TestGradeQuiz_FlagDisabledSkipsEvaluator(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, true)
	seedEnrollment(enrollments, "stu-1", "course-1")

	evaluator := &stubEvaluator{points: 10}
	handler := NewGradeQuizHandler(quizzes, enrollments, evaluator, nil, false)

	result, err := handler.Handle(context.Background(), gradeCommand())
	require.NoError(t, err)

	assert.Equal(t, 0, evaluator.calls)
	assert.False(t, result.AIEvaluated)
}

func TestGradeQuiz_NotEnrolled(t *testing.T) {
	quizzes := newFakeQuizRepo()
	seedQuiz(t, quizzes, false)

	handler := NewGradeQuizHandler(quizzes, newFakeEnrollmentRepo(), nil, nil, false)

	_, err := handler.Handle(context.Background(), gradeCommand())
	assert.ErrorIs(t, err, shared.ErrNotEnrolled)
}

func TestGradeQuiz_AnswerCountMismatch(t *testing.T) {
	quizzes := newFakeQuizRepo()
	enrollments := newFakeEnrollmentRepo()
	seedQuiz(t, quizzes, false)
	seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewGradeQuizHandler(quizzes, enrollments, nil, nil, false)

	cmd := gradeCommand()
	cmd.Answers = []string{"go"}

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrAnswerCountWrong)
}

func TestGradeQuiz_QuizNotFound(t *testing.T) {
	handler := NewGradeQuizHandler(newFakeQuizRepo(), newFakeEnrollmentRepo(), nil, nil, false)

	_, err := handler.Handle(context.Background(), gradeCommand())
	assert.ErrorIs(t, err, shared.ErrQuizNotFound)
}
