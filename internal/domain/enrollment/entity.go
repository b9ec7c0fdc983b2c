// Package enrollment содержит доменную модель записи студента на курс.
package enrollment

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidPercent - процент прогресса вне диапазона 0-100.
	ErrInvalidPercent = errors.New("progress percent must be 0-100")

	// ErrNegativeLesson - отрицательный индекс урока.
	ErrNegativeLesson = errors.New("lesson index must be non-negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ RESULT
// ══════════════════════════════════════════════════════════════════════════════

// QuizResult представляет результат прохождения квиза в рамках записи на курс.
type QuizResult struct {
	// QuizID - ID квиза.
	QuizID string `json:"quiz_id"`

	// Score - набранные баллы.
	Score int `json:"score"`

	// MaxScore - максимально возможные баллы.
	MaxScore int `json:"max_score"`

	// Feedback - детерминированная обратная связь по ответам.
	Feedback string `json:"feedback,omitempty"`

	// AIFeedback - обратная связь, сгенерированная внешним сервисом.
	// Пустая строка, если генерация недоступна.
	AIFeedback string `json:"ai_feedback,omitempty"`

	// TakenAt - время прохождения.
	TakenAt time.Time `json:"taken_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment - запись студента на курс. Пара (StudentID, CourseID) уникальна.
type Enrollment struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// StudentID - ID студента.
	StudentID string

	// CourseID - ID курса.
	CourseID string

	// EnrolledAt - время записи на курс.
	EnrolledAt time.Time

	// Progress - процент прохождения курса (0-100).
	// Устаревшее поле курсового прогресса: обновляется явно через
	// UpdateLessonProgress и не выводится из записей прогресса.
	Progress int

	// CompletedLessons - индексы завершённых уроков.
	// Семантика множества: обновление объединяет новые значения
	// с уже сохранёнными, завершённость не отзывается.
	CompletedLessons []int

	// QuizResults - результаты квизов по этому курсу.
	QuizResults []QuizResult

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewEnrollmentParams содержит параметры для создания записи.
type NewEnrollmentParams struct {
	ID        string
	StudentID string
	CourseID  string
}

// NewEnrollment создаёт новую запись на курс с валидацией.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if params.ID == "" {
		return nil, errors.New("enrollment id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if params.CourseID == "" {
		return nil, errors.New("course id is required")
	}

	now := time.Now().UTC()

	return &Enrollment{
		ID:               params.ID,
		StudentID:        params.StudentID,
		CourseID:         params.CourseID,
		EnrolledAt:       now,
		Progress:         0,
		CompletedLessons: []int{},
		QuizResults:      []QuizResult{},
		UpdatedAt:        now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// SetProgress устанавливает процент прохождения курса.
func (e *Enrollment) SetProgress(percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidPercent
	}
	e.Progress = percent
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// IsCompleted возвращает true, если курс пройден полностью.
func (e *Enrollment) IsCompleted() bool {
	return e.Progress >= 100
}

// MergeCompletedLessons объединяет новые индексы уроков с уже сохранёнными.
// Дубликаты отбрасываются, порядок первых появлений сохраняется.
// Возвращает количество фактически добавленных уроков.
func (e *Enrollment) MergeCompletedLessons(lessons []int) (added int, err error) {
	seen := make(map[int]struct{}, len(e.CompletedLessons))
	for _, l := range e.CompletedLessons {
		seen[l] = struct{}{}
	}

	for _, l := range lessons {
		if l < 0 {
			return added, ErrNegativeLesson
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		e.CompletedLessons = append(e.CompletedLessons, l)
		added++
	}

	if added > 0 {
		e.UpdatedAt = time.Now().UTC()
	}
	return added, nil
}

// HasCompletedLesson проверяет, завершён ли урок с данным индексом.
func (e *Enrollment) HasCompletedLesson(lesson int) bool {
	for _, l := range e.CompletedLessons {
		if l == lesson {
			return true
		}
	}
	return false
}

// AddQuizResult добавляет результат квиза к записи.
func (e *Enrollment) AddQuizResult(result QuizResult) {
	e.QuizResults = append(e.QuizResults, result)
	e.UpdatedAt = time.Now().UTC()
}

// LatestQuizResult возвращает последний результат по квизу, или nil.
func (e *Enrollment) LatestQuizResult(quizID string) *QuizResult {
	for i := len(e.QuizResults) - 1; i >= 0; i-- {
		if e.QuizResults[i].QuizID == quizID {
			return &e.QuizResults[i]
		}
	}
	return nil
}

// String возвращает строковое представление для логирования.
func (e *Enrollment) String() string {
	return fmt.Sprintf("Enrollment{ID: %s, Student: %s, Course: %s, Progress: %d%%}",
		e.ID, e.StudentID, e.CourseID, e.Progress)
}

// Clone создаёт копию записи.
func (e *Enrollment) Clone() *Enrollment {
	if e == nil {
		return nil
	}
	clone := *e
	clone.CompletedLessons = append([]int(nil), e.CompletedLessons...)
	clone.QuizResults = append([]QuizResult(nil), e.QuizResults...)
	return &clone
}
