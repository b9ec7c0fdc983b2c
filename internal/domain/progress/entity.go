// Package progress содержит доменную модель прогресса студента.
// Прогресс записывается на четырёх уровнях детализации: курс, юнит,
// топик и подтопик. Уровень записи задаётся явно, а не выводится
// из набора заполненных полей.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL
// ══════════════════════════════════════════════════════════════════════════════

// Level определяет уровень детализации записи прогресса.
type Level string

const (
	// LevelCourse - прогресс по курсу в целом.
	LevelCourse Level = "course"
	// LevelUnit - прогресс по юниту.
	LevelUnit Level = "unit"
	// LevelTopic - прогресс по топику.
	LevelTopic Level = "topic"
	// LevelSubtopic - прогресс по подтопику (лист дерева контента).
	LevelSubtopic Level = "subtopic"
)

// IsValid проверяет, что уровень корректен.
func (l Level) IsValid() bool {
	switch l {
	case LevelCourse, LevelUnit, LevelTopic, LevelSubtopic:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление уровня.
func (l Level) String() string {
	return string(l)
}

// ══════════════════════════════════════════════════════════════════════════════
// KEY
// ══════════════════════════════════════════════════════════════════════════════

// Key однозначно идентифицирует запись прогресса:
// студент + курс + уровень + идентификаторы узлов этого уровня.
// На каждый ключ существует не более одной записи.
type Key struct {
	// StudentID - ID студента.
	StudentID string

	// CourseID - ID курса. Обязателен на всех уровнях.
	CourseID string

	// Level - уровень детализации записи.
	Level Level

	// UnitID - ID юнита. Обязателен для уровней unit, topic, subtopic.
	UnitID string

	// TopicID - ID топика. Обязателен для уровней topic, subtopic.
	TopicID string

	// SubtopicID - ID подтопика. Обязателен для уровня subtopic.
	SubtopicID string
}

// Validate проверяет согласованность ключа: идентификаторы узлов
// должны соответствовать заявленному уровню.
func (k Key) Validate() error {
	if k.StudentID == "" {
		return errors.New("progress key: student id is required")
	}
	if k.CourseID == "" {
		return errors.New("progress key: course id is required")
	}
	if !k.Level.IsValid() {
		return errors.New("progress key: invalid level")
	}

	switch k.Level {
	case LevelCourse:
		if k.UnitID != "" || k.TopicID != "" || k.SubtopicID != "" {
			return errors.New("progress key: course-level record must not carry node ids")
		}
	case LevelUnit:
		if k.UnitID == "" {
			return errors.New("progress key: unit id is required at unit level")
		}
		if k.TopicID != "" || k.SubtopicID != "" {
			return errors.New("progress key: unit-level record must not carry topic or subtopic ids")
		}
	case LevelTopic:
		if k.UnitID == "" || k.TopicID == "" {
			return errors.New("progress key: unit and topic ids are required at topic level")
		}
		if k.SubtopicID != "" {
			return errors.New("progress key: topic-level record must not carry a subtopic id")
		}
	case LevelSubtopic:
		if k.UnitID == "" || k.TopicID == "" || k.SubtopicID == "" {
			return errors.New("progress key: unit, topic and subtopic ids are required at subtopic level")
		}
	}

	return nil
}

// TargetID возвращает идентификатор узла, к которому относится запись.
func (k Key) TargetID() string {
	switch k.Level {
	case LevelSubtopic:
		return k.SubtopicID
	case LevelTopic:
		return k.TopicID
	case LevelUnit:
		return k.UnitID
	default:
		return k.CourseID
	}
}

// String возвращает строковое представление ключа для логирования.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s:%s", k.StudentID, k.CourseID, k.Level, k.TargetID())
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - запись прогресса студента по одному узлу контента.
type Record struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// Key - ключ записи (студент, курс, уровень, узлы).
	Key Key

	// Completed - флаг завершённости узла.
	// Завершённость не отзывается: переход возможен только false -> true.
	Completed bool

	// CompletedAt - время первого завершения. nil, если узел не завершён.
	CompletedAt *time.Time

	// Points - баллы, начисленные за завершение этого узла.
	// Начисляются ровно один раз, при переходе false -> true.
	Points int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewRecordParams содержит параметры для создания записи прогресса.
type NewRecordParams struct {
	ID  string
	Key Key
}

// NewRecord создаёт новую (незавершённую) запись прогресса.
func NewRecord(params NewRecordParams) (*Record, error) {
	if params.ID == "" {
		return nil, errors.New("progress record id is required")
	}
	if err := params.Key.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Record{
		ID:        params.ID,
		Key:       params.Key,
		Completed: false,
		Points:    0,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// MarkCompleted помечает узел завершённым и начисляет баллы.
// Возвращает true только при первом завершении; повторные вызовы
// идемпотентны - баллы не начисляются повторно, CompletedAt не меняется.
func (r *Record) MarkCompleted(points int, at time.Time) (firstCompletion bool) {
	if r.Completed {
		return false
	}

	r.Completed = true
	completedAt := at.UTC()
	r.CompletedAt = &completedAt
	r.Points = points
	r.UpdatedAt = completedAt
	return true
}

// Touch обновляет время последнего обращения к узлу без изменения
// завершённости (студент открыл контент повторно).
func (r *Record) Touch(at time.Time) {
	r.UpdatedAt = at.UTC()
}

// String возвращает строковое представление записи для логирования.
func (r *Record) String() string {
	return fmt.Sprintf("Record{%s, completed=%t, points=%d}", r.Key, r.Completed, r.Points)
}

// Clone создаёт копию записи.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}
