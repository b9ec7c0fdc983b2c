package progress

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ApplyParams содержит параметры атомарного upsert записи прогресса.
type ApplyParams struct {
	// NewID - ID для новой записи, если записи по ключу ещё нет.
	NewID string

	// Key - ключ записи.
	Key Key

	// Completed - требуемое состояние завершённости.
	// false не отзывает уже завершённую запись.
	Completed bool

	// Points - баллы за первое завершение. Начисляются на суммарный
	// счёт студента в той же транзакции, что и запись прогресса.
	Points int

	// At - момент операции.
	At time.Time
}

// ApplyResult описывает результат атомарного upsert.
type ApplyResult struct {
	// Record - итоговое состояние записи.
	Record *Record

	// FirstCompletion - true, если именно этот вызов перевёл запись
	// в завершённое состояние. Баллы начисляются только в этом случае.
	FirstCompletion bool

	// NewTotalPoints - суммарный счёт студента после начисления.
	// Заполняется только при FirstCompletion с ненулевыми баллами.
	NewTotalPoints int
}

// Repository определяет операции для работы с записями прогресса.
type Repository interface {
	// Apply атомарно создаёт или обновляет запись по ключу.
	// Решение о первом завершении принимается внутри той же транзакции,
	// что и запись: конкурентные вызовы по одному ключу не могут оба
	// получить FirstCompletion == true. Начисление баллов студенту
	// происходит в этой же транзакции: запись и счёт либо фиксируются
	// вместе, либо не фиксируются вовсе.
	Apply(ctx context.Context, params ApplyParams) (ApplyResult, error)

	// GetByKey возвращает запись по ключу.
	// Возвращает shared.ErrProgressNotFound, если записи нет.
	GetByKey(ctx context.Context, key Key) (*Record, error)

	// ListByStudent возвращает все записи прогресса студента.
	ListByStudent(ctx context.Context, studentID string) ([]*Record, error)

	// ListByStudentAndCourse возвращает записи студента по курсу.
	ListByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]*Record, error)

	// CountCompletedByCourse возвращает количество завершённых записей
	// студента по курсу.
	CountCompletedByCourse(ctx context.Context, studentID, courseID string) (int, error)

	// DeleteByStudent удаляет все записи студента.
	DeleteByStudent(ctx context.Context, studentID string) error
}
