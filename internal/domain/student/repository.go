package student

import (
	"context"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет основные операции CRUD для студентов.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт нового студента.
	// Возвращает shared.ErrEmailTaken, если email уже зарегистрирован.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает студента по внутреннему ID.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail возвращает студента по нормализованному email.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByEmail(ctx context.Context, email shared.Email) (*Student, error)

	// Update обновляет данные студента.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	Update(ctx context.Context, student *Student) error

	// Delete удаляет студента.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll возвращает всех студентов с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Student, error)

	// GetByIDs возвращает студентов по списку ID.
	GetByIDs(ctx context.Context, ids []string) ([]*Student, error)

	// Count возвращает общее количество студентов.
	Count(ctx context.Context) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Leaderboard
	// ─────────────────────────────────────────────────────────────────────────

	// GetTopByPoints возвращает студентов, отсортированных по убыванию баллов.
	// Равные баллы разрешаются по возрастанию времени регистрации.
	GetTopByPoints(ctx context.Context, limit int) ([]*Student, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Points
	// ─────────────────────────────────────────────────────────────────────────

	// AddPoints атомарно прибавляет delta к баллам студента
	// и возвращает новое значение.
	AddPoints(ctx context.Context, studentID string, delta int) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// Exists проверяет существование студента по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// ExistsByEmail проверяет существование по email.
	ExistsByEmail(ctx context.Context, email shared.Email) (bool, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// SortBy - поле для сортировки.
	SortBy string

	// SortDesc - сортировка по убыванию.
	SortDesc bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:   0,
		Limit:    50,
		SortBy:   "created_at",
		SortDesc: false,
	}
}

// WithOffset устанавливает смещение.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithSort устанавливает сортировку.
func (o ListOptions) WithSort(field string, desc bool) ListOptions {
	o.SortBy = field
	o.SortDesc = desc
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// Кеш проекции рейтинга (обычно реализуется через Redis).
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardEntry представляет строку рейтинга.
// Проекция содержит только публичные поля студента.
type LeaderboardEntry struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// StudentID - ID студента.
	StudentID string `json:"student_id"`

	// Name - отображаемое имя.
	Name string `json:"name"`

	// Email - email студента.
	Email string `json:"email"`

	// TotalPoints - накопленные баллы.
	TotalPoints int `json:"total_points"`
}

// LeaderboardCache определяет операции кеширования рейтинга.
type LeaderboardCache interface {
	// GetTop возвращает закешированный топ рейтинга.
	// Возвращает shared.ErrNotFound при промахе кеша.
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// SetTop сохраняет топ рейтинга в кеш.
	SetTop(ctx context.Context, entries []LeaderboardEntry) error

	// Invalidate сбрасывает кеш рейтинга.
	Invalidate(ctx context.Context) error
}
