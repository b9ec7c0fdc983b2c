package enrollment

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с записями на курсы.
type Repository interface {
	// Create сохраняет новую запись на курс.
	// Возвращает shared.ErrDuplicateEnrollment при нарушении
	// уникальности пары (student_id, course_id).
	Create(ctx context.Context, e *Enrollment) error

	// GetByID возвращает запись по ID.
	// Возвращает shared.ErrEnrollmentNotFound, если запись не найдена.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetByStudentAndCourse возвращает запись по паре студент-курс.
	// Возвращает shared.ErrEnrollmentNotFound, если запись не найдена.
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*Enrollment, error)

	// Update обновляет запись (прогресс, уроки, результаты квизов).
	Update(ctx context.Context, e *Enrollment) error

	// Delete удаляет запись.
	Delete(ctx context.Context, id string) error

	// ListByStudent возвращает все записи студента.
	ListByStudent(ctx context.Context, studentID string) ([]*Enrollment, error)

	// ListByCourse возвращает все записи на курс.
	ListByCourse(ctx context.Context, courseID string) ([]*Enrollment, error)

	// Exists проверяет, записан ли студент на курс.
	Exists(ctx context.Context, studentID, courseID string) (bool, error)

	// CountByCourse возвращает фактическое число записей на курс.
	// Записи - источник истины для денормализованных счётчиков.
	CountByCourse(ctx context.Context, courseID string) (int, error)

	// CountsByCourse возвращает фактическое число записей для всех курсов.
	// Используется задачей сверки счётчиков.
	CountsByCourse(ctx context.Context) (map[string]int, error)
}

// Ledger определяет транзакционную операцию записи на курс.
//
// Запись затрагивает три хранилища: строку enrollment, список курсов
// студента и денормализованный счётчик курса. Все три изменения
// выполняются в одной транзакции: либо применяются все, либо ни одно.
type Ledger interface {
	// Enroll атомарно создаёт запись, добавляет курс в список студента
	// и увеличивает счётчик курса на единицу.
	// Возвращает shared.ErrDuplicateEnrollment, если студент уже записан;
	// в этом случае ни одно из трёх изменений не применяется.
	Enroll(ctx context.Context, e *Enrollment) error

	// Unenroll атомарно откатывает все три изменения.
	// Возвращает shared.ErrEnrollmentNotFound, если записи нет.
	Unenroll(ctx context.Context, studentID, courseID string) error
}
