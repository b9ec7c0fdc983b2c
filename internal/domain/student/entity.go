// Package student содержит доменную модель студента платформы SkillForge.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"errors"
	"fmt"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// PremiumPlan представляет тарифный план подписки.
type PremiumPlan string

const (
	// PlanNone - подписка отсутствует.
	PlanNone PremiumPlan = ""
	// PlanBasic - базовый план.
	PlanBasic PremiumPlan = "basic"
	// PlanPro - расширенный план.
	PlanPro PremiumPlan = "pro"
	// PlanPremium - максимальный план.
	PlanPremium PremiumPlan = "premium"
)

// IsValid проверяет, что план корректен (пустой план допустим).
func (p PremiumPlan) IsValid() bool {
	switch p {
	case PlanNone, PlanBasic, PlanPro, PlanPremium:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление плана.
func (p PremiumPlan) String() string {
	return string(p)
}

// Premium представляет состояние премиум-подписки студента.
//
// Подписка активна в момент t тогда и только тогда, когда Access == true
// и срок действия либо не задан, либо ещё не истёк. Проверка выполняется
// на лету - фоновой деактивации просроченных подписок нет.
type Premium struct {
	// Access - флаг наличия подписки.
	Access bool

	// Plan - тарифный план, по которому оформлена подписка.
	Plan PremiumPlan

	// ExpiresAt - срок действия подписки. nil означает бессрочную подписку.
	ExpiresAt *time.Time
}

// ActiveAt возвращает true, если подписка активна в момент t.
func (p Premium) ActiveAt(t time.Time) bool {
	if !p.Access {
		return false
	}
	return p.ExpiresAt == nil || p.ExpiresAt.After(t)
}

// Preferences содержит настройки студента.
type Preferences struct {
	// Notifications - создавать ли уведомления для студента.
	Notifications bool

	// Theme - предпочитаемая тема интерфейса ("light" или "dark").
	Theme string
}

// DefaultPreferences возвращает настройки по умолчанию.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: true,
		Theme:         "light",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное имя студента.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidEmail - невалидный email.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyPasswordHash - пустой хеш пароля.
	ErrEmptyPasswordHash = errors.New("password hash is required")

	// ErrInvalidPlan - невалидный тарифный план.
	ErrInvalidPlan = errors.New("invalid premium plan")

	// ErrNegativePoints - отрицательное количество баллов.
	ErrNegativePoints = errors.New("points must be non-negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы, представляющая студента платформы.
type Student struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - отображаемое имя студента.
	Name string

	// Email - email студента (уникальный, нормализованный).
	Email shared.Email

	// PasswordHash - bcrypt-хеш пароля. Сам пароль нигде не хранится.
	PasswordHash string

	// Role - роль студента (student, instructor, admin).
	Role shared.Role

	// EnrolledCourseIDs - список курсов, на которые записан студент.
	// Семантика множества: дубликаты не допускаются.
	EnrolledCourseIDs []string

	// TotalPoints - накопленные баллы за завершение контента.
	// Источник данных для рейтинга.
	TotalPoints int

	// Premium - состояние премиум-подписки.
	Premium Premium

	// Preferences - настройки студента.
	Preferences Preferences

	// CreatedAt - время регистрации. Используется как тай-брейк в рейтинге.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для создания нового студента.
type NewStudentParams struct {
	ID           string
	Name         string
	Email        shared.Email
	PasswordHash string
	Role         shared.Role
}

// NewStudent создаёт нового студента с валидацией всех полей.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, errors.New("student id is required")
	}

	if len(params.Name) == 0 || len(params.Name) > 100 {
		return nil, ErrInvalidName
	}

	if !params.Email.IsValid() {
		return nil, ErrInvalidEmail
	}

	if params.PasswordHash == "" {
		return nil, ErrEmptyPasswordHash
	}

	role := params.Role
	if role == "" {
		role = shared.RoleStudent
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidRole
	}

	now := time.Now().UTC()

	return &Student{
		ID:                params.ID,
		Name:              params.Name,
		Email:             params.Email.Normalize(),
		PasswordHash:      params.PasswordHash,
		Role:              role,
		EnrolledCourseIDs: []string{},
		TotalPoints:       0,
		Premium:           Premium{},
		Preferences:       DefaultPreferences(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// HasPremiumAt возвращает true, если премиум-подписка активна в момент t.
func (s *Student) HasPremiumAt(t time.Time) bool {
	return s.Premium.ActiveAt(t)
}

// HasPremium возвращает true, если подписка активна сейчас.
func (s *Student) HasPremium() bool {
	return s.HasPremiumAt(time.Now().UTC())
}

// GrantPremium активирует подписку по указанному плану до expiresAt.
// Новая оплата перезаписывает окно подписки, а не продлевает его.
func (s *Student) GrantPremium(plan PremiumPlan, expiresAt time.Time) error {
	if plan == PlanNone || !plan.IsValid() {
		return ErrInvalidPlan
	}

	s.Premium = Premium{
		Access:    true,
		Plan:      plan,
		ExpiresAt: &expiresAt,
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RevokePremium отзывает подписку.
func (s *Student) RevokePremium() {
	s.Premium = Premium{}
	s.UpdatedAt = time.Now().UTC()
}

// AddPoints прибавляет delta к общему счёту баллов. Отрицательная дельта
// допустима (корректировка администратором), но итог не опускается ниже нуля.
func (s *Student) AddPoints(delta int) int {
	s.TotalPoints += delta
	if s.TotalPoints < 0 {
		s.TotalPoints = 0
	}
	s.UpdatedAt = time.Now().UTC()
	return s.TotalPoints
}

// SetPoints устанавливает общий счёт баллов напрямую.
func (s *Student) SetPoints(points int) error {
	if points < 0 {
		return ErrNegativePoints
	}
	s.TotalPoints = points
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsEnrolledIn возвращает true, если студент записан на курс.
func (s *Student) IsEnrolledIn(courseID string) bool {
	for _, id := range s.EnrolledCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// EnrollIn добавляет курс в список записей студента.
// Возвращает false, если студент уже записан (список не меняется).
func (s *Student) EnrollIn(courseID string) bool {
	if s.IsEnrolledIn(courseID) {
		return false
	}
	s.EnrolledCourseIDs = append(s.EnrolledCourseIDs, courseID)
	s.UpdatedAt = time.Now().UTC()
	return true
}

// UpdatePreferences обновляет настройки студента.
func (s *Student) UpdatePreferences(prefs Preferences) {
	s.Preferences = prefs
	s.UpdatedAt = time.Now().UTC()
}

// IsAdmin возвращает true для администраторов.
func (s *Student) IsAdmin() bool {
	return s.Role == shared.RoleAdmin
}

// Actor возвращает представление студента как субъекта операции.
func (s *Student) Actor() shared.Actor {
	return shared.Actor{StudentID: s.ID, Role: s.Role}
}

// String возвращает строковое представление студента для логирования.
// Email и хеш пароля намеренно не включаются.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Name: %s, Points: %d, Role: %s}",
		s.ID, s.Name, s.TotalPoints, s.Role,
	)
}

// Clone создаёт копию студента.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	clone.EnrolledCourseIDs = append([]string(nil), s.EnrolledCourseIDs...)
	if s.Premium.ExpiresAt != nil {
		exp := *s.Premium.ExpiresAt
		clone.Premium.ExpiresAt = &exp
	}
	return &clone
}
