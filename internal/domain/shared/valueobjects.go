// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// ID represents an entity identifier (UUID format).
type ID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the ID is a valid UUID.
func (i ID) IsValid() bool {
	return uuidRegex.MatchString(string(i))
}

// String returns the string representation.
func (i ID) String() string {
	return string(i)
}

// IsEmpty checks if the ID is empty.
func (i ID) IsEmpty() bool {
	return i == ""
}

// NewID creates a new ID with validation.
func NewID(id string) (ID, error) {
	v := ID(strings.ToLower(strings.TrimSpace(id)))
	if !v.IsValid() {
		return "", NewDomainError("shared", "NewID", ErrInvalidID, "invalid ID format, expected UUID")
	}
	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Role Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Role represents the role of a platform user.
type Role string

const (
	// RoleStudent is the default role for registered users.
	RoleStudent Role = "student"
	// RoleInstructor can create and manage courses.
	RoleInstructor Role = "instructor"
	// RoleAdmin has full access to all records.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// IsElevated returns true for roles that may read other students' records.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// CanManageContent returns true for roles that may create course content.
func (r Role) CanManageContent() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// NewRole creates a Role with validation.
func NewRole(value string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Actor Value Object (who performs an operation)
// ═══════════════════════════════════════════════════════════════════════════

// Actor identifies the authenticated caller of an operation.
// Authentication itself happens outside the core; the core only
// enforces ownership and role checks based on this value.
type Actor struct {
	// StudentID is the internal ID of the caller.
	StudentID string

	// Role is the caller's role.
	Role Role
}

// IsValid checks that the actor carries an ID and a known role.
func (a Actor) IsValid() bool {
	return a.StudentID != "" && a.Role.IsValid()
}

// CanActFor returns true if the actor may operate on records
// belonging to the given student (self or admin).
func (a Actor) CanActFor(studentID string) bool {
	return a.StudentID == studentID || a.Role.IsElevated()
}

// ═══════════════════════════════════════════════════════════════════════════
// Points Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Points represents reward points earned by a student.
type Points int

// IsValid checks that the point value is non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Int returns the underlying int value.
func (p Points) Int() int {
	return int(p)
}

// Add adds points and returns the result, floored at zero.
func (p Points) Add(amount int) Points {
	result := Points(int(p) + amount)
	if result < 0 {
		return 0
	}
	return result
}

// NewPoints creates a Points value with validation.
func NewPoints(amount int) (Points, error) {
	if amount < 0 {
		return 0, ErrNegativePoints
	}
	return Points(amount), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Percentage Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Percentage represents a completion percentage (0-100).
type Percentage int

// IsValid checks that the percentage is within 0-100.
func (p Percentage) IsValid() bool {
	return p >= 0 && p <= 100
}

// Int returns the underlying int value.
func (p Percentage) Int() int {
	return int(p)
}

// IsComplete returns true at 100%.
func (p Percentage) IsComplete() bool {
	return p >= 100
}

// PercentageOf computes round(part/total*100), defined as 0 when total is 0.
func PercentageOf(part, total int) Percentage {
	if total <= 0 {
		return 0
	}
	// Integer rounding: (a*100 + total/2) / total.
	return Percentage((part*100 + total/2) / total)
}

// ═══════════════════════════════════════════════════════════════════════════
// Email Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Email represents a validated email address.
type Email string

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValid checks the email format.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// Normalize returns a normalized (lowercase, trimmed) version.
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// NewEmail creates an Email with validation.
func NewEmail(value string) (Email, error) {
	e := Email(value).Normalize()
	if !e.IsValid() {
		return "", NewDomainError("shared", "NewEmail", ErrInvalidFormat, "invalid email format")
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// String returns a human-readable representation for logging.
func (p Pagination) String() string {
	return fmt.Sprintf("page=%d size=%d", p.Page, p.PageSize)
}
