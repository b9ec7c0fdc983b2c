// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "enrollment", "progress", "course"
	Op      string // Operation that failed, e.g., "Create", "Upsert"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrEmailTaken           = NewDomainError("student", "Register", ErrAlreadyExists, "email is already registered")
	ErrInvalidRole          = NewDomainError("student", "Validate", ErrInvalidInput, "invalid role")
	ErrPremiumExpired       = NewDomainError("student", "CheckPremium", ErrExpired, "premium subscription expired")
)

// Course domain errors
var (
	ErrCourseNotFound      = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrUnitNotFound        = NewDomainError("course", "FindUnit", ErrNotFound, "unit not found")
	ErrTopicNotFound       = NewDomainError("course", "FindTopic", ErrNotFound, "topic not found")
	ErrSubtopicNotFound    = NewDomainError("course", "FindSubtopic", ErrNotFound, "subtopic not found")
	ErrCourseNotPublished  = NewDomainError("course", "Check", ErrInvalidState, "course is not published")
	ErrInvalidContentType  = NewDomainError("course", "Validate", ErrInvalidInput, "invalid subtopic content type")
	ErrInvalidDifficulty   = NewDomainError("course", "Validate", ErrInvalidInput, "invalid course difficulty")
	ErrParentDoesNotExist  = NewDomainError("course", "Create", ErrNotFound, "parent content node does not exist")
	ErrContentTitleMissing = NewDomainError("course", "Validate", ErrEmptyValue, "content title is required")
)

// Enrollment domain errors
var (
	ErrEnrollmentNotFound  = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
	ErrDuplicateEnrollment = NewDomainError("enrollment", "Create", ErrAlreadyExists, "student is already enrolled in this course")
	ErrNotEnrolled         = NewDomainError("enrollment", "Check", ErrForbidden, "student is not enrolled in this course")
	ErrNotEnrollmentOwner  = NewDomainError("enrollment", "Authorize", ErrForbidden, "only the enrolled student may modify this enrollment")
)

// Progress domain errors
var (
	ErrProgressNotFound   = NewDomainError("progress", "Find", ErrNotFound, "progress record not found")
	ErrInvalidProgressKey = NewDomainError("progress", "Validate", ErrInvalidInput, "invalid progress key")
	ErrNegativePoints     = NewDomainError("progress", "Validate", ErrNegativeValue, "points cannot be negative")
	ErrProgressConflict   = NewDomainError("progress", "Upsert", ErrConcurrentModification, "concurrent progress upsert on the same key")
)

// Access domain errors
var (
	ErrAccessDenied    = NewDomainError("access", "Authorize", ErrForbidden, "access denied")
	ErrPremiumRequired = NewDomainError("access", "CheckPremium", ErrForbidden, "premium subscription required")
)

// Payment domain errors
var (
	ErrPaymentNotFound = NewDomainError("payment", "Find", ErrNotFound, "payment not found")
	ErrInvalidPlan     = NewDomainError("payment", "Validate", ErrInvalidInput, "invalid premium plan")
	ErrInvalidAmount   = NewDomainError("payment", "Validate", ErrValueOutOfRange, "invalid payment amount")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotNotificationOwner = NewDomainError("notification", "Authorize", ErrForbidden, "notification belongs to another user")
)

// Quiz domain errors
var (
	ErrQuizNotFound     = NewDomainError("quiz", "Find", ErrNotFound, "quiz not found")
	ErrAnswerCountWrong = NewDomainError("quiz", "Grade", ErrInvalidInput, "answer count does not match question count")
)

// External capability errors
var (
	ErrAIUnavailable     = NewDomainError("ai", "Generate", ErrServiceUnavailable, "text generation service is unavailable")
	ErrAIRateLimited     = NewDomainError("ai", "Generate", ErrRateLimited, "text generation rate limit exceeded")
	ErrAITimeout         = NewDomainError("ai", "Generate", ErrTimeout, "text generation request timeout")
	ErrAIInvalidResponse = NewDomainError("ai", "Parse", ErrInvalidFormat, "invalid response from text generation service")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
