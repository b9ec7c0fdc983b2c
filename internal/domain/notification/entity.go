// Package notification contains the notification domain model.
// Notifications are append-only: only the read flag mutates after creation.
package notification

import (
	"errors"
	"strings"
	"time"
)

// Type categorizes a notification for client rendering.
type Type string

const (
	TypeCourse  Type = "course"
	TypeQuiz    Type = "quiz"
	TypeAI      Type = "ai"
	TypePayment Type = "payment"
	TypeSystem  Type = "system"
)

// IsValid checks if the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeCourse, TypeQuiz, TypeAI, TypePayment, TypeSystem:
		return true
	default:
		return false
	}
}

var (
	// ErrEmptyTitle - notification title is required.
	ErrEmptyTitle = errors.New("notification title is required")

	// ErrInvalidType - type is not one of the known values.
	ErrInvalidType = errors.New("invalid notification type")
)

// Notification is a message addressed to a single student.
type Notification struct {
	// ID is the unique identifier (UUID string).
	ID string

	// StudentID is the recipient.
	StudentID string

	// Title of the notification.
	Title string

	// Message body.
	Message string

	// Type of the notification.
	Type Type

	// RelatedID optionally references the entity that produced the
	// notification (course, quiz, payment).
	RelatedID string

	// Read flag. The only mutable field after creation.
	Read bool

	CreatedAt time.Time
}

// NewNotificationParams holds parameters for creating a notification.
type NewNotificationParams struct {
	ID        string
	StudentID string
	Title     string
	Message   string
	Type      Type
	RelatedID string
}

// NewNotification creates a notification with validation.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if params.ID == "" {
		return nil, errors.New("notification id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	ntype := params.Type
	if ntype == "" {
		ntype = TypeSystem
	}
	if !ntype.IsValid() {
		return nil, ErrInvalidType
	}

	return &Notification{
		ID:        params.ID,
		StudentID: params.StudentID,
		Title:     title,
		Message:   strings.TrimSpace(params.Message),
		Type:      ntype,
		RelatedID: params.RelatedID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkRead sets the read flag. Idempotent.
func (n *Notification) MarkRead() {
	n.Read = true
}

// BelongsTo returns true if the notification is addressed to the student.
func (n *Notification) BelongsTo(studentID string) bool {
	return n.StudentID == studentID
}
