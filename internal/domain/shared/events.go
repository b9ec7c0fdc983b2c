// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Student events
	EventStudentRegistered EventType = "student.registered"
	EventPointsAwarded     EventType = "student.points_awarded"
	EventPremiumGranted    EventType = "student.premium_granted"

	// Enrollment events
	EventEnrollmentCreated EventType = "enrollment.created"
	EventLessonProgress    EventType = "enrollment.lesson_progress"

	// Progress events
	EventProgressRecorded EventType = "progress.recorded"
	EventContentCompleted EventType = "progress.content_completed"

	// Quiz events
	EventQuizGraded EventType = "quiz.graded"

	// Payment events
	EventPaymentCompleted EventType = "payment.completed"

	// Notification events
	EventNotificationCreated EventType = "notification.created"

	// System events
	EventCountsReconciled   EventType = "system.counts_reconciled"
	EventLeaderboardRebuilt EventType = "system.leaderboard_rebuilt"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student registers.
type StudentRegisteredEvent struct {
	BaseEvent
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"email":        e.Email,
		"display_name": e.DisplayName,
		"role":         e.Role,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, email, displayName, role string) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent:   NewBaseEvent(EventStudentRegistered, studentID),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}
}

// PointsAwardedEvent is emitted whenever a student's cumulative point
// total changes. All point mutations flow through this single event so
// the leaderboard projection has one writer path to observe.
type PointsAwardedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Amount    int    `json:"amount"`
	NewTotal  int    `json:"new_total"`
	Source    string `json:"source"` // e.g., "progress", "admin_adjustment"
	CourseID  string `json:"course_id,omitempty"`
}

// Payload implements Event interface.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"amount":     e.Amount,
		"new_total":  e.NewTotal,
		"source":     e.Source,
		"course_id":  e.CourseID,
	}
}

// NewPointsAwardedEvent creates a new PointsAwardedEvent.
func NewPointsAwardedEvent(studentID string, amount, newTotal int, source, courseID string) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent: NewBaseEvent(EventPointsAwarded, studentID),
		StudentID: studentID,
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
		CourseID:  courseID,
	}
}

// PremiumGrantedEvent is emitted when a successful payment grants or
// extends a student's premium window.
type PremiumGrantedEvent struct {
	BaseEvent
	StudentID string    `json:"student_id"`
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expires_at"`
	PaymentID string    `json:"payment_id"`
}

// Payload implements Event interface.
func (e PremiumGrantedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"plan":       e.Plan,
		"expires_at": e.ExpiresAt.Format(time.RFC3339),
		"payment_id": e.PaymentID,
	}
}

// NewPremiumGrantedEvent creates a new PremiumGrantedEvent.
func NewPremiumGrantedEvent(studentID, plan string, expiresAt time.Time, paymentID string) PremiumGrantedEvent {
	return PremiumGrantedEvent{
		BaseEvent: NewBaseEvent(EventPremiumGranted, studentID),
		StudentID: studentID,
		Plan:      plan,
		ExpiresAt: expiresAt,
		PaymentID: paymentID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// EnrollmentCreatedEvent is emitted when a student enrolls in a course.
type EnrollmentCreatedEvent struct {
	BaseEvent
	StudentID     string `json:"student_id"`
	CourseID      string `json:"course_id"`
	EnrollmentID  string `json:"enrollment_id"`
	EnrolledCount int    `json:"enrolled_count"`
}

// Payload implements Event interface.
func (e EnrollmentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"course_id":      e.CourseID,
		"enrollment_id":  e.EnrollmentID,
		"enrolled_count": e.EnrolledCount,
	}
}

// NewEnrollmentCreatedEvent creates a new EnrollmentCreatedEvent.
func NewEnrollmentCreatedEvent(enrollmentID, studentID, courseID string, enrolledCount int) EnrollmentCreatedEvent {
	return EnrollmentCreatedEvent{
		BaseEvent:     NewBaseEvent(EventEnrollmentCreated, enrollmentID),
		StudentID:     studentID,
		CourseID:      courseID,
		EnrollmentID:  enrollmentID,
		EnrolledCount: enrolledCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressRecordedEvent is emitted when a progress record is upserted.
type ProgressRecordedEvent struct {
	BaseEvent
	StudentID       string `json:"student_id"`
	CourseID        string `json:"course_id"`
	Level           string `json:"level"` // course, unit, topic, subtopic
	Completed       bool   `json:"completed"`
	FirstCompletion bool   `json:"first_completion"`
	Points          int    `json:"points"`
}

// Payload implements Event interface.
func (e ProgressRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":       e.StudentID,
		"course_id":        e.CourseID,
		"level":            e.Level,
		"completed":        e.Completed,
		"first_completion": e.FirstCompletion,
		"points":           e.Points,
	}
}

// NewProgressRecordedEvent creates a new ProgressRecordedEvent.
func NewProgressRecordedEvent(studentID, courseID, level string, completed, firstCompletion bool, points int) ProgressRecordedEvent {
	return ProgressRecordedEvent{
		BaseEvent:       NewBaseEvent(EventProgressRecorded, studentID),
		StudentID:       studentID,
		CourseID:        courseID,
		Level:           level,
		Completed:       completed,
		FirstCompletion: firstCompletion,
		Points:          points,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quiz Events
// ═══════════════════════════════════════════════════════════════════════════

// QuizGradedEvent is emitted when a quiz submission is graded.
type QuizGradedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	QuizID    string `json:"quiz_id"`
	CourseID  string `json:"course_id"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"max_score"`
}

// Payload implements Event interface.
func (e QuizGradedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"quiz_id":    e.QuizID,
		"course_id":  e.CourseID,
		"score":      e.Score,
		"max_score":  e.MaxScore,
	}
}

// NewQuizGradedEvent creates a new QuizGradedEvent.
func NewQuizGradedEvent(studentID, quizID, courseID string, score, maxScore int) QuizGradedEvent {
	return QuizGradedEvent{
		BaseEvent: NewBaseEvent(EventQuizGraded, studentID),
		StudentID: studentID,
		QuizID:    quizID,
		CourseID:  courseID,
		Score:     score,
		MaxScore:  maxScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Payment Events
// ═══════════════════════════════════════════════════════════════════════════

// PaymentCompletedEvent is emitted when a (mock) payment completes.
type PaymentCompletedEvent struct {
	BaseEvent
	StudentID     string  `json:"student_id"`
	PaymentID     string  `json:"payment_id"`
	Amount        float64 `json:"amount"`
	Plan          string  `json:"plan"`
	TransactionID string  `json:"transaction_id"`
}

// Payload implements Event interface.
func (e PaymentCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"payment_id":     e.PaymentID,
		"amount":         e.Amount,
		"plan":           e.Plan,
		"transaction_id": e.TransactionID,
	}
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent.
func NewPaymentCompletedEvent(paymentID, studentID string, amount float64, plan, transactionID string) PaymentCompletedEvent {
	return PaymentCompletedEvent{
		BaseEvent:     NewBaseEvent(EventPaymentCompleted, paymentID),
		StudentID:     studentID,
		PaymentID:     paymentID,
		Amount:        amount,
		Plan:          plan,
		TransactionID: transactionID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// SystemEvent is emitted by background jobs (reconciliation, projection
// rebuilds). Details carries job-specific counters.
type SystemEvent struct {
	BaseEvent
	Job     string                 `json:"job"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Payload implements Event interface.
func (e SystemEvent) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"job": e.Job,
	}
	for k, v := range e.Details {
		payload[k] = v
	}
	return payload
}

// NewSystemEvent creates a new SystemEvent.
func NewSystemEvent(eventType EventType, job string, details map[string]interface{}) SystemEvent {
	return SystemEvent{
		BaseEvent: NewBaseEvent(eventType, job),
		Job:       job,
		Details:   details,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
