// Package course contains the content hierarchy domain model:
// Course -> Unit -> Topic -> Subtopic. Pure business logic, no external
// dependencies beyond the shared domain package.
package course

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS & ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Difficulty represents the declared difficulty of a course.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid checks if the difficulty is one of the known values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Difficulty) String() string {
	return string(d)
}

// ContentType represents the kind of content a subtopic carries.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentText  ContentType = "text"
	ContentQuiz  ContentType = "quiz"
)

// IsValid checks if the content type is one of the known values.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentVideo, ContentText, ContentQuiz:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - title is required on every content node.
	ErrEmptyTitle = errors.New("title is required")

	// ErrInvalidDifficulty - difficulty is not one of the known values.
	ErrInvalidDifficulty = errors.New("invalid difficulty: must be beginner, intermediate or advanced")

	// ErrInvalidContentType - content type is not one of the known values.
	ErrInvalidContentType = errors.New("invalid content type: must be video, text or quiz")

	// ErrNegativePrice - course price cannot be negative.
	ErrNegativePrice = errors.New("price must be non-negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course is the root of the content hierarchy.
type Course struct {
	// ID is the unique identifier (UUID string).
	ID string

	// Title of the course.
	Title string

	// Description shown on the course page.
	Description string

	// InstructorID is the student ID of the course author.
	InstructorID string

	// Category groups courses for recommendations (e.g. "programming").
	Category string

	// Difficulty of the course.
	Difficulty Difficulty

	// Tags used for search and recommendations.
	Tags []string

	// Price of the course. Zero means free.
	Price float64

	// EnrolledCount is a denormalized counter of enrollments.
	// Enrollment rows are the source of truth; a scheduler job reconciles drift.
	EnrolledCount int

	// Rating is the denormalized average rating.
	Rating float64

	// IsPublished controls visibility to students.
	IsPublished bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCourseParams holds the parameters for creating a course.
type NewCourseParams struct {
	ID           string
	Title        string
	Description  string
	InstructorID string
	Category     string
	Difficulty   Difficulty
	Tags         []string
	Price        float64
}

// NewCourse creates a new course with validation.
func NewCourse(params NewCourseParams) (*Course, error) {
	if params.ID == "" {
		return nil, errors.New("course id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	difficulty := params.Difficulty
	if difficulty == "" {
		difficulty = DifficultyBeginner
	}
	if !difficulty.IsValid() {
		return nil, ErrInvalidDifficulty
	}

	if params.Price < 0 {
		return nil, ErrNegativePrice
	}

	now := time.Now().UTC()

	return &Course{
		ID:           params.ID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		InstructorID: params.InstructorID,
		Category:     strings.TrimSpace(params.Category),
		Difficulty:   difficulty,
		Tags:         append([]string(nil), params.Tags...),
		Price:        params.Price,
		IsPublished:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Publish makes the course visible to students.
func (c *Course) Publish() {
	c.IsPublished = true
	c.UpdatedAt = time.Now().UTC()
}

// Unpublish hides the course from students.
func (c *Course) Unpublish() {
	c.IsPublished = false
	c.UpdatedAt = time.Now().UTC()
}

// HasTag returns true if the course carries the given tag.
func (c *Course) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// String returns a log-friendly representation.
func (c *Course) String() string {
	return fmt.Sprintf("Course{ID: %s, Title: %q, Enrolled: %d}", c.ID, c.Title, c.EnrolledCount)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHILD NODES: UNIT, TOPIC, SUBTOPIC
// ══════════════════════════════════════════════════════════════════════════════

// Unit is a direct child of a course.
type Unit struct {
	ID       string
	CourseID string
	Title    string

	// Order positions the unit among its siblings. Duplicates are
	// tolerated; ordering is stabilized by CreatedAt, then ID.
	Order int

	// PremiumOnly gates access to this unit. The flag is not inherited
	// by child topics or subtopics - each node is gated on its own flag.
	PremiumOnly bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUnitParams holds parameters for creating a unit.
type NewUnitParams struct {
	ID          string
	CourseID    string
	Title       string
	Order       int
	PremiumOnly bool
}

// NewUnit creates a new unit with validation.
func NewUnit(params NewUnitParams) (*Unit, error) {
	if params.ID == "" {
		return nil, errors.New("unit id is required")
	}
	if params.CourseID == "" {
		return nil, errors.New("course id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()

	return &Unit{
		ID:          params.ID,
		CourseID:    params.CourseID,
		Title:       title,
		Order:       params.Order,
		PremiumOnly: params.PremiumOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Topic is a direct child of a unit.
type Topic struct {
	ID     string
	UnitID string
	Title  string

	// Order among siblings, stabilized by CreatedAt then ID.
	Order int

	// PremiumOnly gates access to this topic only (not inherited).
	PremiumOnly bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTopicParams holds parameters for creating a topic.
type NewTopicParams struct {
	ID          string
	UnitID      string
	Title       string
	Order       int
	PremiumOnly bool
}

// NewTopic creates a new topic with validation.
func NewTopic(params NewTopicParams) (*Topic, error) {
	if params.ID == "" {
		return nil, errors.New("topic id is required")
	}
	if params.UnitID == "" {
		return nil, errors.New("unit id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()

	return &Topic{
		ID:          params.ID,
		UnitID:      params.UnitID,
		Title:       title,
		Order:       params.Order,
		PremiumOnly: params.PremiumOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Subtopic is a leaf content node under a topic.
type Subtopic struct {
	ID      string
	TopicID string
	Title   string

	// Type determines which content fields are meaningful.
	Type ContentType

	// Content is the text body (type = text) or quiz reference payload.
	Content string

	// VideoURL is set when type = video.
	VideoURL string

	// Duration of the content in minutes (video length or estimated
	// reading time).
	Duration int

	// QuizID references the quiz when type = quiz.
	QuizID string

	// Order among siblings, stabilized by CreatedAt then ID.
	Order int

	// PremiumOnly gates access to this subtopic only (not inherited).
	PremiumOnly bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubtopicParams holds parameters for creating a subtopic.
type NewSubtopicParams struct {
	ID          string
	TopicID     string
	Title       string
	Type        ContentType
	Content     string
	VideoURL    string
	Duration    int
	QuizID      string
	Order       int
	PremiumOnly bool
}

// NewSubtopic creates a new subtopic with validation.
func NewSubtopic(params NewSubtopicParams) (*Subtopic, error) {
	if params.ID == "" {
		return nil, errors.New("subtopic id is required")
	}
	if params.TopicID == "" {
		return nil, errors.New("topic id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	contentType := params.Type
	if contentType == "" {
		contentType = ContentText
	}
	if !contentType.IsValid() {
		return nil, ErrInvalidContentType
	}

	now := time.Now().UTC()

	return &Subtopic{
		ID:          params.ID,
		TopicID:     params.TopicID,
		Title:       title,
		Type:        contentType,
		Content:     params.Content,
		VideoURL:    params.VideoURL,
		Duration:    params.Duration,
		QuizID:      params.QuizID,
		Order:       params.Order,
		PremiumOnly: params.PremiumOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
