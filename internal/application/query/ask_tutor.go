package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASK TUTOR QUERY
// Free-form tutoring chat. An optional course anchors the reply to what
// the student is working through. The responder is the text generator;
// when it is disabled or fails, a deterministic study hint is returned
// instead, so the endpoint never goes down with the AI service.
// ══════════════════════════════════════════════════════════════════════════════

// MaxTutorQuestionLen caps the question length in runes.
const MaxTutorQuestionLen = 2000

// TutorResponder answers a student question, optionally anchored to a
// course.
type TutorResponder interface {
	AnswerQuestion(ctx context.Context, question, courseTitle, courseDescription string) (string, error)
}

// AskTutorQuery contains the tutor chat parameters.
type AskTutorQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID asking the question. Must equal the actor unless the
	// actor is an admin.
	StudentID string

	// Question is the student's message to the tutor.
	Question string

	// CourseID optionally anchors the reply to a course.
	CourseID string
}

// Validate validates and normalizes the query.
func (q *AskTutorQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("ask_tutor: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("ask_tutor: student_id is required")
	}
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return errors.New("ask_tutor: question is required")
	}
	if len([]rune(q.Question)) > MaxTutorQuestionLen {
		return errors.New("ask_tutor: question is too long")
	}
	return nil
}

// TutorReply is the tutor's answer to one question.
type TutorReply struct {
	// Reply is the tutor's message.
	Reply string `json:"reply"`

	// Generated is false when the deterministic fallback produced the
	// reply.
	Generated bool `json:"generated"`

	// CourseTitle of the anchoring course, when one was resolved.
	CourseTitle string `json:"course_title,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AskTutorHandler handles the AskTutorQuery.
type AskTutorHandler struct {
	courseRepo course.Repository
	responder  TutorResponder

	// aiEnabled gates the responder; the fallback covers the rest.
	aiEnabled bool
}

// NewAskTutorHandler creates a new AskTutorHandler. The responder may
// be nil; replies then always use the fallback.
func NewAskTutorHandler(
	courseRepo course.Repository,
	responder TutorResponder,
	aiEnabled bool,
) *AskTutorHandler {
	return &AskTutorHandler{
		courseRepo: courseRepo,
		responder:  responder,
		aiEnabled:  aiEnabled,
	}
}

// Handle executes the tutor chat query.
func (h *AskTutorHandler) Handle(ctx context.Context, q AskTutorQuery) (*TutorReply, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	// A missing course drops the anchor rather than failing the chat.
	var title, description string
	if q.CourseID != "" {
		crs, err := h.courseRepo.GetCourse(ctx, q.CourseID)
		switch {
		case err == nil:
			title, description = crs.Title, crs.Description
		case shared.IsNotFound(err):
		default:
			return nil, err
		}
	}

	if h.aiEnabled && h.responder != nil {
		if reply, err := h.responder.AnswerQuestion(ctx, q.Question, title, description); err == nil && reply != "" {
			return &TutorReply{Reply: reply, Generated: true, CourseTitle: title}, nil
		}
	}

	return &TutorReply{Reply: fallbackTutorReply(title), CourseTitle: title}, nil
}

// fallbackTutorReply is the deterministic study hint used without AI.
func fallbackTutorReply(courseTitle string) string {
	subject := "your current courses"
	if courseTitle != "" {
		subject = fmt.Sprintf("%q", courseTitle)
	}
	return fmt.Sprintf("Based on your learning profile, I recommend focusing on %s. This will help you progress effectively.", subject)
}
