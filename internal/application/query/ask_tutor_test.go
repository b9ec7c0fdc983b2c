package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func tutorCourses() *fakeCourseRepo {
	courses := newFakeCourseRepo()
	courses.addCourse(&course.Course{
		ID:          "go-1",
		Title:       "Go I",
		Description: "Introduction to Go.",
		Category:    "programming",
		IsPublished: true,
	})
	return courses
}

func TestAskTutor_GeneratedReply(t *testing.T) {
	tutor := &stubTutor{reply: "Start with goroutines, then channels."}
	handler := NewAskTutorHandler(tutorCourses(), tutor, true)

	reply, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  "How do I learn concurrency?",
		CourseID:  "go-1",
	})
	require.NoError(t, err)

	assert.True(t, reply.Generated)
	assert.Equal(t, tutor.reply, reply.Reply)
	assert.Equal(t, "Go I", reply.CourseTitle)

	// The course context travels to the responder.
	assert.Equal(t, "How do I learn concurrency?", tutor.lastQuestion)
	assert.Equal(t, "Go I", tutor.lastTitle)
	assert.Equal(t, "Introduction to Go.", tutor.lastDesc)
}

func TestAskTutor_FallbackWhenResponderFails(t *testing.T) {
	tutor := &stubTutor{err: errors.New("service down")}
	handler := NewAskTutorHandler(tutorCourses(), tutor, true)

	reply, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  "What should I study next?",
		CourseID:  "go-1",
	})
	require.NoError(t, err)

	assert.False(t, reply.Generated)
	assert.Contains(t, reply.Reply, "Go I")
	assert.Equal(t, 1, tutor.calls)
}

func TestAskTutor_DisabledUsesFallback(t *testing.T) {
	tutor := &stubTutor{reply: "never used"}
	handler := NewAskTutorHandler(tutorCourses(), tutor, false)

	reply, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  "What should I study next?",
	})
	require.NoError(t, err)

	assert.False(t, reply.Generated)
	assert.Contains(t, reply.Reply, "your current courses")
	assert.Equal(t, 0, tutor.calls)
}

func TestAskTutor_MissingCourseDropsAnchor(t *testing.T) {
	tutor := &stubTutor{reply: "General advice."}
	handler := NewAskTutorHandler(tutorCourses(), tutor, true)

	reply, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  "Where do I start?",
		CourseID:  "ghost",
	})
	require.NoError(t, err)

	assert.True(t, reply.Generated)
	assert.Empty(t, reply.CourseTitle)
	assert.Empty(t, tutor.lastTitle)
}

func TestAskTutor_Validation(t *testing.T) {
	handler := NewAskTutorHandler(tutorCourses(), nil, false)

	_, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  "   ",
	})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Question:  strings.Repeat("x", MaxTutorQuestionLen+1),
	})
	assert.Error(t, err)
}

func TestAskTutor_Authorization(t *testing.T) {
	handler := NewAskTutorHandler(tutorCourses(), nil, false)

	_, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
		Question:  "Can you help?",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)

	// Admins may ask on a student's behalf.
	reply, err := handler.Handle(context.Background(), AskTutorQuery{
		Actor:     adminActor(),
		StudentID: "stu-2",
		Question:  "Can you help?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Reply)
}
