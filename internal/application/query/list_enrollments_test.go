package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestListEnrollments(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	courses := newFakeCourseRepo()
	courses.addCourse(&course.Course{ID: "go-1", Title: "Go Basics", IsPublished: true})

	enrollments.seed("stu-1", "go-1", 40)
	enrollments.seed("stu-1", "gone-1", 0) // course was deleted
	enrollments.seed("stu-2", "go-1", 0)

	handler := NewListEnrollmentsHandler(enrollments, courses)

	dtos, err := handler.Handle(context.Background(), ListEnrollmentsQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
	})
	require.NoError(t, err)
	require.Len(t, dtos, 2)

	titles := make(map[string]string)
	for _, dto := range dtos {
		titles[dto.Enrollment.CourseID] = dto.CourseTitle
	}
	assert.Equal(t, "Go Basics", titles["go-1"])
	assert.Equal(t, "", titles["gone-1"], "a deleted course leaves the title blank")
}

func TestListEnrollments_Authorization(t *testing.T) {
	handler := NewListEnrollmentsHandler(newFakeEnrollmentRepo(), newFakeCourseRepo())

	_, err := handler.Handle(context.Background(), ListEnrollmentsQuery{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}
