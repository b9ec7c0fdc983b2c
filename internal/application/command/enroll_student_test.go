package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestEnrollStudent(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	courses := newFakeCourseRepo()
	notifications := newFakeNotificationRepo()
	pub := &recordingPublisher{}
	courses.addCourse("course-1", true)

	handler := NewEnrollStudentHandler(enrollments, courses, notifications, pub, true)

	result, err := handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.EnrollmentID)
	assert.False(t, result.EnrolledAt.IsZero())

	enrolled, err := enrollments.Exists(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	assert.Equal(t, []shared.EventType{shared.EventEnrollmentCreated}, pub.types())

	notifs := notifications.forStudent("stu-1")
	require.Len(t, notifs, 1)
	assert.Equal(t, "Enrolled", notifs[0].Title)
}

func TestEnrollStudent_Duplicate(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	courses := newFakeCourseRepo()
	courses.addCourse("course-1", true)
	enrollments.courses = courses

	handler := NewEnrollStudentHandler(enrollments, courses, nil, nil, false)

	cmd := EnrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "course-1",
	}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrDuplicateEnrollment)

	// The rejected attempt must leave the counter where the first
	// enrollment put it.
	assert.Equal(t, 1, courses.courses["course-1"].EnrolledCount)
}

func TestEnrollStudent_UnpublishedCourse(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	courses := newFakeCourseRepo()
	courses.addCourse("draft-1", false)

	handler := NewEnrollStudentHandler(enrollments, courses, nil, nil, false)

	_, err := handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "draft-1",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotPublished)

	// Content managers may enroll in drafts (previewing their own courses).
	_, err = handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     instructorActor(),
		StudentID: "inst-1",
		CourseID:  "draft-1",
	})
	assert.NoError(t, err)
}

func TestEnrollStudent_Authorization(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	courses := newFakeCourseRepo()
	courses.addCourse("course-1", true)

	handler := NewEnrollStudentHandler(enrollments, courses, nil, nil, false)

	// A student cannot enroll somebody else.
	_, err := handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
		CourseID:  "course-1",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)

	// An admin can.
	_, err = handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     adminActor(),
		StudentID: "stu-2",
		CourseID:  "course-1",
	})
	assert.NoError(t, err)
}

func TestEnrollStudent_CourseNotFound(t *testing.T) {
	handler := NewEnrollStudentHandler(newFakeEnrollmentRepo(), newFakeCourseRepo(), nil, nil, false)

	_, err := handler.Handle(context.Background(), EnrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "missing",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestUnenrollStudent(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewUnenrollStudentHandler(enrollments)

	err := handler.Handle(context.Background(), UnenrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)

	enrolled, err := enrollments.Exists(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	assert.False(t, enrolled)

	// Removing it again reports the missing enrollment.
	err = handler.Handle(context.Background(), UnenrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotFound)
}

func TestUnenrollStudent_Authorization(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	seedEnrollment(enrollments, "stu-2", "course-1")

	handler := NewUnenrollStudentHandler(enrollments)

	err := handler.Handle(context.Background(), UnenrollStudentCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-2",
		CourseID:  "course-1",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}
