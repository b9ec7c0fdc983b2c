package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestUpdateLessonProgress(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	enr := seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewUpdateLessonProgressHandler(enrollments)

	percent := 60
	result, err := handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:            actorFor("stu-1"),
		EnrollmentID:     enr.ID,
		Progress:         &percent,
		CompletedLessons: []int{0, 1, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.LessonsAdded)
	assert.Equal(t, 60, result.Enrollment.Progress)
	assert.Equal(t, []int{0, 1, 2}, result.Enrollment.CompletedLessons)

	// A second update merges, never duplicates.
	result, err = handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:            actorFor("stu-1"),
		EnrollmentID:     enr.ID,
		CompletedLessons: []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonsAdded)
	assert.Equal(t, []int{0, 1, 2, 3}, result.Enrollment.CompletedLessons)
	assert.Equal(t, 60, result.Enrollment.Progress, "omitted percent keeps the stored value")
}

func TestUpdateLessonProgress_Validation(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	enr := seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewUpdateLessonProgressHandler(enrollments)

	// Nothing to update.
	_, err := handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:        actorFor("stu-1"),
		EnrollmentID: enr.ID,
	})
	assert.Error(t, err)

	bad := 101
	_, err = handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:        actorFor("stu-1"),
		EnrollmentID: enr.ID,
		Progress:     &bad,
	})
	assert.ErrorIs(t, err, enrollment.ErrInvalidPercent)
}

func TestUpdateLessonProgress_OwnershipEnforced(t *testing.T) {
	enrollments := newFakeEnrollmentRepo()
	enr := seedEnrollment(enrollments, "stu-1", "course-1")

	handler := NewUpdateLessonProgressHandler(enrollments)

	percent := 10
	_, err := handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:        actorFor("stu-2"),
		EnrollmentID: enr.ID,
		Progress:     &percent,
	})
	assert.ErrorIs(t, err, shared.ErrNotEnrollmentOwner)

	// Admins may update any enrollment.
	_, err = handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:        adminActor(),
		EnrollmentID: enr.ID,
		Progress:     &percent,
	})
	assert.NoError(t, err)
}

func TestUpdateLessonProgress_EnrollmentNotFound(t *testing.T) {
	handler := NewUpdateLessonProgressHandler(newFakeEnrollmentRepo())

	percent := 10
	_, err := handler.Handle(context.Background(), UpdateLessonProgressCommand{
		Actor:        actorFor("stu-1"),
		EnrollmentID: "missing",
		Progress:     &percent,
	})
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotFound)
}
