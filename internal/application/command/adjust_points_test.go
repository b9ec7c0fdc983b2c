package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestAdjustPoints_Increment(t *testing.T) {
	repo := newFakeStudentRepo()
	stud := seedStudent(repo, "stu-1")
	stud.TotalPoints = 50
	pub := &recordingPublisher{}

	handler := NewAdjustPointsHandler(repo, pub)

	result, err := handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     instructorActor(),
		StudentID: "stu-1",
		Mode:      AdjustModeIncrement,
		Value:     25,
		Reason:    "bonus",
	})
	require.NoError(t, err)

	assert.Equal(t, 75, result.NewTotalPoints)
	assert.Equal(t, 75, stud.TotalPoints)
	assert.Equal(t, []shared.EventType{shared.EventPointsAwarded}, pub.types())
}

func TestAdjustPoints_IncrementClampsAtZero(t *testing.T) {
	repo := newFakeStudentRepo()
	stud := seedStudent(repo, "stu-1")
	stud.TotalPoints = 10

	handler := NewAdjustPointsHandler(repo, nil)

	result, err := handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     adminActor(),
		StudentID: "stu-1",
		Mode:      AdjustModeIncrement,
		Value:     -100,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.NewTotalPoints)
}

func TestAdjustPoints_Set(t *testing.T) {
	repo := newFakeStudentRepo()
	stud := seedStudent(repo, "stu-1")
	stud.TotalPoints = 10

	handler := NewAdjustPointsHandler(repo, nil)

	result, err := handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     adminActor(),
		StudentID: "stu-1",
		Mode:      AdjustModeSet,
		Value:     200,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, result.NewTotalPoints)
	assert.Equal(t, 200, stud.TotalPoints)

	// A set below zero is rejected outright.
	_, err = handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     adminActor(),
		StudentID: "stu-1",
		Mode:      AdjustModeSet,
		Value:     -1,
	})
	assert.ErrorIs(t, err, shared.ErrNegativePoints)
	assert.Equal(t, 200, stud.TotalPoints)
}

func TestAdjustPoints_RequiresContentManager(t *testing.T) {
	repo := newFakeStudentRepo()
	seedStudent(repo, "stu-1")

	handler := NewAdjustPointsHandler(repo, nil)

	// Students cannot adjust points, not even their own.
	_, err := handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     actorFor("stu-1"),
		StudentID: "stu-1",
		Mode:      AdjustModeIncrement,
		Value:     10,
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestAdjustPoints_UnknownMode(t *testing.T) {
	handler := NewAdjustPointsHandler(newFakeStudentRepo(), nil)

	_, err := handler.Handle(context.Background(), AdjustPointsCommand{
		Actor:     adminActor(),
		StudentID: "stu-1",
		Mode:      AdjustMode("multiply"),
		Value:     2,
	})
	assert.Error(t, err)
}
