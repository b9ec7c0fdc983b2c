package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestCreateContent_FullHierarchy(t *testing.T) {
	repo := newFakeCourseRepo()
	handler := NewCreateContentHandler(repo)
	ctx := context.Background()

	crs, err := handler.HandleCreateCourse(ctx, CreateCourseCommand{
		Actor:    instructorActor(),
		Title:    "Go from Scratch",
		Category: "programming",
	})
	require.NoError(t, err)
	assert.False(t, crs.IsPublished, "new courses start unpublished")
	assert.Equal(t, "inst-1", crs.InstructorID)

	unit, err := handler.HandleCreateUnit(ctx, CreateUnitCommand{
		Actor:    instructorActor(),
		CourseID: crs.ID,
		Title:    "Basics",
		Order:    1,
	})
	require.NoError(t, err)

	topic, err := handler.HandleCreateTopic(ctx, CreateTopicCommand{
		Actor:  instructorActor(),
		UnitID: unit.ID,
		Title:  "Syntax",
		Order:  1,
	})
	require.NoError(t, err)

	st, err := handler.HandleCreateSubtopic(ctx, CreateSubtopicCommand{
		Actor:   instructorActor(),
		TopicID: topic.ID,
		Title:   "Variables",
		Type:    "text",
		Content: "var declares a variable.",
		Order:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ContentText, st.Type)

	published, err := handler.HandlePublishCourse(ctx, instructorActor(), crs.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestCreateContent_ParentMustExist(t *testing.T) {
	handler := NewCreateContentHandler(newFakeCourseRepo())
	ctx := context.Background()

	_, err := handler.HandleCreateUnit(ctx, CreateUnitCommand{
		Actor:    instructorActor(),
		CourseID: "missing",
		Title:    "Basics",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)

	_, err = handler.HandleCreateTopic(ctx, CreateTopicCommand{
		Actor:  instructorActor(),
		UnitID: "missing",
		Title:  "Syntax",
	})
	assert.ErrorIs(t, err, shared.ErrUnitNotFound)

	_, err = handler.HandleCreateSubtopic(ctx, CreateSubtopicCommand{
		Actor:   instructorActor(),
		TopicID: "missing",
		Title:   "Variables",
		Type:    "text",
		Content: "body",
	})
	assert.ErrorIs(t, err, shared.ErrTopicNotFound)
}

func TestCreateContent_RequiresContentManager(t *testing.T) {
	handler := NewCreateContentHandler(newFakeCourseRepo())

	_, err := handler.HandleCreateCourse(context.Background(), CreateCourseCommand{
		Actor: actorFor("stu-1"),
		Title: "My Course",
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestCreateQuiz(t *testing.T) {
	quizzes := newFakeQuizRepo()
	courses := newFakeCourseRepo()
	courses.addCourse("course-1", true)

	handler := NewCreateQuizHandler(quizzes, courses)

	qz, err := handler.Handle(context.Background(), CreateQuizCommand{
		Actor:    instructorActor(),
		CourseID: "course-1",
		Title:    "Checkpoint",
		Questions: []quiz.Question{
			{
				Text:          "2+2?",
				Type:          quiz.QuestionMultipleChoice,
				Options:       []string{"3", "4"},
				CorrectAnswer: "4",
				Points:        5,
			},
		},
	})
	require.NoError(t, err)

	stored, err := quizzes.GetByID(context.Background(), qz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checkpoint", stored.Title)
	assert.Equal(t, 5, stored.TotalPoints())
}

func TestCreateQuiz_Validation(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.addCourse("course-1", true)
	handler := NewCreateQuizHandler(newFakeQuizRepo(), courses)

	_, err := handler.Handle(context.Background(), CreateQuizCommand{
		Actor:    instructorActor(),
		CourseID: "course-1",
		Title:    "Empty",
	})
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)

	_, err = handler.Handle(context.Background(), CreateQuizCommand{
		Actor:    actorFor("stu-1"),
		CourseID: "course-1",
		Title:    "Nope",
		Questions: []quiz.Question{
			{Text: "?", Type: quiz.QuestionShortAnswer, Points: 1},
		},
	})
	assert.ErrorIs(t, err, shared.ErrAccessDenied)

	_, err = handler.Handle(context.Background(), CreateQuizCommand{
		Actor:    instructorActor(),
		CourseID: "missing",
		Title:    "Orphan",
		Questions: []quiz.Question{
			{Text: "?", Type: quiz.QuestionShortAnswer, Points: 1},
		},
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}
