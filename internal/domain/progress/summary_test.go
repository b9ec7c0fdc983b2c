package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(courseID string, completed bool, points int) *Record {
	return &Record{
		ID: "rec-" + courseID,
		Key: Key{
			StudentID: "stu-1",
			CourseID:  courseID,
			Level:     LevelCourse,
		},
		Completed: completed,
		Points:    points,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalCompleted)
	assert.Equal(t, 0, s.TotalPoints)
	assert.Empty(t, s.CoursesProgress)
}

func TestSummarize_AggregatesPerCourse(t *testing.T) {
	records := []*Record{
		record("go", true, 10),
		record("go", true, 25),
		record("go", false, 0),
		record("sql", true, 100),
	}

	s := Summarize(records)

	assert.Equal(t, 3, s.TotalCompleted)
	assert.Equal(t, 135, s.TotalPoints)

	goCourse := s.CoursesProgress["go"]
	assert.Equal(t, 2, goCourse.Completed)
	assert.Equal(t, 3, goCourse.Total)
	assert.Equal(t, 35, goCourse.Points)
	assert.Equal(t, 67, goCourse.Percentage, "2/3 rounds to 67")

	sqlCourse := s.CoursesProgress["sql"]
	assert.Equal(t, 100, sqlCourse.Percentage)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	a := []*Record{record("go", true, 10), record("sql", false, 0)}
	b := []*Record{record("sql", false, 0), record("go", true, 10)}

	assert.Equal(t, Summarize(a), Summarize(b))
}

func TestPercentage_Rounding(t *testing.T) {
	assert.Equal(t, 0, percentage(0, 0))
	assert.Equal(t, 0, percentage(5, 0))
	assert.Equal(t, 50, percentage(1, 2))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 17, percentage(1, 6))
}
