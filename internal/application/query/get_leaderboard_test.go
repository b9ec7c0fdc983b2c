package query

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
)

func seedRankedStudents(repo *fakeStudentRepo) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.seed("stu-a", 100, base.Add(time.Hour))
	repo.seed("stu-b", 300, base)
	repo.seed("stu-c", 100, base) // same points as stu-a, registered earlier
}

func TestGetLeaderboard_RanksByPointsThenRegistration(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)

	handler := NewGetLeaderboardHandler(students, nil, false)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)

	assert.Equal(t, "stu-b", result.Entries[0].StudentID)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, "stu-c", result.Entries[1].StudentID, "earlier registration wins the tie")
	assert.Equal(t, "stu-a", result.Entries[2].StudentID)
	assert.Equal(t, 3, result.Entries[2].Rank)
	assert.False(t, result.FromCache)
}

func TestGetLeaderboard_CacheMissPopulatesCache(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)
	cache := &fakeLeaderboardCache{}

	handler := NewGetLeaderboardHandler(students, cache, true)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 3})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, cache.sets)

	// Second request is served from the cache.
	result, err = handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 3})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "stu-b", result.Entries[0].StudentID)
}

func TestGetLeaderboard_ShortCacheFallsThrough(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)
	cache := &fakeLeaderboardCache{
		entries: []student.LeaderboardEntry{{Rank: 1, StudentID: "stu-b"}},
	}

	handler := NewGetLeaderboardHandler(students, cache, true)

	// The cached projection is too short for this request.
	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 3})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 3)
}

func TestGetLeaderboard_BrokenCacheDoesNotFail(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)
	cache := &fakeLeaderboardCache{getErr: errors.New("connection refused")}

	var logs bytes.Buffer
	handler := NewGetLeaderboardHandler(students, cache, true).
		WithLogger(logger.New(logger.Options{Output: &logs, Level: logger.LevelWarn}))

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 2})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 2)

	// The failure is visible in the logs, not swallowed.
	assert.Contains(t, logs.String(), "leaderboard cache read failed")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestGetLeaderboard_CacheDisabled(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)
	cache := &fakeLeaderboardCache{}

	handler := NewGetLeaderboardHandler(students, cache, false)

	_, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.gets)
	assert.Equal(t, 0, cache.sets)
}

func TestGetLeaderboard_LimitNormalization(t *testing.T) {
	students := newFakeStudentRepo()
	seedRankedStudents(students)

	handler := NewGetLeaderboardHandler(students, nil, false)

	// Zero selects the default.
	q := GetLeaderboardQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, DefaultLeaderboardLimit, q.Limit)

	// Oversized requests are capped.
	q = GetLeaderboardQuery{Limit: 1000}
	require.NoError(t, q.Validate())
	assert.Equal(t, MaxLeaderboardLimit, q.Limit)

	_, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: -1})
	assert.Error(t, err)
}
