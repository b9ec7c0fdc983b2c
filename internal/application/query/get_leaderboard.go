// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Projects the top students by cumulative points. Ties resolve by
// registration time: the earlier account ranks higher. The projection
// exposes only name, email and total points.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardLimit is used when the caller omits a limit.
const DefaultLeaderboardLimit = 10

// MaxLeaderboardLimit caps the requested size.
const MaxLeaderboardLimit = 100

// GetLeaderboardQuery contains the leaderboard request parameters.
type GetLeaderboardQuery struct {
	// Limit is the number of entries (default 10, max 100).
	Limit int
}

// Validate validates and normalizes the query.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("get_leaderboard: limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultLeaderboardLimit
	}
	if q.Limit > MaxLeaderboardLimit {
		q.Limit = MaxLeaderboardLimit
	}
	return nil
}

// GetLeaderboardResult contains the leaderboard projection.
type GetLeaderboardResult struct {
	// Entries ranked from 1. May be shorter than the requested limit.
	Entries []student.LeaderboardEntry `json:"entries"`

	// FromCache is true when the cached projection was served.
	FromCache bool `json:"from_cache"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	studentRepo student.Repository
	cache       student.LeaderboardCache
	log         *logger.Logger

	// cacheEnabled gates the read-through cache.
	cacheEnabled bool
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler. The cache
// may be nil; the query then always hits the repository.
func NewGetLeaderboardHandler(
	studentRepo student.Repository,
	cache student.LeaderboardCache,
	cacheEnabled bool,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		studentRepo:  studentRepo,
		cache:        cache,
		log:          logger.Default(),
		cacheEnabled: cacheEnabled,
	}
}

// WithLogger sets a custom logger.
func (h *GetLeaderboardHandler) WithLogger(log *logger.Logger) *GetLeaderboardHandler {
	if log != nil {
		h.log = log
	}
	return h
}

// Handle executes the leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cacheEnabled && h.cache != nil {
		entries, err := h.cache.GetTop(ctx, q.Limit)
		if err == nil {
			return &GetLeaderboardResult{Entries: entries, FromCache: true}, nil
		}
		if !shared.IsNotFound(err) {
			// A broken cache must not take the leaderboard down.
			h.log.Warn("leaderboard cache read failed", logger.Err(err))
		}
	}

	students, err := h.studentRepo.GetTopByPoints(ctx, q.Limit)
	if err != nil {
		return nil, err
	}

	entries := ProjectLeaderboard(students)

	if h.cacheEnabled && h.cache != nil {
		_ = h.cache.SetTop(ctx, entries)
	}

	return &GetLeaderboardResult{Entries: entries}, nil
}

// ProjectLeaderboard builds ranked public entries from students that are
// already sorted by the repository's leaderboard order.
func ProjectLeaderboard(students []*student.Student) []student.LeaderboardEntry {
	entries := make([]student.LeaderboardEntry, len(students))
	for i, s := range students {
		entries[i] = student.LeaderboardEntry{
			Rank:        i + 1,
			StudentID:   s.ID,
			Name:        s.Name,
			Email:       s.Email.String(),
			TotalPoints: s.TotalPoints,
		}
	}
	return entries
}
