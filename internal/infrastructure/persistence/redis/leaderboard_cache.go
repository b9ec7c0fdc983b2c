package redis

import (
	"context"
	"errors"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// The ranked top list is cached as one JSON document. A sorted set
// cannot express the registration-time tie-break, so the list is
// computed by the repository and cached whole; the rebuild job and the
// read-through query both refresh it.
// ══════════════════════════════════════════════════════════════════════════════

// keyLeaderboardTop is the key holding the cached top list.
const keyLeaderboardTop = "leaderboard:top"

// DefaultLeaderboardTTL bounds staleness between rebuilds.
const DefaultLeaderboardTTL = 5 * time.Minute

// LeaderboardCache implements student.LeaderboardCache on Redis.
type LeaderboardCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(cache *Cache, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultLeaderboardTTL
	}
	return &LeaderboardCache{cache: cache, ttl: ttl}
}

// GetTop returns the cached top of the leaderboard, truncated to limit.
// Returns shared.ErrNotFound on a miss or when the cached list is
// shorter than the requested limit.
func (c *LeaderboardCache) GetTop(ctx context.Context, limit int) ([]student.LeaderboardEntry, error) {
	var entries []student.LeaderboardEntry
	err := c.cache.GetJSON(ctx, keyLeaderboardTop, &entries)
	if errors.Is(err, ErrCacheMiss) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(entries) < limit {
		// A short cached list cannot answer a bigger request.
		return nil, shared.ErrNotFound
	}
	return entries[:limit], nil
}

// SetTop stores the ranked top list.
func (c *LeaderboardCache) SetTop(ctx context.Context, entries []student.LeaderboardEntry) error {
	return c.cache.SetJSON(ctx, keyLeaderboardTop, entries, c.ttl)
}

// Invalidate drops the cached list.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, keyLeaderboardTop)
}
