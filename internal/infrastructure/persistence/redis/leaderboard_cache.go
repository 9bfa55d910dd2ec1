// Package redis implements Redis caching for the TestMancer platform.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/circuitbreaker"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache using Redis Sorted Sets.
//
// Architecture (one pair of keys per (subject, timeframe) bucket):
//   - Sorted Set "leaderboard:rank:{subject}:{timeframe}" maps userID -> rank,
//     so ZRANGE returns members already in standings order
//   - Hash "leaderboard:entry:{subject}:{timeframe}" maps userID -> entry JSON
//
// The cache holds the full recomputed bucket, never a partial update. A
// rebuild replaces both keys in one pipeline, so a reader sees either the
// previous board or the new one. Misses fall through to PostgreSQL.
//
// All operations go through a circuit breaker. When Redis is unreachable
// the circuit opens and reads report a miss right away instead of each
// request waiting out its own timeout.
type LeaderboardCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	// Serialization errors are data problems, not Redis health problems.
	breaker := circuitbreaker.CacheBreaker("leaderboard-cache",
		circuitbreaker.WithIsFailure(func(err error) bool {
			return !errors.Is(err, ErrCacheSerialization)
		}),
	)
	return &LeaderboardCache{cache: cache, breaker: breaker}
}

// breakerSkipped reports whether the error means the circuit refused the
// call without touching Redis.
func breakerSkipped(err error) bool {
	return errors.Is(err, circuitbreaker.ErrCircuitOpen) ||
		errors.Is(err, circuitbreaker.ErrTooManyRequests)
}

// Key patterns for leaderboard cache.
const (
	// keyLeaderboardRank is the sorted set ordered by rank.
	keyLeaderboardRank = PrefixLeaderboard + "rank:"

	// keyLeaderboardEntry is the hash for entry details.
	keyLeaderboardEntry = PrefixLeaderboard + "entry:"
)

func bucketRankKey(subject leaderboard.Subject, timeframe leaderboard.Timeframe) string {
	return fmt.Sprintf("%s%s:%s", keyLeaderboardRank, subject, timeframe)
}

func bucketEntryKey(subject leaderboard.Subject, timeframe leaderboard.Timeframe) string {
	return fmt.Sprintf("%s%s:%s", keyLeaderboardEntry, subject, timeframe)
}

// cachedEntry is the JSON shape stored in the entry hash.
type cachedEntry struct {
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	Rank           int       `json:"rank"`
	Score          int       `json:"score"`
	LastActivityAt time.Time `json:"last_activity_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCachedEntry(e *leaderboard.Entry) cachedEntry {
	return cachedEntry{
		UserID:         e.UserID,
		DisplayName:    e.DisplayName,
		Rank:           int(e.Rank),
		Score:          int(e.Score),
		LastActivityAt: e.LastActivityAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (c cachedEntry) toDomain(subject leaderboard.Subject, timeframe leaderboard.Timeframe) *leaderboard.Entry {
	return &leaderboard.Entry{
		UserID:         c.UserID,
		DisplayName:    c.DisplayName,
		Subject:        subject,
		Timeframe:      timeframe,
		Rank:           leaderboard.Rank(c.Rank),
		Score:          leaderboard.Score(c.Score),
		LastActivityAt: c.LastActivityAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SetBucket replaces the cached bucket with the recomputed board.
func (l *LeaderboardCache) SetBucket(ctx context.Context, board *leaderboard.Board, ttl time.Duration) error {
	if board == nil {
		return leaderboard.ErrNilEntry
	}
	if ttl <= 0 {
		ttl = TTLLeaderboardCache
	}

	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		rankKey := bucketRankKey(board.Subject, board.Timeframe)
		entryKey := bucketEntryKey(board.Subject, board.Timeframe)

		zMembers := make([]redis.Z, 0, len(board.Entries))
		hashData := make(map[string]interface{}, len(board.Entries))

		for _, e := range board.Entries {
			if e == nil || e.UserID == "" {
				continue
			}

			zMembers = append(zMembers, redis.Z{
				Score:  float64(e.Rank),
				Member: e.UserID,
			})

			data, err := json.Marshal(toCachedEntry(e))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}
			hashData[e.UserID] = data
		}

		pipe := l.cache.Client().TxPipeline()

		// Drop the old bucket first so departed users do not linger.
		pipe.Del(ctx, rankKey, entryKey)

		if len(zMembers) > 0 {
			pipe.ZAdd(ctx, rankKey, zMembers...)
			pipe.HSet(ctx, entryKey, hashData)
			pipe.Expire(ctx, rankKey, ttl)
			pipe.Expire(ctx, entryKey, ttl)
		}

		_, err := pipe.Exec(ctx)
		return err
	})
}

// Invalidate drops the cached bucket.
func (l *LeaderboardCache) Invalidate(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) error {
	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		return l.cache.Delete(ctx,
			bucketRankKey(subject, timeframe),
			bucketEntryKey(subject, timeframe),
		)
	})
}

// InvalidateAll drops every cached bucket.
func (l *LeaderboardCache) InvalidateAll(ctx context.Context) error {
	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		return l.cache.DeleteByPattern(ctx, PrefixLeaderboard+"*")
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetCachedTop returns the cached top-N entries of a bucket.
// Returns nil without error on a cache miss or an open circuit.
func (l *LeaderboardCache) GetCachedTop(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe, limit int) ([]*leaderboard.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	var entries []*leaderboard.Entry
	err := l.breaker.Execute(ctx, func(ctx context.Context) error {
		rankKey := bucketRankKey(subject, timeframe)
		entryKey := bucketEntryKey(subject, timeframe)

		userIDs, err := l.cache.Client().ZRange(ctx, rankKey, 0, int64(limit-1)).Result()
		if err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}

		values, err := l.cache.Client().HMGet(ctx, entryKey, userIDs...).Result()
		if err != nil {
			return err
		}

		entries = make([]*leaderboard.Entry, 0, len(values))
		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				// Hash and sorted set disagree; treat the bucket as a miss
				// and let the caller fall back to PostgreSQL.
				entries = nil
				return nil
			}

			var ce cachedEntry
			if err := json.Unmarshal([]byte(raw), &ce); err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}
			entries = append(entries, ce.toDomain(subject, timeframe))
		}
		return nil
	})
	if err != nil {
		if breakerSkipped(err) {
			return nil, nil
		}
		return nil, err
	}

	return entries, nil
}

// GetCachedRank returns the cached entry of a user in a bucket.
// Returns nil without error if the user is not cached or the circuit
// is open.
func (l *LeaderboardCache) GetCachedRank(ctx context.Context, userID string, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (*leaderboard.Entry, error) {
	if userID == "" {
		return nil, nil
	}

	var entry *leaderboard.Entry
	err := l.breaker.Execute(ctx, func(ctx context.Context) error {
		raw, err := l.cache.Client().HGet(ctx, bucketEntryKey(subject, timeframe), userID).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}

		var ce cachedEntry
		if err := json.Unmarshal([]byte(raw), &ce); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}

		entry = ce.toDomain(subject, timeframe)
		return nil
	})
	if err != nil {
		if breakerSkipped(err) {
			return nil, nil
		}
		return nil, err
	}

	return entry, nil
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)
