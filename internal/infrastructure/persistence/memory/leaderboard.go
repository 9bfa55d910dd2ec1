package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
)

type bucketKey struct {
	subject   leaderboard.Subject
	timeframe leaderboard.Timeframe
}

type storedBucket struct {
	entries   []*leaderboard.Entry
	rebuiltAt time.Time
}

// LeaderboardRepository is an in-memory leaderboard.Repository.
type LeaderboardRepository struct {
	mu      sync.RWMutex
	buckets map[bucketKey]*storedBucket
}

// NewLeaderboardRepository creates an empty in-memory leaderboard repository.
func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{buckets: make(map[bucketKey]*storedBucket)}
}

// ReplaceBucket implements leaderboard.Repository.
func (r *LeaderboardRepository) ReplaceBucket(ctx context.Context, board *leaderboard.Board) error {
	if board == nil {
		return leaderboard.ErrNilEntry
	}

	entries := make([]*leaderboard.Entry, len(board.Entries))
	for i, e := range board.Entries {
		entries[i] = e.Clone()
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets[bucketKey{board.Subject, board.Timeframe}] = &storedBucket{
		entries:   entries,
		rebuiltAt: board.RebuiltAt,
	}
	return nil
}

// GetTop implements leaderboard.Repository.
func (r *LeaderboardRepository) GetTop(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe, limit int) ([]*leaderboard.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[bucketKey{subject, timeframe}]
	if !ok {
		return nil, nil
	}

	n := limit
	if n > len(bucket.entries) {
		n = len(bucket.entries)
	}

	top := make([]*leaderboard.Entry, 0, n)
	for _, e := range bucket.entries[:n] {
		top = append(top, e.Clone())
	}
	return top, nil
}

// GetUserRank implements leaderboard.Repository.
func (r *LeaderboardRepository) GetUserRank(ctx context.Context, userID string, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (*leaderboard.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[bucketKey{subject, timeframe}]
	if !ok {
		return nil, leaderboard.ErrBucketNotFound
	}

	for _, e := range bucket.entries {
		if e.UserID == userID {
			return e.Clone(), nil
		}
	}
	return nil, leaderboard.ErrBucketNotFound
}

// GetTotalCount implements leaderboard.Repository.
func (r *LeaderboardRepository) GetTotalCount(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[bucketKey{subject, timeframe}]
	if !ok {
		return 0, nil
	}
	return len(bucket.entries), nil
}

// ListSubjects implements leaderboard.Repository.
func (r *LeaderboardRepository) ListSubjects(ctx context.Context) ([]leaderboard.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[leaderboard.Subject]bool)
	var subjects []leaderboard.Subject
	for key := range r.buckets {
		if !seen[key.subject] {
			seen[key.subject] = true
			subjects = append(subjects, key.subject)
		}
	}

	sort.Slice(subjects, func(i, j int) bool { return subjects[i] < subjects[j] })
	return subjects, nil
}

var _ leaderboard.Repository = (*LeaderboardRepository)(nil)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache is an in-memory leaderboard.Cache with the same
// miss semantics as the Redis implementation: nil without error.
// TTLs are honored lazily on read.
type LeaderboardCache struct {
	mu      sync.RWMutex
	buckets map[bucketKey]*cachedBucket
}

type cachedBucket struct {
	entries   []*leaderboard.Entry
	expiresAt time.Time
}

// NewLeaderboardCache creates an empty in-memory leaderboard cache.
func NewLeaderboardCache() *LeaderboardCache {
	return &LeaderboardCache{buckets: make(map[bucketKey]*cachedBucket)}
}

// SetBucket implements leaderboard.Cache.
func (c *LeaderboardCache) SetBucket(ctx context.Context, board *leaderboard.Board, ttl time.Duration) error {
	if board == nil {
		return leaderboard.ErrNilEntry
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	entries := make([]*leaderboard.Entry, len(board.Entries))
	for i, e := range board.Entries {
		entries[i] = e.Clone()
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buckets[bucketKey{board.Subject, board.Timeframe}] = &cachedBucket{
		entries:   entries,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetCachedTop implements leaderboard.Cache.
func (c *LeaderboardCache) GetCachedTop(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe, limit int) ([]*leaderboard.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.buckets[bucketKey{subject, timeframe}]
	if !ok || time.Now().After(bucket.expiresAt) {
		return nil, nil
	}

	n := limit
	if n > len(bucket.entries) {
		n = len(bucket.entries)
	}

	top := make([]*leaderboard.Entry, 0, n)
	for _, e := range bucket.entries[:n] {
		top = append(top, e.Clone())
	}
	return top, nil
}

// GetCachedRank implements leaderboard.Cache.
func (c *LeaderboardCache) GetCachedRank(ctx context.Context, userID string, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (*leaderboard.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.buckets[bucketKey{subject, timeframe}]
	if !ok || time.Now().After(bucket.expiresAt) {
		return nil, nil
	}

	for _, e := range bucket.entries {
		if e.UserID == userID {
			return e.Clone(), nil
		}
	}
	return nil, nil
}

// Invalidate implements leaderboard.Cache.
func (c *LeaderboardCache) Invalidate(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buckets, bucketKey{subject, timeframe})
	return nil
}

// InvalidateAll implements leaderboard.Cache.
func (c *LeaderboardCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = make(map[bucketKey]*cachedBucket)
	return nil
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)
