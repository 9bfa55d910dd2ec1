// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Reads go to the Redis bucket first and fall back to PostgreSQL.
// PostgreSQL is the source of truth; a cache miss repopulates Redis.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery requests the top of a bucket.
type GetLeaderboardQuery struct {
	// Subject selects the subject bucket ("all" for the combined board).
	Subject leaderboard.Subject

	// Timeframe selects weekly, monthly or all time.
	Timeframe leaderboard.Timeframe

	// Limit caps the number of entries returned.
	Limit int

	// UserID, when set, also resolves the requester's own position.
	UserID string
}

// Validate validates the query.
func (q GetLeaderboardQuery) Validate() error {
	if q.Subject == "" {
		return errors.New("get_leaderboard: subject is required")
	}
	if !q.Timeframe.IsValid() {
		return leaderboard.ErrInvalidTimeframe
	}
	if q.Limit <= 0 {
		return errors.New("get_leaderboard: limit must be positive")
	}
	return nil
}

// LeaderboardView is the assembled read model.
type LeaderboardView struct {
	// Subject is the bucket subject.
	Subject leaderboard.Subject

	// Timeframe is the bucket timeframe.
	Timeframe leaderboard.Timeframe

	// Entries are the top entries in rank order.
	Entries []*leaderboard.Entry

	// TotalCount is the number of participants in the bucket.
	TotalCount int

	// Me is the requester's entry, nil when absent from the bucket.
	Me *leaderboard.Entry

	// FromCache reports whether the top came from Redis.
	FromCache bool
}

// GetLeaderboardHandler handles GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	repo     leaderboard.Repository
	cache    leaderboard.Cache
	cacheTTL time.Duration
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
// cache may be nil when Redis is disabled.
func NewGetLeaderboardHandler(repo leaderboard.Repository, cache leaderboard.Cache, cacheTTL time.Duration) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Handle resolves the bucket top, preferring the cache.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*LeaderboardView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	view := &LeaderboardView{Subject: q.Subject, Timeframe: q.Timeframe}

	if h.cache != nil {
		cached, err := h.cache.GetCachedTop(ctx, q.Subject, q.Timeframe, q.Limit)
		if err == nil && cached != nil {
			view.Entries = cached
			view.FromCache = true
		}
		// A cache error is not fatal; fall through to PostgreSQL.
	}

	if view.Entries == nil {
		entries, err := h.repo.GetTop(ctx, q.Subject, q.Timeframe, q.Limit)
		if err != nil {
			return nil, err
		}
		view.Entries = entries
	}

	count, err := h.repo.GetTotalCount(ctx, q.Subject, q.Timeframe)
	if err != nil {
		return nil, err
	}
	view.TotalCount = count

	if q.UserID != "" {
		me, err := h.resolveRank(ctx, q)
		if err != nil {
			return nil, err
		}
		view.Me = me
	}

	return view, nil
}

func (h *GetLeaderboardHandler) resolveRank(ctx context.Context, q GetLeaderboardQuery) (*leaderboard.Entry, error) {
	if h.cache != nil {
		if me, err := h.cache.GetCachedRank(ctx, q.UserID, q.Subject, q.Timeframe); err == nil && me != nil {
			return me, nil
		}
	}

	me, err := h.repo.GetUserRank(ctx, q.UserID, q.Subject, q.Timeframe)
	if err != nil {
		if errors.Is(err, leaderboard.ErrBucketNotFound) {
			// Not ranked yet; an empty position, not an error.
			return nil, nil
		}
		return nil, err
	}
	return me, nil
}

// ListSubjectsHandler lists subjects that currently have buckets.
type ListSubjectsHandler struct {
	repo leaderboard.Repository
}

// NewListSubjectsHandler creates a new ListSubjectsHandler.
func NewListSubjectsHandler(repo leaderboard.Repository) *ListSubjectsHandler {
	return &ListSubjectsHandler{repo: repo}
}

// Handle returns the subjects with at least one bucket.
func (h *ListSubjectsHandler) Handle(ctx context.Context) ([]leaderboard.Subject, error) {
	return h.repo.ListSubjects(ctx)
}
