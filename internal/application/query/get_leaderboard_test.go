package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

// makeBoard builds a ranked bucket from userID -> score pairs.
func makeBoard(t *testing.T, subject leaderboard.Subject, timeframe leaderboard.Timeframe, scores map[string]int) *leaderboard.Board {
	t.Helper()

	ranking := leaderboard.NewRanking()
	at := time.Now().UTC()
	for userID, score := range scores {
		entry, err := leaderboard.NewEntry(userID, "Name "+userID, subject, timeframe, leaderboard.Score(score), at)
		require.NoError(t, err)
		require.NoError(t, ranking.Add(entry))
	}
	ranking.Rank()
	return leaderboard.NewBoard(subject, timeframe, ranking)
}

func TestGetLeaderboardHandler_RepoFallbackOnCacheMiss(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	cache := memory.NewLeaderboardCache()
	ctx := context.Background()

	board := makeBoard(t, "physics", leaderboard.TimeframeWeekly, map[string]int{
		"u1": 10, "u2": 30, "u3": 20,
	})
	require.NoError(t, repo.ReplaceBucket(ctx, board))

	handler := NewGetLeaderboardHandler(repo, cache, time.Minute)
	view, err := handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   "physics",
		Timeframe: leaderboard.TimeframeWeekly,
		Limit:     10,
	})
	require.NoError(t, err)

	assert.False(t, view.FromCache)
	assert.Equal(t, 3, view.TotalCount)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "u2", view.Entries[0].UserID, "highest score ranks first")
	assert.Equal(t, leaderboard.Rank(1), view.Entries[0].Rank)
	assert.Equal(t, "u3", view.Entries[1].UserID)
	assert.Equal(t, "u1", view.Entries[2].UserID)
}

func TestGetLeaderboardHandler_PrefersCache(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	cache := memory.NewLeaderboardCache()
	ctx := context.Background()

	// Repo and cache deliberately disagree so the source is observable.
	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "physics", leaderboard.TimeframeAll, map[string]int{
		"repo-user": 5,
	})))
	require.NoError(t, cache.SetBucket(ctx, makeBoard(t, "physics", leaderboard.TimeframeAll, map[string]int{
		"cache-user": 7,
	}), time.Minute))

	handler := NewGetLeaderboardHandler(repo, cache, time.Minute)
	view, err := handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   "physics",
		Timeframe: leaderboard.TimeframeAll,
		Limit:     10,
	})
	require.NoError(t, err)

	assert.True(t, view.FromCache)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "cache-user", view.Entries[0].UserID)
}

func TestGetLeaderboardHandler_NilCache(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "physics", leaderboard.TimeframeAll, map[string]int{
		"u1": 5,
	})))

	handler := NewGetLeaderboardHandler(repo, nil, time.Minute)
	view, err := handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   "physics",
		Timeframe: leaderboard.TimeframeAll,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.False(t, view.FromCache)
	assert.Len(t, view.Entries, 1)
}

func TestGetLeaderboardHandler_LimitCapsEntries(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "all", leaderboard.TimeframeAll, map[string]int{
		"u1": 1, "u2": 2, "u3": 3, "u4": 4,
	})))

	handler := NewGetLeaderboardHandler(repo, nil, time.Minute)
	view, err := handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   leaderboard.SubjectAll,
		Timeframe: leaderboard.TimeframeAll,
		Limit:     2,
	})
	require.NoError(t, err)

	assert.Len(t, view.Entries, 2)
	assert.Equal(t, 4, view.TotalCount, "total count ignores the page limit")
}

func TestGetLeaderboardHandler_ResolvesOwnRank(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "physics", leaderboard.TimeframeAll, map[string]int{
		"u1": 10, "u2": 20, "u3": 30,
	})))

	handler := NewGetLeaderboardHandler(repo, nil, time.Minute)

	view, err := handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   "physics",
		Timeframe: leaderboard.TimeframeAll,
		Limit:     1,
		UserID:    "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, view.Me)
	assert.Equal(t, leaderboard.Rank(3), view.Me.Rank, "own rank resolves even outside the returned top")

	// A user with no awards has no position; that is not an error.
	view, err = handler.Handle(ctx, GetLeaderboardQuery{
		Subject:   "physics",
		Timeframe: leaderboard.TimeframeAll,
		Limit:     1,
		UserID:    "stranger",
	})
	require.NoError(t, err)
	assert.Nil(t, view.Me)
}

func TestGetLeaderboardQuery_Validate(t *testing.T) {
	valid := GetLeaderboardQuery{Subject: "physics", Timeframe: leaderboard.TimeframeWeekly, Limit: 10}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Subject = ""
	assert.Error(t, missing.Validate())

	badTimeframe := valid
	badTimeframe.Timeframe = "hourly"
	assert.ErrorIs(t, badTimeframe.Validate(), leaderboard.ErrInvalidTimeframe)

	badLimit := valid
	badLimit.Limit = 0
	assert.Error(t, badLimit.Validate())
}

func TestListSubjectsHandler(t *testing.T) {
	repo := memory.NewLeaderboardRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "physics", leaderboard.TimeframeAll, map[string]int{"u1": 1})))
	require.NoError(t, repo.ReplaceBucket(ctx, makeBoard(t, "chemistry", leaderboard.TimeframeAll, map[string]int{"u1": 1})))

	subjects, err := NewListSubjectsHandler(repo).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, []leaderboard.Subject{"chemistry", "physics"}, subjects)
}
