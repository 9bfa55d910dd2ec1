package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(t *testing.T, userID string, score int, lastActivity time.Time) *Entry {
	t.Helper()
	e, err := NewEntry(userID, userID, "mathematics", TimeframeWeekly, Score(score), lastActivity)
	require.NoError(t, err)
	return e
}

func TestRanking_RankOrdersByScoreDesc(t *testing.T) {
	now := time.Now().UTC()
	ranking := NewRanking()
	require.NoError(t, ranking.Add(entry(t, "low", 5, now)))
	require.NoError(t, ranking.Add(entry(t, "high", 50, now)))
	require.NoError(t, ranking.Add(entry(t, "mid", 20, now)))

	ranking.Rank()

	all := ranking.All()
	assert.Equal(t, []string{"high", "mid", "low"}, []string{all[0].UserID, all[1].UserID, all[2].UserID})
	assert.Equal(t, Rank(1), all[0].Rank)
	assert.Equal(t, Rank(2), all[1].Rank)
	assert.Equal(t, Rank(3), all[2].Rank)
}

func TestRanking_TieBreaksByMostRecentActivity(t *testing.T) {
	now := time.Now().UTC()
	ranking := NewRanking()
	require.NoError(t, ranking.Add(entry(t, "stale", 30, now.Add(-2*time.Hour))))
	require.NoError(t, ranking.Add(entry(t, "fresh", 30, now)))

	ranking.Rank()

	all := ranking.All()
	assert.Equal(t, "fresh", all[0].UserID, "equal scores rank the more recently active user higher")
	assert.Equal(t, Rank(1), all[0].Rank)
	assert.Equal(t, Rank(2), all[1].Rank)
}

func TestRanking_RanksAreSequentialOneBased(t *testing.T) {
	now := time.Now().UTC()
	ranking := NewRanking()
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, ranking.Add(entry(t, id, 10*i, now)))
	}

	ranking.Rank()

	for i, e := range ranking.All() {
		assert.Equal(t, Rank(i+1), e.Rank)
	}
}

func TestRanking_RejectsDuplicates(t *testing.T) {
	now := time.Now().UTC()
	ranking := NewRanking()
	require.NoError(t, ranking.Add(entry(t, "u1", 10, now)))

	err := ranking.Add(entry(t, "u1", 20, now))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestNewEntry_Validation(t *testing.T) {
	now := time.Now().UTC()

	_, err := NewEntry("", "name", "mathematics", TimeframeWeekly, 1, now)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = NewEntry("u1", "name", "m", TimeframeWeekly, 1, now)
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = NewEntry("u1", "name", "mathematics", "yearly", 1, now)
	assert.ErrorIs(t, err, ErrInvalidTimeframe)

	_, err = NewEntry("u1", "name", "mathematics", TimeframeWeekly, -1, now)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestNewBoard(t *testing.T) {
	now := time.Now().UTC()
	ranking := NewRanking()
	require.NoError(t, ranking.Add(entry(t, "u1", 10, now)))
	require.NoError(t, ranking.Add(entry(t, "u2", 40, now)))

	board := NewBoard("mathematics", TimeframeWeekly, ranking)

	assert.Equal(t, 2, board.TotalUsers)
	assert.Equal(t, 50, board.TotalScore)

	top, ok := board.EntryFor("u2")
	require.True(t, ok)
	assert.Equal(t, Rank(1), top.Rank)

	assert.Len(t, board.Top(1), 1)
	assert.Len(t, board.Top(10), 2)
}

func TestNewBoard_NilRanking(t *testing.T) {
	board := NewBoard("mathematics", TimeframeAll, nil)
	assert.Zero(t, board.TotalUsers)
	assert.Empty(t, board.Entries)
	assert.Nil(t, board.Top(5))
}

func TestTimeframe_IsValid(t *testing.T) {
	assert.True(t, TimeframeWeekly.IsValid())
	assert.True(t, TimeframeMonthly.IsValid())
	assert.True(t, TimeframeAll.IsValid())
	assert.False(t, Timeframe("daily").IsValid())
}
