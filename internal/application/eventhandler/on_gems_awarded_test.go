package eventhandler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) count(eventType shared.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, e := range p.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

type rebuildEnv struct {
	ledger  *memory.Ledger
	repo    *memory.LeaderboardRepository
	cache   *memory.LeaderboardCache
	events  *capturePublisher
	handler *OnGemsAwardedHandler
}

func newRebuildEnv(t *testing.T) *rebuildEnv {
	t.Helper()

	env := &rebuildEnv{
		ledger: memory.NewLedger(),
		repo:   memory.NewLeaderboardRepository(),
		cache:  memory.NewLeaderboardCache(),
		events: &capturePublisher{},
	}
	env.handler = NewOnGemsAwardedHandler(
		env.ledger,
		env.repo,
		env.cache,
		env.events,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultRebuildConfig(),
	)
	return env
}

// seedAwards puts Ada ahead of Bola in physics: 3 question gems vs 1.
func (env *rebuildEnv) seedAwards(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	env.ledger.RegisterUser("ada", "Ada")
	env.ledger.RegisterUser("bola", "Bola")
	env.ledger.SetSubject("quiz-1", "physics")

	for _, q := range []string{"q1", "q2", "q3"} {
		_, _, err := env.ledger.AwardQuestion(ctx, "ada", "quiz-1", q)
		require.NoError(t, err)
	}
	_, _, err := env.ledger.AwardQuestion(ctx, "bola", "quiz-1", "q1")
	require.NoError(t, err)
}

func TestOnGemsAwardedHandler_RebuildsSubjectAndCombinedBuckets(t *testing.T) {
	env := newRebuildEnv(t)
	env.seedAwards(t)
	ctx := context.Background()

	err := env.handler.Handle(shared.NewGemsAwardedEvent("ada", 1, 3, "quiz_question", "quiz-1", "physics"))
	require.NoError(t, err)

	// Six buckets: (physics, all) x (weekly, monthly, all).
	for _, subject := range []leaderboard.Subject{"physics", leaderboard.SubjectAll} {
		for _, timeframe := range []leaderboard.Timeframe{
			leaderboard.TimeframeWeekly,
			leaderboard.TimeframeMonthly,
			leaderboard.TimeframeAll,
		} {
			top, err := env.repo.GetTop(ctx, subject, timeframe, 10)
			require.NoError(t, err)
			require.Len(t, top, 2, "bucket %s/%s", subject, timeframe)
			assert.Equal(t, "ada", top[0].UserID)
			assert.Equal(t, leaderboard.Rank(1), top[0].Rank)
			assert.Equal(t, leaderboard.Score(3), top[0].Score)
			assert.Equal(t, "bola", top[1].UserID)
			assert.Equal(t, leaderboard.Rank(2), top[1].Rank)
		}
	}

	cached, err := env.cache.GetCachedTop(ctx, "physics", leaderboard.TimeframeAll, 10)
	require.NoError(t, err)
	require.Len(t, cached, 2, "rebuild refreshes the cache snapshot")

	assert.Equal(t, 6, env.events.count(shared.EventLeaderboardUpdated))
}

func TestOnGemsAwardedHandler_ZeroAmountSkipsRebuild(t *testing.T) {
	env := newRebuildEnv(t)
	env.seedAwards(t)
	ctx := context.Background()

	// A replayed award carries Amount 0; the score did not change.
	err := env.handler.Handle(shared.NewGemsAwardedEvent("ada", 0, 3, "quiz_question", "quiz-1", "physics"))
	require.NoError(t, err)

	top, err := env.repo.GetTop(ctx, "physics", leaderboard.TimeframeAll, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.Zero(t, env.events.count(shared.EventLeaderboardUpdated))
}

func TestOnGemsAwardedHandler_RedeliveryIsIdempotent(t *testing.T) {
	env := newRebuildEnv(t)
	env.seedAwards(t)
	ctx := context.Background()

	event := shared.NewGemsAwardedEvent("ada", 1, 3, "quiz_question", "quiz-1", "physics")
	require.NoError(t, env.handler.Handle(event))
	require.NoError(t, env.handler.Handle(event))

	// The ledger, not the event, is the rebuild source: same snapshot.
	top, err := env.repo.GetTop(ctx, "physics", leaderboard.TimeframeAll, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, leaderboard.Score(3), top[0].Score)
}

func TestOnGemsAwardedHandler_UnknownSubjectStillRebuildsCombined(t *testing.T) {
	env := newRebuildEnv(t)
	env.seedAwards(t)
	ctx := context.Background()

	err := env.handler.Handle(shared.NewGemsAwardedEvent("ada", 3, 3, "unit_completion", "course-1", ""))
	require.NoError(t, err)

	top, err := env.repo.GetTop(ctx, leaderboard.SubjectAll, leaderboard.TimeframeAll, 10)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	subjects, err := env.repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []leaderboard.Subject{leaderboard.SubjectAll}, subjects)
}

func TestOnGemsAwardedHandler_RebuildAllCoversEverySubject(t *testing.T) {
	env := newRebuildEnv(t)
	env.seedAwards(t)
	ctx := context.Background()

	env.ledger.SetSubject("quiz-2", "chemistry")
	_, _, err := env.ledger.AwardQuestion(ctx, "bola", "quiz-2", "q1")
	require.NoError(t, err)

	require.NoError(t, env.handler.RebuildAll(ctx))

	subjects, err := env.repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []leaderboard.Subject{"all", "chemistry", "physics"}, subjects)

	chem, err := env.repo.GetTop(ctx, "chemistry", leaderboard.TimeframeAll, 10)
	require.NoError(t, err)
	require.Len(t, chem, 1)
	assert.Equal(t, "bola", chem[0].UserID)
}
