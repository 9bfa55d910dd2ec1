package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

func TestLedger_ConcurrentAwardPaysOnce(t *testing.T) {
	ledger := NewLedger()
	ledger.RegisterUser("ada", "Ada")
	ctx := context.Background()

	const attempts = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	paid := 0

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			awarded, _, err := ledger.AwardQuestion(ctx, "ada", "quiz-1", "q1")
			assert.NoError(t, err)
			if awarded {
				mu.Lock()
				paid++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, paid, "concurrent retries of the same award pay exactly once")

	balance, err := ledger.GetBalance(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, reward.GemsPerQuestion, balance)
}

func TestLedger_ConcurrentAwardsAcrossUsers(t *testing.T) {
	ledger := NewLedger()
	ledger.RegisterUser("ada", "Ada")
	ledger.RegisterUser("bola", "Bola")
	ctx := context.Background()

	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	var wg sync.WaitGroup
	for _, userID := range []string{"ada", "bola"} {
		for _, q := range questions {
			wg.Add(1)
			go func(userID, q string) {
				defer wg.Done()
				_, _, err := ledger.AwardQuestion(ctx, userID, "quiz-1", q)
				assert.NoError(t, err)
			}(userID, q)
		}
	}
	wg.Wait()

	for _, userID := range []string{"ada", "bola"} {
		balance, err := ledger.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, len(questions)*reward.GemsPerQuestion, balance, userID)
	}
}

func TestLedger_AwardUnknownUser(t *testing.T) {
	ledger := NewLedger()

	_, _, err := ledger.AwardQuestion(context.Background(), "ghost", "quiz-1", "q1")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}
