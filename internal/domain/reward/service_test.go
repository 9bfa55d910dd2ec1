package reward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

// fakeLedger implements Ledger in memory with scriptable race failures.
type fakeLedger struct {
	balance       int
	questions     map[string]bool
	units         map[string]bool
	pages         map[string]bool
	racesToInject int
	calls         int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		questions: make(map[string]bool),
		units:     make(map[string]bool),
		pages:     make(map[string]bool),
	}
}

func (f *fakeLedger) AwardQuestion(_ context.Context, userID, quizID, questionID string) (bool, int, error) {
	f.calls++
	if f.racesToInject > 0 {
		f.racesToInject--
		return false, 0, shared.ErrConflictRace
	}
	key := userID + "/" + quizID + "/" + questionID
	if f.questions[key] {
		return false, f.balance, nil
	}
	f.questions[key] = true
	f.balance += GemsPerQuestion
	return true, f.balance, nil
}

func (f *fakeLedger) AwardUnit(_ context.Context, userID, courseID, unitID string) (bool, int, error) {
	f.calls++
	if f.racesToInject > 0 {
		f.racesToInject--
		return false, 0, shared.ErrConflictRace
	}
	key := userID + "/" + courseID + "/" + unitID
	if f.units[key] {
		return false, f.balance, nil
	}
	f.units[key] = true
	f.balance += GemsPerUnit
	return true, f.balance, nil
}

func (f *fakeLedger) MarkPageComplete(_ context.Context, userID, courseID, pageID string) error {
	f.pages[userID+"/"+courseID+"/"+pageID] = true
	return nil
}

func (f *fakeLedger) GetBalance(context.Context, string) (int, error) {
	return f.balance, nil
}

func (f *fakeLedger) GetQuizAwards(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func (f *fakeLedger) GetCourseCompletion(context.Context, string, string) (CourseCompletion, error) {
	return CourseCompletion{}, nil
}

func (f *fakeLedger) ListAwards(context.Context, string, time.Time, time.Time) ([]AwardRecord, error) {
	return nil, nil
}

func TestService_AwardQuestion_ExactlyOnce(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	first, err := svc.AwardQuestion(ctx, "u1", "quiz1", "q1")
	require.NoError(t, err)
	assert.True(t, first.Awarded)
	assert.Equal(t, GemsPerQuestion, first.Amount)
	assert.Equal(t, 1, first.NewBalance)

	// Re-submitting the same question must never pay again.
	for i := 0; i < 5; i++ {
		repeat, err := svc.AwardQuestion(ctx, "u1", "quiz1", "q1")
		require.NoError(t, err)
		assert.False(t, repeat.Awarded)
		assert.Zero(t, repeat.Amount)
		assert.Equal(t, 1, repeat.NewBalance)
	}
}

func TestService_AwardUnit_FlatAmount(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	first, err := svc.AwardUnit(ctx, "u1", "c1", "unit1")
	require.NoError(t, err)
	assert.True(t, first.Awarded)
	assert.Equal(t, GemsPerUnit, first.Amount)
	assert.Equal(t, 3, first.NewBalance)

	second, err := svc.AwardUnit(ctx, "u1", "c1", "unit2")
	require.NoError(t, err)
	assert.True(t, second.Awarded)
	assert.Equal(t, 6, second.NewBalance)

	repeat, err := svc.AwardUnit(ctx, "u1", "c1", "unit1")
	require.NoError(t, err)
	assert.False(t, repeat.Awarded)
	assert.Zero(t, repeat.Amount)
	assert.Equal(t, 6, repeat.NewBalance)
}

func TestService_ConflictRaceRetriedTransparently(t *testing.T) {
	ledger := newFakeLedger()
	ledger.racesToInject = 2 // first two attempts lose the race
	svc := NewService(ledger)

	award, err := svc.AwardQuestion(context.Background(), "u1", "quiz1", "q1")
	require.NoError(t, err, "a lost race must be retried, not surfaced")
	assert.True(t, award.Awarded)
	assert.Equal(t, 3, ledger.calls)
}

func TestService_ConflictRaceExhaustionSurfacesLastError(t *testing.T) {
	ledger := newFakeLedger()
	ledger.racesToInject = 10 // more races than retry attempts
	svc := NewService(ledger)

	_, err := svc.AwardQuestion(context.Background(), "u1", "quiz1", "q1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflictRace))
}

func TestService_MarkPageComplete_NoAward(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	require.NoError(t, svc.MarkPageComplete(ctx, "u1", "c1", "p1"))
	require.NoError(t, svc.MarkPageComplete(ctx, "u1", "c1", "p1"))

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, balance, "pages are progress only, never a reward event")
}
