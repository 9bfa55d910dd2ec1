package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		correct      []int
		answers      []int
		passingScore int
		wantCorrect  int
		wantPct      int
		wantPassed   bool
	}{
		{
			name:         "all correct",
			correct:      []int{1, 1, 1},
			answers:      []int{1, 1, 1},
			passingScore: 50,
			wantCorrect:  3,
			wantPct:      100,
			wantPassed:   true,
		},
		{
			name:         "none correct",
			correct:      []int{0, 1, 2},
			answers:      []int{3, 3, 3},
			passingScore: 50,
			wantCorrect:  0,
			wantPct:      0,
			wantPassed:   false,
		},
		{
			name:         "two of three rounds to 67",
			correct:      []int{0, 1, 2},
			answers:      []int{0, 1, 3},
			passingScore: 70,
			wantCorrect:  2,
			wantPct:      67,
			wantPassed:   false,
		},
		{
			name:         "one of three rounds to 33",
			correct:      []int{0, 1, 2},
			answers:      []int{0, 3, 3},
			passingScore: 33,
			wantCorrect:  1,
			wantPct:      33,
			wantPassed:   true,
		},
		{
			name:         "exactly at passing score",
			correct:      []int{0, 1},
			answers:      []int{0, 3},
			passingScore: 50,
			wantCorrect:  1,
			wantPct:      50,
			wantPassed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Score(tt.correct, tt.answers, tt.passingScore)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, result.CorrectCount)
			assert.Equal(t, len(tt.correct), result.Total)
			assert.Equal(t, tt.wantPct, result.Percentage)
			assert.Equal(t, tt.wantPassed, result.Passed)
		})
	}
}

func TestScore_CorrectPositions(t *testing.T) {
	result, err := Score([]int{0, 1, 2, 3}, []int{0, 9, 2, 9}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, result.CorrectPositions)
}

func TestScore_AnswerCountMismatch(t *testing.T) {
	_, err := Score([]int{0, 1, 2}, []int{0, 1}, 50)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestScore_EmptyQuiz(t *testing.T) {
	_, err := Score(nil, nil, 50)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestRunningAverage(t *testing.T) {
	tests := []struct {
		name     string
		old      int
		n        int
		newScore int
		want     int
	}{
		{"first attempt", 0, 1, 80, 80},
		{"second attempt averages", 80, 2, 60, 70},
		{"third attempt rounds", 70, 3, 100, 80},
		{"rounds half up", 50, 2, 51, 51},
		{"zero attempts guards", 0, 0, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RunningAverage(tt.old, tt.n, tt.newScore))
		})
	}
}
