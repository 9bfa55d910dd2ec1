package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

type submitQuizEnv struct {
	users   *memory.UserRepository
	quizzes *memory.QuizRepository
	ledger  *memory.Ledger
	events  *capturePublisher
	handler *SubmitQuizHandler
	student *user.User
}

func newSubmitQuizEnv(t *testing.T, audience access.Audience) *submitQuizEnv {
	t.Helper()
	ctx := context.Background()

	env := &submitQuizEnv{
		users:   memory.NewUserRepository(),
		quizzes: memory.NewQuizRepository(),
		ledger:  memory.NewLedger(),
		events:  &capturePublisher{},
	}

	env.student = newTestStudent(t, "stu-1")
	require.NoError(t, env.users.Create(ctx, env.student))
	env.ledger.RegisterUser(env.student.ID, env.student.DisplayName)

	course := newTestCourse(t, "course-1", audience)
	quiz := newTestQuiz(t, "quiz-1", course)
	require.NoError(t, env.quizzes.Create(ctx, quiz))
	env.ledger.SetSubject(quiz.ID, string(quiz.Subject))

	env.handler = NewSubmitQuizHandler(
		env.users,
		env.quizzes,
		reward.NewService(env.ledger),
		memory.NewActivityLog(),
		access.Policy{},
		env.events,
	)
	return env
}

func TestSubmitQuizHandler_FirstSubmissionPaysPerCorrectQuestion(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()

	result, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID,
		QuizID: "quiz-1",
		Answers: []int{0, 1, 3}, // last answer is wrong
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 67, result.Percentage)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.GemsEarned)
	assert.Equal(t, 2, result.NewBalance)
}

func TestSubmitQuizHandler_FullReplayPaysNothing(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()
	cmd := SubmitQuizCommand{UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 1, 2}}

	first, err := env.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, first.GemsEarned)
	assert.Equal(t, 3, first.NewBalance)

	replay, err := env.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, replay.CorrectCount, "scoring is repeatable")
	assert.Zero(t, replay.GemsEarned, "a replay must never pay twice")
	assert.Equal(t, 3, replay.NewBalance)
}

func TestSubmitQuizHandler_ResubmissionPaysOnlyNewlyCorrect(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()

	first, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 3, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.GemsEarned)

	// The fixed question pays, the already-paid one does not.
	second, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 1, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.GemsEarned)
	assert.Equal(t, 2, second.NewBalance)
}

func TestSubmitQuizHandler_AllWrongStillReportsBalance(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()

	result, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{3, 3, 3},
	})
	require.NoError(t, err)

	assert.Zero(t, result.CorrectCount)
	assert.False(t, result.Passed)
	assert.Zero(t, result.GemsEarned)
	assert.Zero(t, result.NewBalance)
}

func TestSubmitQuizHandler_UpdatesQuizStatistics(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()

	_, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 1, 2},
	})
	require.NoError(t, err)

	quiz, err := env.quizzes.GetByID(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 1, quiz.AttemptCount)
	assert.Equal(t, 100, quiz.AverageScore)
}

func TestSubmitQuizHandler_IncompleteProfileBlockedFromRestrictedQuiz(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{Universities: []string{"unilag"}})
	ctx := context.Background()

	blocked := newTestStudent(t, "stu-2")
	blocked.Profile = user.Profile{University: "unilag"} // three fields missing
	require.NoError(t, env.users.Create(ctx, blocked))
	env.ledger.RegisterUser(blocked.ID, blocked.DisplayName)

	_, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: blocked.ID, QuizID: "quiz-1", Answers: []int{0, 1, 2},
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, env.events.byType(shared.EventQuizSubmitted))
}

func TestSubmitQuizHandler_AudienceMismatchForbidden(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{Universities: []string{"ui"}})
	ctx := context.Background()

	// Complete profile, but a different university.
	_, err := env.handler.Handle(ctx, SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 1, 2},
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestSubmitQuizHandler_PublishesGemsAwardedOnlyWhenEarned(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})
	ctx := context.Background()
	cmd := SubmitQuizCommand{UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0, 1, 2}}

	_, err := env.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	awarded := env.events.byType(shared.EventGemsAwarded)
	require.Len(t, awarded, 1)
	gems, ok := awarded[0].(shared.GemsAwardedEvent)
	require.True(t, ok)
	assert.Equal(t, env.student.ID, gems.UserID)
	assert.Equal(t, 3, gems.Amount)
	assert.Equal(t, "physics", gems.Subject)
	assert.Equal(t, string(reward.SourceQuizQuestion), gems.Source)

	_, err = env.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Len(t, env.events.byType(shared.EventGemsAwarded), 1, "replay earns nothing, so no award event")
	assert.Len(t, env.events.byType(shared.EventQuizSubmitted), 2)
}

func TestSubmitQuizHandler_AnswerCountMismatch(t *testing.T) {
	env := newSubmitQuizEnv(t, access.Audience{})

	_, err := env.handler.Handle(context.Background(), SubmitQuizCommand{
		UserID: env.student.ID, QuizID: "quiz-1", Answers: []int{0},
	})
	assert.ErrorIs(t, err, shared.ErrAnswerCountMismatch)
}

func TestSubmitQuizCommand_Validate(t *testing.T) {
	assert.Error(t, SubmitQuizCommand{QuizID: "q", Answers: []int{0}}.Validate())
	assert.Error(t, SubmitQuizCommand{UserID: "u", Answers: []int{0}}.Validate())
	assert.Error(t, SubmitQuizCommand{UserID: "u", QuizID: "q"}.Validate())
	assert.NoError(t, SubmitQuizCommand{UserID: "u", QuizID: "q", Answers: []int{0}}.Validate())
}
