// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT QUIZ COMMAND
// Scores a quiz submission and awards one gem per question answered
// correctly for the first time. Resubmitting the same quiz never pays
// twice for the same question.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitQuizCommand contains a user's answers to a quiz.
type SubmitQuizCommand struct {
	// UserID is the internal ID of the submitting user.
	UserID string

	// QuizID is the quiz being submitted.
	QuizID string

	// Answers holds the chosen option index per question, in question order.
	Answers []int
}

// Validate validates the command.
func (c SubmitQuizCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("submit_quiz: user_id is required")
	}
	if c.QuizID == "" {
		return errors.New("submit_quiz: quiz_id is required")
	}
	if len(c.Answers) == 0 {
		return errors.New("submit_quiz: answers are required")
	}
	return nil
}

// SubmitQuizResult contains the scoring outcome and gem awards.
type SubmitQuizResult struct {
	// CorrectCount is the number of correctly answered questions.
	CorrectCount int

	// Total is the number of questions in the quiz.
	Total int

	// Percentage is the rounded score percentage.
	Percentage int

	// Passed reports whether the score met the passing threshold.
	Passed bool

	// GemsEarned is the total gems granted by this submission.
	// Zero on a full replay.
	GemsEarned int

	// NewBalance is the user's balance after all awards.
	NewBalance int
}

// SubmitQuizHandler handles SubmitQuizCommand.
type SubmitQuizHandler struct {
	users     user.Repository
	quizzes   content.QuizRepository
	rewards   *reward.Service
	activity  progress.ActivityLog
	policy    access.Policy
	publisher shared.EventPublisher
}

// NewSubmitQuizHandler creates a new SubmitQuizHandler.
func NewSubmitQuizHandler(
	users user.Repository,
	quizzes content.QuizRepository,
	rewards *reward.Service,
	activity progress.ActivityLog,
	policy access.Policy,
	publisher shared.EventPublisher,
) *SubmitQuizHandler {
	return &SubmitQuizHandler{
		users:     users,
		quizzes:   quizzes,
		rewards:   rewards,
		activity:  activity,
		policy:    policy,
		publisher: publisher,
	}
}

// Handle scores the submission and awards gems per newly correct question.
func (h *SubmitQuizHandler) Handle(ctx context.Context, cmd SubmitQuizCommand) (*SubmitQuizResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	quiz, err := h.quizzes.GetByID(ctx, cmd.QuizID)
	if err != nil {
		return nil, err
	}

	if !h.policy.CanAccess(u, quiz.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}

	score, err := reward.Score(quiz.CorrectIndexes(), cmd.Answers, quiz.PassingScore)
	if err != nil {
		return nil, err
	}

	result := &SubmitQuizResult{
		CorrectCount: score.CorrectCount,
		Total:        score.Total,
		Percentage:   score.Percentage,
		Passed:       score.Passed,
	}

	// Award per correct question. The ledger makes each award
	// idempotent, so a resubmission only pays for questions that were
	// wrong before and are right now.
	balance := 0
	for _, pos := range score.CorrectPositions {
		questionID := quiz.Questions[pos].ID
		award, err := h.rewards.AwardQuestion(ctx, cmd.UserID, cmd.QuizID, questionID)
		if err != nil {
			return nil, fmt.Errorf("award question %s: %w", questionID, err)
		}
		result.GemsEarned += award.Amount
		balance = award.NewBalance
	}
	if len(score.CorrectPositions) == 0 {
		if balance, err = h.rewards.Balance(ctx, cmd.UserID); err != nil {
			return nil, err
		}
	}
	result.NewBalance = balance

	// Content statistics belong to the quiz, not the user.
	quiz.RecordAttempt(score.Percentage)
	if err := h.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz stats: %w", err)
	}

	if err := h.activity.Record(ctx, cmd.UserID, timeutil.Now(), "quiz_submission"); err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewQuizSubmittedEvent(
			cmd.UserID, cmd.QuizID, score.Percentage, score.CorrectCount, score.Passed))

		if result.GemsEarned > 0 {
			_ = h.publisher.Publish(shared.NewGemsAwardedEvent(
				cmd.UserID, result.GemsEarned, result.NewBalance,
				string(reward.SourceQuizQuestion), cmd.QuizID, string(quiz.Subject)))
		}
	}

	return result, nil
}
