package reward

import (
	"context"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// Обёртка над Ledger, прозрачно повторяющая проигранные гонки вставки.
// ConflictRace никогда не доходит до вызывающего кода: повтор с теми же
// аргументами либо увидит чужую вставку (awarded=false), либо выиграет
// свою (awarded=true).
// ══════════════════════════════════════════════════════════════════════════════

// Award - результат одной операции начисления.
type Award struct {
	// Awarded - произошло ли начисление в этом вызове.
	Awarded bool

	// Amount - начисленная сумма (0 при повторе).
	Amount int

	// NewBalance - баланс после операции.
	NewBalance int
}

// Service - сервис начислений поверх журнала.
type Service struct {
	ledger Ledger
}

// NewService создаёт сервис с повтором гонок вставки.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// AwardQuestion начисляет камень за первый правильный ответ на вопрос.
func (s *Service) AwardQuestion(ctx context.Context, userID, quizID, questionID string) (Award, error) {
	return s.award(ctx, GemsPerQuestion, func(ctx context.Context) (bool, int, error) {
		return s.ledger.AwardQuestion(ctx, userID, quizID, questionID)
	})
}

// AwardUnit начисляет фиксированные камни за первое завершение юнита.
func (s *Service) AwardUnit(ctx context.Context, userID, courseID, unitID string) (Award, error) {
	return s.award(ctx, GemsPerUnit, func(ctx context.Context) (bool, int, error) {
		return s.ledger.AwardUnit(ctx, userID, courseID, unitID)
	})
}

// MarkPageComplete фиксирует страницу; начислений нет.
func (s *Service) MarkPageComplete(ctx context.Context, userID, courseID, pageID string) error {
	return s.ledger.MarkPageComplete(ctx, userID, courseID, pageID)
}

// Balance возвращает текущий баланс пользователя.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// Completion возвращает состояние прохождения курса.
func (s *Service) Completion(ctx context.Context, userID, courseID string) (CourseCompletion, error) {
	return s.ledger.GetCourseCompletion(ctx, userID, courseID)
}

func (s *Service) award(ctx context.Context, amount int, op func(ctx context.Context) (bool, int, error)) (Award, error) {
	type outcome struct {
		awarded bool
		balance int
	}

	result, err := retry.DoWithData(ctx, func(ctx context.Context) (outcome, error) {
		awarded, balance, err := op(ctx)
		if err != nil {
			return outcome{}, err
		}
		return outcome{awarded: awarded, balance: balance}, nil
	},
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(10*time.Millisecond),
		retry.WithMaxDelay(200*time.Millisecond),
		retry.WithRetryIf(shared.IsConflictRace),
	)
	if err != nil {
		return Award{}, err
	}

	award := Award{Awarded: result.awarded, NewBalance: result.balance}
	if result.awarded {
		award.Amount = amount
	}
	return award, nil
}
