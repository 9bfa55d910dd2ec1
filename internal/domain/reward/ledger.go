package reward

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER CONTRACT
// Append-only журнал начислений. Реализации обязаны делать проверку
// членства и инкремент баланса одним атомарным шагом: postgres - через
// уникальное ограничение в транзакции, память - через мьютекс
// пользователя. Раздельные "прочитал - проверил - записал" шаги под
// конкурентными повторами дают двойное начисление.
// ══════════════════════════════════════════════════════════════════════════════

// SourceKind различает виды награждаемых событий в журнале.
type SourceKind string

const (
	// SourceQuizQuestion - правильный ответ на вопрос квиза.
	SourceQuizQuestion SourceKind = "quiz_question"

	// SourceUnitCompletion - завершение юнита курса.
	SourceUnitCompletion SourceKind = "unit_completion"
)

// Ledger определяет атомарные операции журнала начислений.
// Все операции безопасны при произвольном количестве повторов
// с теми же аргументами.
type Ledger interface {
	// AwardQuestion начисляет GemsPerQuestion, если пара (quizID,
	// questionID) ещё не награждалась у пользователя. Возвращает
	// awarded=false без изменения баланса при повторе.
	// Возвращает shared.ErrConflictRace при проигранной гонке вставки.
	AwardQuestion(ctx context.Context, userID, quizID, questionID string) (awarded bool, newBalance int, err error)

	// AwardUnit начисляет фиксированные GemsPerUnit за первый проход
	// юнита. Возвращает awarded=false без изменения баланса при повторе.
	// Возвращает shared.ErrConflictRace при проигранной гонке вставки.
	AwardUnit(ctx context.Context, userID, courseID, unitID string) (awarded bool, newBalance int, err error)

	// MarkPageComplete фиксирует завершение страницы. Камней не
	// начисляет; идемпотентна по построению.
	MarkPageComplete(ctx context.Context, userID, courseID, pageID string) error

	// GetBalance возвращает текущий баланс пользователя.
	GetBalance(ctx context.Context, userID string) (int, error)

	// GetQuizAwards возвращает ID вопросов квиза, уже награждённых
	// у пользователя.
	GetQuizAwards(ctx context.Context, userID, quizID string) ([]string, error)

	// GetCourseCompletion возвращает завершённые юниты и страницы курса.
	GetCourseCompletion(ctx context.Context, userID, courseID string) (CourseCompletion, error)

	// ListAwards возвращает начисления пользователя за период
	// (для лидербордов по таймфреймам).
	ListAwards(ctx context.Context, userID string, from, to time.Time) ([]AwardRecord, error)
}

// CourseCompletion - состояние прохождения курса пользователем.
type CourseCompletion struct {
	// CompletedUnitIDs - завершённые юниты (каждый встречается один раз).
	CompletedUnitIDs []string

	// CompletedPageIDs - завершённые страницы (каждая встречается один раз).
	CompletedPageIDs []string
}

// HasUnit проверяет, завершён ли юнит.
func (c CourseCompletion) HasUnit(unitID string) bool {
	for _, id := range c.CompletedUnitIDs {
		if id == unitID {
			return true
		}
	}
	return false
}

// HasPage проверяет, завершена ли страница.
func (c CourseCompletion) HasPage(pageID string) bool {
	for _, id := range c.CompletedPageIDs {
		if id == pageID {
			return true
		}
	}
	return false
}

// AwardRecord - одна запись журнала начислений.
type AwardRecord struct {
	// UserID - получатель.
	UserID string

	// Source - вид события.
	Source SourceKind

	// SourceID - ID квиза или курса.
	SourceID string

	// ItemID - ID вопроса или юнита.
	ItemID string

	// Amount - начисленная сумма.
	Amount int

	// Subject - предмет (для лидербордов).
	Subject string

	// AwardedAt - время начисления.
	AwardedAt time.Time
}
