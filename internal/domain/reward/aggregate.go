package reward

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE AGGREGATION
// Контракт чтения для пересчёта лидербордов: суммы начислений по
// предмету за окно таймфрейма. Отделён от Ledger, потому что
// пересчёту не нужны операции записи.
// ══════════════════════════════════════════════════════════════════════════════

// SubjectScore - агрегированный счёт одного пользователя по предмету
// за окно времени.
type SubjectScore struct {
	// UserID - пользователь.
	UserID string

	// DisplayName - отображаемое имя на момент агрегации.
	DisplayName string

	// Score - сумма начисленных камней в окне.
	Score int

	// LastActivityAt - последняя активность пользователя.
	LastActivityAt time.Time
}

// ScoreAggregator определяет операции чтения журнала для пересчёта
// бакетов рейтинга.
type ScoreAggregator interface {
	// SumAwardsBySubject возвращает суммы начислений по пользователям
	// для предмета и окна. Пустой предмет или "all" агрегирует по
	// всем предметам.
	SumAwardsBySubject(ctx context.Context, subject string, from, to time.Time) ([]SubjectScore, error)

	// ListSubjectsWithAwards возвращает предметы, по которым есть
	// хотя бы одно начисление.
	ListSubjectsWithAwards(ctx context.Context) ([]string, error)
}
