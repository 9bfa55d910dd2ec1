// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON GEMS AWARDED HANDLER
// Пересчитывает бакеты рейтинга после каждого начисления камней.
//
// Бакет пересчитывается целиком: агрегируем журнал начислений за окно
// таймфрейма, сортируем, присваиваем ранги и замещаем прежнее состояние
// одним снимком. Начисление по предмету затрагивает шесть бакетов:
// (предмет, all) x (weekly, monthly, all).
//
// Обработчик идемпотентен: повторная доставка события приводит к тому же
// снимку, потому что источником пересчёта служит журнал, а не событие.
// ═══════════════════════════════════════════════════════════════════════════

// OnGemsAwardedHandler пересчитывает рейтинг по событию начисления.
type OnGemsAwardedHandler struct {
	scores    reward.ScoreAggregator
	repo      leaderboard.Repository
	cache     leaderboard.Cache
	publisher shared.EventPublisher
	logger    *slog.Logger
	config    RebuildConfig
}

// RebuildConfig содержит конфигурацию пересчёта.
type RebuildConfig struct {
	// CacheTTL - срок жизни снимка бакета в Redis.
	CacheTTL time.Duration

	// RebuildTimeout - предел времени на пересчёт одного события.
	RebuildTimeout time.Duration
}

// DefaultRebuildConfig возвращает конфигурацию по умолчанию.
func DefaultRebuildConfig() RebuildConfig {
	return RebuildConfig{
		CacheTTL:       5 * time.Minute,
		RebuildTimeout: 30 * time.Second,
	}
}

// NewOnGemsAwardedHandler создаёт обработчик пересчёта рейтинга.
// cache может быть nil, если Redis отключён.
func NewOnGemsAwardedHandler(
	scores reward.ScoreAggregator,
	repo leaderboard.Repository,
	cache leaderboard.Cache,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	config RebuildConfig,
) *OnGemsAwardedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnGemsAwardedHandler{
		scores:    scores,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With("handler", "on_gems_awarded"),
		config:    config,
	}
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnGemsAwardedHandler) EventType() shared.EventType {
	return shared.EventGemsAwarded
}

// Handle обрабатывает событие начисления камней.
// Реализует интерфейс shared.EventHandler.
func (h *OnGemsAwardedHandler) Handle(event shared.Event) error {
	gemsEvent, ok := event.(shared.GemsAwardedEvent)
	if !ok {
		h.logger.Warn("received non-GemsAwardedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}
	if gemsEvent.Amount <= 0 {
		// Повторное начисление не меняет счёт, пересчёт не нужен.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.RebuildTimeout)
	defer cancel()

	h.logger.Info("rebuilding leaderboard buckets",
		"user_id", gemsEvent.UserID,
		"subject", gemsEvent.Subject,
		"amount", gemsEvent.Amount,
	)

	subjects := []leaderboard.Subject{leaderboard.SubjectAll}
	if s := leaderboard.Subject(gemsEvent.Subject); s.IsValid() && s != leaderboard.SubjectAll {
		subjects = append(subjects, s)
	}

	for _, subject := range subjects {
		if err := h.RebuildSubject(ctx, subject); err != nil {
			return fmt.Errorf("rebuild subject %s: %w", subject, err)
		}
	}

	return nil
}

// RebuildSubject пересчитывает все три таймфрейма одного предмета.
// Вызывается из Handle и из периодического обновления.
func (h *OnGemsAwardedHandler) RebuildSubject(ctx context.Context, subject leaderboard.Subject) error {
	for _, timeframe := range []leaderboard.Timeframe{
		leaderboard.TimeframeWeekly,
		leaderboard.TimeframeMonthly,
		leaderboard.TimeframeAll,
	} {
		if err := h.rebuildBucket(ctx, subject, timeframe); err != nil {
			return fmt.Errorf("bucket %s/%s: %w", subject, timeframe, err)
		}
	}
	return nil
}

// RebuildAll пересчитывает все бакеты всех предметов, по которым есть
// начисления. Используется периодическим обновлением как страховка от
// потерянных событий и для сдвига окон таймфреймов.
func (h *OnGemsAwardedHandler) RebuildAll(ctx context.Context) error {
	subjects, err := h.scores.ListSubjectsWithAwards(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}

	if err := h.RebuildSubject(ctx, leaderboard.SubjectAll); err != nil {
		return err
	}
	for _, s := range subjects {
		subject := leaderboard.Subject(s)
		if !subject.IsValid() || subject == leaderboard.SubjectAll {
			continue
		}
		if err := h.RebuildSubject(ctx, subject); err != nil {
			return err
		}
	}
	return nil
}

func (h *OnGemsAwardedHandler) rebuildBucket(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) error {
	from, to := timeframeWindow(timeframe)

	aggregateSubject := string(subject)
	if subject == leaderboard.SubjectAll {
		aggregateSubject = ""
	}

	scores, err := h.scores.SumAwardsBySubject(ctx, aggregateSubject, from, to)
	if err != nil {
		return fmt.Errorf("aggregate ledger: %w", err)
	}

	ranking := leaderboard.NewRanking()
	for _, s := range scores {
		entry, err := leaderboard.NewEntry(s.UserID, s.DisplayName, subject, timeframe, leaderboard.Score(s.Score), s.LastActivityAt)
		if err != nil {
			h.logger.Warn("skipping invalid ledger row",
				"user_id", s.UserID,
				"error", err,
			)
			continue
		}
		if err := ranking.Add(entry); err != nil {
			return fmt.Errorf("add entry: %w", err)
		}
	}

	board := leaderboard.NewBoard(subject, timeframe, ranking)

	if err := h.repo.ReplaceBucket(ctx, board); err != nil {
		return fmt.Errorf("replace bucket: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.SetBucket(ctx, board, h.config.CacheTTL); err != nil {
			// Кеш не источник истины: чтение упадёт на PostgreSQL.
			h.logger.Warn("failed to refresh bucket cache",
				"subject", subject,
				"timeframe", timeframe,
				"error", err,
			)
		}
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewLeaderboardUpdatedEvent(
			string(subject), string(timeframe), board.TotalUsers,
		))
	}

	h.logger.Debug("bucket rebuilt",
		"subject", subject,
		"timeframe", timeframe,
		"entries", board.TotalUsers,
	)
	return nil
}

// timeframeWindow возвращает окно агрегации таймфрейма в лагосском
// времени. Для all-time нижняя граница - нулевое время.
func timeframeWindow(timeframe leaderboard.Timeframe) (time.Time, time.Time) {
	now := timeutil.Now()
	switch timeframe {
	case leaderboard.TimeframeWeekly:
		return timeutil.StartOfWeek(now), now
	case leaderboard.TimeframeMonthly:
		return timeutil.StartOfMonth(now), now
	default:
		return time.Time{}, now
	}
}
