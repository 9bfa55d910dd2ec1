// Package leaderboard содержит доменную модель рейтинга TestMancer.
package leaderboard

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY INTERFACE
// Реализация находится в infrastructure слое (PostgreSQL - источник
// истины, Redis - кеш чтения).
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт для работы с бакетами рейтинга.
type Repository interface {
	// ReplaceBucket атомарно замещает все записи бакета результатом
	// полного пересчёта.
	ReplaceBucket(ctx context.Context, board *Board) error

	// GetTop возвращает топ-N записей бакета.
	GetTop(ctx context.Context, subject Subject, timeframe Timeframe, limit int) ([]*Entry, error)

	// GetUserRank возвращает запись пользователя в бакете.
	// Возвращает ErrBucketNotFound, если пользователя в бакете нет.
	GetUserRank(ctx context.Context, userID string, subject Subject, timeframe Timeframe) (*Entry, error)

	// GetTotalCount возвращает количество участников бакета.
	GetTotalCount(ctx context.Context, subject Subject, timeframe Timeframe) (int, error)

	// ListSubjects возвращает предметы, по которым есть бакеты.
	ListSubjects(ctx context.Context) ([]Subject, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE INTERFACE
// Отделён от основного репозитория: Redis хранит ZSET на бакет
// для быстрых чтений, PostgreSQL остаётся источником истины.
// ══════════════════════════════════════════════════════════════════════════════

// Cache определяет контракт для кеширования бакетов.
type Cache interface {
	// GetCachedTop возвращает закешированный топ-N бакета.
	// Возвращает nil без ошибки, если кеш пуст.
	GetCachedTop(ctx context.Context, subject Subject, timeframe Timeframe, limit int) ([]*Entry, error)

	// SetBucket замещает кеш бакета записями пересчитанного борда.
	SetBucket(ctx context.Context, board *Board, ttl time.Duration) error

	// GetCachedRank возвращает закешированную запись пользователя.
	// Возвращает nil без ошибки, если записи нет.
	GetCachedRank(ctx context.Context, userID string, subject Subject, timeframe Timeframe) (*Entry, error)

	// Invalidate сбрасывает кеш бакета.
	Invalidate(ctx context.Context, subject Subject, timeframe Timeframe) error

	// InvalidateAll сбрасывает весь кеш рейтинга.
	InvalidateAll(ctx context.Context) error
}
