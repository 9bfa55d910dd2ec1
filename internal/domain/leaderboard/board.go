// Package leaderboard содержит доменную модель рейтинга TestMancer.
package leaderboard

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOARD (пересчитанный бакет)
// ══════════════════════════════════════════════════════════════════════════════

// Board представляет полностью пересчитанный бакет (предмет, таймфрейм).
// Строится заново при каждом изменении счёта в бакете и замещает
// предыдущее состояние целиком.
type Board struct {
	// Subject - предмет бакета.
	Subject Subject

	// Timeframe - таймфрейм бакета.
	Timeframe Timeframe

	// RebuiltAt - время пересчёта.
	RebuiltAt time.Time

	// TotalUsers - количество участников.
	TotalUsers int

	// TotalScore - суммарный счёт всех участников.
	TotalScore int

	// Entries - записи, отсортированные по рангу.
	Entries []*Entry

	// byID - индекс для быстрого поиска по ID.
	byID map[string]*Entry
}

// NewBoard строит бакет из Ranking: сортирует, присваивает ранги
// и считает агрегаты.
func NewBoard(subject Subject, timeframe Timeframe, ranking *Ranking) *Board {
	board := &Board{
		Subject:   subject,
		Timeframe: timeframe,
		RebuiltAt: time.Now().UTC(),
		Entries:   make([]*Entry, 0),
		byID:      make(map[string]*Entry),
	}
	if ranking == nil {
		return board
	}

	ranking.Rank()
	entries := ranking.All()

	var total int
	for _, entry := range entries {
		board.byID[entry.UserID] = entry
		total += int(entry.Score)
	}

	board.TotalUsers = len(entries)
	board.TotalScore = total
	board.Entries = entries
	return board
}

// EntryFor возвращает запись пользователя в бакете.
func (b *Board) EntryFor(userID string) (*Entry, bool) {
	entry, ok := b.byID[userID]
	return entry, ok
}

// Top возвращает топ-N записей бакета.
func (b *Board) Top(n int) []*Entry {
	if n <= 0 || len(b.Entries) == 0 {
		return nil
	}
	if n > len(b.Entries) {
		n = len(b.Entries)
	}
	result := make([]*Entry, n)
	copy(result, b.Entries[:n])
	return result
}
