package progress

import (
	"context"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY STREAK
// Стрик считается по календарным дням: метки времени схлопываются до
// дат, дубликаты отбрасываются. Стрик начинается только если есть
// активность сегодня или вчера и растёт на 1 за каждый непрерывно
// предшествующий день; первый разрыв останавливает подсчёт.
// ══════════════════════════════════════════════════════════════════════════════

// Streak вычисляет длину текущего стрика на момент today.
// Даты сравниваются в часовом поясе today.
func Streak(timestamps []time.Time, today time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}

	loc := today.Location()
	seen := make(map[string]bool, len(timestamps))
	var days []time.Time
	for _, ts := range timestamps {
		day := startOfDay(ts.In(loc))
		key := day.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	todayStart := startOfDay(today)
	yesterday := todayStart.AddDate(0, 0, -1)

	// Стрик жив, только если последняя активность сегодня или вчера.
	latest := days[0]
	if !latest.Equal(todayStart) && !latest.Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		expected := days[i-1].AddDate(0, 0, -1)
		if !days[i].Equal(expected) {
			break
		}
		streak++
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// ActivityLog определяет хранилище меток активности, питающее стрики.
type ActivityLog interface {
	// Record фиксирует активность пользователя.
	Record(ctx context.Context, userID string, at time.Time, kind string) error

	// ListTimestamps возвращает метки активности пользователя за период.
	ListTimestamps(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
}
