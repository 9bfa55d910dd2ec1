// Package progress содержит агрегатор прогресса: процент прохождения
// курса, сводки по предметам и стрики активности. Все функции чистые:
// вход - состояние ledger и структура курса, выход - агрегаты.
package progress

// ══════════════════════════════════════════════════════════════════════════════
// COURSE PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// CourseProgress - агрегат прохождения курса.
type CourseProgress struct {
	// CompletedUnits - количество завершённых видимых юнитов.
	CompletedUnits int

	// TotalUnits - количество видимых юнитов.
	TotalUnits int

	// Percentage - round(completed/total*100); 0 при пустом курсе.
	Percentage int
}

// IsComplete возвращает true, если все видимые юниты завершены.
func (p CourseProgress) IsComplete() bool {
	return p.TotalUnits > 0 && p.CompletedUnits == p.TotalUnits
}

// ComputeCourseProgress считает прогресс по видимым юнитам.
// visibleUnitIDs - юниты, видимые роли запрашивающего: для студентов
// только опубликованные, для управляющих ролей все. Завершённые юниты
// вне видимого списка не учитываются.
func ComputeCourseProgress(completedUnitIDs, visibleUnitIDs []string) CourseProgress {
	completed := make(map[string]bool, len(completedUnitIDs))
	for _, id := range completedUnitIDs {
		completed[id] = true
	}

	result := CourseProgress{TotalUnits: len(visibleUnitIDs)}
	for _, id := range visibleUnitIDs {
		if completed[id] {
			result.CompletedUnits++
		}
	}

	if result.TotalUnits > 0 {
		result.Percentage = roundDiv(result.CompletedUnits*100, result.TotalUnits)
	}
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// TopicEntry - один элемент прогресса, отнесённый к теме.
type TopicEntry struct {
	// Topic - тема (предмет или раздел).
	Topic string

	// Completed - завершён ли элемент.
	Completed bool
}

// TopicProgress - сводка по одной теме.
type TopicProgress struct {
	// Topic - тема.
	Topic string

	// Completed - количество завершённых элементов.
	Completed int

	// Total - общее количество элементов темы.
	Total int

	// Percentage - round(completed/total*100).
	Percentage int
}

// SummarizeByTopic агрегирует элементы прогресса по темам.
// Порядок тем соответствует первому появлению во входе.
func SummarizeByTopic(entries []TopicEntry) []TopicProgress {
	index := make(map[string]int)
	var summary []TopicProgress

	for _, entry := range entries {
		i, ok := index[entry.Topic]
		if !ok {
			i = len(summary)
			index[entry.Topic] = i
			summary = append(summary, TopicProgress{Topic: entry.Topic})
		}
		summary[i].Total++
		if entry.Completed {
			summary[i].Completed++
		}
	}

	for i := range summary {
		if summary[i].Total > 0 {
			summary[i].Percentage = roundDiv(summary[i].Completed*100, summary[i].Total)
		}
	}
	return summary
}

// roundDiv делит с округлением до ближайшего целого.
func roundDiv(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return (numerator + denominator/2) / denominator
}
