// Package reward содержит Reward Ledger: начисление дефицитной валюты
// ("камней") ровно один раз на каждое награждаемое событие, при любых
// повторных и конкурентных запросах клиента. Баланс пользователя
// изменяется только здесь.
package reward

import (
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// GemsPerQuestion - камней за первый правильный ответ на вопрос квиза.
	GemsPerQuestion = 1

	// GemsPerUnit - фиксированное начисление за завершение юнита,
	// независимо от количества страниц в нём.
	GemsPerUnit = 3

	// GemsPerPage - страницы отслеживают прогресс и камней не приносят.
	GemsPerPage = 0
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING (pure functions)
// ══════════════════════════════════════════════════════════════════════════════

// ScoreResult - результат проверки ответов на квиз.
type ScoreResult struct {
	// CorrectCount - количество правильных ответов.
	CorrectCount int

	// Total - общее количество вопросов.
	Total int

	// Percentage - round(correct/total*100).
	Percentage int

	// Passed - true, если Percentage >= проходного балла.
	Passed bool

	// CorrectPositions - позиции вопросов, отвеченных правильно
	// (для поштучного начисления камней).
	CorrectPositions []int
}

// Score сверяет ответы с правильными индексами. Детерминированная чистая
// функция, ledger не трогает. Длина ответов должна совпадать с длиной
// вопросов, иначе InvalidInput.
func Score(correct []int, answers []int, passingScore int) (ScoreResult, error) {
	if len(correct) == 0 {
		return ScoreResult{}, shared.ErrEmptyQuiz
	}
	if len(answers) != len(correct) {
		return ScoreResult{}, shared.ErrAnswerCountMismatch
	}

	result := ScoreResult{Total: len(correct)}
	for i, want := range correct {
		if answers[i] == want {
			result.CorrectCount++
			result.CorrectPositions = append(result.CorrectPositions, i)
		}
	}

	result.Percentage = roundDiv(result.CorrectCount*100, result.Total)
	result.Passed = result.Percentage >= passingScore
	return result, nil
}

// RunningAverage пересчитывает скользящее среднее по формуле
// round(((old*(n-1)) + new) / n), где n - счётчик попыток после инкремента.
// Используется для статистики элемента контента, не пользователя.
func RunningAverage(oldAverage, n, newScore int) int {
	if n <= 0 {
		return 0
	}
	return roundDiv(oldAverage*(n-1)+newScore, n)
}

// roundDiv делит с округлением до ближайшего целого.
func roundDiv(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return (numerator + denominator/2) / denominator
}
