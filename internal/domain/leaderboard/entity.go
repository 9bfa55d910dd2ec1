// Package leaderboard содержит доменную модель рейтинга TestMancer.
// Записи группируются в бакеты (предмет, таймфрейм); каждый бакет
// пересчитывается целиком при любом изменении счёта. Это осознанная
// цена O(n log n) на запись: при текущем масштабе она приемлема,
// инкрементальный пересчёт не реализуется.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию пользователя в рейтинге.
// Rank начинается с 1 (первое место).
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если пользователь в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// Score представляет суммарный счёт пользователя в бакете
// (камни, начисленные ledger за таймфрейм бакета).
type Score int

// IsValid проверяет, что счёт неотрицательный.
func (s Score) IsValid() bool {
	return s >= 0
}

// Timeframe определяет окно агрегации бакета.
type Timeframe string

const (
	// TimeframeWeekly - счёт за текущую неделю.
	TimeframeWeekly Timeframe = "weekly"
	// TimeframeMonthly - счёт за текущий месяц.
	TimeframeMonthly Timeframe = "monthly"
	// TimeframeAll - счёт за всё время.
	TimeframeAll Timeframe = "all"
)

// IsValid проверяет корректность таймфрейма.
func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeWeekly, TimeframeMonthly, TimeframeAll:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление таймфрейма.
func (t Timeframe) String() string {
	return string(t)
}

// Subject представляет предмет бакета (например, "mathematics").
type Subject string

// SubjectAll представляет сводный рейтинг по всем предметам.
const SubjectAll Subject = "all"

// IsValid проверяет корректность предмета.
func (s Subject) IsValid() bool {
	v := string(s)
	return len(v) >= 2 && len(v) <= 50
}

// String возвращает строковое представление предмета.
func (s Subject) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry представляет одну запись в бакете рейтинга.
type Entry struct {
	// Rank - текущая позиция в бакете.
	Rank Rank

	// UserID - внутренний идентификатор пользователя.
	UserID string

	// DisplayName - отображаемое имя.
	DisplayName string

	// Subject - предмет бакета.
	Subject Subject

	// Timeframe - таймфрейм бакета.
	Timeframe Timeframe

	// Score - суммарный счёт за таймфрейм.
	Score Score

	// LastActivityAt - время последней активности.
	// При равном счёте выше стоит тот, кто был активен позже.
	LastActivityAt time.Time

	// UpdatedAt - время последнего пересчёта записи.
	UpdatedAt time.Time
}

// NewEntry создаёт новую запись рейтинга с валидацией.
func NewEntry(userID, displayName string, subject Subject, timeframe Timeframe, score Score, lastActivityAt time.Time) (*Entry, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if !subject.IsValid() {
		return nil, ErrInvalidSubject
	}
	if !timeframe.IsValid() {
		return nil, ErrInvalidTimeframe
	}
	if !score.IsValid() {
		return nil, ErrInvalidScore
	}

	return &Entry{
		UserID:         userID,
		DisplayName:    displayName,
		Subject:        subject,
		Timeframe:      timeframe,
		Score:          score,
		LastActivityAt: lastActivityAt,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

// Clone создаёт копию записи.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String возвращает строковое представление для логирования.
func (e *Entry) String() string {
	return fmt.Sprintf(
		"Entry{Rank: %d, User: %s, Score: %d, Bucket: %s/%s}",
		e.Rank, e.UserID, e.Score, e.Subject, e.Timeframe,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Ranking представляет полный отсортированный список записей бакета.
type Ranking struct {
	entries []*Entry
	byID    map[string]*Entry
}

// NewRanking создаёт пустой Ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byID:    make(map[string]*Entry),
	}
}

// Add добавляет запись в рейтинг (без автоматической сортировки).
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if _, exists := r.byID[entry.UserID]; exists {
		return ErrDuplicateUser
	}

	r.entries = append(r.entries, entry)
	r.byID[entry.UserID] = entry
	return nil
}

// Rank сортирует записи по счёту (по убыванию), при равенстве - по
// времени последней активности (по убыванию), и присваивает ранги
// 1..N в порядке сортировки.
func (r *Ranking) Rank() {
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].Score != r.entries[j].Score {
			return r.entries[i].Score > r.entries[j].Score
		}
		return r.entries[i].LastActivityAt.After(r.entries[j].LastActivityAt)
	})

	now := time.Now().UTC()
	for i, entry := range r.entries {
		entry.Rank = Rank(i + 1)
		entry.UpdatedAt = now
	}
}

// GetByID возвращает запись по ID пользователя.
func (r *Ranking) GetByID(userID string) *Entry {
	return r.byID[userID]
}

// Top возвращает топ-N записей.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// All возвращает все записи.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Count возвращает общее количество записей.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUserID - невалидный ID пользователя.
	ErrInvalidUserID = errors.New("invalid user id: cannot be empty")

	// ErrInvalidScore - невалидный счёт.
	ErrInvalidScore = errors.New("invalid score: must be non-negative")

	// ErrInvalidSubject - невалидный предмет.
	ErrInvalidSubject = errors.New("invalid subject: must be 2-50 chars")

	// ErrInvalidTimeframe - невалидный таймфрейм.
	ErrInvalidTimeframe = errors.New("invalid timeframe: must be weekly, monthly or all")

	// ErrNilEntry - попытка добавить nil запись.
	ErrNilEntry = errors.New("cannot add nil entry")

	// ErrDuplicateUser - пользователь уже есть в рейтинге.
	ErrDuplicateUser = errors.New("user already exists in ranking")

	// ErrBucketNotFound - бакет не найден.
	ErrBucketNotFound = errors.New("leaderboard bucket not found")
)
