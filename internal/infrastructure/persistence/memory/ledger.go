// Package memory provides in-memory implementations of the persistence
// contracts. They back the application-layer tests and mirror the
// PostgreSQL semantics, including the exactly-once guarantee of the
// gem ledger.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

type awardKey struct {
	userID   string
	kind     reward.SourceKind
	sourceID string
	itemID   string
}

type pageKey struct {
	userID   string
	courseID string
	pageID   string
}

// Ledger is an in-memory reward.Ledger. A per-user mutex makes the
// membership check and the balance increment one atomic step, the same
// property the unique constraint gives the PostgreSQL implementation.
type Ledger struct {
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
	balances  map[string]int
	awards    map[awardKey]reward.AwardRecord
	pages     map[pageKey]time.Time
	subjects  map[string]string
	names     map[string]string
	activity  map[string]time.Time
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		userLocks: make(map[string]*sync.Mutex),
		balances:  make(map[string]int),
		awards:    make(map[awardKey]reward.AwardRecord),
		pages:     make(map[pageKey]time.Time),
		subjects:  make(map[string]string),
		names:     make(map[string]string),
		activity:  make(map[string]time.Time),
	}
}

// RegisterUser seeds a user with a zero balance. Award and read
// operations on unknown users return shared.ErrUserNotFound.
func (l *Ledger) RegisterUser(userID, displayName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[userID]; !ok {
		l.balances[userID] = 0
	}
	l.names[userID] = displayName
}

// SetSubject maps a quiz or course ID to its subject for award records.
func (l *Ledger) SetSubject(sourceID, subject string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subjects[sourceID] = subject
}

// lockFor returns the user's mutex, creating it on first use.
func (l *Ledger) lockFor(userID string) (*sync.Mutex, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[userID]; !ok {
		return nil, false
	}
	lock, ok := l.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.userLocks[userID] = lock
	}
	return lock, true
}

// AwardQuestion implements reward.Ledger.
func (l *Ledger) AwardQuestion(ctx context.Context, userID, quizID, questionID string) (bool, int, error) {
	return l.award(userID, reward.SourceQuizQuestion, quizID, questionID, reward.GemsPerQuestion)
}

// AwardUnit implements reward.Ledger.
func (l *Ledger) AwardUnit(ctx context.Context, userID, courseID, unitID string) (bool, int, error) {
	return l.award(userID, reward.SourceUnitCompletion, courseID, unitID, reward.GemsPerUnit)
}

func (l *Ledger) award(userID string, kind reward.SourceKind, sourceID, itemID string, amount int) (bool, int, error) {
	lock, ok := l.lockFor(userID)
	if !ok {
		return false, 0, shared.ErrUserNotFound
	}

	// The user lock serializes the membership check and the balance
	// update; l.mu only guards the shared maps.
	lock.Lock()
	defer lock.Unlock()

	key := awardKey{userID: userID, kind: kind, sourceID: sourceID, itemID: itemID}

	l.mu.Lock()
	_, exists := l.awards[key]
	balance := l.balances[userID]
	l.mu.Unlock()

	if exists {
		return false, balance, nil
	}

	now := time.Now().UTC()

	l.mu.Lock()
	l.awards[key] = reward.AwardRecord{
		UserID:    userID,
		Source:    kind,
		SourceID:  sourceID,
		ItemID:    itemID,
		Amount:    amount,
		Subject:   l.subjects[sourceID],
		AwardedAt: now,
	}
	l.balances[userID] += amount
	l.activity[userID] = now
	balance = l.balances[userID]
	l.mu.Unlock()

	return true, balance, nil
}

// MarkPageComplete implements reward.Ledger.
func (l *Ledger) MarkPageComplete(ctx context.Context, userID, courseID, pageID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[userID]; !ok {
		return shared.ErrUserNotFound
	}

	key := pageKey{userID: userID, courseID: courseID, pageID: pageID}
	if _, exists := l.pages[key]; !exists {
		l.pages[key] = time.Now().UTC()
	}
	return nil
}

// GetBalance implements reward.Ledger.
func (l *Ledger) GetBalance(ctx context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userID]
	if !ok {
		return 0, shared.ErrUserNotFound
	}
	return balance, nil
}

// GetQuizAwards implements reward.Ledger.
func (l *Ledger) GetQuizAwards(ctx context.Context, userID, quizID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var records []reward.AwardRecord
	for key, rec := range l.awards {
		if key.userID == userID && key.kind == reward.SourceQuizQuestion && key.sourceID == quizID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AwardedAt.Before(records[j].AwardedAt)
	})

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ItemID)
	}
	return ids, nil
}

// GetCourseCompletion implements reward.Ledger.
func (l *Ledger) GetCourseCompletion(ctx context.Context, userID, courseID string) (reward.CourseCompletion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var completion reward.CourseCompletion
	for key := range l.awards {
		if key.userID == userID && key.kind == reward.SourceUnitCompletion && key.sourceID == courseID {
			completion.CompletedUnitIDs = append(completion.CompletedUnitIDs, key.itemID)
		}
	}
	for key := range l.pages {
		if key.userID == userID && key.courseID == courseID {
			completion.CompletedPageIDs = append(completion.CompletedPageIDs, key.pageID)
		}
	}

	sort.Strings(completion.CompletedUnitIDs)
	sort.Strings(completion.CompletedPageIDs)
	return completion, nil
}

// ListAwards implements reward.Ledger.
func (l *Ledger) ListAwards(ctx context.Context, userID string, from, to time.Time) ([]reward.AwardRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var records []reward.AwardRecord
	for key, rec := range l.awards {
		if key.userID != userID {
			continue
		}
		if rec.AwardedAt.Before(from) || rec.AwardedAt.After(to) {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AwardedAt.Before(records[j].AwardedAt)
	})
	return records, nil
}

// SumAwardsBySubject implements reward.ScoreAggregator.
func (l *Ledger) SumAwardsBySubject(ctx context.Context, subject string, from, to time.Time) ([]reward.SubjectScore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	totals := make(map[string]int)
	for _, rec := range l.awards {
		if subject != "" && subject != "all" && rec.Subject != subject {
			continue
		}
		if rec.AwardedAt.Before(from) || rec.AwardedAt.After(to) {
			continue
		}
		totals[rec.UserID] += rec.Amount
	}

	scores := make([]reward.SubjectScore, 0, len(totals))
	for userID, total := range totals {
		scores = append(scores, reward.SubjectScore{
			UserID:         userID,
			DisplayName:    l.names[userID],
			Score:          total,
			LastActivityAt: l.activity[userID],
		})
	}

	// Deterministic order for tests.
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].UserID < scores[j].UserID
	})
	return scores, nil
}

// ListSubjectsWithAwards implements reward.ScoreAggregator.
func (l *Ledger) ListSubjectsWithAwards(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool)
	var subjects []string
	for _, rec := range l.awards {
		if rec.Subject != "" && !seen[rec.Subject] {
			seen[rec.Subject] = true
			subjects = append(subjects, rec.Subject)
		}
	}

	sort.Strings(subjects)
	return subjects, nil
}

var (
	_ reward.Ledger          = (*Ledger)(nil)
	_ reward.ScoreAggregator = (*Ledger)(nil)
)
