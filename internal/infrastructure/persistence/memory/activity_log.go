package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
)

// ActivityLog is an in-memory progress.ActivityLog.
type ActivityLog struct {
	mu      sync.RWMutex
	entries map[string][]time.Time
}

// NewActivityLog creates an empty in-memory activity log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{entries: make(map[string][]time.Time)}
}

// Record implements progress.ActivityLog.
func (l *ActivityLog) Record(ctx context.Context, userID string, at time.Time, kind string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[userID] = append(l.entries[userID], at)
	return nil
}

// ListTimestamps implements progress.ActivityLog. Timestamps come back
// newest first, matching the PostgreSQL implementation.
func (l *ActivityLog) ListTimestamps(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var timestamps []time.Time
	for _, at := range l.entries[userID] {
		if at.Before(from) || at.After(to) {
			continue
		}
		timestamps = append(timestamps, at)
	}

	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].After(timestamps[j])
	})
	return timestamps, nil
}

var _ progress.ActivityLog = (*ActivityLog)(nil)
