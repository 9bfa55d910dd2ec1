package scheduler

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// IntervalSchedule runs a job at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an interval schedule.
func Every(interval time.Duration) IntervalSchedule {
	return IntervalSchedule{Interval: interval}
}

// Next implements Schedule.
func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String implements Schedule.
func (s IntervalSchedule) String() string {
	return fmt.Sprintf("every %s", s.Interval)
}

// DailySchedule runs a job once a day at a fixed wall-clock time in
// the scheduler's timezone.
type DailySchedule struct {
	Hour   int
	Minute int
}

// DailyAt creates a daily schedule.
func DailyAt(hour, minute int) DailySchedule {
	return DailySchedule{Hour: hour, Minute: minute}
}

// Next implements Schedule.
func (s DailySchedule) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String implements Schedule.
func (s DailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.Hour, s.Minute)
}
