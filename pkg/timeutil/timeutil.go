// Package timeutil provides timezone utilities for West Africa Time (UTC+1).
// All TestMancer students are located in Nigeria, so calendar-day logic
// (streaks, leaderboard timeframe windows) is anchored to Lagos time.
// Nigeria observes no DST, so the offset is constant year-round.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// LagosTZ is the Lagos timezone (WAT, UTC+1, no DST).
var LagosTZ = time.FixedZone("Africa/Lagos", 1*60*60)

// Now returns the current time in Lagos timezone.
func Now() time.Time {
	return time.Now().In(LagosTZ)
}

// ToLagos converts a time to Lagos timezone.
func ToLagos(t time.Time) time.Time {
	return t.In(LagosTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in Lagos timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, LagosTZ)
}

// DateTime creates a time in Lagos timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, LagosTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Lagos timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToLagos(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, LagosTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Lagos timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToLagos(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, LagosTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Lagos timezone.
// Weekly leaderboard buckets aggregate awards from this point.
func StartOfWeek(t time.Time) time.Time {
	local := ToLagos(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(local.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Lagos timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// StartOfMonth returns the start of the month in Lagos timezone.
// Monthly leaderboard buckets aggregate awards from this point.
func StartOfMonth(t time.Time) time.Time {
	local := ToLagos(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, LagosTZ)
}

// EndOfMonth returns the end of the month in Lagos timezone.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// IsToday checks if the given time is today in Lagos timezone.
func IsToday(t time.Time) bool {
	now := Now()
	local := ToLagos(t)
	return local.Year() == now.Year() &&
		local.Month() == now.Month() &&
		local.Day() == now.Day()
}

// IsYesterday checks if the given time is yesterday in Lagos timezone.
func IsYesterday(t time.Time) bool {
	yesterday := Now().AddDate(0, 0, -1)
	local := ToLagos(t)
	return local.Year() == yesterday.Year() &&
		local.Month() == yesterday.Month() &&
		local.Day() == yesterday.Day()
}

// IsThisWeek checks if the given time is in the current week.
func IsThisWeek(t time.Time) bool {
	now := Now()
	weekStart := StartOfWeek(now)
	weekEnd := EndOfWeek(now)
	local := ToLagos(t)
	return !local.Before(weekStart) && !local.After(weekEnd)
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// FormatLagos formats a time in Lagos timezone with the given layout.
func FormatLagos(t time.Time, layout string) string {
	return ToLagos(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Lagos timezone.
func FormatDateStr(t time.Time) string {
	return FormatLagos(t, FormatDate)
}

// ParseLagos parses a time string in Lagos timezone.
func ParseLagos(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, LagosTZ)
}

// ParseDateLagos parses a date string (YYYY-MM-DD) in Lagos timezone.
func ParseDateLagos(value string) (time.Time, error) {
	return ParseLagos(FormatDate, value)
}

// Streak-related utilities.

// IsSameDay checks if two times are on the same day in Lagos timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToLagos(t1), ToLagos(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// IsConsecutiveDay checks if t2 is the day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	a1, a2 := ToLagos(t1), ToLagos(t2)
	nextDay := a1.AddDate(0, 0, 1)
	return IsSameDay(nextDay, a2)
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	duration := a2.Sub(a1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
