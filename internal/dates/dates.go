// Package dates implements the day-key and trading-week calendar conventions
// shared by every stored record: days are YYYY-MM-DD strings in local time and
// a week is the five weekdays anchored on a Monday.
package dates

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical date format embedded in storage keys.
const DayKeyLayout = "2006-01-02"

// DayKey formats t as a storage day key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Today returns the day key for the current local date.
func Today() string {
	return DayKey(time.Now())
}

// ParseDayKey parses a YYYY-MM-DD day key.
func ParseDayKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return t, nil
}

// Monday returns the Monday anchoring t's trading week. The whole weekend
// belongs to the week just ended, so a Sunday review still shows the five
// days being reviewed.
func Monday(t time.Time) time.Time {
	if t.Weekday() == time.Sunday {
		return t.AddDate(0, 0, -6)
	}
	return t.AddDate(0, 0, 1-int(t.Weekday()))
}

// WeekDates returns the five weekday day keys starting at monday.
func WeekDates(monday time.Time) [5]string {
	var days [5]string
	for i := range days {
		days[i] = DayKey(monday.AddDate(0, 0, i))
	}
	return days
}

// WeekOf returns the weekday day keys for the trading week containing t.
func WeekOf(t time.Time) [5]string {
	return WeekDates(Monday(t))
}

// DayNames are the display names matching the WeekDates positions.
var dayNames = [5]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// DayName returns the display name for a weekday index (0 = Monday).
func DayName(i int) string {
	if i < 0 || i >= len(dayNames) {
		return ""
	}
	return dayNames[i]
}

// PreviousDays returns the n day keys immediately before t, most recent first.
func PreviousDays(t time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		keys = append(keys, DayKey(t.AddDate(0, 0, -i)))
	}
	return keys
}

// RecentDays returns the n day keys ending at t, most recent first. Used by
// the prep log to index the trailing two weeks.
func RecentDays(t time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, DayKey(t.AddDate(0, 0, -i)))
	}
	return keys
}
