package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayAnchor(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"monday_is_itself", "2026-08-24", "2026-08-24"},
		{"wednesday_rolls_back", "2026-08-26", "2026-08-24"},
		{"friday_rolls_back", "2026-08-28", "2026-08-24"},
		{"saturday_rolls_back", "2026-08-29", "2026-08-24"},
		{"sunday_rolls_back", "2026-08-30", "2026-08-24"},
		{"next_monday_is_itself", "2026-08-31", "2026-08-31"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			day, err := ParseDayKey(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, DayKey(Monday(day)))
		})
	}
}

func TestWeekDates(t *testing.T) {
	monday, err := ParseDayKey("2026-08-24")
	require.NoError(t, err)

	week := WeekDates(monday)
	assert.Equal(t, [5]string{"2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"}, week)
}

func TestParseDayKeyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "2026/08/24", "24-08-2026", "2026-13-01"} {
		_, err := ParseDayKey(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestPreviousAndRecentDays(t *testing.T) {
	day, err := ParseDayKey("2026-08-26")
	require.NoError(t, err)

	prev := PreviousDays(day, 3)
	assert.Equal(t, []string{"2026-08-25", "2026-08-24", "2026-08-23"}, prev)

	recent := RecentDays(day, 3)
	assert.Equal(t, []string{"2026-08-26", "2026-08-25", "2026-08-24"}, recent)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Mon", DayName(0))
	assert.Equal(t, "Fri", DayName(4))
	assert.Equal(t, "", DayName(5))
	assert.Equal(t, "", DayName(-1))
}

func TestDayKeyRoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 3, 15, 4, 5, 0, time.Local)
	parsed, err := ParseDayKey(DayKey(now))
	require.NoError(t, err)
	assert.Equal(t, "2026-02-03", DayKey(parsed))
}
