package journal

import (
	"fmt"
	"strings"
)

// Storage key builders. The grammar is fixed: existing tables were written
// with exactly these shapes and must keep reading back.

func CheckInKey(date string) string               { return "checkin-" + date }
func PrepKey(date, instrument string) string      { return fmt.Sprintf("prep-%s-%s", date, instrument) }
func ReviewKey(date, instrument string) string    { return fmt.Sprintf("review-%s-%s", date, instrument) }
func ActivationsKey(date string) string           { return "activations-" + date }
func DLLKey(date string) string                   { return "dll-" + date }
func WeeklyKey(monday string) string              { return "weekly-" + monday }
func WeeklyAckKey(monday string) string           { return "weekly-ack-" + monday }
func WeeklyTakeawayKey(monday string) string      { return "weekly-takeaway-" + monday }
func WeeklyRefresherKey(monday string) string     { return "weekly-refresher-" + monday }
func PostSessionKey(date string) string           { return "post-" + date }
func PrepPrefix(date string) string               { return fmt.Sprintf("prep-%s-", date) }
func ReviewPrefix(date string) string             { return fmt.Sprintf("review-%s-", date) }

// dayKeyLen is len("2006-01-02").
const dayKeyLen = 10

// ParsePrepKey splits a prep key into its date and instrument. Instruments
// never contain the separator, but dates do, so the split is positional.
func ParsePrepKey(key string) (date, instrument string, ok bool) {
	return parseDatedInstrumentKey(key, "prep-")
}

// ParseReviewKey splits a review key into its date and instrument.
func ParseReviewKey(key string) (date, instrument string, ok bool) {
	return parseDatedInstrumentKey(key, "review-")
}

func parseDatedInstrumentKey(key, prefix string) (string, string, bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found || len(rest) < dayKeyLen+2 || rest[dayKeyLen] != '-' {
		return "", "", false
	}
	return rest[:dayKeyLen], rest[dayKeyLen+1:], true
}
