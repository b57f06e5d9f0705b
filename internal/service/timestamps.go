package service

import (
	"errors"
	"time"
)

// DateFormat is the calendar date layout accepted by range queries.
const DateFormat = "YYYY-MM-DD"

const displayLayout = "2006:01:02 15:04:05"

// displayZone is the fixed UTC+05:30 offset used for the human-readable timestamp.
var displayZone = time.FixedZone("UTC+05:30", 5*60*60+30*60)

// FormatDisplayTimestamp renders t as YYYY:MM:DD HH:MM:SS at UTC+05:30.
// The result is display data only; ordering and filtering use the store's creation instant.
func FormatDisplayTimestamp(t time.Time) string {
	return t.In(displayZone).Format(displayLayout)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate accepts a calendar date or a full timestamp. Inputs without an offset are UTC.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("expected format " + DateFormat)
}

// EndOfDay moves t to the last millisecond of its calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
