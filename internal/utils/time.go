package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), loc)
}

// StartOfDay returns local midnight of t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns local midnight after t's day, the exclusive end of that day.
func NextDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// FormatDate formats time to YYYY-MM-DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(layoutDateTime)
}

var clientLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	layoutDateTime,
}

// ParseDateTime accepts RFC 3339 or a zone-less "YYYY-MM-DDTHH:MM[:SS]" as
// sent by datetime-local inputs; zone-less values are read in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range clientLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
