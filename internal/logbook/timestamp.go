package logbook

import (
	"regexp"
	"time"
)

// TimestampLayout is how startDate and endDate values are written.
const TimestampLayout = "2006-01-02 15:04"

// DateLayout is the day-only layout used by meal dates and log file names.
const DateLayout = "2006-01-02"

var logDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?: \d{2}:\d{2})?`)

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// LogDate extracts the YYYY-MM-DD day from a startDate or date value.
func LogDate(value string) (string, bool) {
	m := logDatePattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// TimePeriod names the part of the day, used for default titles.
func TimePeriod(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Morning"
	case h < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}
