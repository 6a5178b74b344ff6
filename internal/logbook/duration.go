package logbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	secondsPattern = regexp.MustCompile(`^(\d+)s$`)
	clockPattern   = regexp.MustCompile(`^(\d+):(\d{2})$`)
	minutesPattern = regexp.MustCompile(`^(\d+)m\s*(\d+)?s?$`)
	hoursPattern   = regexp.MustCompile(`^(\d+)h\s*(?:(\d+)m)?\s*(?:(\d+)s)?$`)
	barePattern    = regexp.MustCompile(`^(\d+)$`)
)

// ParseDuration converts "45s", "1:30", "1m 30s", "1m30s", "2h 15m" or "90" to seconds.
// Anything else yields 0.
func ParseDuration(value string) int {
	value = strings.TrimSpace(value)

	if m := secondsPattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1])
	}
	if m := clockPattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := minutesPattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := hoursPattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3])
	}
	if m := barePattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1])
	}
	return 0
}

// FormatDurationHuman renders seconds as "11m 33s", dropping zero components.
// Minutes are never folded into hours, so the result always parses back.
func FormatDurationHuman(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := seconds / 60
	secs := seconds % 60
	switch {
	case mins == 0:
		return fmt.Sprintf("%ds", secs)
	case secs == 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}

// FormatDurationLong is FormatDurationHuman with an hour component, used by work logs.
func FormatDurationLong(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	if hours == 0 {
		return FormatDurationHuman(seconds)
	}
	mins := (seconds % 3600) / 60
	secs := seconds % 60
	switch {
	case mins == 0 && secs == 0:
		return fmt.Sprintf("%dh", hours)
	case secs == 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	}
}

// FormatClock renders seconds as "M:SS", or "H:MM:SS" past the hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func atoi(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
