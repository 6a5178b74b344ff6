package logbook

import "testing"

func TestParseDuration(t *testing.T) {
	tests := map[string]int{
		"90":       90,
		"45s":      45,
		"1:30":     90,
		"12:05":    725,
		"1m 30s":   90,
		"1m30s":    90,
		"5m":       300,
		"2h":       7200,
		"1h 30m":   5400,
		"1h 2m 3s": 3723,
		" 20s ":    20,
		"":         0,
		"soon":     0,
		"1.5m":     0,
	}
	for in, want := range tests {
		if got := ParseDuration(in); got != want {
			t.Fatalf("ParseDuration(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatDurationHuman(t *testing.T) {
	tests := map[int]string{
		0:    "0s",
		45:   "45s",
		60:   "1m",
		90:   "1m 30s",
		3600: "60m",
		3725: "62m 5s",
	}
	for in, want := range tests {
		if got := FormatDurationHuman(in); got != want {
			t.Fatalf("FormatDurationHuman(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDurationFormatParseInverse(t *testing.T) {
	for n := 0; n <= 2*3600+7; n++ {
		if got := ParseDuration(FormatDurationHuman(n)); got != n {
			t.Fatalf("ParseDuration(FormatDurationHuman(%d)) = %d", n, got)
		}
		if got := ParseDuration(FormatDurationLong(n)); got != n {
			t.Fatalf("ParseDuration(FormatDurationLong(%d)) = %d", n, got)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		0:    "0:00",
		75:   "1:15",
		3599: "59:59",
		3661: "1:01:01",
	}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Fatalf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLogDate(t *testing.T) {
	if got, ok := LogDate("2025-11-02 07:30"); !ok || got != "2025-11-02" {
		t.Fatalf("LogDate = %q, %v", got, ok)
	}
	if _, ok := LogDate("yesterday"); ok {
		t.Fatalf("LogDate accepted free text")
	}
}
