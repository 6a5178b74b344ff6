package files

import (
	"fmt"
	"time"
)

// DefaultDateFormat is used in log file names unless settings say otherwise.
const DefaultDateFormat = "YYYY-MM-DD"

// FormatDate renders t in one of the supported date formats:
// YYYY-MM-DD, YYYY/MM/DD or DD-MM-YYYY. Anything else falls back to the default.
func FormatDate(t time.Time, format string) string {
	switch format {
	case "YYYY/MM/DD":
		return fmt.Sprintf("%04d/%02d/%02d", t.Year(), t.Month(), t.Day())
	case "DD-MM-YYYY":
		return fmt.Sprintf("%02d-%02d-%04d", t.Day(), t.Month(), t.Year())
	default:
		return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
	}
}
