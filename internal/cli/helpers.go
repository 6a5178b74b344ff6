package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/logbook"
)

func resolveDate(dateFlag string, now time.Time) (time.Time, error) {
	if dateFlag == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	parsed, err := time.ParseInLocation("2006-01-02", dateFlag, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return parsed, nil
}

// resolveTime places the clock time of now (or timeFlag) on date.
func resolveTime(date, now time.Time, timeFlag string) (time.Time, error) {
	if timeFlag == "" {
		return time.Date(date.Year(), date.Month(), date.Day(), now.Hour(), now.Minute(), 0, 0, date.Location()), nil
	}

	parsed, err := time.ParseInLocation("15:04", timeFlag, date.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// docID turns a command-line document argument into a document id. Absolute
// paths are made relative to the lifelog home.
func (a *app) docID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("document is required")
	}
	if !filepath.IsAbs(arg) {
		return filepath.ToSlash(filepath.Clean(arg)), nil
	}
	rel, err := filepath.Rel(a.manager.BasePath(), arg)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func formatItem(item logbook.ItemView) string {
	builder := strings.Builder{}
	builder.WriteString("[")
	builder.WriteByte(item.State.Char())
	builder.WriteString("] ")
	builder.WriteString(item.Name)

	switch {
	case item.Recorded != "":
		builder.WriteString(" (")
		builder.WriteString(item.Recorded)
		builder.WriteString(")")
	case item.Target > 0:
		builder.WriteString(" (target ")
		builder.WriteString(logbook.FormatDurationHuman(item.Target))
		builder.WriteString(")")
	}
	return builder.String()
}

func printBlock(out io.Writer, block logbook.Block) {
	r := block.Record()
	fmt.Fprintf(out, "L%d %s %q [%s]\n", block.Span.Start, block.Category, r.Title(), r.State())
	for i := 0; i < r.Len(); i++ {
		if item, ok := r.Item(i); ok {
			fmt.Fprintf(out, "  %d. %s\n", i+1, formatItem(item))
		}
	}
}

func printBlocks(cmd *cobra.Command, id string, blocks []logbook.Block) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", id)
	if len(blocks) == 0 {
		fmt.Fprintln(out, "(no log blocks)")
		return
	}
	for i, block := range blocks {
		printBlock(out, block)
		if i < len(blocks)-1 {
			fmt.Fprintln(out)
		}
	}
}
