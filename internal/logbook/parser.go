package logbook

import (
	"regexp"
	"strings"
)

const separatorLine = "---"

var (
	itemPattern  = regexp.MustCompile(`^-\s*\[(.)\]\s*(.+)$`)
	valuePattern = regexp.MustCompile(`^\[([^\]]*)\](.*)$`)
)

// blockLines holds the two halves of a block body.
type blockLines struct {
	metadata []string
	items    []string
}

// splitBlock cuts a block body at the first `---` line. Without a separator
// every line is metadata and there are no items.
func splitBlock(body string) blockLines {
	lines := splitLines(body)
	for i, line := range lines {
		if strings.TrimSpace(line) == separatorLine {
			return blockLines{metadata: lines[:i], items: lines[i+1:]}
		}
	}
	return blockLines{metadata: lines}
}

// eachMetadata calls fn with the lowercased key and trimmed value of every `key: value` line.
func eachMetadata(lines []string, fn func(key, value string)) {
	for _, line := range lines {
		colon := strings.Index(line, ":")
		if colon == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])
		fn(key, value)
	}
}

// itemLine is an item line split into its checkbox character and pipe segments.
type itemLine struct {
	stateChar string
	name      string
	segments  []string
	rest      string
}

func parseItemLine(line string) (itemLine, bool) {
	matches := itemPattern.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return itemLine{}, false
	}

	rest := matches[2]
	parts := strings.Split(rest, "|")
	segments := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}

	return itemLine{
		stateChar: matches[1],
		name:      strings.TrimSpace(parts[0]),
		segments:  segments,
		rest:      strings.TrimSpace(rest),
	}, true
}

// splitSegment separates "Key: value" into its key and trimmed value.
func splitSegment(segment string) (string, string, bool) {
	colon := strings.Index(segment, ":")
	if colon == -1 {
		return "", "", false
	}
	return strings.TrimSpace(segment[:colon]), strings.TrimSpace(segment[colon+1:]), true
}

// parseParam reads `Key: value`, `Key: [value]` or `Key: [value] unit`.
func parseParam(segment string) (Param, bool) {
	key, rest, ok := splitSegment(segment)
	if !ok {
		return Param{}, false
	}

	if m := valuePattern.FindStringSubmatch(rest); m != nil {
		return Param{
			Key:      key,
			Value:    m[1],
			Editable: true,
			Unit:     strings.TrimSpace(m[2]),
		}, true
	}

	fields := strings.Fields(rest)
	param := Param{Key: key}
	if len(fields) > 0 {
		param.Value = fields[0]
		param.Unit = strings.Join(fields[1:], " ")
	}
	return param, true
}

func formatParam(p Param) string {
	var b strings.Builder
	b.WriteString(p.Key)
	b.WriteString(": ")
	if p.Editable {
		b.WriteByte('[')
		b.WriteString(p.Value)
		b.WriteByte(']')
	} else {
		b.WriteString(p.Value)
	}
	if p.Unit != "" {
		b.WriteByte(' ')
		b.WriteString(p.Unit)
	}
	return b.String()
}

// bracketed unwraps a value written entirely as `[value]`.
func bracketed(value string) (string, bool) {
	if len(value) >= 2 && strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		inner := value[1 : len(value)-1]
		if !strings.Contains(inner, "]") {
			return inner, true
		}
	}
	return value, false
}

func writeNotes(b *strings.Builder, notes string) {
	if notes != "" {
		b.WriteString(" | ")
		b.WriteString(notes)
	}
}

func appendNote(notes, part string) string {
	if notes == "" {
		return part
	}
	return notes + " | " + part
}

func parseTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func itemPrefix(state ItemState, name string) string {
	var b strings.Builder
	b.Grow(6 + len(name))
	b.WriteString("- [")
	b.WriteByte(state.Char())
	b.WriteString("] ")
	b.WriteString(name)
	return b.String()
}

func joinBlock(metadata []string, items []string) string {
	lines := make([]string, 0, len(metadata)+1+len(items))
	lines = append(lines, metadata...)
	lines = append(lines, separatorLine)
	lines = append(lines, items...)
	return strings.Join(lines, "\n")
}

func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	if input == "" {
		return nil
	}
	lines := strings.Split(input, "\n")
	// Remove the trailing empty element produced by Split when the input ends with a newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
