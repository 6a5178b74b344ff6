package logbook

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

const fence = "```"

var titlePattern = regexp.MustCompile(`^title:\s*(.+)$`)

// Block is one category-tagged fenced block found in a document.
type Block struct {
	Tag      string
	Category Category
	Body     string
	Span     Span
}

// Record parses the block body with its category codec.
func (b Block) Record() Record {
	r, _ := Parse(b.Category, b.Body)
	return r
}

// BlockScanner streams log blocks out of a Markdown document.
type BlockScanner struct {
	r       io.Reader
	scanner *bufio.Scanner
	line    int // index of the last line read
}

// NewBlockScanner returns a scanner reading Markdown from r.
func NewBlockScanner(r io.Reader) *BlockScanner {
	return &BlockScanner{r: r, line: -1}
}

// Next returns the next closed log block, or io.EOF once the input is exhausted.
// Fenced blocks with other tags are stepped over; an unclosed block is dropped.
func (s *BlockScanner) Next() (*Block, error) {
	if s.scanner == nil {
		if s.r == nil {
			return nil, io.EOF
		}
		s.scanner = bufio.NewScanner(s.r)
		s.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	}

	for {
		tag, start, ok := s.nextOpening()
		if !ok {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		var body []string
		closed := false
		for s.scan() {
			text := s.scanner.Text()
			if IsClosingFence(text) {
				closed = true
				break
			}
			body = append(body, text)
		}
		if !closed {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		category, known := CategoryForTag(tag)
		if !known {
			continue
		}
		return &Block{
			Tag:      tag,
			Category: category,
			Body:     strings.Join(body, "\n"),
			Span:     Span{Start: start, End: s.line},
		}, nil
	}
}

func (s *BlockScanner) nextOpening() (string, int, bool) {
	for s.scan() {
		if tag, ok := FenceTag(s.scanner.Text()); ok {
			return tag, s.line, true
		}
	}
	return "", 0, false
}

// scan advances one line and keeps the 0-based line counter in step.
func (s *BlockScanner) scan() bool {
	if !s.scanner.Scan() {
		return false
	}
	s.line++
	return true
}

// ScanBlocks returns every log block in text.
func ScanBlocks(text string) []Block {
	scanner := NewBlockScanner(strings.NewReader(strings.ReplaceAll(text, "\r\n", "\n")))
	var blocks []Block
	for {
		block, err := scanner.Next()
		if err != nil {
			return blocks
		}
		blocks = append(blocks, *block)
	}
}

// FenceTag reports the tag of an opening fence line ("```study-log" -> "study-log").
func FenceTag(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, fence) {
		return "", false
	}
	tag := strings.TrimSpace(strings.TrimLeft(line, "`"))
	if tag == "" {
		return "", false
	}
	return tag, true
}

// IsClosingFence reports whether line is a bare fence.
func IsClosingFence(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, fence) && strings.Trim(line, "`") == ""
}

// BlockTitle finds the `title:` metadata value among block body lines.
func BlockTitle(lines []string) (string, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == separatorLine {
			break
		}
		if m := titlePattern.FindStringSubmatch(trimmed); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// FencedBlock wraps body in fences tagged for c.
func FencedBlock(c Category, body string) string {
	return fence + c.Tag() + "\n" + body + "\n" + fence
}
