package files

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faizmokh/lifelog/internal/logbook"
)

// Frontmatter is the YAML header written at the top of new log documents.
type Frontmatter struct {
	Type    string `yaml:"type"`
	Date    string `yaml:"date"`
	Created string `yaml:"created"`
}

// Created locates a freshly written block.
type Created struct {
	ID   string
	Span logbook.Span
}

// Creator writes new log blocks into dated documents under the log folder.
type Creator struct {
	manager *Manager
	doc     Document
}

// NewCreator wires a creator. Writes go through doc so they queue with other updates.
func NewCreator(manager *Manager, doc Document) *Creator {
	return &Creator{manager: manager, doc: doc}
}

// Create appends record as a new section of the document for its category
// and day. A new document gets frontmatter and a heading first; an existing
// one gets a horizontal rule before the section.
func (c *Creator) Create(ctx context.Context, now time.Time, record logbook.Record) (Created, error) {
	category := record.Category()
	id := c.manager.LogID(now, category.String())
	section := sectionFor(now, category, record.Serialize())

	var span logbook.Span
	err := c.doc.Write(ctx, id, func(text string) (string, error) {
		var b strings.Builder
		if strings.TrimSpace(text) == "" {
			header, err := c.header(now, category)
			if err != nil {
				return "", err
			}
			b.WriteString(header)
		} else {
			b.WriteString(strings.TrimRight(text, "\n"))
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(section)

		out := b.String()
		blocks := logbook.ScanBlocks(out)
		if len(blocks) == 0 {
			return "", fmt.Errorf("create %s: written block not found", id)
		}
		span = blocks[len(blocks)-1].Span
		return out, nil
	})
	if err != nil {
		return Created{}, err
	}
	return Created{ID: id, Span: span}, nil
}

func (c *Creator) header(now time.Time, category logbook.Category) (string, error) {
	date := c.manager.FormatDate(now)
	fm, err := yaml.Marshal(Frontmatter{
		Type:    category.String() + "-log",
		Date:    date,
		Created: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return fmt.Sprintf("---\n%s---\n\n# %s %s log\n\n", fm, date, titleCase(category.String())), nil
}

func sectionFor(now time.Time, category logbook.Category, body string) string {
	return fmt.Sprintf("## %s %s session\n\n%s\n", logbook.TimePeriod(now), category.String(), logbook.FencedBlock(category, body))
}

// ReadFrontmatter decodes the YAML header of a document, if it has one.
func ReadFrontmatter(text string) (Frontmatter, bool) {
	lines := splitLines(text)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return Frontmatter{}, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "---" {
			continue
		}
		var fm Frontmatter
		if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &fm); err != nil {
			return Frontmatter{}, false
		}
		return fm, true
	}
	return Frontmatter{}, false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
