package logbook

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type mapSource map[string]string

func (m mapSource) Read(ctx context.Context, id string) (string, error) {
	text, ok := m[id]
	if !ok {
		return "", errors.New("no such document")
	}
	return text, nil
}

const dailyNote = `---
type: workout
date: 2025-11-02
---

# 2025-11-02 workout

` + "```go" + `
fmt.Println("not a log")
` + "```" + `

## Morning

` + "```life-log" + `
title: Morning
state: planned
---
- [ ] Squats | Weight: [60] kg | Reps: [12]
` + "```" + `

` + "```study-log" + `
title: Reading
---
- [ ] Chapter 1 | Duration: [20m]
` + "```" + `

` + "```meal-log" + `
title: never closed
`

func TestBlockScannerStreamsLogBlocks(t *testing.T) {
	s := NewBlockScanner(strings.NewReader(dailyNote))

	first, err := s.Next()
	if err != nil {
		t.Fatalf("Next first call: %v", err)
	}
	if first.Category != CategoryWorkout || first.Tag != "life-log" {
		t.Fatalf("first block = %s/%s", first.Category, first.Tag)
	}
	if first.Span != (Span{Start: 13, End: 18}) {
		t.Fatalf("first span = %#v, want {13 18}", first.Span)
	}
	if first.Record().Title() != "Morning" {
		t.Fatalf("first title = %q", first.Record().Title())
	}

	second, err := s.Next()
	if err != nil {
		t.Fatalf("Next second call: %v", err)
	}
	if second.Category != CategoryStudy || second.Span != (Span{Start: 20, End: 24}) {
		t.Fatalf("second block = %s %#v", second.Category, second.Span)
	}

	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after last block = %v, want io.EOF", err)
	}
}

func TestScanBlocksHandlesCRLF(t *testing.T) {
	text := "```work-log\r\ntitle: Sprint\r\n---\r\n- [ ] Review\r\n```\r\n"
	blocks := ScanBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Body != "title: Sprint\n---\n- [ ] Review" {
		t.Fatalf("body = %q", blocks[0].Body)
	}
}

func TestReaderBlockAt(t *testing.T) {
	reader := NewReader(mapSource{"daily.md": dailyNote})
	ctx := context.Background()

	block, err := reader.BlockAt(ctx, "daily.md", 20)
	if err != nil {
		t.Fatalf("BlockAt: %v", err)
	}
	if block.Category != CategoryStudy {
		t.Fatalf("category = %s, want study", block.Category)
	}

	if _, err := reader.BlockAt(ctx, "daily.md", 3); !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("BlockAt(3) error = %v, want ErrBlockNotFound", err)
	}

	latest, err := reader.Latest(ctx, "daily.md", CategoryWorkout)
	if err != nil || latest.Span.Start != 13 {
		t.Fatalf("Latest = %#v, %v", latest.Span, err)
	}
}

func TestReaderPropagatesSourceErrors(t *testing.T) {
	reader := NewReader(mapSource{})
	if _, err := reader.Blocks(context.Background(), "missing.md"); err == nil {
		t.Fatalf("Blocks on missing document succeeded")
	}
}

func TestBlockTitle(t *testing.T) {
	lines := []string{"state: planned", "title:  Leg day ", "---", "title: item"}
	if got, ok := BlockTitle(lines); !ok || got != "Leg day" {
		t.Fatalf("BlockTitle = %q, %v", got, ok)
	}
	if _, ok := BlockTitle([]string{"---", "title: below separator"}); ok {
		t.Fatalf("BlockTitle read past the separator")
	}
}
