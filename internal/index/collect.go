// Package index projects the log blocks of every document into a SQLite
// database for stats and export. The documents stay the source of truth; the
// database can be dropped and rebuilt at any time.
package index

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
)

// DefaultWorkers bounds how many documents are parsed at once.
const DefaultWorkers = 8

// Item is one exercise, task or food of an indexed block.
type Item struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Seconds  int    `json:"seconds"`
}

// Entry is the projection of one log block.
type Entry struct {
	Doc       string `json:"doc"`
	Line      int    `json:"line"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Date      string `json:"date"`
	Seconds   int    `json:"seconds"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
	Items     []Item `json:"items"`
}

// Scan collects entries from every document the store's manager lists.
func Scan(ctx context.Context, store *files.Store, workers int) ([]Entry, error) {
	docs, err := store.Manager().Documents()
	if err != nil {
		return nil, err
	}
	return Collect(ctx, store, docs, workers)
}

// Collect reads docs concurrently and returns their entries in docs order.
func Collect(ctx context.Context, src logbook.Source, docs []string, workers int) ([]Entry, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	reader := logbook.NewReader(src)
	perDoc := make([][]Entry, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			blocks, err := reader.Blocks(ctx, doc)
			if err != nil {
				return fmt.Errorf("index %s: %w", doc, err)
			}
			entries := make([]Entry, 0, len(blocks))
			for _, block := range blocks {
				entries = append(entries, EntryFor(doc, block))
			}
			perDoc[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Entry
	for _, entries := range perDoc {
		out = append(out, entries...)
	}
	return out, nil
}

// EntryFor projects a block. A record without a total duration is credited
// with the sum of its recorded item durations. A block without a date takes
// the one leading the document's file name, if any.
func EntryFor(doc string, block logbook.Block) Entry {
	r := block.Record()
	e := Entry{
		Doc:      doc,
		Line:     block.Span.Start,
		Category: r.Category().String(),
		Title:    r.Title(),
		State:    r.State().String(),
	}

	var dateValue, total string
	switch v := r.(type) {
	case logbook.Workout:
		dateValue, total = v.Metadata.StartDate, v.Metadata.Duration
	case logbook.StudyLog:
		dateValue, total = v.Metadata.StartDate, v.Metadata.TotalDuration
	case logbook.WorkLog:
		dateValue, total = v.Metadata.StartDate, v.Metadata.TotalDuration
	case logbook.MealLog:
		dateValue = v.Metadata.Date
	}
	var ok bool
	if e.Date, ok = logbook.LogDate(dateValue); !ok {
		// Planned blocks carry no date yet; fall back to the document name.
		e.Date, _ = logbook.LogDate(path.Base(doc))
	}

	sum := 0
	for i := 0; i < r.Len(); i++ {
		view, _ := r.Item(i)
		seconds := logbook.ParseDuration(view.Recorded)
		sum += seconds
		switch view.State {
		case logbook.ItemCompleted:
			e.Completed++
		case logbook.ItemSkipped:
			e.Skipped++
		}
		e.Items = append(e.Items, Item{Position: i, Name: view.Name, State: view.State.String(), Seconds: seconds})
	}
	e.Seconds = logbook.ParseDuration(total)
	if e.Seconds == 0 {
		e.Seconds = sum
	}
	return e
}
