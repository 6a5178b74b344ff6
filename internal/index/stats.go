package index

import (
	"context"
	"fmt"
	"strings"
)

// Filter narrows queries. Empty fields match everything; dates are inclusive
// YYYY-MM-DD bounds.
type Filter struct {
	Category string
	From     string
	To       string
}

func (f Filter) where(alias string) (string, []any) {
	var clauses []string
	var args []any
	if f.Category != "" {
		clauses = append(clauses, alias+"category = ?")
		args = append(args, f.Category)
	}
	if f.From != "" {
		clauses = append(clauses, alias+"date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		clauses = append(clauses, alias+"date <= ?")
		args = append(args, f.To)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// CategoryStats summarizes one category.
type CategoryStats struct {
	Category       string  `json:"category"`
	Sessions       int     `json:"sessions"`
	Completed      int     `json:"completed"`
	Seconds        int     `json:"seconds"`
	ItemsDone      int     `json:"itemsDone"`
	ItemsSkipped   int     `json:"itemsSkipped"`
	CompletionRate float64 `json:"completionRate"`
}

// ItemCount is how often an item was completed.
type ItemCount struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Seconds int    `json:"seconds"`
}

// Report bundles everything `stats` prints.
type Report struct {
	Filter     Filter          `json:"-"`
	Categories []CategoryStats `json:"categories"`
	TopItems   []ItemCount     `json:"topItems"`
}

// Stats returns per-category totals ordered by category name.
func (ix *Index) Stats(ctx context.Context, f Filter) ([]CategoryStats, error) {
	where, args := f.where("")
	query := `
SELECT category,
       COUNT(*),
       SUM(CASE WHEN state = 'completed' THEN 1 ELSE 0 END),
       COALESCE(SUM(seconds), 0),
       COALESCE(SUM(completed), 0),
       COALESCE(SUM(skipped), 0)
FROM entries` + where + `
GROUP BY category
ORDER BY category`

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []CategoryStats
	for rows.Next() {
		var s CategoryStats
		if err := rows.Scan(&s.Category, &s.Sessions, &s.Completed, &s.Seconds, &s.ItemsDone, &s.ItemsSkipped); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if s.Sessions > 0 {
			s.CompletionRate = float64(s.Completed) / float64(s.Sessions)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TopItems returns the most often completed items.
func (ix *Index) TopItems(ctx context.Context, f Filter, limit int) ([]ItemCount, error) {
	if limit <= 0 {
		limit = 5
	}
	where, args := f.where("e.")
	if where == "" {
		where = " WHERE i.state = 'completed'"
	} else {
		where += " AND i.state = 'completed'"
	}
	query := `
SELECT i.name, COUNT(*), COALESCE(SUM(i.seconds), 0)
FROM items i
JOIN entries e ON e.doc = i.doc AND e.line = i.line` + where + `
GROUP BY i.name
ORDER BY COUNT(*) DESC, i.name
LIMIT ?`

	rows, err := ix.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query top items: %w", err)
	}
	defer rows.Close()

	var out []ItemCount
	for rows.Next() {
		var c ItemCount
		if err := rows.Scan(&c.Name, &c.Count, &c.Seconds); err != nil {
			return nil, fmt.Errorf("scan top items: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Report runs Stats and TopItems with the same filter.
func (ix *Index) Report(ctx context.Context, f Filter, top int) (Report, error) {
	categories, err := ix.Stats(ctx, f)
	if err != nil {
		return Report{}, err
	}
	items, err := ix.TopItems(ctx, f, top)
	if err != nil {
		return Report{}, err
	}
	return Report{Filter: f, Categories: categories, TopItems: items}, nil
}

type entryKey struct {
	doc  string
	line int
}

// Entries returns the matching entries with their items, for export.
func (ix *Index) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	where, args := f.where("")
	rows, err := ix.db.QueryContext(ctx, `
SELECT doc, line, category, title, state, date, seconds, completed, skipped
FROM entries`+where+`
ORDER BY date, doc, line`, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	pos := map[entryKey]int{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Doc, &e.Line, &e.Category, &e.Title, &e.State, &e.Date, &e.Seconds, &e.Completed, &e.Skipped); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		pos[entryKey{e.Doc, e.Line}] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	itemWhere, itemArgs := f.where("e.")
	itemRows, err := ix.db.QueryContext(ctx, `
SELECT i.doc, i.line, i.position, i.name, i.state, i.seconds
FROM items i
JOIN entries e ON e.doc = i.doc AND e.line = i.line`+itemWhere+`
ORDER BY i.doc, i.line, i.position`, itemArgs...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var doc string
		var line int
		var item Item
		if err := itemRows.Scan(&doc, &line, &item.Position, &item.Name, &item.State, &item.Seconds); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if i, ok := pos[entryKey{doc, line}]; ok {
			out[i].Items = append(out[i].Items, item)
		}
	}
	return out, itemRows.Err()
}
