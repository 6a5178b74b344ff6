package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
)

const novemberDoc = "# 2025-11-02\n\n```life-log\n" + `title: Legs
state: completed
startDate: 2025-11-02 07:00
duration: 20m
---
- [x] Squats | Reps: 10 | Duration: 5m
- [-] Lunges | Reps: 8
- [x] Plank | Duration: 1m
` + "```\n\n```study-log\n" + `title: Algebra
state: completed
startDate: 2025-11-02 19:00
---
- [x] Chapter 1 | Duration: 25m
- [x] Chapter 2 | Duration: 5m
` + "```\n"

const decemberDoc = "```life-log\n" + `title: Legs again
state: planned
startDate: 2025-12-01 07:00
---
- [ ] Squats | Reps: [10]
` + "```\n\n```meal-log\n" + `title: Lunch
mealType: lunch
state: completed
date: 2025-12-01
---
- [x] Rice
- [x] Squats
` + "```\n"

func newStore(t *testing.T) *files.Store {
	t.Helper()
	base := t.TempDir()
	for id, text := range map[string]string{
		"logs/2025/11/2025-11-02.md": novemberDoc,
		"logs/2025/12/2025-12-01.md": decemberDoc,
	} {
		path := filepath.Join(base, filepath.FromSlash(id))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
	mgr, err := files.NewManager(base)
	require.NoError(t, err)
	return files.NewStore(mgr)
}

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "db", FileName))
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestScanProjectsEveryBlock(t *testing.T) {
	entries, err := Scan(context.Background(), newStore(t), 2)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	legs := entries[0]
	assert.Equal(t, "logs/2025/11/2025-11-02.md", legs.Doc)
	assert.Equal(t, 2, legs.Line)
	assert.Equal(t, "workout", legs.Category)
	assert.Equal(t, "2025-11-02", legs.Date)
	assert.Equal(t, 1200, legs.Seconds)
	assert.Equal(t, 2, legs.Completed)
	assert.Equal(t, 1, legs.Skipped)
	require.Len(t, legs.Items, 3)
	assert.Equal(t, Item{Position: 0, Name: "Squats", State: "completed", Seconds: 300}, legs.Items[0])

	study := entries[1]
	assert.Equal(t, "study", study.Category)
	assert.Equal(t, 1800, study.Seconds, "falls back to the item total")

	meal := entries[3]
	assert.Equal(t, "meal", meal.Category)
	assert.Equal(t, "2025-12-01", meal.Date)
}

func TestCollectPropagatesReadErrors(t *testing.T) {
	_, err := Collect(context.Background(), newStore(t), []string{"missing.md"}, 1)
	assert.ErrorIs(t, err, files.ErrDocumentNotFound)
}

func TestStatsAndTopItems(t *testing.T) {
	ctx := context.Background()
	entries, err := Scan(ctx, newStore(t), 0)
	require.NoError(t, err)
	ix := openIndex(t)
	require.NoError(t, ix.Replace(ctx, entries))
	// A second rebuild must not duplicate anything.
	require.NoError(t, ix.Replace(ctx, entries))

	stats, err := ix.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, CategoryStats{
		Category: "meal", Sessions: 1, Completed: 1, ItemsDone: 2, CompletionRate: 1,
	}, stats[0])
	assert.Equal(t, CategoryStats{
		Category: "workout", Sessions: 2, Completed: 1, Seconds: 1200, ItemsDone: 2, ItemsSkipped: 1, CompletionRate: 0.5,
	}, stats[2])

	november, err := ix.Stats(ctx, Filter{From: "2025-11-01", To: "2025-11-30"})
	require.NoError(t, err)
	require.Len(t, november, 2)

	top, err := ix.TopItems(ctx, Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, ItemCount{Name: "Squats", Count: 2, Seconds: 300}, top[0])

	workoutTop, err := ix.TopItems(ctx, Filter{Category: "workout"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []ItemCount{{Name: "Plank", Count: 1, Seconds: 60}, {Name: "Squats", Count: 1, Seconds: 300}}, workoutTop)
}

func TestEntriesExportIncludesItems(t *testing.T) {
	ctx := context.Background()
	entries, err := Scan(ctx, newStore(t), 0)
	require.NoError(t, err)
	ix := openIndex(t)
	require.NoError(t, ix.Replace(ctx, entries))

	got, err := ix.Entries(ctx, Filter{Category: "study"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entries[1], got[0])
}

func TestUpsertReplacesItems(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	e := Entry{Doc: "a.md", Line: 0, Category: "work", Title: "Ship", State: "started", Date: "2025-11-03",
		Items: []Item{{Position: 0, Name: "Review", State: "completed", Seconds: 60}, {Position: 1, Name: "Deploy", State: "pending"}}}
	require.NoError(t, ix.Upsert(ctx, e))

	e.State = "completed"
	e.Items = e.Items[:1]
	require.NoError(t, ix.Upsert(ctx, e))

	got, err := ix.Entries(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].State)
	assert.Len(t, got[0].Items, 1)
}

func TestEntryForFallsBackToDocumentDate(t *testing.T) {
	blocks := logbook.ScanBlocks("```work-log\ntitle: Plan\nstate: planned\n---\n- [ ] Review\n```\n")
	require.Len(t, blocks, 1)

	e := EntryFor("logs/2025/11/2025-11-04-work.md", blocks[0])
	assert.Equal(t, "2025-11-04", e.Date)
	assert.Equal(t, "planned", e.State)

	undated := EntryFor("notes/inbox.md", blocks[0])
	assert.Empty(t, undated.Date)
}
