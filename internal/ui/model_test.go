package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/lifelog/internal/clock"
	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/session"
	"github.com/faizmokh/lifelog/internal/timer"
)

const mealDoc = "```meal-log\ntitle: Lunch\nmealType: lunch\nstate: planned\n---\n- [ ] Rice\n```\n"

const coreDoc = "```life-log\ntitle: Core\nstate: planned\n---\n- [ ] Plank | Duration: [30s]\n- [ ] Crunches | Reps: [20]\n```\n"

func openSession(t *testing.T, doc string) (*session.Session, string) {
	t.Helper()
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "day.md"), []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	mgr, err := files.NewManager(base)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	fake := clock.NewFake(time.Date(2025, time.November, 2, 7, 0, 0, 0, time.UTC))
	timers := timer.NewManager(timer.WithClock(fake), timer.WithInterval(time.Hour))
	t.Cleanup(timers.Close)

	store := files.NewStore(mgr)
	ctl := session.NewController(timers, files.NewUpdater(store, nil), logbook.NewReader(store), session.WithClock(fake))
	s, err := ctl.Open(context.Background(), "day.md", -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, filepath.Join(base, "day.md")
}

// press sends key and runs the command it returns, if that command finishes
// an operation.
func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if result, ok := cmd().(opResultMsg); ok {
		next, _ = m.Update(result)
		m = next.(Model)
	}
	return m
}

func TestStartAndFinishFromKeys(t *testing.T) {
	s, path := openSession(t, coreDoc)
	m := NewModel(context.Background(), s, nil)

	m = press(t, m, "s")
	if m.statusLine != "Started." || m.errorLine != "" {
		t.Fatalf("status = %q, error = %q", m.statusLine, m.errorLine)
	}
	if !m.watching || !m.hasSnap {
		t.Fatalf("model is not following the timer after start")
	}

	m = press(t, m, "f")
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1 after finishing the first item", m.selected)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "- [x] Plank | Duration: 0s\n- [\\] Crunches") {
		t.Fatalf("document = %s", data)
	}

	view := m.View()
	if !strings.Contains(view, "Core") || !strings.Contains(view, "[\\] Crunches") {
		t.Fatalf("view missing title or active item:\n%s", view)
	}
}

func TestMealKeysAddAndToggleFood(t *testing.T) {
	s, _ := openSession(t, mealDoc)
	m := NewModel(context.Background(), s, nil)

	m = press(t, m, "a")
	if m.mode != modeAddFood {
		t.Fatalf("mode = %v, want add food", m.mode)
	}
	for _, r := range "Soup" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	if m.mode != modeNormal || m.statusLine != "Added Soup." {
		t.Fatalf("mode = %v, status = %q, error = %q", m.mode, m.statusLine, m.errorLine)
	}

	m = press(t, m, " ")
	meal := s.Record().(logbook.MealLog)
	if len(meal.Foods) != 2 || meal.Foods[0].State != logbook.ItemCompleted {
		t.Fatalf("foods = %#v", meal.Foods)
	}

	m = press(t, m, "s")
	if m.errorLine == "" {
		t.Fatalf("starting a meal should report an error")
	}
}

func TestParseScores(t *testing.T) {
	got, err := parseScores("4 3")
	if err != nil || got != (session.Scores{Focus: 4, Comprehension: 3}) {
		t.Fatalf("parseScores = %#v, %v", got, err)
	}
	if got, err := parseScores("  "); err != nil || got != (session.Scores{}) {
		t.Fatalf("blank parseScores = %#v, %v", got, err)
	}
	for _, bad := range []string{"4", "0 3", "x 2", "1 2 3"} {
		if _, err := parseScores(bad); err == nil {
			t.Fatalf("parseScores(%q) succeeded", bad)
		}
	}
}

func TestItemDetail(t *testing.T) {
	snap := timer.Snapshot{ItemElapsed: 10 * time.Second}
	tests := []struct {
		name    string
		item    logbook.ItemView
		running bool
		want    string
	}{
		{"countdown", logbook.ItemView{State: logbook.ItemInProgress, Target: 30}, true, "0:20 left"},
		{"overdue", logbook.ItemView{State: logbook.ItemInProgress, Target: 5}, true, "time's up"},
		{"stopwatch", logbook.ItemView{State: logbook.ItemInProgress}, true, "0:10"},
		{"recorded", logbook.ItemView{State: logbook.ItemCompleted, Recorded: "1m 5s"}, false, "1m 5s"},
		{"target", logbook.ItemView{State: logbook.ItemPending, Target: 90}, false, "1m 30s"},
		{"nothing", logbook.ItemView{State: logbook.ItemPending}, false, ""},
	}
	for _, tc := range tests {
		if got := itemDetail(tc.item, snap, tc.running); got != tc.want {
			t.Fatalf("%s: itemDetail = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDocWatcherSignalsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "day.md")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w, err := WatchDocument(path, nil)
	if err != nil {
		t.Fatalf("WatchDocument: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("b\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("c\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported for %s", path)
	}
}

func TestWatchEndedResubscribesWhileTimerRuns(t *testing.T) {
	s, _ := openSession(t, coreDoc)
	m := press(t, NewModel(context.Background(), s, nil), "s")

	next, cmd := m.Update(watchEndedMsg{})
	m = next.(Model)
	if cmd == nil || !m.watching || !m.hasSnap {
		t.Fatalf("watch not restarted: cmd = %v, watching = %v", cmd != nil, m.watching)
	}

	m = press(t, m, "F")
	next, cmd = m.Update(watchEndedMsg{})
	m = next.(Model)
	if cmd != nil || m.watching || m.hasSnap {
		t.Fatalf("watch restarted after the session finished")
	}
}
