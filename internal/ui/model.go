package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/session"
	"github.com/faizmokh/lifelog/internal/timer"
)

// Model owns Bubble Tea state for a live session on one log block.
type Model struct {
	ctx     context.Context
	session *session.Session
	changes <-chan struct{}
	snaps   chan timer.Snapshot

	keys     keyMap
	help     help.Model
	selected int
	snap     timer.Snapshot
	hasSnap  bool
	watching bool

	mode        mode
	inputBuffer string
	inputLabel  string

	statusLine string
	errorLine  string
}

type mode uint8

const (
	modeNormal mode = iota
	modeAddFood
	modeScores
)

type snapshotMsg timer.Snapshot

type watchEndedMsg struct{ err error }

type fileChangedMsg struct{}

type opResultMsg struct {
	label string
	err   error
}

// NewModel builds the view for s. changes, when non-nil, triggers a reload
// of the block after an external edit.
func NewModel(ctx context.Context, s *session.Session, changes <-chan struct{}) Model {
	m := Model{
		ctx:        ctx,
		session:    s,
		changes:    changes,
		snaps:      make(chan timer.Snapshot, 1),
		keys:       defaultKeys(),
		help:       help.New(),
		selected:   max(logbook.ActiveIndex(s.Record()), 0),
		statusLine: "Ready.",
	}
	if snap, ok := s.Snapshot(); ok {
		m.snap, m.hasSnap, m.watching = snap, true, true
	}
	return m
}

// Init starts following the timer and the document.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenSnapshots(), m.listenChanges()}
	if m.hasSnap {
		cmds = append(cmds, m.watchCmd())
	}
	return tea.Batch(cmds...)
}

// Update wires key presses and async results into the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	case snapshotMsg:
		m.snap, m.hasSnap = timer.Snapshot(msg), true
		if active := logbook.ActiveIndex(m.session.Record()); active >= 0 && m.selected != active && m.snap.ActiveIndex == active {
			m.selected = active
		}
		return m, m.listenSnapshots()
	case watchEndedMsg:
		// A timer that moved with its block is followed under its new id.
		if msg.err == nil {
			if snap, ok := m.session.Snapshot(); ok {
				m.snap, m.hasSnap = snap, true
				return m, m.watchCmd()
			}
		}
		m.watching = false
		m.hasSnap = false
		if msg.err != nil && m.ctx.Err() == nil {
			m.errorLine = fmt.Sprintf("Timer stopped: %v", msg.err)
		}
		return m, nil
	case fileChangedMsg:
		return m, tea.Batch(m.runOp("Reloaded after external edit.", m.session.Reload), m.listenChanges())
	case opResultMsg:
		return m.handleOpResult(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	r := s.Record()
	meal := r.Category() == logbook.CategoryMeal

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < r.Len()-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.runOp("Reloaded.", s.Reload)
	case key.Matches(msg, m.keys.Start):
		return m, m.runOp("Started.", s.Start)
	case key.Matches(msg, m.keys.FinishItem) && !meal:
		i := m.selected
		return m, m.runOp(fmt.Sprintf("Finished item %d.", i+1), func(ctx context.Context) error {
			return s.FinishItem(ctx, i)
		})
	case key.Matches(msg, m.keys.Skip):
		i := m.selected
		return m, m.runOp(fmt.Sprintf("Skipped item %d.", i+1), func(ctx context.Context) error {
			return s.SkipItem(ctx, i)
		})
	case key.Matches(msg, m.keys.AddSet):
		i := m.selected
		return m, m.runOp("Added a set.", func(ctx context.Context) error {
			return s.AddSet(ctx, i)
		})
	case key.Matches(msg, m.keys.AddRest):
		i := m.selected
		return m, m.runOp("Resting.", func(ctx context.Context) error {
			return s.AddRest(ctx, i)
		})
	case key.Matches(msg, m.keys.Pause):
		switch {
		case s.Pause():
			m.statusLine = "Paused."
		case s.Resume():
			m.statusLine = "Resumed."
		default:
			m.statusLine = "No timer running."
		}
		m.errorLine = ""
	case key.Matches(msg, m.keys.Finish):
		if study, ok := r.(logbook.StudyLog); ok && study.Metadata.State == logbook.StateStarted {
			return m.beginInput(modeScores, "Focus and comprehension, 1-5 each (e.g. \"4 3\", blank to skip):"), nil
		}
		return m, m.runOp("Session finished.", func(ctx context.Context) error {
			return s.Finish(ctx, session.Scores{})
		})
	case key.Matches(msg, m.keys.Toggle) && meal:
		i := m.selected
		return m, m.runOp("Toggled.", func(ctx context.Context) error {
			return s.ToggleFood(ctx, i)
		})
	case key.Matches(msg, m.keys.FinishItem) && meal:
		i := m.selected
		return m, m.runOp("Toggled.", func(ctx context.Context) error {
			return s.ToggleFood(ctx, i)
		})
	case key.Matches(msg, m.keys.AddFood) && meal:
		return m.beginInput(modeAddFood, "Food name (Enter to save, Esc to cancel):"), nil
	case key.Matches(msg, m.keys.RemoveFood) && meal:
		i := m.selected
		if m.selected > 0 && m.selected >= r.Len()-1 {
			m.selected--
		}
		return m, m.runOp("Removed.", func(ctx context.Context) error {
			return s.RemoveFood(ctx, i)
		})
	}
	return m, nil
}

func (m Model) beginInput(mode mode, label string) Model {
	m.mode = mode
	m.inputLabel = label
	m.inputBuffer = ""
	m.statusLine = ""
	m.errorLine = ""
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyEsc:
		m.mode = modeNormal
		m.statusLine = "Cancelled."
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.inputBuffer = trimLastRune(m.inputBuffer)
	case tea.KeyCtrlU:
		m.inputBuffer = ""
	case tea.KeySpace:
		m.inputBuffer += " "
	case tea.KeyRunes:
		m.inputBuffer += string(msg.Runes)
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.inputBuffer)
	s := m.session
	switch m.mode {
	case modeAddFood:
		if input == "" {
			m.errorLine = "Food cannot be empty."
			return m, nil
		}
		m.mode = modeNormal
		return m, m.runOp("Added "+input+".", func(ctx context.Context) error {
			return s.AddFood(ctx, input)
		})
	case modeScores:
		scores, err := parseScores(input)
		if err != nil {
			m.errorLine = err.Error()
			return m, nil
		}
		m.mode = modeNormal
		return m, m.runOp("Session finished.", func(ctx context.Context) error {
			return s.Finish(ctx, scores)
		})
	}
	return m, nil
}

// parseScores reads "focus comprehension". Blank input means no scores.
func parseScores(input string) (session.Scores, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return session.Scores{}, nil
	}
	if len(fields) != 2 {
		return session.Scores{}, fmt.Errorf("expected two scores, got %d", len(fields))
	}
	var out [2]int
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > 5 {
			return session.Scores{}, fmt.Errorf("invalid score %q (expected 1-5)", field)
		}
		out[i] = n
	}
	return session.Scores{Focus: out[0], Comprehension: out[1]}, nil
}

func (m Model) handleOpResult(msg opResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorLine = msg.err.Error()
		m.statusLine = ""
		return m, nil
	}
	m.errorLine = ""
	m.statusLine = msg.label
	if m.session.Stale() {
		m.errorLine = "Block changed on disk; press r to reload."
	}
	if n := m.session.Record().Len(); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	if active := logbook.ActiveIndex(m.session.Record()); active >= 0 {
		m.selected = active
	}
	if !m.watching {
		if snap, ok := m.session.Snapshot(); ok {
			m.snap, m.hasSnap = snap, true
			m.watching = true
			return m, m.watchCmd()
		}
	}
	return m, nil
}

func (m Model) runOp(label string, op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opResultMsg{label: label, err: op(ctx)}
	}
}

// watchCmd runs the session watcher for as long as the timer lives. Snapshots
// are handed over through a one-slot channel that keeps the newest value.
func (m Model) watchCmd() tea.Cmd {
	s, ctx, snaps := m.session, m.ctx, m.snaps
	return func() tea.Msg {
		err := s.Watch(ctx, func(snap timer.Snapshot) {
			select {
			case <-snaps:
			default:
			}
			select {
			case snaps <- snap:
			default:
			}
		})
		return watchEndedMsg{err: err}
	}
}

func (m Model) listenSnapshots() tea.Cmd {
	snaps, ctx := m.snaps, m.ctx
	return func() tea.Msg {
		select {
		case snap := <-snaps:
			return snapshotMsg(snap)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) listenChanges() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes, ctx := m.changes, m.ctx
	return func() tea.Msg {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// View renders the frame.
func (m Model) View() string {
	r := m.session.Record()
	var b strings.Builder

	title := r.Title()
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s · %s", r.Category(), r.State())))
	if m.hasSnap {
		b.WriteString(textStyle.Render("  " + logbook.FormatClock(m.snap.WorkoutSeconds())))
		if m.snap.Paused {
			b.WriteString(activeStyle.Render("  paused"))
		}
	}
	b.WriteByte('\n')
	if m.hasSnap && m.snap.Pomodoro != nil {
		p := m.snap.Pomodoro
		b.WriteString(mutedStyle.Render(fmt.Sprintf("pomodoro %s #%d  %s left",
			p.Phase, p.Cycle, logbook.FormatClock(int(p.Remaining.Seconds())))))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if r.Len() == 0 {
		b.WriteString(mutedStyle.Render("(no items)"))
		b.WriteByte('\n')
	}
	for i := 0; i < r.Len(); i++ {
		item, _ := r.Item(i)
		cursor := "  "
		if i == m.selected {
			cursor = selectedStyle.Render("> ")
		}
		b.WriteString(cursor)
		b.WriteString(itemStyle(item.State).Render(fmt.Sprintf("[%c] %s", item.State.Char(), item.Name)))
		if detail := itemDetail(item, m.snap, m.hasSnap && m.snap.ActiveIndex == i); detail != "" {
			b.WriteString(mutedStyle.Render("  " + detail))
		}
		b.WriteByte('\n')
	}

	if m.errorLine != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("! " + m.errorLine))
		b.WriteByte('\n')
	} else if m.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(m.statusLine))
		b.WriteByte('\n')
	}

	if m.mode != modeNormal {
		b.WriteString("\n")
		b.WriteString(m.inputLabel)
		b.WriteString("\n> ")
		b.WriteString(m.inputBuffer)
		b.WriteByte('\n')
	}

	return lipgloss.JoinVertical(lipgloss.Left, frameStyle.Render(strings.TrimRight(b.String(), "\n")), m.help.View(m.keys))
}

func itemStyle(state logbook.ItemState) lipgloss.Style {
	switch state {
	case logbook.ItemInProgress:
		return activeStyle
	case logbook.ItemCompleted:
		return doneStyle
	case logbook.ItemSkipped:
		return skippedStyle
	}
	return textStyle
}

// itemDetail shows the live clock on the running item (a countdown when the
// item has a target), the recorded time when done, or the target otherwise.
func itemDetail(item logbook.ItemView, snap timer.Snapshot, running bool) string {
	switch {
	case running && item.State == logbook.ItemInProgress:
		elapsed := snap.ItemSeconds()
		if item.Target > 0 {
			remaining := item.Target - elapsed
			if remaining <= 0 {
				return "time's up"
			}
			return logbook.FormatClock(remaining) + " left"
		}
		return logbook.FormatClock(elapsed)
	case item.Recorded != "":
		return item.Recorded
	case item.Target > 0:
		return logbook.FormatDurationHuman(item.Target)
	}
	return ""
}

func trimLastRune(input string) string {
	if input == "" {
		return input
	}
	runes := []rune(input)
	return string(runes[:len(runes)-1])
}
