package logbook

import (
	"strings"
	"time"
)

// Priority ranks a work task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func parsePriority(value string) (Priority, bool) {
	switch p := Priority(strings.ToLower(value)); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, true
	}
	return PriorityMedium, false
}

// WorkMetadata is the header of a `work-log` block.
type WorkMetadata struct {
	Title         string
	State         LogState
	StartDate     string
	EndDate       string
	TotalDuration string
	Tags          []string
}

// WorkTask is one line of a work log.
type WorkTask struct {
	State            ItemState
	Name             string
	Priority         Priority
	ExpectedDuration int  // seconds, 0 when unset
	ExpectedLocked   bool // Expected was written without brackets
	ActualDuration   string
	Notes            string
	NotesFirst       bool
	LineIndex        int
}

// WorkLog is a parsed `work-log` block.
type WorkLog struct {
	Metadata WorkMetadata
	Tasks    []WorkTask
}

// ParseWork reads a `work-log` block body.
func ParseWork(body string) WorkLog {
	parts := splitBlock(body)

	w := WorkLog{Metadata: WorkMetadata{State: StatePlanned}}
	eachMetadata(parts.metadata, func(key, value string) {
		switch key {
		case "title":
			w.Metadata.Title = value
		case "state":
			if state, ok := parseLogState(value); ok {
				w.Metadata.State = state
			}
		case "startdate":
			w.Metadata.StartDate = value
		case "enddate":
			w.Metadata.EndDate = value
		case "totalduration":
			w.Metadata.TotalDuration = value
		case "tags":
			w.Metadata.Tags = parseTags(value)
		}
	})

	for i, line := range parts.items {
		if task, ok := parseWorkTask(line, i); ok {
			w.Tasks = append(w.Tasks, task)
		}
	}
	return w
}

func parseWorkTask(line string, lineIndex int) (WorkTask, bool) {
	item, ok := parseItemLine(line)
	if !ok {
		return WorkTask{}, false
	}

	task := WorkTask{
		State:     itemStateFromChar(item.stateChar),
		Name:      item.name,
		Priority:  PriorityMedium,
		LineIndex: lineIndex,
	}
	sawField := false
	note := func(segment string) {
		if !sawField && task.Notes == "" {
			task.NotesFirst = true
		}
		task.Notes = appendNote(task.Notes, segment)
	}
	for _, segment := range item.segments {
		key, value, ok := splitSegment(segment)
		if !ok {
			note(segment)
			continue
		}
		switch strings.ToLower(key) {
		case "priority":
			if p, ok := parsePriority(value); ok {
				task.Priority = p
			}
		case "expected":
			inner, editable := bracketed(value)
			task.ExpectedDuration = ParseDuration(inner)
			task.ExpectedLocked = !editable
		case "actual":
			task.ActualDuration = value
		default:
			note(segment)
			continue
		}
		sawField = true
	}
	return task, true
}

// Serialize renders the block body without fences.
func (w WorkLog) Serialize() string {
	m := w.Metadata
	meta := []string{}
	if m.Title != "" {
		meta = append(meta, "title: "+m.Title)
	}
	meta = append(meta, "state: "+m.State.String())
	if m.StartDate != "" {
		meta = append(meta, "startDate: "+m.StartDate)
	}
	if m.EndDate != "" {
		meta = append(meta, "endDate: "+m.EndDate)
	}
	if m.TotalDuration != "" {
		meta = append(meta, "totalDuration: "+m.TotalDuration)
	}
	if len(m.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(m.Tags, ", "))
	}

	items := make([]string, 0, len(w.Tasks))
	for _, task := range w.Tasks {
		items = append(items, task.Serialize())
	}
	return joinBlock(meta, items)
}

// Serialize renders one task line. Priority is always written.
func (t WorkTask) Serialize() string {
	priority := t.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	var b strings.Builder
	b.WriteString(itemPrefix(t.State, t.Name))
	if t.NotesFirst {
		writeNotes(&b, t.Notes)
	}
	b.WriteString(" | Priority: ")
	b.WriteString(string(priority))
	switch {
	case t.ExpectedDuration > 0 && t.ExpectedLocked:
		b.WriteString(" | Expected: ")
		b.WriteString(FormatDurationLong(t.ExpectedDuration))
	case t.ExpectedDuration > 0:
		b.WriteString(" | Expected: [")
		b.WriteString(FormatDurationLong(t.ExpectedDuration))
		b.WriteString("]")
	}
	if t.ActualDuration != "" {
		b.WriteString(" | Actual: ")
		b.WriteString(t.ActualDuration)
	}
	if !t.NotesFirst {
		writeNotes(&b, t.Notes)
	}
	return b.String()
}

func (w WorkLog) Category() Category { return CategoryWork }
func (w WorkLog) Title() string      { return w.Metadata.Title }
func (w WorkLog) State() LogState    { return w.Metadata.State }
func (w WorkLog) Len() int           { return len(w.Tasks) }

func (w WorkLog) Item(i int) (ItemView, bool) {
	if i < 0 || i >= len(w.Tasks) {
		return ItemView{}, false
	}
	t := w.Tasks[i]
	return ItemView{
		Name:      t.Name,
		State:     t.State,
		Target:    t.ExpectedDuration,
		Recorded:  t.ActualDuration,
		LineIndex: t.LineIndex,
	}, true
}

// Clone returns a deep copy.
func (w WorkLog) Clone() WorkLog {
	out := w
	out.Metadata.Tags = cloneStrings(w.Metadata.Tags)
	if w.Tasks != nil {
		out.Tasks = make([]WorkTask, len(w.Tasks))
		copy(out.Tasks, w.Tasks)
	}
	return out
}

// SetItemState returns a copy with task i moved to state, following the same
// rules as Workout.SetItemState.
func (w WorkLog) SetItemState(i int, state ItemState) WorkLog {
	if i < 0 || i >= len(w.Tasks) || !w.Tasks[i].State.CanTransition(state) {
		return w
	}
	if state == ItemInProgress && ActiveIndex(w) >= 0 {
		return w
	}
	out := w.Clone()
	out.Tasks[i].State = state
	return out
}

// SetActualDuration writes the Actual value of task i.
func (w WorkLog) SetActualDuration(i int, duration string) WorkLog {
	if i < 0 || i >= len(w.Tasks) {
		return w
	}
	out := w.Clone()
	out.Tasks[i].ActualDuration = duration
	return out
}

// Start returns a copy moved from planned to started at the given timestamp.
func (w WorkLog) Start(at string) WorkLog {
	if !w.Metadata.State.CanAdvanceTo(StateStarted) {
		return w
	}
	out := w.Clone()
	out.Metadata.State = StateStarted
	out.Metadata.StartDate = at
	return out
}

// Complete returns a copy marked completed with the end timestamp and total duration.
func (w WorkLog) Complete(endDate, totalDuration string) WorkLog {
	if !w.Metadata.State.CanAdvanceTo(StateCompleted) {
		return w
	}
	out := w.Clone()
	out.Metadata.State = StateCompleted
	if endDate != "" {
		out.Metadata.EndDate = endDate
	}
	if totalDuration != "" {
		out.Metadata.TotalDuration = totalDuration
	}
	return out
}

// SampleWork returns a planned work log with one task per priority.
func SampleWork(now time.Time) WorkLog {
	return WorkLog{
		Metadata: WorkMetadata{Title: TimePeriod(now) + " Work", State: StatePlanned},
		Tasks: []WorkTask{
			{Name: "Work item 1", Priority: PriorityHigh, ExpectedDuration: 2 * 3600, LineIndex: 0},
			{Name: "Work item 2", Priority: PriorityMedium, ExpectedDuration: 3600, LineIndex: 1},
			{Name: "Work item 3", Priority: PriorityLow, ExpectedDuration: 30 * 60, LineIndex: 2},
		},
	}
}
