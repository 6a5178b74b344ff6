package logbook

import (
	"strconv"
	"strings"
	"time"
)

// StudyMetadata is the header of a `study-log` block.
type StudyMetadata struct {
	Title              string
	Subject            string
	State              LogState
	StartDate          string
	EndDate            string
	TotalDuration      string
	FocusScore         int // 1-5, 0 when unset
	ComprehensionScore int // 1-5, 0 when unset
	Tags               []string
}

// StudyTask is one line of a study log.
type StudyTask struct {
	State            ItemState
	Name             string
	TargetDuration   int
	RecordedDuration string
	Notes            string
	NotesFirst       bool
	LineIndex        int
}

// StudyLog is a parsed `study-log` block.
type StudyLog struct {
	Metadata StudyMetadata
	Tasks    []StudyTask
}

// ParseStudy reads a `study-log` block body.
func ParseStudy(body string) StudyLog {
	parts := splitBlock(body)

	s := StudyLog{Metadata: StudyMetadata{State: StatePlanned}}
	eachMetadata(parts.metadata, func(key, value string) {
		switch key {
		case "title":
			s.Metadata.Title = value
		case "subject":
			s.Metadata.Subject = value
		case "state":
			if state, ok := parseLogState(value); ok {
				s.Metadata.State = state
			}
		case "startdate":
			s.Metadata.StartDate = value
		case "enddate":
			s.Metadata.EndDate = value
		case "totalduration":
			s.Metadata.TotalDuration = value
		case "focusscore":
			s.Metadata.FocusScore = parseScore(value)
		case "comprehensionscore":
			s.Metadata.ComprehensionScore = parseScore(value)
		case "tags":
			s.Metadata.Tags = parseTags(value)
		}
	})

	for i, line := range parts.items {
		if task, ok := parseStudyTask(line, i); ok {
			s.Tasks = append(s.Tasks, task)
		}
	}
	return s
}

func parseScore(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 5 {
		return 0
	}
	return n
}

func parseStudyTask(line string, lineIndex int) (StudyTask, bool) {
	item, ok := parseItemLine(line)
	if !ok {
		return StudyTask{}, false
	}

	task := StudyTask{
		State:     itemStateFromChar(item.stateChar),
		Name:      item.name,
		LineIndex: lineIndex,
	}
	sawDuration := false
	for _, segment := range item.segments {
		key, value, ok := splitSegment(segment)
		if !ok || !strings.EqualFold(key, durationKey) {
			if !sawDuration && task.Notes == "" {
				task.NotesFirst = true
			}
			task.Notes = appendNote(task.Notes, segment)
			continue
		}
		sawDuration = true
		if inner, ok := bracketed(value); ok {
			task.TargetDuration = ParseDuration(inner)
		} else {
			task.RecordedDuration = value
		}
	}
	return task, true
}

// Serialize renders the block body without fences.
func (s StudyLog) Serialize() string {
	m := s.Metadata
	meta := []string{}
	if m.Title != "" {
		meta = append(meta, "title: "+m.Title)
	}
	if m.Subject != "" {
		meta = append(meta, "subject: "+m.Subject)
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
	if m.FocusScore > 0 {
		meta = append(meta, "focusScore: "+strconv.Itoa(m.FocusScore))
	}
	if m.ComprehensionScore > 0 {
		meta = append(meta, "comprehensionScore: "+strconv.Itoa(m.ComprehensionScore))
	}
	if len(m.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(m.Tags, ", "))
	}

	items := make([]string, 0, len(s.Tasks))
	for _, task := range s.Tasks {
		items = append(items, task.Serialize())
	}
	return joinBlock(meta, items)
}

// Serialize renders one task line. A recorded duration wins over the target.
func (t StudyTask) Serialize() string {
	var b strings.Builder
	b.WriteString(itemPrefix(t.State, t.Name))
	if t.NotesFirst {
		writeNotes(&b, t.Notes)
	}
	switch {
	case t.RecordedDuration != "":
		b.WriteString(" | Duration: ")
		b.WriteString(t.RecordedDuration)
	case t.TargetDuration > 0:
		b.WriteString(" | Duration: [")
		b.WriteString(FormatDurationHuman(t.TargetDuration))
		b.WriteString("]")
	}
	if !t.NotesFirst {
		writeNotes(&b, t.Notes)
	}
	return b.String()
}

func (s StudyLog) Category() Category { return CategoryStudy }
func (s StudyLog) Title() string      { return s.Metadata.Title }
func (s StudyLog) State() LogState    { return s.Metadata.State }
func (s StudyLog) Len() int           { return len(s.Tasks) }

func (s StudyLog) Item(i int) (ItemView, bool) {
	if i < 0 || i >= len(s.Tasks) {
		return ItemView{}, false
	}
	t := s.Tasks[i]
	return ItemView{
		Name:      t.Name,
		State:     t.State,
		Target:    t.TargetDuration,
		Recorded:  t.RecordedDuration,
		LineIndex: t.LineIndex,
	}, true
}

// Clone returns a deep copy.
func (s StudyLog) Clone() StudyLog {
	out := s
	out.Metadata.Tags = cloneStrings(s.Metadata.Tags)
	if s.Tasks != nil {
		out.Tasks = make([]StudyTask, len(s.Tasks))
		copy(out.Tasks, s.Tasks)
	}
	return out
}

// SetItemState returns a copy with task i moved to state, following the same
// rules as Workout.SetItemState.
func (s StudyLog) SetItemState(i int, state ItemState) StudyLog {
	if i < 0 || i >= len(s.Tasks) || !s.Tasks[i].State.CanTransition(state) {
		return s
	}
	if state == ItemInProgress && ActiveIndex(s) >= 0 {
		return s
	}
	out := s.Clone()
	out.Tasks[i].State = state
	return out
}

// SetTaskDuration records duration on task i and drops its target.
func (s StudyLog) SetTaskDuration(i int, duration string) StudyLog {
	if i < 0 || i >= len(s.Tasks) {
		return s
	}
	out := s.Clone()
	out.Tasks[i].RecordedDuration = duration
	out.Tasks[i].TargetDuration = 0
	return out
}

// SetScores stores the self-evaluation. Scores outside 1-5 are left unset.
func (s StudyLog) SetScores(focus, comprehension int) StudyLog {
	out := s.Clone()
	out.Metadata.FocusScore = parseScore(strconv.Itoa(focus))
	out.Metadata.ComprehensionScore = parseScore(strconv.Itoa(comprehension))
	return out
}

// Start returns a copy moved from planned to started at the given timestamp.
func (s StudyLog) Start(at string) StudyLog {
	if !s.Metadata.State.CanAdvanceTo(StateStarted) {
		return s
	}
	out := s.Clone()
	out.Metadata.State = StateStarted
	out.Metadata.StartDate = at
	return out
}

// Complete returns a copy marked completed with the end timestamp and total duration.
func (s StudyLog) Complete(endDate, totalDuration string) StudyLog {
	if !s.Metadata.State.CanAdvanceTo(StateCompleted) {
		return s
	}
	out := s.Clone()
	out.Metadata.State = StateCompleted
	if endDate != "" {
		out.Metadata.EndDate = endDate
	}
	if totalDuration != "" {
		out.Metadata.TotalDuration = totalDuration
	}
	return out
}

// SampleStudy returns a planned two-task study log for subject.
func SampleStudy(now time.Time, subject string, minutes int) StudyLog {
	if minutes <= 0 {
		minutes = 30
	}
	target := minutes * 60
	return StudyLog{
		Metadata: StudyMetadata{
			Title:   TimePeriod(now) + " Study",
			Subject: subject,
			State:   StatePlanned,
		},
		Tasks: []StudyTask{
			{Name: "Study item 1", TargetDuration: target, LineIndex: 0},
			{Name: "Study item 2", TargetDuration: target, LineIndex: 1},
		},
	}
}
