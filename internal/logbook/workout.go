package logbook

import "strings"

// WorkoutMetadata is the header of a `life-log` block.
type WorkoutMetadata struct {
	Title        string
	State        LogState
	StartDate    string
	Duration     string
	RestDuration int // seconds, 0 when unset
}

// Exercise is a single set or rest entry.
type Exercise struct {
	State            ItemState
	Name             string
	Params           []Param
	TargetDuration   int    // countdown target in seconds from a bracketed Duration
	RecordedDuration string // locked Duration written on completion
	Notes            string
	NotesFirst       bool // notes were written before any param
	LineIndex        int
}

// Workout is a parsed `life-log` block.
type Workout struct {
	Metadata  WorkoutMetadata
	Exercises []Exercise
}

const durationKey = "duration"

// ParseWorkout reads a `life-log` block body. It never fails; unreadable lines are dropped.
func ParseWorkout(body string) Workout {
	parts := splitBlock(body)

	w := Workout{Metadata: WorkoutMetadata{State: StatePlanned}}
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
		case "duration":
			w.Metadata.Duration = value
		case "restduration":
			if seconds := ParseDuration(value); seconds > 0 {
				w.Metadata.RestDuration = seconds
			}
		}
	})

	for i, line := range parts.items {
		if exercise, ok := parseExercise(line, i); ok {
			w.Exercises = append(w.Exercises, exercise)
		}
	}
	return w
}

func parseExercise(line string, lineIndex int) (Exercise, bool) {
	item, ok := parseItemLine(line)
	if !ok {
		return Exercise{}, false
	}

	exercise := Exercise{
		State:     itemStateFromChar(item.stateChar),
		Name:      item.name,
		LineIndex: lineIndex,
	}
	for _, segment := range item.segments {
		param, ok := parseParam(segment)
		if !ok {
			if len(exercise.Params) == 0 && exercise.Notes == "" {
				exercise.NotesFirst = true
			}
			exercise.Notes = appendNote(exercise.Notes, segment)
			continue
		}
		exercise.Params = append(exercise.Params, param)
		if strings.ToLower(param.Key) == durationKey {
			if param.Editable {
				exercise.TargetDuration = ParseDuration(param.Value)
			} else {
				exercise.RecordedDuration = joinValueUnit(param.Value, param.Unit)
			}
		}
	}
	return exercise, true
}

func joinValueUnit(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// Serialize renders the block body without fences.
func (w Workout) Serialize() string {
	meta := []string{}
	if w.Metadata.Title != "" {
		meta = append(meta, "title: "+w.Metadata.Title)
	}
	meta = append(meta, "state: "+w.Metadata.State.String())
	if w.Metadata.StartDate != "" {
		meta = append(meta, "startDate: "+w.Metadata.StartDate)
	}
	if w.Metadata.Duration != "" {
		meta = append(meta, "duration: "+w.Metadata.Duration)
	}
	if w.Metadata.RestDuration > 0 {
		meta = append(meta, "restDuration: "+FormatDurationHuman(w.Metadata.RestDuration))
	}

	items := make([]string, 0, len(w.Exercises))
	for _, exercise := range w.Exercises {
		items = append(items, exercise.Serialize())
	}
	return joinBlock(meta, items)
}

// Serialize renders one exercise line.
func (e Exercise) Serialize() string {
	var b strings.Builder
	b.WriteString(itemPrefix(e.State, e.Name))
	if e.NotesFirst {
		writeNotes(&b, e.Notes)
	}
	for _, param := range e.Params {
		b.WriteString(" | ")
		b.WriteString(formatParam(param))
	}
	if !e.NotesFirst {
		writeNotes(&b, e.Notes)
	}
	return b.String()
}

func (w Workout) Category() Category { return CategoryWorkout }
func (w Workout) Title() string      { return w.Metadata.Title }
func (w Workout) State() LogState    { return w.Metadata.State }
func (w Workout) Len() int           { return len(w.Exercises) }

func (w Workout) Item(i int) (ItemView, bool) {
	if i < 0 || i >= len(w.Exercises) {
		return ItemView{}, false
	}
	e := w.Exercises[i]
	return ItemView{
		Name:      e.Name,
		State:     e.State,
		Target:    e.TargetDuration,
		Recorded:  e.RecordedDuration,
		LineIndex: e.LineIndex,
	}, true
}

// Clone returns a deep copy.
func (w Workout) Clone() Workout {
	out := Workout{Metadata: w.Metadata}
	if w.Exercises != nil {
		out.Exercises = make([]Exercise, len(w.Exercises))
		for i, e := range w.Exercises {
			out.Exercises[i] = e.clone()
		}
	}
	return out
}

func (e Exercise) clone() Exercise {
	if e.Params != nil {
		params := make([]Param, len(e.Params))
		copy(params, e.Params)
		e.Params = params
	}
	return e
}

func (w Workout) valid(i int) bool {
	return i >= 0 && i < len(w.Exercises)
}

// SetItemState returns a copy with exercise i moved to state. Moves the item
// lattice does not allow, a second in-progress exercise and bad indexes
// return w unchanged.
func (w Workout) SetItemState(i int, state ItemState) Workout {
	if !w.valid(i) || !w.Exercises[i].State.CanTransition(state) {
		return w
	}
	if state == ItemInProgress && ActiveIndex(w) >= 0 {
		return w
	}
	out := w.Clone()
	out.Exercises[i].State = state
	return out
}

// Start returns a copy moved from planned to started at the given timestamp.
func (w Workout) Start(at string) Workout {
	if !w.Metadata.State.CanAdvanceTo(StateStarted) {
		return w
	}
	out := w.Clone()
	out.Metadata.State = StateStarted
	out.Metadata.StartDate = at
	return out
}

// Complete returns a copy marked completed with the total duration stamped
// (when non-empty) and every field locked.
func (w Workout) Complete(duration string) Workout {
	if !w.Metadata.State.CanAdvanceTo(StateCompleted) {
		return w
	}
	out := w.LockAllFields()
	out.Metadata.State = StateCompleted
	if duration != "" {
		out.Metadata.Duration = duration
	}
	return out
}

// LockAllFields removes the brackets from every parameter.
func (w Workout) LockAllFields() Workout {
	out := w.Clone()
	for i := range out.Exercises {
		for j := range out.Exercises[i].Params {
			out.Exercises[i].Params[j].Editable = false
		}
	}
	return out
}

// UpdateParamValue edits the value of an editable parameter. Locked
// parameters and completed workouts are left alone.
func (w Workout) UpdateParamValue(i int, key, value string) Workout {
	if !w.valid(i) || w.Metadata.State == StateCompleted {
		return w
	}
	idx := findParam(w.Exercises[i].Params, key)
	if idx < 0 || !w.Exercises[i].Params[idx].Editable || w.Exercises[i].Params[idx].Value == value {
		return w
	}
	out := w.Clone()
	exercise := &out.Exercises[i]
	exercise.Params[idx].Value = value
	if strings.ToLower(key) == durationKey {
		exercise.TargetDuration = ParseDuration(value)
	}
	return out
}

// SetRecordedDuration writes a locked Duration parameter, adding one if needed.
func (w Workout) SetRecordedDuration(i int, duration string) Workout {
	if !w.valid(i) {
		return w
	}
	out := w.Clone()
	exercise := &out.Exercises[i]
	idx := findParam(exercise.Params, durationKey)
	if idx >= 0 {
		exercise.Params[idx].Value = duration
		exercise.Params[idx].Editable = false
		exercise.Params[idx].Unit = ""
	} else {
		exercise.Params = append(exercise.Params, Param{Key: "Duration", Value: duration})
	}
	exercise.RecordedDuration = duration
	return out
}

// AddSet inserts a pending copy of exercise i right after it. A countdown
// target is restored as an editable Duration; a recorded duration without a
// target is dropped from the copy.
func (w Workout) AddSet(i int) Workout {
	if !w.valid(i) || w.Metadata.State == StateCompleted {
		return w
	}
	source := w.Exercises[i]
	set := source.clone()
	set.State = ItemPending
	set.RecordedDuration = ""
	set.LineIndex = source.LineIndex + 1

	if idx := findParam(set.Params, durationKey); idx >= 0 && !set.Params[idx].Editable {
		if set.TargetDuration > 0 {
			set.Params[idx] = Param{Key: set.Params[idx].Key, Value: FormatDurationHuman(set.TargetDuration), Editable: true}
		} else {
			set.Params = append(set.Params[:idx], set.Params[idx+1:]...)
		}
	}
	return w.insertAfter(i, set)
}

// AddRest inserts a pending "Rest" countdown of restSeconds after exercise i.
func (w Workout) AddRest(i int, restSeconds int) Workout {
	if !w.valid(i) || restSeconds <= 0 || w.Metadata.State == StateCompleted {
		return w
	}
	rest := Exercise{
		State:          ItemPending,
		Name:           "Rest",
		Params:         []Param{{Key: "Duration", Value: FormatDurationHuman(restSeconds), Editable: true}},
		TargetDuration: restSeconds,
		LineIndex:      w.Exercises[i].LineIndex + 1,
	}
	return w.insertAfter(i, rest)
}

func (w Workout) insertAfter(i int, exercise Exercise) Workout {
	out := w.Clone()
	exercises := make([]Exercise, 0, len(out.Exercises)+1)
	exercises = append(exercises, out.Exercises[:i+1]...)
	exercises = append(exercises, exercise)
	for _, next := range out.Exercises[i+1:] {
		next.LineIndex++
		exercises = append(exercises, next)
	}
	out.Exercises = exercises
	return out
}

func findParam(params []Param, key string) int {
	for i, p := range params {
		if strings.EqualFold(p.Key, key) {
			return i
		}
	}
	return -1
}

// TemplateExercise is one row of a saved workout template; Params uses the item
// line parameter syntax, e.g. "Weight: [40] kg | Reps: [12]".
type TemplateExercise struct {
	Name   string `yaml:"name"`
	Params string `yaml:"params"`
}

// WorkoutFromTemplate builds a planned workout from template rows.
func WorkoutFromTemplate(title string, restSeconds int, rows []TemplateExercise) Workout {
	w := Workout{Metadata: WorkoutMetadata{Title: title, State: StatePlanned, RestDuration: restSeconds}}
	for _, row := range rows {
		line := itemPrefix(ItemPending, row.Name)
		if params := strings.TrimSpace(row.Params); params != "" {
			line += " | " + params
		}
		if exercise, ok := parseExercise(line, len(w.Exercises)); ok {
			w.Exercises = append(w.Exercises, exercise)
		}
	}
	return w
}

// SampleWorkout returns the starter workout offered for empty blocks.
func SampleWorkout() Workout {
	rest := func(line int) Exercise {
		return Exercise{
			Name:           "Rest",
			Params:         []Param{{Key: "Duration", Value: "60s", Editable: true}},
			TargetDuration: 60,
			LineIndex:      line,
		}
	}
	return Workout{
		Metadata: WorkoutMetadata{Title: "Sample Workout", State: StatePlanned, RestDuration: 60},
		Exercises: []Exercise{
			{Name: "Squats", Params: []Param{{Key: "Weight", Value: "60", Editable: true, Unit: "kg"}, {Key: "Reps", Value: "12", Editable: true}}, LineIndex: 0},
			rest(1),
			{Name: "Push-ups", Params: []Param{{Key: "Reps", Value: "15", Editable: true}}, LineIndex: 2},
			rest(3),
			{Name: "Dumbbell Rows", Params: []Param{{Key: "Weight", Value: "20", Editable: true, Unit: "kg"}, {Key: "Reps", Value: "10", Editable: true, Unit: "/arm"}}, LineIndex: 4},
			rest(5),
			{Name: "Plank Hold", Params: []Param{{Key: "Duration", Value: "45s", Editable: true}}, TargetDuration: 45, LineIndex: 6},
			rest(7),
			{Name: "Lunges", Params: []Param{{Key: "Reps", Value: "10", Editable: true, Unit: "/leg"}}, LineIndex: 8},
		},
	}
}

// SerializeWorkoutTemplate renders a reusable copy: planned state, one entry
// per exercise name, every value editable and recorded durations dropped.
func SerializeWorkoutTemplate(w Workout) string {
	meta := []string{}
	if w.Metadata.Title != "" {
		meta = append(meta, "title: "+w.Metadata.Title)
	}
	meta = append(meta, "state: planned")
	if w.Metadata.RestDuration > 0 {
		meta = append(meta, "restDuration: "+FormatDurationHuman(w.Metadata.RestDuration))
	}

	seen := make(map[string]bool)
	var items []string
	for _, exercise := range w.Exercises {
		if seen[exercise.Name] {
			continue
		}
		seen[exercise.Name] = true

		var b strings.Builder
		b.WriteString(itemPrefix(ItemPending, exercise.Name))
		for _, param := range exercise.Params {
			if strings.EqualFold(param.Key, durationKey) {
				if exercise.TargetDuration <= 0 {
					continue
				}
				param = Param{Key: param.Key, Value: FormatDurationHuman(exercise.TargetDuration)}
			}
			param.Editable = true
			b.WriteString(" | ")
			b.WriteString(formatParam(param))
		}
		items = append(items, b.String())
	}
	return joinBlock(meta, items)
}
