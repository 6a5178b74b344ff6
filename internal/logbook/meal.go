package logbook

import "strings"

// MealType is the meal-of-day slot.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// ParseMealType accepts any case; unknown values fall back to lunch.
func ParseMealType(value string) (MealType, bool) {
	switch t := MealType(strings.ToLower(strings.TrimSpace(value))); t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return t, true
	}
	return MealLunch, false
}

// MealMetadata is the header of a `meal-log` block.
type MealMetadata struct {
	Title    string
	MealType MealType
	State    LogState
	Date     string
	Photo    string
	Notes    string
}

// Food is one eaten (or planned) dish. Its state is only ever pending or completed.
type Food struct {
	State     ItemState
	Name      string
	LineIndex int
}

// MealLog is a parsed `meal-log` block.
type MealLog struct {
	Metadata MealMetadata
	Foods    []Food
}

// ParseMeal reads a `meal-log` block body.
func ParseMeal(body string) MealLog {
	parts := splitBlock(body)

	m := MealLog{Metadata: MealMetadata{MealType: MealLunch, State: StatePlanned}}
	eachMetadata(parts.metadata, func(key, value string) {
		switch key {
		case "title":
			m.Metadata.Title = value
		case "mealtype":
			if t, ok := ParseMealType(value); ok {
				m.Metadata.MealType = t
			}
		case "state":
			if state, ok := parseLogState(value); ok {
				m.Metadata.State = state
			}
		case "date":
			m.Metadata.Date = value
		case "photo":
			m.Metadata.Photo = value
		case "notes":
			m.Metadata.Notes = value
		}
	})

	for i, line := range parts.items {
		item, ok := parseItemLine(line)
		if !ok {
			continue
		}
		state := ItemPending
		if item.stateChar == "x" {
			state = ItemCompleted
		}
		m.Foods = append(m.Foods, Food{State: state, Name: item.rest, LineIndex: i})
	}
	return m
}

// Serialize renders the block body without fences.
func (m MealLog) Serialize() string {
	md := m.Metadata
	mealType := md.MealType
	if mealType == "" {
		mealType = MealLunch
	}

	meta := []string{}
	if md.Title != "" {
		meta = append(meta, "title: "+md.Title)
	}
	meta = append(meta, "mealType: "+string(mealType))
	meta = append(meta, "state: "+md.State.String())
	if md.Date != "" {
		meta = append(meta, "date: "+md.Date)
	}
	if md.Photo != "" {
		meta = append(meta, "photo: "+md.Photo)
	}
	if md.Notes != "" {
		meta = append(meta, "notes: "+md.Notes)
	}

	items := make([]string, 0, len(m.Foods))
	for _, food := range m.Foods {
		state := ItemPending
		if food.State == ItemCompleted {
			state = ItemCompleted
		}
		items = append(items, itemPrefix(state, food.Name))
	}
	return joinBlock(meta, items)
}

func (m MealLog) Category() Category { return CategoryMeal }
func (m MealLog) Title() string      { return m.Metadata.Title }
func (m MealLog) State() LogState    { return m.Metadata.State }
func (m MealLog) Len() int           { return len(m.Foods) }

func (m MealLog) Item(i int) (ItemView, bool) {
	if i < 0 || i >= len(m.Foods) {
		return ItemView{}, false
	}
	f := m.Foods[i]
	return ItemView{Name: f.Name, State: f.State, LineIndex: f.LineIndex}, true
}

// Clone returns a deep copy.
func (m MealLog) Clone() MealLog {
	out := m
	if m.Foods != nil {
		out.Foods = make([]Food, len(m.Foods))
		copy(out.Foods, m.Foods)
	}
	return out
}

// SetItemState only moves a food between pending and completed.
func (m MealLog) SetItemState(i int, state ItemState) MealLog {
	if i < 0 || i >= len(m.Foods) || (state != ItemPending && state != ItemCompleted) {
		return m
	}
	if m.Foods[i].State == state {
		return m
	}
	out := m.Clone()
	out.Foods[i].State = state
	return out
}

// ToggleFood flips food i between pending and completed.
func (m MealLog) ToggleFood(i int) MealLog {
	if i < 0 || i >= len(m.Foods) {
		return m
	}
	if m.Foods[i].State == ItemCompleted {
		return m.SetItemState(i, ItemPending)
	}
	return m.SetItemState(i, ItemCompleted)
}

// AddFood appends a pending food. Blank names are ignored.
func (m MealLog) AddFood(name string) MealLog {
	name = strings.TrimSpace(name)
	if name == "" {
		return m
	}
	out := m.Clone()
	out.Foods = append(out.Foods, Food{State: ItemPending, Name: name, LineIndex: len(out.Foods)})
	return out
}

// RemoveFood drops food i and renumbers the rest.
func (m MealLog) RemoveFood(i int) MealLog {
	if i < 0 || i >= len(m.Foods) {
		return m
	}
	out := m.Clone()
	out.Foods = append(out.Foods[:i], out.Foods[i+1:]...)
	for j := i; j < len(out.Foods); j++ {
		out.Foods[j].LineIndex = j
	}
	return out
}

// SetPhoto stores the photo link.
func (m MealLog) SetPhoto(path string) MealLog {
	out := m.Clone()
	out.Metadata.Photo = strings.TrimSpace(path)
	return out
}

// Complete marks the meal completed.
func (m MealLog) Complete() MealLog {
	if !m.Metadata.State.CanAdvanceTo(StateCompleted) {
		return m
	}
	out := m.Clone()
	out.Metadata.State = StateCompleted
	return out
}

// NewMeal builds a quick-entry meal log dated date with every food already eaten.
func NewMeal(mealType MealType, date string, foods []string) MealLog {
	if _, ok := ParseMealType(string(mealType)); !ok {
		mealType = MealLunch
	}
	m := MealLog{Metadata: MealMetadata{
		Title:    strings.ToUpper(string(mealType[:1])) + string(mealType[1:]),
		MealType: mealType,
		State:    StateCompleted,
		Date:     date,
	}}
	for _, name := range foods {
		if name = strings.TrimSpace(name); name != "" {
			m.Foods = append(m.Foods, Food{State: ItemCompleted, Name: name, LineIndex: len(m.Foods)})
		}
	}
	return m
}
