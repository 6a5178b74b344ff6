package logbook

import (
	"fmt"
	"strings"
)

// Category identifies which kind of log a fenced block holds.
type Category uint8

const (
	// CategoryWorkout marks `life-log` blocks.
	CategoryWorkout Category = iota
	// CategoryStudy marks `study-log` blocks.
	CategoryStudy
	// CategoryWork marks `work-log` blocks.
	CategoryWork
	// CategoryMeal marks `meal-log` blocks.
	CategoryMeal
)

// Categories lists every category in display order.
var Categories = []Category{CategoryStudy, CategoryWorkout, CategoryWork, CategoryMeal}

var categoryNames = map[Category]string{
	CategoryWorkout: "workout",
	CategoryStudy:   "study",
	CategoryWork:    "work",
	CategoryMeal:    "meal",
}

var categoryTags = map[Category]string{
	CategoryWorkout: "life-log",
	CategoryStudy:   "study-log",
	CategoryWork:    "work-log",
	CategoryMeal:    "meal-log",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Tag returns the fence tag written when a block of this category is created.
func (c Category) Tag() string {
	return categoryTags[c]
}

// Tags returns every fence tag accepted for this category.
func (c Category) Tags() []string {
	if tag, ok := categoryTags[c]; ok {
		return []string{tag}
	}
	return nil
}

// Timed reports whether items of this category are driven by a timer.
func (c Category) Timed() bool {
	return c != CategoryMeal
}

// ParseCategory accepts either a category name ("study") or a fence tag ("study-log").
func ParseCategory(value string) (Category, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for c, name := range categoryNames {
		if value == name || value == categoryTags[c] {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

// CategoryForTag maps a fence tag to its category.
func CategoryForTag(tag string) (Category, bool) {
	for c, t := range categoryTags {
		if t == tag {
			return c, true
		}
	}
	return 0, false
}

// LogState is the overall lifecycle of a record.
type LogState uint8

const (
	// StatePlanned is the default for freshly written blocks.
	StatePlanned LogState = iota
	// StateStarted marks a session with a running timer.
	StateStarted
	// StateCompleted is terminal.
	StateCompleted
)

var logStateNames = []string{"planned", "started", "completed"}

func (s LogState) String() string {
	if int(s) < len(logStateNames) {
		return logStateNames[s]
	}
	return "planned"
}

// parseLogState is case-sensitive; block text always uses the lowercase names.
func parseLogState(value string) (LogState, bool) {
	for i, name := range logStateNames {
		if value == name {
			return LogState(i), true
		}
	}
	return StatePlanned, false
}

// CanAdvanceTo reports whether moving to next keeps the planned -> started -> completed order.
func (s LogState) CanAdvanceTo(next LogState) bool {
	return next > s && next <= StateCompleted
}

// ItemState tracks a single exercise, task or food entry.
type ItemState uint8

const (
	// ItemPending is written as `[ ]`.
	ItemPending ItemState = iota
	// ItemInProgress is written as `[\]`.
	ItemInProgress
	// ItemCompleted is written as `[x]`.
	ItemCompleted
	// ItemSkipped is written as `[-]`.
	ItemSkipped
)

var itemStateNames = []string{"pending", "inProgress", "completed", "skipped"}

func (s ItemState) String() string {
	if int(s) < len(itemStateNames) {
		return itemStateNames[s]
	}
	return "pending"
}

// Char returns the checkbox character for the state.
func (s ItemState) Char() byte {
	switch s {
	case ItemInProgress:
		return '\\'
	case ItemCompleted:
		return 'x'
	case ItemSkipped:
		return '-'
	default:
		return ' '
	}
}

func itemStateFromChar(ch string) ItemState {
	switch ch {
	case "\\":
		return ItemInProgress
	case "x":
		return ItemCompleted
	case "-":
		return ItemSkipped
	default:
		return ItemPending
	}
}

// CanTransition reports whether the four-state item lattice allows from -> to.
func (s ItemState) CanTransition(to ItemState) bool {
	switch s {
	case ItemPending:
		return to == ItemInProgress || to == ItemSkipped
	case ItemInProgress:
		return to == ItemCompleted || to == ItemSkipped
	default:
		return false
	}
}

// Param is a `Key: value unit` segment of an item line.
type Param struct {
	Key      string
	Value    string
	Editable bool
	Unit     string
}

// Span locates a fenced block inside a document by its fence lines (0-based, inclusive).
type Span struct {
	Start int
	End   int
}

// ItemView is the category-independent projection of an item.
type ItemView struct {
	Name      string
	State     ItemState
	Target    int
	Recorded  string
	LineIndex int
}

// Record is implemented by every parsed block type.
type Record interface {
	Category() Category
	Title() string
	State() LogState
	Len() int
	Item(i int) (ItemView, bool)
	Serialize() string
}

// ActiveIndex returns the first in-progress item or -1.
func ActiveIndex(r Record) int {
	for i := 0; i < r.Len(); i++ {
		if item, ok := r.Item(i); ok && item.State == ItemInProgress {
			return i
		}
	}
	return -1
}

// NextPending returns the first pending item after index, or -1.
func NextPending(r Record, after int) int {
	for i := after + 1; i < r.Len(); i++ {
		if item, ok := r.Item(i); ok && item.State == ItemPending {
			return i
		}
	}
	return -1
}
