package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Start      key.Binding
	FinishItem key.Binding
	Skip       key.Binding
	AddSet     key.Binding
	AddRest    key.Binding
	Pause      key.Binding
	Finish     key.Binding
	Toggle     key.Binding
	AddFood    key.Binding
	RemoveFood key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		FinishItem: key.NewBinding(key.WithKeys("enter", "f"), key.WithHelp("f", "finish item")),
		Skip:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "skip item")),
		AddSet:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "add set")),
		AddRest:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "add rest")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Finish:     key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "finish session")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle food")),
		AddFood:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add food")),
		RemoveFood: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove food")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.FinishItem, k.Skip, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Reload},
		{k.Start, k.FinishItem, k.Skip, k.Pause, k.Finish},
		{k.AddSet, k.AddRest},
		{k.Toggle, k.AddFood, k.RemoveFood},
		{k.Help, k.Quit},
	}
}
