package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#a6adc8")
	colorAccent  = lipgloss.Color("#74c7ec")
	colorDone    = lipgloss.Color("#a6e3a1")
	colorActive  = lipgloss.Color("#fab387")
	colorSkipped = lipgloss.Color("#6c7086")
	colorError   = lipgloss.Color("#f38ba8")

	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	textStyle     = lipgloss.NewStyle().Foreground(colorText)
	doneStyle     = lipgloss.NewStyle().Foreground(colorDone)
	activeStyle   = lipgloss.NewStyle().Foreground(colorActive).Bold(true)
	skippedStyle  = lipgloss.NewStyle().Foreground(colorSkipped).Strikethrough(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent)

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)
