package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	slide      lipgloss.Style
	slideMeta  lipgloss.Style
	phase      lipgloss.Style
	clock      lipgloss.Style
	focusClock lipgloss.Style
	pause      lipgloss.Style
	alarm      lipgloss.Style
	muted      lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	barBracket lipgloss.Style
}

func newStyles() styles {
	return styles{
		slide:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		slideMeta:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		phase:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		clock:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		focusClock: lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")),
		pause:      lipgloss.NewStyle().Bold(true).Padding(1, 4).Foreground(lipgloss.Color("214")),
		alarm:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		muted:      lipgloss.NewStyle().Faint(true),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}
