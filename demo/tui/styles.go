package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = "#7D56F4"
	colorOK      = "#04B575"
	colorFailure = "#FF5F5F"
	colorMuted   = "#626262"
	colorBright  = "#FAFAFA"
	colorFrame   = "#874BFD"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginTop(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorOK))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFailure))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	// BoxStyle frames the selected article's details.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorFrame)).
			Padding(0, 1).
			Width(80)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorBright)).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)

	// CursorStyle marks the highlighted row of the result list.
	CursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))
)
