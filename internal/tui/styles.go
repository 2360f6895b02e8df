package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	dimRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)
)

func statusColor(s string) lipgloss.Style {
	switch s {
	case "Watching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	case "Completed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	case "Rewatching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	case "OnHold":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	case "Dropped":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	}
}
