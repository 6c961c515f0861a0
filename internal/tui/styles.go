package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	listItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// gradeStyles colour a letter grade; unknown grades fall back to dimStyle.
	gradeStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		"B": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		"C": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
)

func gradeBadge(letter string) string {
	if letter == "" {
		letter = "-"
	}
	if s, ok := gradeStyles[letter]; ok {
		return s.Render(letter)
	}
	return dimStyle.Render(letter)
}
