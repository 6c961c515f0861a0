package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codeintel/internal/report"
)

// resultModel shows a rendered markdown report in a scrollable viewport.
type resultModel struct {
	viewport viewport.Model
	title    string
	// path is the file a review would be asked for; empty for comparisons.
	path     string
	markdown []string
	notice   string
	width    int
	height   int
}

func newResultModel(title, path, markdown string, width, height int) resultModel {
	m := resultModel{title: title, path: path, markdown: []string{markdown}}
	m.resize(width, height)
	return m
}

func (m *resultModel) resize(width, height int) {
	m.width = width
	m.height = height
	// Layout: viewport + status bar (1 line) + help (1 line).
	m.viewport = viewport.New(width, max(height-2, 5))
	m.viewport.SetContent(m.render())
}

func (m *resultModel) appendMarkdown(md string) {
	m.markdown = append(m.markdown, md)
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m resultModel) render() string {
	var sb strings.Builder
	for _, md := range m.markdown {
		out, err := report.Render(md, max(m.width-2, 20), true)
		if err != nil {
			sb.WriteString(md)
		} else {
			sb.WriteString(strings.TrimRight(out, "\n"))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (m resultModel) Update(msg tea.Msg) (resultModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m resultModel) View(width, height int) string {
	status := m.title
	if m.notice != "" {
		status += " • " + m.notice
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" codeintel • %s", status))

	help := "  ↑/↓ scroll • h history • Esc new file • q quit"
	if m.path != "" {
		help = "  ↑/↓ scroll • e review • h history • Esc new file • q quit"
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		helpStyle.Render(help),
	)
}
