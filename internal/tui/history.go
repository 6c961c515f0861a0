package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"codeintel/internal/engine"
	"codeintel/internal/store"
)

const historyLimit = 50

type historyModel struct {
	rows   []store.Analysis
	cursor int
	loaded bool
	err    error
}

// historyMsg is sent when the history has been loaded.
type historyMsg struct {
	rows []store.Analysis
	err  error
}

func loadHistory(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		rows, err := e.History(historyLimit)
		return historyMsg{rows: rows, err: err}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		m.rows = msg.rows
		m.err = msg.err
		m.loaded = true
		m.cursor = 0
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// selected returns the highlighted analysis.
func (m historyModel) selected() (store.Analysis, bool) {
	if !m.loaded || m.cursor >= len(m.rows) {
		return store.Analysis{}, false
	}
	return m.rows[m.cursor], true
}

func (m historyModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  History") + "\n\n"

	switch {
	case !m.loaded:
		s += dimStyle.Render("  Loading history...") + "\n"
		return s
	case m.err != nil:
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
		s += helpStyle.Render("  Esc back") + "\n"
		return s
	case len(m.rows) == 0:
		s += dimStyle.Render("  No analyses yet.") + "\n\n"
		s += helpStyle.Render("  Esc back") + "\n"
		return s
	}

	// Keep the cursor visible: header, title and help take six lines.
	visible := max(height-6, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.rows))
	for i := start; i < end; i++ {
		a := m.rows[i]
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		line := fmt.Sprintf("%s  %-17s  %-24s",
			a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Mode, a.Features.Filename)
		s += fmt.Sprintf("  %s%s  %s %s\n", cursor, style.Render(line), gradeBadge(a.Grade), style.Render(a.Label))
	}
	s += "\n"
	s += helpStyle.Render("  ↑/↓ navigate • Enter open • Esc back") + "\n"
	return s
}
