package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel asks for one file to assess, or two to compare.
type inputModel struct {
	input    textinput.Model
	hasModel bool
	err      error
}

func newInputModel(hasModel bool) inputModel {
	ti := textinput.New()
	ti.Placeholder = "path/to/file.py  (two paths to compare)"
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()
	return inputModel{input: ti, hasModel: hasModel}
}

// paths returns the submitted paths, at most two.
func (m inputModel) paths() []string {
	fields := strings.Fields(m.input.Value())
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return fields
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ codeintel") + "\n"
	s += subtitleStyle.Render("  Static quality metrics for Python and JavaScript") + "\n\n"

	if m.hasModel {
		s += successStyle.Render("  ✓ Quality model loaded") + "\n\n"
	} else {
		s += warnStyle.Render("  ⚠ No quality model, showing raw metrics") + "\n\n"
	}

	s += "  " + m.input.View() + "\n\n"
	if m.err != nil {
		s += errorStyle.Render("  Error: "+m.err.Error()) + "\n\n"
	}
	s += helpStyle.Render("  Enter analyze • Tab history • Ctrl+C quit") + "\n"
	return s
}
