// Package tui is the interactive terminal front end: enter a path, watch it
// being analyzed, read the report, ask for a review and browse history.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeintel/internal/engine"
	"codeintel/internal/report"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewInput ViewState = iota
	ViewAnalyzing
	ViewResult
	ViewHistory
)

// Config holds what the CLI layer passes in.
type Config struct {
	Engine *engine.Engine
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	input     inputModel
	analyzing analyzingModel
	result    resultModel
	history   historyModel
	// back is the state a finished review returns to.
	back ViewState
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:  ViewInput,
		config: cfg,
		input:  newInputModel(cfg.Engine.HasModel()),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewResult {
			m.result.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != ViewInput {
				return m, tea.Quit
			}
		case "esc":
			if m.state == ViewResult || m.state == ViewHistory {
				m.state = ViewInput
				m.input.input.Focus()
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewInput:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.Type {
			case tea.KeyTab:
				return m.openHistory()
			case tea.KeyEnter:
				paths := m.input.paths()
				if len(paths) == 0 {
					return m, nil
				}
				m.input.err = nil
				m.state = ViewAnalyzing
				m.analyzing = newAnalyzingModel("Analyzing " + strings.Join(paths, " and ") + "...")
				return m, tea.Batch(m.analyzing.spinner.Tick, analyze(m.config.Engine, paths))
			}
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ViewAnalyzing:
		switch msg := msg.(type) {
		case analysisDoneMsg:
			if msg.err != nil {
				m.state = ViewInput
				m.input.err = msg.err
				return m, nil
			}
			title := strings.Join(msg.paths, " vs ")
			path := ""
			if len(msg.paths) == 1 {
				path = msg.paths[0]
			}
			m.result = newResultModel(title, path, msg.markdown, m.width, m.height)
			m.state = ViewResult
			return m, nil
		case reviewDoneMsg:
			m.state = m.back
			if msg.err != nil {
				m.result.notice = "review failed: " + msg.err.Error()
				return m, nil
			}
			m.result.notice = "review by " + m.config.Engine.Config().Ollama.Model
			m.result.appendMarkdown(msg.review)
			return m, nil
		}
		m.analyzing, cmd = m.analyzing.Update(msg)
		return m, cmd

	case ViewResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "e":
				if m.result.path == "" {
					return m, nil
				}
				m.back = ViewResult
				m.state = ViewAnalyzing
				m.analyzing = newAnalyzingModel(fmt.Sprintf("Asking %s for a review of %s...",
					m.config.Engine.Config().Ollama.Model, filepath.Base(m.result.path)))
				return m, tea.Batch(m.analyzing.spinner.Tick, review(m.config.Engine, m.result.path))
			case "h":
				return m.openHistory()
			}
		}
		m.result, cmd = m.result.Update(msg)
		return m, cmd

	case ViewHistory:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			if a, ok := m.history.selected(); ok {
				m.result = newResultModel(fmt.Sprintf("history #%d", a.ID), a.Path, report.AnalysisMarkdown(a), m.width, m.height)
				m.state = ViewResult
			}
			return m, nil
		}
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	m.state = ViewHistory
	m.history = historyModel{}
	m.input.input.Blur()
	return m, loadHistory(m.config.Engine)
}

func (m Model) View() string {
	switch m.state {
	case ViewInput:
		return m.input.View(m.width, m.height)
	case ViewAnalyzing:
		return m.analyzing.View(m.width, m.height)
	case ViewResult:
		return m.result.View(m.width, m.height)
	case ViewHistory:
		return m.history.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	if cfg.Engine == nil {
		return errors.New("tui: no engine")
	}
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
