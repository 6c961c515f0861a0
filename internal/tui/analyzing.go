package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"codeintel/internal/engine"
	"codeintel/internal/report"
)

type analyzingModel struct {
	spinner spinner.Model
	phase   string
}

func newAnalyzingModel(phase string) analyzingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return analyzingModel{spinner: sp, phase: phase}
}

// analysisDoneMsg carries the markdown report for the analyzed paths.
type analysisDoneMsg struct {
	paths    []string
	markdown string
	err      error
}

// reviewDoneMsg carries the model's written review.
type reviewDoneMsg struct {
	review string
	err    error
}

func analyze(e *engine.Engine, paths []string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		done := analysisDoneMsg{paths: paths}

		switch {
		case !e.HasModel():
			fv, err := e.Extract(ctx, paths[0])
			if err != nil {
				done.err = err
				return done
			}
			done.markdown = fmt.Sprintf("# %s\n\n_No quality model loaded._\n\n%s", paths[0], report.FeaturesMarkdown(fv))
		case len(paths) == 2:
			cmp, err := e.Compare(ctx, paths[0], paths[1], true)
			if err != nil {
				done.err = err
				return done
			}
			done.markdown = report.ComparisonMarkdown(paths[0], paths[1], cmp.First, cmp.Second)
		default:
			a, err := e.Predict(ctx, paths[0], true)
			if err != nil {
				done.err = err
				return done
			}
			done.markdown = report.AssessmentMarkdown(paths[0], a)
		}
		return done
	}
}

func review(e *engine.Engine, path string) tea.Cmd {
	return func() tea.Msg {
		text, err := e.Review(context.Background(), path)
		return reviewDoneMsg{review: text, err: err}
	}
}

func (m analyzingModel) Update(msg tea.Msg) (analyzingModel, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m analyzingModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  Analyzing") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), m.phase)
	return s
}
