package tui

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeintel/internal/config"
	"codeintel/internal/engine"
	"codeintel/internal/metrics"
	"codeintel/internal/store"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database = filepath.Join(dir, "history.db")
	cfg.Cache.Dir = ""
	cfg.Model = filepath.Join(dir, "none.json")
	e, err := engine.New(cfg, engine.Options{History: true})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	m := New(Config{Engine: e})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestInputPaths(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, " a.py  b.py c.py")
	assert.Equal(t, []string{"a.py", "b.py"}, m.input.paths())
}

func TestAnalyzeFlow(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "a.py")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, ViewAnalyzing, m.state)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Analyzing a.py...")

	next, _ = m.Update(analysisDoneMsg{paths: []string{"a.py"}, markdown: "# a.py\n\nbody"})
	m = next.(Model)
	assert.Equal(t, ViewResult, m.state)
	assert.Equal(t, "a.py", m.result.path)
	assert.Contains(t, m.View(), "e review")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Equal(t, ViewInput, m.state)
}

func TestAnalyzeError(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "missing.py")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	next, _ = m.Update(analysisDoneMsg{paths: []string{"missing.py"}, err: errors.New("no such file")})
	m = next.(Model)
	assert.Equal(t, ViewInput, m.state)
	assert.Contains(t, m.View(), "Error: no such file")
}

func TestComparisonHasNoReview(t *testing.T) {
	m := newTestModel(t)
	m.state = ViewAnalyzing
	next, _ := m.Update(analysisDoneMsg{paths: []string{"a.py", "b.py"}, markdown: "# File 1 is better."})
	m = next.(Model)
	require.Equal(t, ViewResult, m.state)
	assert.Empty(t, m.result.path)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewResult, next.(Model).state)
}

func TestReviewFailureKeepsReport(t *testing.T) {
	m := newTestModel(t)
	m.state = ViewAnalyzing
	next, _ := m.Update(analysisDoneMsg{paths: []string{"a.py"}, markdown: "# a.py"})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, ViewAnalyzing, m.state)

	next, _ = m.Update(reviewDoneMsg{err: errors.New("connect to ollama: refused")})
	m = next.(Model)
	assert.Equal(t, ViewResult, m.state)
	assert.Contains(t, m.result.notice, "review failed")
	assert.Len(t, m.result.markdown, 1)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, ViewAnalyzing, m.state)

	next, _ = m.Update(reviewDoneMsg{review: "## Summary"})
	m = next.(Model)
	assert.Equal(t, ViewResult, m.state)
	assert.Len(t, m.result.markdown, 2)
}

func TestHistoryView(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, ViewHistory, m.state)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading history")

	loaded := cmd()
	next, _ = m.Update(loaded)
	m = next.(Model)
	assert.Contains(t, m.View(), "No analyses yet.")

	rows := []store.Analysis{
		{ID: 2, CreatedAt: time.Now(), Mode: store.ModeSingle, Path: "/x/b.py", Features: metrics.FeatureVector{Filename: "b.py"}, Label: "good", Score: 85, Grade: "A"},
		{ID: 1, CreatedAt: time.Now(), Mode: store.ModeSingle, Path: "/x/a.py", Features: metrics.FeatureVector{Filename: "a.py"}, Label: "bad", Score: 40, Grade: "C"},
	}
	next, _ = m.Update(historyMsg{rows: rows})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.history.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, ViewResult, m.state)
	assert.Equal(t, "/x/a.py", m.result.path)
	assert.Equal(t, "history #1", m.result.title)
}

func TestGradeBadge(t *testing.T) {
	assert.Contains(t, gradeBadge("A"), "A")
	assert.Contains(t, gradeBadge("Z"), "Z")
	assert.Contains(t, gradeBadge(""), "-")
}
