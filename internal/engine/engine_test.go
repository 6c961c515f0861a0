package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeintel/internal/config"
	"codeintel/internal/quality"
	"codeintel/internal/store"
)

// testModel labels files with a docstring good and everything else bad.
const testModel = `{
  "feature_columns": ["has_docstring"],
  "scaler": {"mean": [0.5], "scale": [0.5]},
  "pca": {"components": [[1]]},
  "centroids": [[1], [-1]],
  "labels": {"0": "good", "1": "bad"}
}`

const documented = `def area(width, height):
    """Return the area."""
    return width * height
`

const undocumented = `def f(x):
    if x:
        return 1
    return 0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T, withModel bool) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database = filepath.Join(dir, "state", "history.db")
	cfg.Cache.Dir = filepath.Join(dir, "state", "cache")
	cfg.Model = filepath.Join(dir, "state", "missing.json")
	if withModel {
		cfg.Model = writeFile(t, dir, "state/model.json", testModel)
	}
	return cfg, dir
}

func newEngine(t *testing.T, cfg *config.Config, opts Options) *Engine {
	t.Helper()
	e, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestExtractWithoutModel(t *testing.T) {
	cfg, dir := testConfig(t, false)
	e := newEngine(t, cfg, Options{})
	assert.False(t, e.HasModel())

	fv, err := e.Extract(context.Background(), writeFile(t, dir, "src/a.py", documented))
	require.NoError(t, err)
	assert.Equal(t, "a.py", fv.Filename)
	assert.Equal(t, 1, fv.HasDocstring)
	assert.Equal(t, 1, fv.NumFunctions)

	_, err = e.Predict(context.Background(), filepath.Join(dir, "src/a.py"), true)
	assert.ErrorIs(t, err, quality.ErrNoModel)

	_, err = e.History(0)
	assert.ErrorIs(t, err, ErrNoHistory)
	assert.NoFileExists(t, cfg.Database)
}

func TestPredictRecordsHistory(t *testing.T) {
	cfg, dir := testConfig(t, true)
	e := newEngine(t, cfg, Options{History: true})
	good := writeFile(t, dir, "good.py", documented)
	bad := writeFile(t, dir, "bad.py", undocumented)

	a, err := e.Predict(context.Background(), good, true)
	require.NoError(t, err)
	assert.Equal(t, "good", a.Label)
	assert.Equal(t, "A", a.Letter)

	_, err = e.Predict(context.Background(), bad, false)
	require.NoError(t, err)

	cmp, err := e.Compare(context.Background(), good, bad, true)
	require.NoError(t, err)
	assert.Equal(t, "File 1 is better.", cmp.Verdict)
	assert.Equal(t, "bad", cmp.Second.Label)
	assert.Contains(t, cmp.Second.Suggestions, "⚠ Add docstrings.")

	history, err := e.History(0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, store.ModeCompareSecond, history[0].Mode)
	assert.Equal(t, bad, history[0].Path)
	assert.Equal(t, store.ModeCompareFirst, history[1].Mode)
	assert.Equal(t, store.ModeSingle, history[2].Mode)
	assert.Equal(t, 85, history[2].Score)

	got, err := e.Analysis(history[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "good.py", got.Features.Filename)

	matches, err := e.Similar(context.Background(), good, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "good.py", matches[0].Analysis.Features.Filename)
	assert.InDelta(t, 0, matches[0].Distance, 1e-6)

	require.NoError(t, e.ClearHistory())
	history, err = e.History(0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestExport(t *testing.T) {
	cfg, dir := testConfig(t, false)
	cfg.MaxFileSize = 200
	e := newEngine(t, cfg, Options{})
	root := filepath.Join(dir, "project")
	writeFile(t, root, "b.py", undocumented)
	writeFile(t, root, "a.js", "const x = 1\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "big.py", strings.Repeat("x = 1\n", 100))

	var last int
	res, err := e.Export(context.Background(), root, func(processed, total int) { last = processed })
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "a.js", res.Rows[0].RelPath)
	assert.Equal(t, "b.py", res.Rows[1].RelPath)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "big.py", res.Skipped[0].RelPath)
	assert.Equal(t, 2, last)
}

func TestReview(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models": [{"name": "qwen3:8b"}]}`))
		case "/api/chat":
			var req struct {
				Messages []struct{ Content string } `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			prompt = req.Messages[len(req.Messages)-1].Content
			w.Write([]byte(`{"message": {"role": "assistant", "content": "## Summary\nSmall."}}`))
		}
	}))
	defer srv.Close()

	cfg, dir := testConfig(t, true)
	cfg.Ollama.URL = srv.URL
	cfg.Ollama.Model = "qwen3:8b"
	e := newEngine(t, cfg, Options{})

	out, err := e.Review(context.Background(), writeFile(t, dir, "bad.py", undocumented))
	require.NoError(t, err)
	assert.Equal(t, "## Summary\nSmall.", out)
	assert.Contains(t, prompt, "Quality: bad (grade C, score 40)")
	assert.Contains(t, prompt, "def f(x):")

	cfg.Ollama.Model = "missing"
	_, err = e.Review(context.Background(), filepath.Join(dir, "bad.py"))
	assert.ErrorContains(t, err, `model "missing" not found`)
}

func TestNewRejectsBadModel(t *testing.T) {
	cfg, dir := testConfig(t, false)
	cfg.Model = writeFile(t, dir, "broken.json", `{"feature_columns": ["nope"]}`)
	_, err := New(cfg, Options{})
	assert.ErrorContains(t, err, "unknown feature column")
}

func TestReadOnlySkipsDiskCache(t *testing.T) {
	cfg, dir := testConfig(t, false)
	path := writeFile(t, dir, "src/a.py", documented)

	ro := newEngine(t, cfg, Options{ReadOnly: true})
	_, err := ro.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.NoDirExists(t, cfg.Cache.Dir)

	rw := newEngine(t, cfg, Options{})
	_, err = rw.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(cfg.Cache.Dir, "features"))
}
