package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeintel/internal/lang"
	"codeintel/internal/metrics"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(name string, loc int) metrics.FeatureVector {
	return metrics.FeatureVector{
		Filename:             name,
		Language:             lang.Python,
		LinesOfCode:          loc,
		NumFunctions:         2,
		AvgLineLength:        20.5,
		CyclomaticComplexity: 2,
		HasDocstring:         1,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.SaveAnalysis(Analysis{
		CreatedAt: created,
		Mode:      ModeSingle,
		Path:      "/src/good.py",
		Features:  sample("good.py", 13),
		Cluster:   0,
		Label:     "good",
		Score:     85,
		Grade:     "A",
	})
	require.NoError(t, err)

	got, err := s.GetAnalysis(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, ModeSingle, got.Mode)
	assert.Equal(t, "/src/good.py", got.Path)
	assert.Equal(t, sample("good.py", 13), got.Features)
	assert.Equal(t, "good", got.Label)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, "A", got.Grade)

	_, err = s.GetAnalysis(id + 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	for i, mode := range []Mode{ModeSingle, ModeCompareFirst, ModeCompareSecond} {
		_, err := s.SaveAnalysis(Analysis{Mode: mode, Features: sample("f.py", i), Cluster: -1})
		require.NoError(t, err)
	}

	all, err := s.ListHistory(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ModeCompareSecond, all[0].Mode)
	assert.Equal(t, ModeSingle, all[2].Mode)
	assert.False(t, all[0].CreatedAt.IsZero())

	two, err := s.ListHistory(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSimilar(t *testing.T) {
	s := openTestStore(t)
	for _, loc := range []int{10, 50, 200} {
		_, err := s.SaveAnalysis(Analysis{Mode: ModeSingle, Features: sample("f.py", loc)})
		require.NoError(t, err)
	}

	matches, err := s.Similar(sample("q.py", 48), 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 50, matches[0].Analysis.Features.LinesOfCode)
	assert.Equal(t, 10, matches[1].Analysis.Features.LinesOfCode)
	assert.InDelta(t, 2.0, matches[0].Distance, 1e-4)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)

	none, err := s.Similar(sample("q.py", 1), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClearHistory(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveAnalysis(Analysis{Mode: ModeSingle, Features: sample("a.py", 1)})
	require.NoError(t, err)

	require.NoError(t, s.ClearHistory())
	all, err := s.ListHistory(0)
	require.NoError(t, err)
	assert.Empty(t, all)
	matches, err := s.Similar(sample("a.py", 1), 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	require.NoError(t, err)
	v, err := s.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	require.NoError(t, s.SetMeta("schema_version", "0"))
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "schema version")
}
