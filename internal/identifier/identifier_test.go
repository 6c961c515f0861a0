package identifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"getUserID", []string{"get", "user", "id"}},
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"MAX_RETRIES", []string{"max", "retries"}},
		{"HTTPServer", []string{"http", "server"}},
		{"parseJSON2", []string{"parse", "jso"}},
		{"__init__", []string{"init"}},
		{"x", []string{"x"}},
		{"X", []string{"x"}},
		{"v2", []string{"v"}},
		{"123", nil},
		{"", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Split(c.in), "Split(%q)", c.in)
	}
}

func TestScore(t *testing.T) {
	dict := NewDictionary("get", "user", "id", "total")

	assert.Equal(t, 0.0, Score(dict, "", DefaultMaxLength))
	assert.Equal(t, 0.0, Score(dict, "___", DefaultMaxLength))
	assert.Equal(t, 1.0, Score(dict, "getUserID", DefaultMaxLength))
	assert.InDelta(t, 2.0/3.0, Score(dict, "get_user_xyz", DefaultMaxLength), 1e-12)
	assert.Equal(t, 0.0, Score(dict, "qqq", DefaultMaxLength))
}

func TestScoreLengthPenalty(t *testing.T) {
	dict := NewDictionary("total")
	name := strings.Repeat("total_", 9) + "total" // 59 characters
	require.Len(t, name, 59)
	assert.InDelta(t, 30.0/59.0, Score(dict, name, 30), 1e-12)
	assert.Equal(t, 1.0, Score(dict, "total", 5))
	assert.InDelta(t, 5.0/11.0, Score(dict, "total_total", 5), 1e-12)
}

func TestScoreRange(t *testing.T) {
	dict := LoadDictionary()
	names := []string{
		"", "a", "getUserID", "fib", "fibonacci", "__main__", "XMLHttpRequest",
		"tmp1", "the_quick_brown_fox_jumps_over_the_lazy_dog_again_and_again",
		"ÿÿÿ", "日本語", "a_b_c_d", "URL",
	}
	for _, n := range names {
		s := Score(dict, n, DefaultMaxLength)
		assert.GreaterOrEqual(t, s, 0.0, n)
		assert.LessOrEqual(t, s, 1.0, n)
	}
}

func TestAverage(t *testing.T) {
	dict := NewDictionary("main", "fibonacci")
	assert.Equal(t, 0.0, Average(dict, nil, DefaultMaxLength))
	assert.Equal(t, 1.0, Average(dict, []string{"fibonacci", "main"}, DefaultMaxLength))
	assert.Equal(t, 0.5, Average(dict, []string{"fibonacci", "fib"}, DefaultMaxLength))
}

func TestEmbeddedDictionary(t *testing.T) {
	dict := LoadDictionary()
	assert.Greater(t, dict.Len(), 1000)
	for _, w := range []string{"get", "user", "id", "fibonacci", "main", "sequence", "anonymous"} {
		assert.True(t, dict.Contains(w), w)
	}
	assert.False(t, dict.Contains("fib"))
	assert.False(t, dict.Contains(""))
}

func TestLoadDictionaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\n\n  beta  \r\ngamma\n"), 0o644))

	dict, err := LoadDictionaryFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, dict.Len())
	assert.True(t, dict.Contains("alpha"))
	assert.True(t, dict.Contains("beta"))

	_, err = LoadDictionaryFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	assert.False(t, d.Contains("get"))
	assert.Zero(t, d.Len())
	assert.Equal(t, 0.0, Score(d, "getUser", DefaultMaxLength))
}
