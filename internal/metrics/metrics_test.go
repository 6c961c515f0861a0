package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeintel/internal/identifier"
	"codeintel/internal/lang"
	"codeintel/internal/structure"
	"codeintel/internal/structure/languages"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	kw, err := lang.LoadKeywords()
	require.NoError(t, err)
	return NewExtractor(structure.NewAnalyzer(languages.Default()), identifier.LoadDictionary(), kw)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractGoodSample(t *testing.T) {
	fv, err := newExtractor(t).Extract(context.Background(), filepath.Join("testdata", "good.py"))
	require.NoError(t, err)

	assert.Equal(t, "good.py", fv.Filename)
	assert.Equal(t, lang.Python, fv.Language)
	assert.Equal(t, 13, fv.LinesOfCode)
	assert.Equal(t, 2, fv.NumFunctions)
	assert.Equal(t, 1, fv.NumComments)
	assert.InDelta(t, 1.0/15.0, fv.CommentRatio, 1e-12)
	assert.InDelta(t, 400.0/22.0, fv.AvgLineLength, 1e-12)
	assert.Equal(t, 61, fv.MaxLineLength)
	assert.InDelta(t, 0.2, fv.IndentationConsistency, 1e-12)
	assert.Zero(t, fv.NestingDepth)
	assert.InDelta(t, 2.0, fv.CyclomaticComplexity, 1e-12)
	assert.Zero(t, fv.NumImports)
	assert.Equal(t, 1, fv.NumLoops)
	assert.Equal(t, 2, fv.NumConditionals)
	assert.Zero(t, fv.NumExceptions)
	assert.Equal(t, 1, fv.HasDocstring)
	assert.InDelta(t, 41.0/13.0, fv.AvgTokensPerLine, 1e-12)
	assert.InDelta(t, 7.0/13.0, fv.KeywordDensity, 1e-12)
	assert.InDelta(t, 6.0/22.0, fv.BlankLinesRatio, 1e-12)
	assert.InDelta(t, 1.0, fv.AvgIdentifierQuality, 1e-12)
}

func TestExtractAverageSample(t *testing.T) {
	fv, err := newExtractor(t).Extract(context.Background(), filepath.Join("testdata", "average.py"))
	require.NoError(t, err)

	assert.Equal(t, 9, fv.LinesOfCode)
	assert.Equal(t, 1, fv.NumFunctions)
	assert.Zero(t, fv.NumComments)
	assert.InDelta(t, 15.9, fv.AvgLineLength, 1e-12)
	assert.Equal(t, 39, fv.MaxLineLength)
	assert.InDelta(t, 3.0, fv.CyclomaticComplexity, 1e-12)
	assert.Equal(t, 1, fv.NumLoops)
	assert.Equal(t, 1, fv.NumConditionals)
	assert.Zero(t, fv.HasDocstring)
	assert.InDelta(t, 32.0/9.0, fv.AvgTokensPerLine, 1e-12)
	assert.InDelta(t, 6.0/9.0, fv.KeywordDensity, 1e-12)
	assert.InDelta(t, 0.1, fv.BlankLinesRatio, 1e-12)
	assert.Zero(t, fv.AvgIdentifierQuality)
}

func TestGoodSampleBeatsAverageSample(t *testing.T) {
	e := newExtractor(t)
	good, err := e.Extract(context.Background(), filepath.Join("testdata", "good.py"))
	require.NoError(t, err)
	avg, err := e.Extract(context.Background(), filepath.Join("testdata", "average.py"))
	require.NoError(t, err)

	assert.Greater(t, good.AvgIdentifierQuality, avg.AvgIdentifierQuality)
	assert.Equal(t, 1, good.HasDocstring)
	assert.Equal(t, 0, avg.HasDocstring)
}

func TestExtractZeroFunctions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "script.py", "import os\nprint(os.getcwd())\n")
	fv, err := newExtractor(t).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Zero(t, fv.NumFunctions)
	assert.Zero(t, fv.CyclomaticComplexity)
	assert.Zero(t, fv.AvgIdentifierQuality)
	assert.Equal(t, 1, fv.NumImports)
	assert.Equal(t, 2, fv.LinesOfCode)
}

func TestExtractAllBlank(t *testing.T) {
	path := writeFile(t, t.TempDir(), "blank.js", "\n\n  \n\t\n")
	fv, err := newExtractor(t).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, lang.JavaScript, fv.Language)
	assert.Equal(t, 1.0, fv.BlankLinesRatio)
	assert.Zero(t, fv.LinesOfCode)
	assert.Zero(t, fv.CommentRatio)
	assert.Zero(t, fv.KeywordDensity)
	assert.Zero(t, fv.AvgTokensPerLine)
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.py", "")
	fv, err := newExtractor(t).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, FeatureVector{Filename: "empty.py", Language: lang.Python}, fv)
}

func TestExtractUnknownLanguage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.go", "package main\n\nfunc main() {\n\tif true {\n\t}\n}\n")
	fv, err := newExtractor(t).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, lang.Unknown, fv.Language)
	assert.Zero(t, fv.KeywordDensity, "unknown languages have no keywords")
	assert.Zero(t, fv.NestingDepth, "brace nesting is tracked for JavaScript only")
	assert.Equal(t, 1, fv.NumFunctions)
	assert.InDelta(t, 2.0, fv.CyclomaticComplexity, 1e-12)
	assert.Equal(t, 1, fv.NumConditionals)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := newExtractor(t)
	path := filepath.Join("testdata", "good.py")
	a, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	b, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := newExtractor(t).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.py"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeAnalyzer []structure.FunctionRecord

func (f fakeAnalyzer) AnalyzeFile(context.Context, string) ([]structure.FunctionRecord, error) {
	return f, nil
}

func TestExtractSecondaryReadFailureDegrades(t *testing.T) {
	kw, err := lang.LoadKeywords()
	require.NoError(t, err)
	e := NewExtractor(fakeAnalyzer{{Name: "getUser", CyclomaticComplexity: 4}}, identifier.NewDictionary("get", "user"), kw)
	e.readLines = func(string) ([]string, error) { return nil, errors.New("permission denied") }

	fv, err := e.Extract(context.Background(), "locked.py")
	require.NoError(t, err)
	assert.Zero(t, fv.LinesOfCode)
	assert.Zero(t, fv.BlankLinesRatio)
	assert.Equal(t, 1, fv.NumFunctions)
	assert.InDelta(t, 4.0, fv.CyclomaticComplexity, 1e-12)
	assert.InDelta(t, 1.0, fv.AvgIdentifierQuality, 1e-12)
}

func TestMaxIdentifierLengthOption(t *testing.T) {
	kw, err := lang.LoadKeywords()
	require.NoError(t, err)
	e := NewExtractor(fakeAnalyzer{{Name: "getUser", CyclomaticComplexity: 1}},
		identifier.NewDictionary("get", "user"), kw, WithMaxIdentifierLength(3))
	e.readLines = func(string) ([]string, error) { return nil, nil }

	fv, err := e.Extract(context.Background(), "a.py")
	require.NoError(t, err)
	assert.InDelta(t, 3.0/7.0, fv.AvgIdentifierQuality, 1e-12)
}

func TestDecodeLines(t *testing.T) {
	assert.Nil(t, DecodeLines(nil))
	assert.Equal(t, []string{""}, DecodeLines([]byte("\n")))
	assert.Equal(t, []string{"a", "b"}, DecodeLines([]byte("a\r\nb")))
	assert.Equal(t, []string{"a", "b", "c"}, DecodeLines([]byte("a\rb\nc\n")))
	assert.Equal(t, []string{"ok"}, DecodeLines([]byte("o\xffk\n")))
	assert.Equal(t, []string{"\ufeffx = 1"}, DecodeLines([]byte("\xef\xbb\xbfx = 1\n")))
	// UTF-16LE with byte order mark.
	assert.Equal(t, []string{"hi"}, DecodeLines([]byte{0xff, 0xfe, 'h', 0, 'i', 0}))
}

func TestFeatureVectorOrder(t *testing.T) {
	fields := FeatureVector{}.Fields()
	require.Len(t, fields, len(FieldNames))
	for i, f := range fields {
		assert.Equal(t, FieldNames[i], f.Name)
	}
	assert.Len(t, NumericNames, 18)
	assert.Equal(t, "lines_of_code", NumericNames[0])
	assert.Equal(t, "avg_identifier_quality", NumericNames[17])
}

func TestNumericAndValue(t *testing.T) {
	fv := FeatureVector{Filename: "a.py", LinesOfCode: 7, HasDocstring: 1, AvgIdentifierQuality: 0.5}
	nums := fv.Numeric()
	require.Len(t, nums, 18)
	assert.Equal(t, 7.0, nums[0])
	assert.Equal(t, 1.0, nums[13])
	assert.Equal(t, 0.5, nums[17])

	v, ok := fv.Value("has_docstring")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = fv.Value("filename")
	assert.False(t, ok)
}

func TestExtractLongLine(t *testing.T) {
	long := strings.Repeat("x", 300)
	path := writeFile(t, t.TempDir(), "long.js", "var a = '"+long+"';\n")
	fv, err := newExtractor(t).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 311, fv.MaxLineLength)
}

func TestUTF8BOMStaysOnFirstLine(t *testing.T) {
	e := newExtractor(t)
	path := writeFile(t, t.TempDir(), "bom.py", "\xef\xbb\xbfimport os\nimport sys\n")

	fv, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, fv.NumImports)
	assert.Equal(t, 2, fv.LinesOfCode)
	assert.Equal(t, 10, fv.MaxLineLength)
}
