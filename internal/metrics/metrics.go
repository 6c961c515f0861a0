// Package metrics turns a source file into a FeatureVector by combining the
// structural analyzer, the line scanner and the identifier scorer.
package metrics

import (
	"context"
	"fmt"
	"path/filepath"

	"codeintel/internal/identifier"
	"codeintel/internal/lang"
	"codeintel/internal/logging"
	"codeintel/internal/scanner"
	"codeintel/internal/structure"
)

// StructureAnalyzer reports the functions of a file and their complexity.
type StructureAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) ([]structure.FunctionRecord, error)
}

// Extractor computes feature vectors. It holds only immutable data and is safe
// for concurrent use.
type Extractor struct {
	analyzer  StructureAnalyzer
	dict      *identifier.Dictionary
	keywords  *lang.Keywords
	maxIdent  int
	readLines func(path string) ([]string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxIdentifierLength sets the length above which identifier scores are
// penalized.
func WithMaxIdentifierLength(n int) Option {
	return func(e *Extractor) { e.maxIdent = n }
}

// NewExtractor creates an extractor. dict and keywords are shared, never
// modified.
func NewExtractor(a StructureAnalyzer, dict *identifier.Dictionary, keywords *lang.Keywords, opts ...Option) *Extractor {
	e := &Extractor{
		analyzer:  a,
		dict:      dict,
		keywords:  keywords,
		maxIdent:  identifier.DefaultMaxLength,
		readLines: ReadLines,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract analyzes the file at path. A file that cannot be read by the
// structural analyzer is an error; a failure of the second, line-oriented
// read is logged and the file is scanned as if it were empty.
func (e *Extractor) Extract(ctx context.Context, path string) (FeatureVector, error) {
	functions, err := e.analyzer.AnalyzeFile(ctx, path)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("analyze %s: %w", path, err)
	}

	language := lang.Detect(path)

	lines, err := e.readLines(path)
	if err != nil {
		logging.WarnLogger.Printf("error reading %s: %v", path, err)
		lines = nil
	}

	res := scanner.Scan(lines, language, e.keywords.For(language))

	names := make([]string, len(functions))
	var complexity float64
	for i, f := range functions {
		names[i] = f.Name
		complexity += float64(f.CyclomaticComplexity)
	}
	if len(functions) > 0 {
		complexity /= float64(len(functions))
	}

	return FeatureVector{
		Filename:               filepath.Base(path),
		Language:               language,
		LinesOfCode:            res.CodeLines,
		NumFunctions:           len(functions),
		NumComments:            res.CommentLines,
		CommentRatio:           ratio(res.CommentLines, res.CodeLines+res.CommentLines+1),
		AvgLineLength:          ratio(res.TotalLineLength, orOne(res.Lines)),
		MaxLineLength:          res.MaxLineLength,
		IndentationConsistency: res.IndentationConsistency(),
		NestingDepth:           res.MaxNesting,
		CyclomaticComplexity:   complexity,
		NumImports:             res.Imports,
		NumLoops:               res.Loops,
		NumConditionals:        res.Conditionals,
		NumExceptions:          res.Exceptions,
		HasDocstring:           boolToInt(res.HasDocstring),
		AvgTokensPerLine:       ratio(res.Tokens, orOne(res.TokenLines)),
		KeywordDensity:         ratio(res.KeywordHits, orOne(res.CodeLines)),
		BlankLinesRatio:        ratio(res.BlankLines, orOne(res.Lines)),
		AvgIdentifierQuality:   identifier.Average(e.dict, names, e.maxIdent),
	}, nil
}

func ratio(num, den int) float64 { return float64(num) / float64(den) }

func orOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
