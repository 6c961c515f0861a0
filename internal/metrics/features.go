package metrics

import "codeintel/internal/lang"

// FeatureVector is the fixed-schema summary of one source file. Field order
// is the order of the CSV columns, the JSON keys and the CLI output.
type FeatureVector struct {
	Filename               string        `json:"filename"`
	Language               lang.Language `json:"language"`
	LinesOfCode            int           `json:"lines_of_code"`
	NumFunctions           int           `json:"num_functions"`
	NumComments            int           `json:"num_comments"`
	CommentRatio           float64       `json:"comment_ratio"`
	AvgLineLength          float64       `json:"avg_line_length"`
	MaxLineLength          int           `json:"max_line_length"`
	IndentationConsistency float64       `json:"indentation_consistency"`
	NestingDepth           int           `json:"nesting_depth"`
	CyclomaticComplexity   float64       `json:"cyclomatic_complexity"`
	NumImports             int           `json:"num_imports"`
	NumLoops               int           `json:"num_loops"`
	NumConditionals        int           `json:"num_conditionals"`
	NumExceptions          int           `json:"num_exceptions"`
	HasDocstring           int           `json:"has_docstring"`
	AvgTokensPerLine       float64       `json:"avg_tokens_per_line"`
	KeywordDensity         float64       `json:"keyword_density"`
	BlankLinesRatio        float64       `json:"blank_lines_ratio"`
	AvgIdentifierQuality   float64       `json:"avg_identifier_quality"`
}

// Field is one named value of a feature vector. Value is a string, an int or
// a float64.
type Field struct {
	Name  string
	Value any
}

// FieldNames lists every feature key in contract order.
var FieldNames = []string{
	"filename", "language", "lines_of_code", "num_functions", "num_comments",
	"comment_ratio", "avg_line_length", "max_line_length", "indentation_consistency",
	"nesting_depth", "cyclomatic_complexity", "num_imports", "num_loops",
	"num_conditionals", "num_exceptions", "has_docstring", "avg_tokens_per_line",
	"keyword_density", "blank_lines_ratio", "avg_identifier_quality",
}

// NumericNames lists the numeric feature keys, FieldNames without filename
// and language.
var NumericNames = FieldNames[2:]

// Fields returns the vector as ordered name/value pairs.
func (fv FeatureVector) Fields() []Field {
	return []Field{
		{"filename", fv.Filename},
		{"language", string(fv.Language)},
		{"lines_of_code", fv.LinesOfCode},
		{"num_functions", fv.NumFunctions},
		{"num_comments", fv.NumComments},
		{"comment_ratio", fv.CommentRatio},
		{"avg_line_length", fv.AvgLineLength},
		{"max_line_length", fv.MaxLineLength},
		{"indentation_consistency", fv.IndentationConsistency},
		{"nesting_depth", fv.NestingDepth},
		{"cyclomatic_complexity", fv.CyclomaticComplexity},
		{"num_imports", fv.NumImports},
		{"num_loops", fv.NumLoops},
		{"num_conditionals", fv.NumConditionals},
		{"num_exceptions", fv.NumExceptions},
		{"has_docstring", fv.HasDocstring},
		{"avg_tokens_per_line", fv.AvgTokensPerLine},
		{"keyword_density", fv.KeywordDensity},
		{"blank_lines_ratio", fv.BlankLinesRatio},
		{"avg_identifier_quality", fv.AvgIdentifierQuality},
	}
}

// Numeric returns the numeric features in NumericNames order.
func (fv FeatureVector) Numeric() []float64 {
	fields := fv.Fields()[2:]
	out := make([]float64, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case int:
			out[i] = float64(v)
		case float64:
			out[i] = v
		}
	}
	return out
}

// Value returns the numeric feature called name.
func (fv FeatureVector) Value(name string) (float64, bool) {
	for i, n := range NumericNames {
		if n == name {
			return fv.Numeric()[i], true
		}
	}
	return 0, false
}
