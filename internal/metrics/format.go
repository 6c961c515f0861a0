package metrics

import (
	"math"
	"strconv"
)

// FormatFloat renders f the way the metrics files have always been written:
// integral values keep one decimal ("85.0"), other values use the shortest
// representation, switching to exponent form outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders a Field value.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return FormatFloat(x)
	default:
		return ""
	}
}

// zeroWhenEmpty lists the float features that are the integer 0 when there is
// nothing to average over: no functions, or no indented code lines.
var zeroWhenEmpty = map[string]bool{
	"cyclomatic_complexity":   true,
	"indentation_consistency": true,
}

// FormatField renders f for the name: value listing. It differs from
// FormatValue only in printing "0" for an empty zeroWhenEmpty feature.
func FormatField(f Field) string {
	if x, ok := f.Value.(float64); ok && x == 0 && zeroWhenEmpty[f.Name] {
		return "0"
	}
	return FormatValue(f.Value)
}

// Record returns the vector as text in FieldNames order.
func (fv FeatureVector) Record() []string {
	fields := fv.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = FormatValue(f.Value)
	}
	return out
}
