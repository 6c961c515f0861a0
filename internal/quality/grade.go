package quality

import (
	"strings"

	"codeintel/internal/metrics"
)

// Quality labels produced by the cluster mapping.
const (
	LabelGood    = "good"
	LabelAverage = "average"
	LabelBad     = "bad"
)

// Grade is the score and letter shown for a label.
type Grade struct {
	Score  int    `json:"score"`
	Letter string `json:"grade"`
}

// GradeFor maps a label to its grade. Labels compare case-insensitively and
// anything that is neither good nor average grades as C.
func GradeFor(label string) Grade {
	switch strings.ToLower(label) {
	case LabelGood:
		return Grade{Score: 85, Letter: "A"}
	case LabelAverage:
		return Grade{Score: 65, Letter: "B"}
	default:
		return Grade{Score: 40, Letter: "C"}
	}
}

// Suggestions lists improvements for average and bad code, or a single
// positive note otherwise.
func Suggestions(label string, fv metrics.FeatureVector) []string {
	switch strings.ToLower(label) {
	case LabelAverage, LabelBad:
	default:
		return []string{"✔ Code structure looks good."}
	}
	var out []string
	if fv.CyclomaticComplexity > 5 {
		out = append(out, "⚠ Reduce cyclomatic complexity.")
	}
	if fv.NumComments == 0 {
		out = append(out, "⚠ Add comments.")
	}
	if fv.HasDocstring == 0 {
		out = append(out, "⚠ Add docstrings.")
	}
	if fv.NumFunctions <= 1 {
		out = append(out, "⚠ Break into reusable functions.")
	}
	return out
}

// Verdict is the outcome of comparing two graded files.
type Verdict int

const (
	Equal Verdict = iota
	FirstBetter
	SecondBetter
)

func (v Verdict) String() string {
	switch v {
	case FirstBetter:
		return "File 1 is better."
	case SecondBetter:
		return "File 2 is better."
	default:
		return "Both files are equal."
	}
}

// Compare decides which of two grades is better by score.
func Compare(a, b Grade) Verdict {
	switch {
	case a.Score > b.Score:
		return FirstBetter
	case b.Score > a.Score:
		return SecondBetter
	default:
		return Equal
	}
}

// RadarKeys are the features plotted when two files are compared.
var RadarKeys = []string{
	"cyclomatic_complexity", "num_functions", "num_comments",
	"num_imports", "nesting_depth", "avg_line_length",
}

// Radar returns fv's values for RadarKeys, in order.
func Radar(fv metrics.FeatureVector) []float64 {
	out := make([]float64, len(RadarKeys))
	for i, k := range RadarKeys {
		out[i], _ = fv.Value(k)
	}
	return out
}
