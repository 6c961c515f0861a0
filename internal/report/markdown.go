package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"codeintel/internal/metrics"
	"codeintel/internal/quality"
	"codeintel/internal/store"
)

// AssessmentMarkdown describes one assessment as a markdown document.
func AssessmentMarkdown(path string, a quality.Assessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", path)
	fmt.Fprintf(&sb, "**Grade %s** (score %d, label `%s`, cluster %d)\n\n", a.Letter, a.Score, a.Label, a.Cluster)
	if len(a.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range a.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("## Metrics\n\n")
	sb.WriteString(FeaturesMarkdown(a.Features))
	return sb.String()
}

// FeaturesMarkdown renders a feature vector as a two-column table.
func FeaturesMarkdown(fv metrics.FeatureVector) string {
	var sb strings.Builder
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	for _, f := range fv.Fields() {
		fmt.Fprintf(&sb, "| %s | %s |\n", f.Name, metrics.FormatValue(f.Value))
	}
	return sb.String()
}

// ComparisonMarkdown describes two assessments and the verdict.
func ComparisonMarkdown(pathA, pathB string, a, b quality.Assessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", quality.Compare(a.Grade, b.Grade))
	sb.WriteString("| | File 1 | File 2 |\n|---|---|---|\n")
	fmt.Fprintf(&sb, "| file | %s | %s |\n", pathA, pathB)
	fmt.Fprintf(&sb, "| label | %s | %s |\n", a.Label, b.Label)
	fmt.Fprintf(&sb, "| grade | %s (%d) | %s (%d) |\n", a.Letter, a.Score, b.Letter, b.Score)
	ra, rb := quality.Radar(a.Features), quality.Radar(b.Features)
	for i, key := range quality.RadarKeys {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", key, metrics.FormatFloat(ra[i]), metrics.FormatFloat(rb[i]))
	}
	return sb.String()
}

// Render formats markdown for a terminal of the given width. Without color
// the plain "notty" style is used.
func Render(md string, width int, colored bool) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if colored {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// AnalysisMarkdown describes a stored analysis. Suggestions are derived again
// from its label and features.
func AnalysisMarkdown(a store.Analysis) string {
	as := quality.Assessment{
		Features:    a.Features,
		Prediction:  quality.Prediction{Cluster: a.Cluster, Label: a.Label},
		Grade:       quality.Grade{Score: a.Score, Letter: a.Grade},
		Suggestions: quality.Suggestions(a.Label, a.Features),
	}
	return fmt.Sprintf("_%s, %s_\n\n%s", a.Mode, a.CreatedAt.Local().Format(timeLayout), AssessmentMarkdown(a.Path, as))
}
