// Package report renders feature vectors, assessments and history for the
// terminal, as plain text, JSON or markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codeintel/internal/metrics"
	"codeintel/internal/quality"
	"codeintel/internal/store"
	"codeintel/internal/structure"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	nameColor    = color.New(color.FgCyan)
	headingColor = color.New(color.Bold)
	gradeColors  = map[string]*color.Color{
		"A": color.New(color.FgGreen, color.Bold),
		"B": color.New(color.FgYellow, color.Bold),
		"C": color.New(color.FgRed, color.Bold),
	}
)

func gradeString(letter string) string {
	if c, ok := gradeColors[letter]; ok {
		return c.Sprint(letter)
	}
	return letter
}

// WriteFeatures prints one "name: value" line per feature in contract order.
func WriteFeatures(w io.Writer, fv metrics.FeatureVector) error {
	for _, f := range fv.Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", nameColor.Sprint(f.Name), metrics.FormatField(f)); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	content = append(content, '\n')
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteAssessment prints the prediction, grade and suggestions for one file.
func WriteAssessment(w io.Writer, path string, a quality.Assessment) error {
	_, err := fmt.Fprintf(w, "%s\n%s %s\n%s %d\n%s %d\n%s %s\n",
		headingColor.Sprint(path),
		nameColor.Sprint("label:"), a.Label,
		nameColor.Sprint("cluster:"), a.Cluster,
		nameColor.Sprint("score:"), a.Score,
		nameColor.Sprint("grade:"), gradeString(a.Letter),
	)
	if err != nil {
		return err
	}
	for _, s := range a.Suggestions {
		if _, err := fmt.Fprintf(w, "  %s\n", s); err != nil {
			return err
		}
	}
	return nil
}

// WriteComparison prints both assessments, the verdict and the radar values
// side by side.
func WriteComparison(w io.Writer, pathA, pathB string, a, b quality.Assessment) error {
	if err := WriteAssessment(w, pathA, a); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := WriteAssessment(w, pathB, b); err != nil {
		return err
	}
	verdict := quality.Compare(a.Grade, b.Grade)
	if _, err := fmt.Fprintf(w, "\n%s\n\n", headingColor.Sprint(verdict)); err != nil {
		return err
	}
	_, err := io.WriteString(w, RadarTable(a.Features, b.Features))
	return err
}

// RadarTable aligns the radar features of two files in three columns.
func RadarTable(a, b metrics.FeatureVector) string {
	header := []string{"METRIC", "FILE 1", "FILE 2"}
	rows := [][]string{header}
	ra, rb := quality.Radar(a), quality.Radar(b)
	for i, key := range quality.RadarKeys {
		rows = append(rows, []string{key, metrics.FormatFloat(ra[i]), metrics.FormatFloat(rb[i])})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteHistory prints stored analyses as a table.
func WriteHistory(w io.Writer, history []store.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTIME\tMODE\tFILE\tLABEL\tSCORE\tGRADE"); err != nil {
		return err
	}
	for _, a := range history {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			a.ID, a.CreatedAt.Local().Format(timeLayout), a.Mode, a.Features.Filename, a.Label, a.Score, a.Grade,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteMatches prints similarity results, closest first.
func WriteMatches(w io.Writer, matches []store.Match) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "DISTANCE\tID\tFILE\tLABEL\tGRADE\tPATH"); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(tw, "%.3f\t%d\t%s\t%s\t%s\t%s\n",
			m.Distance, m.Analysis.ID, m.Analysis.Features.Filename, m.Analysis.Label, m.Analysis.Grade, m.Analysis.Path,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteLanguages lists the analyzer's grammars and their extensions.
func WriteLanguages(w io.Writer, langs []structure.Language) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "LANGUAGE\tEXTENSIONS"); err != nil {
		return err
	}
	for _, l := range langs {
		exts := make([]string, len(l.Extensions))
		for i, e := range l.Extensions {
			exts[i] = "." + e
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", l.Name, strings.Join(exts, " ")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
