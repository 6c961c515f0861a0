package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codeintel/internal/metrics"
)

// Output file names written by Save.
const (
	MetricsFile = "metrics.csv"
	SkippedFile = "skipped_files.csv"
)

// WriteMetrics writes the header and one record per row.
func WriteMetrics(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metrics.FieldNames); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Features.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSkipped writes the skipped files with their reasons.
func WriteSkipped(w io.Writer, skipped []Skipped) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"skipped_file", "reason"}); err != nil {
		return err
	}
	for _, s := range skipped {
		if err := cw.Write([]string{s.RelPath, s.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes MetricsFile into dir, and SkippedFile when anything was
// skipped. It returns the paths written.
func (r *Result) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	metricsPath := filepath.Join(dir, MetricsFile)
	if err := writeFile(metricsPath, func(w io.Writer) error { return WriteMetrics(w, r.Rows) }); err != nil {
		return nil, err
	}
	written := []string{metricsPath}
	if len(r.Skipped) == 0 {
		return written, nil
	}
	skippedPath := filepath.Join(dir, SkippedFile)
	if err := writeFile(skippedPath, func(w io.Writer) error { return WriteSkipped(w, r.Skipped) }); err != nil {
		return written, err
	}
	return append(written, skippedPath), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
