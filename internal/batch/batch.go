// Package batch extracts feature vectors for every supported file under a
// directory and writes them as a metrics dataset.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"codeintel/internal/logging"
	"codeintel/internal/metrics"
	"codeintel/internal/walker"
)

// ReasonTimeout is recorded for files whose extraction exceeded the limit.
const ReasonTimeout = "timeout"

// Extractor computes the features of one file.
type Extractor interface {
	Extract(ctx context.Context, path string) (metrics.FeatureVector, error)
}

// ProgressFunc is called after each file with the number of files handled so
// far and the number discovered. Calls are serialized.
type ProgressFunc func(processed, total int)

// Options controls a batch run.
type Options struct {
	// Workers bounds concurrent extractions; <= 0 uses the CPU count.
	Workers int
	// Timeout limits each extraction; zero means no limit.
	Timeout    time.Duration
	Walk       walker.Options
	OnProgress ProgressFunc
}

// Row is one extracted file.
type Row struct {
	RelPath  string
	Features metrics.FeatureVector
}

// Skipped is a file left out of the dataset.
type Skipped struct {
	RelPath string
	Reason  string
}

// Stats reports batch results.
type Stats struct {
	FilesTotal     int
	FilesExtracted int
	FilesSkipped   int
}

// Result holds extracted rows and skipped files, both sorted by path.
type Result struct {
	Rows    []Row
	Skipped []Skipped
	Stats   Stats
}

// Run walks root and extracts every file it yields. A failing or slow file
// is skipped; only a walk error or cancellation of ctx aborts the run.
func Run(ctx context.Context, root string, ex Extractor, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files, skipped, err := discover(root, opts.Walk)
	if err != nil {
		return nil, err
	}
	total := len(files)
	refused := len(skipped)
	logging.InfoLogger.Printf("batch: %d files under %s, %d skipped by walker", total, root, refused)

	var (
		mu        sync.Mutex
		rows      = make([]Row, 0, total)
		processed int
	)
	record := func(row *Row, skip *Skipped) {
		mu.Lock()
		defer mu.Unlock()
		if row != nil {
			rows = append(rows, *row)
		}
		if skip != nil {
			skipped = append(skipped, *skip)
		}
		processed++
		if opts.OnProgress != nil {
			opts.OnProgress(processed, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, fi := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fv, err := extractWithTimeout(gctx, ex, fi.Path, opts.Timeout)
			switch {
			case err == nil:
				record(&Row{RelPath: fi.RelPath, Features: fv}, nil)
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, context.DeadlineExceeded):
				logging.WarnLogger.Printf("%s: extraction timed out", fi.RelPath)
				record(nil, &Skipped{RelPath: fi.RelPath, Reason: ReasonTimeout})
			default:
				logging.WarnLogger.Printf("%s: %v", fi.RelPath, err)
				record(nil, &Skipped{RelPath: fi.RelPath, Reason: err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].RelPath < rows[j].RelPath })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].RelPath < skipped[j].RelPath })

	return &Result{
		Rows:    rows,
		Skipped: skipped,
		Stats: Stats{
			FilesTotal:     total + refused,
			FilesExtracted: len(rows),
			FilesSkipped:   len(skipped),
		},
	}, nil
}

// discover drains the walker. Files the walker refused come back as skipped.
func discover(root string, opts walker.Options) ([]walker.FileInfo, []Skipped, error) {
	fileCh, skipCh, errCh := walker.Walk(root, opts)

	var skipped []Skipped
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range skipCh {
			skipped = append(skipped, Skipped{RelPath: s.RelPath, Reason: s.Reason})
		}
	}()

	var files []walker.FileInfo
	for fi := range fileCh {
		files = append(files, fi)
	}
	<-done
	if err := <-errCh; err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, skipped, nil
}

// extractWithTimeout gives up on a file after timeout. The extraction
// goroutine may outlive the call.
func extractWithTimeout(ctx context.Context, ex Extractor, path string, timeout time.Duration) (metrics.FeatureVector, error) {
	if timeout <= 0 {
		return ex.Extract(ctx, path)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		fv  metrics.FeatureVector
		err error
	}
	ch := make(chan result, 1)
	go func() {
		fv, err := ex.Extract(ctx, path)
		ch <- result{fv, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return metrics.FeatureVector{}, ctx.Err()
		}
		return r.fv, r.err
	case <-ctx.Done():
		return metrics.FeatureVector{}, ctx.Err()
	}
}
