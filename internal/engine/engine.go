// Package engine wires configuration to the extractor, the quality model, the
// history store and the reviewer. It is the API the CLI, the MCP server and
// the TUI share.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"codeintel/internal/batch"
	"codeintel/internal/cache"
	"codeintel/internal/config"
	"codeintel/internal/identifier"
	"codeintel/internal/lang"
	"codeintel/internal/llm"
	"codeintel/internal/logging"
	"codeintel/internal/metrics"
	"codeintel/internal/quality"
	"codeintel/internal/store"
	"codeintel/internal/structure"
	"codeintel/internal/structure/languages"
	"codeintel/internal/walker"
)

// ErrNoHistory is returned by history operations when the engine was built
// without a store.
var ErrNoHistory = errors.New("history store not opened")

// Options selects the optional parts of an engine.
type Options struct {
	// History opens the configured database.
	History bool
	// ReadOnly leaves the on-disk feature cache closed so nothing is
	// created on disk. The in-memory cache is still used.
	ReadOnly bool
}

// Engine is safe for concurrent use once built.
type Engine struct {
	cfg       *config.Config
	registry  *structure.Registry
	extractor *cache.Extractor
	model     *quality.Model
	store     store.Store
	timeout   time.Duration
}

// New builds an engine from cfg. A missing quality model is not an error;
// operations that need it return quality.ErrNoModel.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	dict := identifier.LoadDictionary()
	if cfg.Dictionary != "" {
		if dict, err = identifier.LoadDictionaryFile(cfg.Dictionary); err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
	}
	keywords, err := lang.LoadKeywords()
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	reg := languages.Default()
	inner := metrics.NewExtractor(structure.NewAnalyzer(reg), dict, keywords,
		metrics.WithMaxIdentifierLength(cfg.MaxIdentifierLength))

	var disk *cache.DiskCache
	if cfg.Cache.Dir != "" && !opts.ReadOnly {
		if disk, err = cache.OpenDiskCache(cfg.Cache.Dir); err != nil {
			logging.WarnLogger.Printf("feature cache disabled: %v", err)
			disk = nil
		}
	}
	salt := fmt.Sprintf("%d|%s|%d", cfg.MaxIdentifierLength, cfg.Dictionary, dict.Len())
	ex, err := cache.NewExtractor(inner, cfg.Cache.Size, disk, salt)
	if err != nil {
		return nil, fmt.Errorf("feature cache: %w", err)
	}

	model, err := quality.LoadModel(cfg.Model)
	switch {
	case errors.Is(err, quality.ErrNoModel):
		logging.InfoLogger.Printf("no quality model at %q", cfg.Model)
		model = nil
	case err != nil:
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		registry:  reg,
		extractor: ex,
		model:     model,
		timeout:   timeout,
	}
	if opts.History {
		st, err := store.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		e.store = st
	}
	return e, nil
}

// Close releases the history store.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// HasModel reports whether a quality model is loaded.
func (e *Engine) HasModel() bool { return e.model != nil }

// Languages lists the grammars of the structural analyzer.
func (e *Engine) Languages() []structure.Language { return e.registry.Languages() }

// Extract computes the features of one file.
func (e *Engine) Extract(ctx context.Context, path string) (metrics.FeatureVector, error) {
	return e.extractor.Extract(ctx, path)
}

// Assess extracts path and classifies it.
func (e *Engine) Assess(ctx context.Context, path string) (quality.Assessment, error) {
	if e.model == nil {
		return quality.Assessment{}, quality.ErrNoModel
	}
	fv, err := e.Extract(ctx, path)
	if err != nil {
		return quality.Assessment{}, err
	}
	return e.model.Assess(fv), nil
}

// Predict assesses path and, when record is set and history is open, stores
// the result.
func (e *Engine) Predict(ctx context.Context, path string, record bool) (quality.Assessment, error) {
	a, err := e.Assess(ctx, path)
	if err != nil {
		return a, err
	}
	if record {
		e.save(store.ModeSingle, path, a)
	}
	return a, nil
}

// Comparison is the outcome of assessing two files.
type Comparison struct {
	First   quality.Assessment `json:"first"`
	Second  quality.Assessment `json:"second"`
	Verdict string             `json:"verdict"`
}

// Compare assesses both files and records them as a comparison pair.
func (e *Engine) Compare(ctx context.Context, pathA, pathB string, record bool) (Comparison, error) {
	a, err := e.Assess(ctx, pathA)
	if err != nil {
		return Comparison{}, err
	}
	b, err := e.Assess(ctx, pathB)
	if err != nil {
		return Comparison{}, err
	}
	if record {
		e.save(store.ModeCompareFirst, pathA, a)
		e.save(store.ModeCompareSecond, pathB, b)
	}
	return Comparison{First: a, Second: b, Verdict: quality.Compare(a.Grade, b.Grade).String()}, nil
}

// save records an assessment. History is a convenience, so failures are
// logged rather than returned.
func (e *Engine) save(mode store.Mode, path string, a quality.Assessment) {
	if e.store == nil {
		return
	}
	_, err := e.store.SaveAnalysis(store.Analysis{
		Mode:     mode,
		Path:     path,
		Features: a.Features,
		Cluster:  a.Cluster,
		Label:    a.Label,
		Score:    a.Score,
		Grade:    a.Letter,
	})
	if err != nil {
		logging.WarnLogger.Printf("failed to save history for %s: %v", path, err)
	}
}

// History returns stored analyses, newest first.
func (e *Engine) History(limit int) ([]store.Analysis, error) {
	if e.store == nil {
		return nil, ErrNoHistory
	}
	return e.store.ListHistory(limit)
}

// Analysis returns one stored analysis.
func (e *Engine) Analysis(id int64) (store.Analysis, error) {
	if e.store == nil {
		return store.Analysis{}, ErrNoHistory
	}
	return e.store.GetAnalysis(id)
}

// ClearHistory removes every stored analysis.
func (e *Engine) ClearHistory() error {
	if e.store == nil {
		return ErrNoHistory
	}
	return e.store.ClearHistory()
}

// Similar extracts path and returns the k closest stored analyses.
func (e *Engine) Similar(ctx context.Context, path string, k int) ([]store.Match, error) {
	if e.store == nil {
		return nil, ErrNoHistory
	}
	fv, err := e.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.store.Similar(fv, k)
}

// Export extracts every supported file under root.
func (e *Engine) Export(ctx context.Context, root string, progress batch.ProgressFunc) (*batch.Result, error) {
	return batch.Run(ctx, root, e.extractor, batch.Options{
		Workers: e.cfg.Workers,
		Timeout: e.timeout,
		Walk: walker.Options{
			Extensions:  e.registry.Extensions(),
			MaxFileSize: e.cfg.MaxFileSize,
		},
		OnProgress: progress,
	})
}

// Review asks the configured Ollama model for a written review of path. The
// assessment is included when a model is loaded.
func (e *Engine) Review(ctx context.Context, path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	req := llm.ReviewRequest{Path: path, Source: src}
	if e.model != nil {
		a, err := e.Assess(ctx, path)
		if err != nil {
			return "", err
		}
		req.Features = a.Features
		req.Assessment = &a
	} else if req.Features, err = e.Extract(ctx, path); err != nil {
		return "", err
	}

	chat := llm.NewOllamaChat(e.cfg.Ollama.URL, e.cfg.Ollama.Model)
	if err := chat.EnsureModel(ctx); err != nil {
		return "", err
	}
	logging.InfoLogger.Printf("requesting review of %s from %s", path, chat.Model())
	return chat.Generate(ctx, llm.ReviewMessages(req))
}
