// Package structure parses source files with tree-sitter and reports the
// functions they define together with each function's cyclomatic complexity.
package structure

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
)

// AnonymousName is reported for functions with no name of their own and no
// binding to borrow one from.
const AnonymousName = "(anonymous)"

// ErrUnsupported is returned when no grammar is registered for a file.
var ErrUnsupported = errors.New("unsupported language")

// FunctionRecord is one function found in a file.
type FunctionRecord struct {
	Name                 string `json:"name"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity"`
	StartLine            int    `json:"start_line"`
	EndLine              int    `json:"end_line"`
}

// Analyzer computes per-function complexity using the grammars of a registry.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	registry *Registry
}

// NewAnalyzer creates an analyzer backed by the given registry.
func NewAnalyzer(r *Registry) *Analyzer {
	return &Analyzer{registry: r}
}

// Supports reports whether a grammar is registered for path.
func (a *Analyzer) Supports(path string) bool {
	spec, _ := a.registry.Lookup(path)
	return spec != nil
}

// AnalyzeFile reads path and analyzes it. Read errors are returned. A file in
// a language without a grammar has no functions.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) ([]FunctionRecord, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fns, err := a.Analyze(ctx, path, src)
	if errors.Is(err, ErrUnsupported) {
		return nil, nil
	}
	return fns, err
}

// Analyze parses src using the grammar registered for path's extension and
// returns its functions in source order.
func (a *Analyzer) Analyze(ctx context.Context, path string, src []byte) ([]FunctionRecord, error) {
	spec, lang := a.registry.Lookup(path)
	if spec == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s as %s: %w", path, lang, err)
	}
	defer tree.Close()

	w := walker{spec: spec, src: src}
	w.visit(tree.RootNode(), -1)
	return w.records, nil
}

type walker struct {
	spec    *LanguageSpec
	src     []byte
	records []FunctionRecord
}

// visit walks n, attributing decision points to the innermost enclosing
// function at index fn. Decision points outside any function are dropped.
func (w *walker) visit(n *sitter.Node, fn int) {
	if n == nil {
		return
	}
	typ := n.Type()
	switch {
	case w.spec.functions[typ]:
		w.records = append(w.records, FunctionRecord{
			Name:                 w.functionName(n),
			CyclomaticComplexity: 1,
			StartLine:            line(n.StartPoint()),
			EndLine:              line(n.EndPoint()),
		})
		fn = len(w.records) - 1
	case fn >= 0 && w.isDecision(n, typ):
		w.records[fn].CyclomaticComplexity++
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		w.visit(n.Child(i), fn)
	}
}

func (w *walker) isDecision(n *sitter.Node, typ string) bool {
	if w.spec.decisions[typ] {
		return true
	}
	if !w.spec.logical[typ] {
		return false
	}
	if w.spec.operators == nil {
		return true
	}
	op := n.ChildByFieldName("operator")
	return op != nil && w.spec.operators[op.Type()]
}

// functionName returns the declared name of a function node, or the name it is
// bound to by a variable declaration, object key or assignment.
func (w *walker) functionName(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(w.src)
	}
	parent := n.Parent()
	if parent == nil {
		return AnonymousName
	}
	var bound *sitter.Node
	switch parent.Type() {
	case "variable_declarator":
		bound = parent.ChildByFieldName("name")
	case "pair":
		bound = parent.ChildByFieldName("key")
	case "assignment_expression":
		bound = parent.ChildByFieldName("left")
	}
	if bound == nil {
		return AnonymousName
	}
	return bound.Content(w.src)
}

func line(p sitter.Point) int {
	row, err := safecast.Conv[int](p.Row)
	if err != nil {
		return 0
	}
	return row + 1
}
