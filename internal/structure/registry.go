package structure

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec describes how to find functions and decision points in one
// tree-sitter grammar.
type LanguageSpec struct {
	Language   *sitter.Language
	Extensions []string
	// FunctionTypes are node types that open a new function scope.
	FunctionTypes []string
	// DecisionTypes are node types that each add one path through a function.
	DecisionTypes []string
	// LogicalTypes are binary node types that add a path when their operator
	// is listed in LogicalOperators. A nil operator list counts every node.
	LogicalTypes     []string
	LogicalOperators []string

	functions map[string]bool
	decisions map[string]bool
	logical   map[string]bool
	operators map[string]bool
}

func (s *LanguageSpec) compile() {
	s.functions = toSet(s.FunctionTypes)
	s.decisions = toSet(s.DecisionTypes)
	s.logical = toSet(s.LogicalTypes)
	if s.LogicalOperators != nil {
		s.operators = toSet(s.LogicalOperators)
	}
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// Registry maps file extensions to language specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*LanguageSpec // extension (without dot) → spec
	names map[*LanguageSpec]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*LanguageSpec),
		names: make(map[*LanguageSpec]string),
	}
}

// Register adds a language spec under the given name.
func (r *Registry) Register(name string, spec *LanguageSpec) {
	spec.compile()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[spec] = name
	for _, ext := range spec.Extensions {
		r.specs[ext] = spec
	}
}

// Lookup returns the spec for a file path based on its extension, or nil.
func (r *Registry) Lookup(path string) (spec *LanguageSpec, lang string) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[ext]
	if !ok {
		return nil, ""
	}
	return s, r.names[s]
}

// Language describes one registered grammar.
type Language struct {
	Name       string
	Extensions []string
}

// Languages lists the registered grammars sorted by name.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Language, 0, len(r.names))
	for spec, name := range r.names {
		exts := append([]string(nil), spec.Extensions...)
		sort.Strings(exts)
		out = append(out, Language{Name: name, Extensions: exts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Extensions returns the set of all registered file extensions (without dot).
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.specs))
	for ext := range r.specs {
		exts[ext] = true
	}
	return exts
}
