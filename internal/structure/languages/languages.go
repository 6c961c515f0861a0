// Package languages registers the tree-sitter grammars the structural
// analyzer understands.
package languages

import "codeintel/internal/structure"

// Default returns a registry with every bundled grammar.
func Default() *structure.Registry {
	reg := structure.NewRegistry()
	RegisterGo(reg)
	RegisterJavaScript(reg)
	RegisterTypeScript(reg)
	RegisterPython(reg)
	return reg
}
