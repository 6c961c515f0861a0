package languages

import (
	"codeintel/internal/structure"

	"github.com/smacker/go-tree-sitter/golang"
)

func RegisterGo(r *structure.Registry) {
	r.Register("go", &structure.LanguageSpec{
		Language:      golang.GetLanguage(),
		Extensions:    []string{"go"},
		FunctionTypes: []string{"function_declaration", "method_declaration", "func_literal"},
		DecisionTypes: []string{
			"if_statement", "for_statement", "expression_case", "type_case", "communication_case",
		},
		LogicalTypes:     []string{"binary_expression"},
		LogicalOperators: []string{"&&", "||"},
	})
}
