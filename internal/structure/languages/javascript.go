package languages

import (
	"codeintel/internal/structure"

	"github.com/smacker/go-tree-sitter/javascript"
)

// Function and decision node types shared by the JavaScript and TypeScript
// grammars.
var (
	ecmaFunctions = []string{
		"function_declaration", "function_expression", "generator_function_declaration",
		"generator_function", "arrow_function", "method_definition",
	}
	ecmaDecisions = []string{
		"if_statement", "for_statement", "for_in_statement", "while_statement",
		"do_statement", "catch_clause", "ternary_expression", "switch_case",
	}
)

func RegisterJavaScript(r *structure.Registry) {
	r.Register("javascript", &structure.LanguageSpec{
		Language:         javascript.GetLanguage(),
		Extensions:       []string{"js", "jsx", "mjs", "cjs"},
		FunctionTypes:    ecmaFunctions,
		DecisionTypes:    ecmaDecisions,
		LogicalTypes:     []string{"binary_expression"},
		LogicalOperators: []string{"&&", "||"},
	})
}
