package languages

import (
	"codeintel/internal/structure"

	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func RegisterTypeScript(r *structure.Registry) {
	r.Register("typescript", &structure.LanguageSpec{
		Language:         typescript.GetLanguage(),
		Extensions:       []string{"ts", "tsx"},
		FunctionTypes:    ecmaFunctions,
		DecisionTypes:    ecmaDecisions,
		LogicalTypes:     []string{"binary_expression"},
		LogicalOperators: []string{"&&", "||"},
	})
}
