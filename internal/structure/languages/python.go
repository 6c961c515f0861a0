package languages

import (
	"codeintel/internal/structure"

	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *structure.Registry) {
	r.Register("python", &structure.LanguageSpec{
		Language:      python.GetLanguage(),
		Extensions:    []string{"py", "pyi"},
		FunctionTypes: []string{"function_definition"},
		DecisionTypes: []string{
			"if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "except_group_clause", "conditional_expression",
			"for_in_clause", "if_clause", "case_clause",
		},
		// and / or
		LogicalTypes: []string{"boolean_operator"},
	})
}
