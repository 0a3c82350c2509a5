package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// langSpec holds the tree-sitter language and the queries used to recover
// definitions and call expressions from it. Definition captures are named
// "name.<kind>" (name.function, name.method, name.class) so a single query
// execution recovers the kind alongside the identifier.
type langSpec struct {
	lang   *sitter.Language
	defQ   string
	callQ  string // must capture @call (whole call node) and @callee
}

var langSpecs = map[string]*langSpec{
	"go": {
		lang: golang.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name.function)
			(method_declaration name: (field_identifier) @name.method)
			(type_spec name: (type_identifier) @name.class)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
	"python": {
		lang: python.GetLanguage(),
		defQ: `
			(function_definition name: (identifier) @name.function)
			(class_definition name: (identifier) @name.class)
		`,
		callQ: `(call function: (_) @callee) @call`,
	},
	"javascript": {
		lang: javascript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name.function)
			(class_declaration name: (identifier) @name.class)
			(method_definition name: (property_identifier) @name.method)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
	"typescript": {
		lang: typescript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name.function)
			(class_declaration name: (identifier) @name.class)
			(method_definition name: (property_identifier) @name.method)
			(interface_declaration name: (type_identifier) @name.class)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
	"rust": {
		lang: rust.GetLanguage(),
		defQ: `
			(function_item name: (identifier) @name.function)
			(struct_item name: (type_identifier) @name.class)
			(enum_item name: (type_identifier) @name.class)
			(trait_item name: (type_identifier) @name.class)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
	"c": {
		lang: cpp.GetLanguage(),
		defQ: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name.function))
			(struct_specifier name: (type_identifier) @name.class)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
	"cpp": {
		lang: cpp.GetLanguage(),
		defQ: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name.function))
			(function_definition declarator: (function_declarator declarator: (field_identifier) @name.method))
			(struct_specifier name: (type_identifier) @name.class)
			(class_specifier name: (type_identifier) @name.class)
		`,
		callQ: `(call_expression function: (_) @callee) @call`,
	},
}
