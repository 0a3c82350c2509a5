// Package parser extracts symbols, imports, and call sites from source
// files. Each supported language is backed by a tree-sitter grammar; a
// pattern-based fallback extractor is used when structured parsing fails.
package parser

// Symbol is a named definition found in a file, prior to being assigned a
// database id. ParentIndex, when >= 0, is the index into the same Result's
// Symbols slice of the innermost enclosing definition.
type Symbol struct {
	Name        string
	Kind        string
	StartLine   int
	EndLine     *int
	StartCol    int
	EndCol      int
	Signature   string
	Docstring   *string
	ParentIndex int
}

// Import is one import/include/use directive.
type Import struct {
	Module string
	Name   string
	Alias  string
	Line   int
	Raw    string
}

// Callsite is one call expression found in the source.
type Callsite struct {
	Callee          string
	Line            int
	Column          int
	Confidence      float64
	ScopeSymbolIdx  int // index into Result.Symbols of the enclosing symbol, or -1
}

// Result is everything extracted from one file.
type Result struct {
	Language  string
	Symbols   []Symbol
	Imports   []Import
	Callsites []Callsite
	// Degraded is set when structured parsing failed and the fallback
	// extractor produced this Result; confidence values are lowered.
	Degraded bool
}

const (
	KindFunction  = "function"
	KindMethod    = "method"
	KindClass     = "class"
	KindNamespace = "namespace"
)

// maxSignatureLen is the clip length for a Symbol's single-line signature.
const maxSignatureLen = 200
