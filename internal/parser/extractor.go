package parser

import "context"

// Extractor pulls a Result out of one file's content. Implementations must
// not retain content past the call.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (*Result, error)
}

// Registry resolves an Extractor by language tag, falling back to a
// pattern-based extractor when a language has no tree-sitter grammar wired
// or when the grammar-backed extractor errors on a given file.
type Registry struct {
	extractors map[string]Extractor
}

// New builds a Registry with a TreeSitterExtractor for every language in
// langSpecs.
func New() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for lang := range langSpecs {
		if ext, ok := NewTreeSitterExtractor(lang); ok {
			r.extractors[lang] = ext
		}
	}
	return r
}

// Extract resolves path's language and runs its extractor, falling back to
// the pattern-based extractor if structured parsing fails. Returns
// (nil, nil) for unrecognized extensions, matching the "parser returns
// null" contract for unknown files.
func (r *Registry) Extract(ctx context.Context, path string, content []byte) (*Result, error) {
	language, ok := LanguageForPath(path)
	if !ok {
		return nil, nil
	}

	if ext, ok := r.extractors[language]; ok {
		result, err := ext.Extract(ctx, content)
		if err == nil {
			return result, nil
		}
	}

	return ExtractFallback(language, content), nil
}
