package parser

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// TreeSitterExtractor extracts symbols and call sites for one language using
// a compiled tree-sitter grammar and a pair of queries (definitions, calls).
// It satisfies the Extractor interface.
type TreeSitterExtractor struct {
	language string
	spec     *langSpec
}

// NewTreeSitterExtractor builds an extractor for language, or returns false
// if the language has no registered grammar.
func NewTreeSitterExtractor(language string) (*TreeSitterExtractor, bool) {
	spec, ok := langSpecs[language]
	if !ok {
		return nil, false
	}
	return &TreeSitterExtractor{language: language, spec: spec}, true
}

// Extract implements Extractor.
func (e *TreeSitterExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.spec.lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", e.language, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", e.language)
	}

	symbols, err := e.extractSymbols(root, content)
	if err != nil {
		return nil, err
	}
	assignParents(symbols)
	for i := range symbols {
		if p := symbols[i].ParentIndex; p >= 0 && symbols[i].Kind == KindFunction && symbols[p].Kind == KindClass {
			symbols[i].Kind = KindMethod
		}
	}

	callsites, err := e.extractCallsites(root, content, symbols)
	if err != nil {
		return nil, err
	}

	imports := extractImports(e.language, content)

	return &Result{
		Language:  e.language,
		Symbols:   symbols,
		Imports:   imports,
		Callsites: callsites,
	}, nil
}

func (e *TreeSitterExtractor) extractSymbols(root *sitter.Node, content []byte) ([]Symbol, error) {
	q, err := sitter.NewQuery([]byte(e.spec.defQ), e.spec.lang)
	if err != nil {
		return nil, fmt.Errorf("compile def query for %s: %w", e.language, err)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var symbols []Symbol
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, cap := range match.Captures {
			name := q.CaptureNameForId(cap.Index)
			kind, ok := kindFromCapture(name)
			if !ok {
				continue
			}

			defNode := enclosingDefinition(cap.Node)
			startLine := int(defNode.StartPoint().Row) + 1
			endLine := int(defNode.EndPoint().Row) + 1

			symbols = append(symbols, Symbol{
				Name:        cap.Node.Content(content),
				Kind:        kind,
				StartLine:   startLine,
				EndLine:     &endLine,
				StartCol:    int(defNode.StartPoint().Column),
				EndCol:      int(defNode.EndPoint().Column),
				Signature:   clipSignature(defNode.Content(content)),
				Docstring:   leadingComment(defNode, content),
				ParentIndex: -1,
			})
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return symbols, nil
}

// enclosingDefinition walks up from a captured name node to the definition
// node proper (function_declaration, class_definition, ...) so start/end
// lines cover the whole body, not just the identifier.
func enclosingDefinition(n *sitter.Node) *sitter.Node {
	node := n
	for p := node.Parent(); p != nil; p = node.Parent() {
		node = p
		switch node.Type() {
		case "function_declaration", "method_declaration", "type_declaration", "type_spec",
			"function_definition", "class_definition",
			"class_declaration", "method_definition", "interface_declaration",
			"function_item", "struct_item", "enum_item", "trait_item",
			"struct_specifier", "class_specifier":
			return node
		}
	}
	return node
}

func kindFromCapture(captureName string) (string, bool) {
	switch {
	case strings.HasSuffix(captureName, ".function"):
		return KindFunction, true
	case strings.HasSuffix(captureName, ".method"):
		return KindMethod, true
	case strings.HasSuffix(captureName, ".class"):
		return KindClass, true
	default:
		return "", false
	}
}

func clipSignature(text string) string {
	line := text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxSignatureLen {
		line = line[:maxSignatureLen]
	}
	return line
}

var blockCommentTrim = regexp.MustCompile(`^/\*|\*/$|^//|^#|^"""|"""$|^'''|'''$`)

// leadingComment returns the comment or docstring immediately preceding (or,
// for Python, immediately inside) a definition node, with comment/quote
// markers stripped.
func leadingComment(defNode *sitter.Node, content []byte) *string {
	prev := defNode.PrevSibling()
	if prev != nil && strings.Contains(prev.Type(), "comment") {
		text := blockCommentTrim.ReplaceAllString(strings.TrimSpace(prev.Content(content)), "")
		text = strings.TrimSpace(text)
		if text != "" {
			return &text
		}
	}

	// Python-style: first statement inside the body is a bare string.
	body := defNode.ChildByFieldName("body")
	if body != nil && body.NamedChildCount() > 0 {
		first := body.NamedChild(0)
		if first.Type() == "expression_statement" && first.NamedChildCount() > 0 {
			if str := first.NamedChild(0); str.Type() == "string" {
				text := blockCommentTrim.ReplaceAllString(strings.TrimSpace(str.Content(content)), "")
				text = strings.TrimSpace(text)
				if text != "" {
					return &text
				}
			}
		}
	}

	return nil
}

// assignParents gives each symbol the index of the innermost enclosing
// symbol whose range strictly contains it, matching the enclosure
// invariant: parent.start <= child.start <= child.end <= parent.end.
func assignParents(symbols []Symbol) {
	for i := range symbols {
		best := -1
		for j := range symbols {
			if i == j {
				continue
			}
			if !contains(symbols[j], symbols[i]) {
				continue
			}
			if best == -1 || isNarrower(symbols[j], symbols[best]) {
				best = j
			}
		}
		symbols[i].ParentIndex = best
	}
}

func contains(outer, inner Symbol) bool {
	if outer.EndLine == nil || inner.EndLine == nil {
		return false
	}
	if outer.Kind != KindClass && outer.Kind != KindFunction && outer.Kind != KindMethod {
		return false
	}
	return outer.StartLine <= inner.StartLine && *inner.EndLine <= *outer.EndLine &&
		!(outer.StartLine == inner.StartLine && *outer.EndLine == *inner.EndLine)
}

func isNarrower(a, b Symbol) bool {
	aSpan := *a.EndLine - a.StartLine
	bSpan := *b.EndLine - b.StartLine
	return aSpan < bSpan
}

func (e *TreeSitterExtractor) extractCallsites(root *sitter.Node, content []byte, symbols []Symbol) ([]Callsite, error) {
	if e.spec.callQ == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(e.spec.callQ), e.spec.lang)
	if err != nil {
		return nil, fmt.Errorf("compile call query for %s: %w", e.language, err)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var sites []Callsite
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		var calleeNode *sitter.Node
		for _, cap := range match.Captures {
			if q.CaptureNameForId(cap.Index) == "callee" {
				calleeNode = cap.Node
			}
		}
		if calleeNode == nil {
			continue
		}

		callee := calleeNode.Content(content)
		line := int(calleeNode.StartPoint().Row) + 1
		col := int(calleeNode.StartPoint().Column)

		sites = append(sites, Callsite{
			Callee:         callee,
			Line:           line,
			Column:         col,
			Confidence:     calleeConfidence(callee),
			ScopeSymbolIdx: enclosingSymbolIndex(symbols, line),
		})
	}
	return sites, nil
}

var simpleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func calleeConfidence(callee string) float64 {
	conf := 0.5
	if strings.Contains(callee, ".") {
		conf += 0.2
	}
	if simpleIdentifier.MatchString(lastSegment(callee)) {
		conf += 0.1
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func lastSegment(callee string) string {
	if idx := strings.LastIndexAny(callee, ".:"); idx >= 0 {
		return callee[idx+1:]
	}
	return callee
}

// enclosingSymbolIndex returns the index of the narrowest symbol whose line
// range contains line, or -1 if none does.
func enclosingSymbolIndex(symbols []Symbol, line int) int {
	best := -1
	for i, s := range symbols {
		if s.EndLine == nil {
			continue
		}
		if s.StartLine <= line && line <= *s.EndLine {
			if best == -1 || isNarrower(s, symbols[best]) {
				best = i
			}
		}
	}
	return best
}
