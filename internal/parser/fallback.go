package parser

import (
	"bufio"
	"regexp"
	"strings"
)

// fallbackConfidencePenalty is subtracted from a callsite's normal
// confidence when it was produced by pattern matching instead of a parsed
// AST, since textual matches cannot distinguish calls from other uses of an
// identifier (e.g. a type reference) as reliably.
const fallbackConfidencePenalty = 0.2

var fallbackDefPatterns = map[string][]*regexp.Regexp{
	"python": {
		regexp.MustCompile(`^\s*def\s+(\w+)\s*\(`),
		regexp.MustCompile(`^\s*class\s+(\w+)\s*[:(]`),
	},
	"javascript": {
		regexp.MustCompile(`^\s*function\s+(\w+)\s*\(`),
		regexp.MustCompile(`^\s*class\s+(\w+)\s*[{(]`),
	},
	"typescript": {
		regexp.MustCompile(`^\s*function\s+(\w+)\s*\(`),
		regexp.MustCompile(`^\s*class\s+(\w+)\s*[{(]`),
	},
	"go": {
		regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`),
		regexp.MustCompile(`^\s*type\s+(\w+)\s+(?:struct|interface)\b`),
	},
	"rust": {
		regexp.MustCompile(`^\s*fn\s+(\w+)\s*[(<]`),
		regexp.MustCompile(`^\s*(?:struct|enum|trait)\s+(\w+)`),
	},
	"c": {
		regexp.MustCompile(`^\s*\w[\w\s*]*\s+(\w+)\s*\([^;]*\)\s*\{`),
	},
	"cpp": {
		regexp.MustCompile(`^\s*\w[\w\s*:<>]*\s+(\w+)\s*\([^;]*\)\s*\{`),
		regexp.MustCompile(`^\s*class\s+(\w+)\b`),
	},
}

var simpleCallPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)

// ExtractFallback runs a best-effort line-pattern extraction for language
// when structured tree-sitter parsing is unavailable or failed. It returns a
// degraded Result: symbols have no end-line/parent information, and
// callsite confidence is penalized, matching the "not negative, reduced
// confidence" degrade-gracefully contract.
func ExtractFallback(language string, content []byte) *Result {
	result := &Result{Language: language, Degraded: true}

	patterns := fallbackDefPatterns[language]
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		for _, pat := range patterns {
			m := pat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			kind := KindFunction
			if strings.Contains(pat.String(), "class") || strings.Contains(pat.String(), "struct") {
				kind = KindClass
			}
			result.Symbols = append(result.Symbols, Symbol{
				Name:        m[1],
				Kind:        kind,
				StartLine:   lineNo,
				StartCol:    0,
				EndCol:      len(line),
				Signature:   clipSignature(strings.TrimSpace(line)),
				ParentIndex: -1,
			})
			break
		}

		for _, m := range simpleCallPattern.FindAllStringSubmatch(line, -1) {
			result.Callsites = append(result.Callsites, Callsite{
				Callee:         m[1],
				Line:           lineNo,
				Column:         strings.Index(line, m[1]),
				Confidence:     maxFloat(0, calleeConfidence(m[1])-fallbackConfidencePenalty),
				ScopeSymbolIdx: -1,
			})
		}
	}

	result.Imports = extractImports(language, content)
	return result
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
