package parser

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	pyImport     = regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+as\s+(\w+))?\s*$`)
	pyFromImport = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+([\w]+)(?:\s+as\s+(\w+))?`)
	jsImport     = regexp.MustCompile(`^\s*import\s+(.+?)\s+from\s+["']([^"']+)["']`)
	goImport     = regexp.MustCompile(`^\s*(?:import\s+)?(?:(\w+)\s+)?"([^"]+)"\s*$`)
	rustUse      = regexp.MustCompile(`^\s*use\s+([\w:]+)(?:\s+as\s+(\w+))?\s*;`)
	cInclude     = regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`)
)

// extractImports scans content line by line for import directives, applying
// the per-language textual rules: structured tree-sitter import grammars
// vary enough (Go's grouped `import (...)` blocks, Python's `from X import
// Y as Z`) that a line-oriented pass over the already-read source is more
// direct than walking each grammar's import node shape individually.
func extractImports(language string, content []byte) []Import {
	var imports []Import
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	lineNo := 0
	inGoImportBlock := false

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch language {
		case "python":
			if m := pyFromImport.FindStringSubmatch(trimmed); m != nil {
				imports = append(imports, Import{Module: m[1], Name: m[2], Alias: m[3], Line: lineNo, Raw: trimmed})
				continue
			}
			if m := pyImport.FindStringSubmatch(trimmed); m != nil {
				imports = append(imports, Import{Module: m[1], Alias: m[2], Line: lineNo, Raw: trimmed})
				continue
			}

		case "javascript", "typescript":
			if m := jsImport.FindStringSubmatch(trimmed); m != nil {
				imports = append(imports, Import{Module: m[2], Name: strings.TrimSpace(m[1]), Line: lineNo, Raw: trimmed})
				continue
			}

		case "go":
			if strings.HasPrefix(trimmed, "import (") {
				inGoImportBlock = true
				continue
			}
			if inGoImportBlock {
				if trimmed == ")" {
					inGoImportBlock = false
					continue
				}
				if m := goImport.FindStringSubmatch(trimmed); m != nil {
					imports = append(imports, Import{Module: m[2], Alias: m[1], Line: lineNo, Raw: trimmed})
				}
				continue
			}
			if strings.HasPrefix(trimmed, "import ") {
				if m := goImport.FindStringSubmatch(trimmed); m != nil {
					imports = append(imports, Import{Module: m[2], Alias: m[1], Line: lineNo, Raw: trimmed})
				}
			}

		case "rust":
			if m := rustUse.FindStringSubmatch(trimmed); m != nil {
				imports = append(imports, Import{Module: m[1], Alias: m[2], Line: lineNo, Raw: trimmed})
			}

		case "c", "cpp":
			if m := cInclude.FindStringSubmatch(trimmed); m != nil {
				imports = append(imports, Import{Module: m[1], Line: lineNo, Raw: trimmed})
			}
		}
	}

	return imports
}
