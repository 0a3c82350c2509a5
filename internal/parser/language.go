package parser

import "path/filepath"

// extensionLanguage maps a lowercased file extension (with leading dot) to
// the language tag used throughout the store and pack generators.
var extensionLanguage = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".go":   "go",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
}

// LanguageForPath returns the detected language tag for path, and false if
// the extension is not recognized.
func LanguageForPath(path string) (string, bool) {
	ext := filepath.Ext(path)
	lang, ok := extensionLanguage[lowerASCII(ext)]
	return lang, ok
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
