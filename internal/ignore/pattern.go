// Package ignore implements gitignore-style path filtering with CLI-level
// include/exclude overrides layered on top of default and .gitignore
// patterns.
package ignore

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a single ignore rule, parsed from one gitignore-style line.
type Pattern struct {
	Raw         string
	Source      string
	IsNegation  bool
	IsDirectory bool
	IsAnchored  bool
}

// NewPattern parses a raw gitignore-style line into a Pattern. source
// records where the line came from (default, gitignore, cli-include,
// cli-exclude) for diagnostics.
func NewPattern(raw, source string) Pattern {
	p := Pattern{Source: source}
	pat := strings.TrimSpace(raw)

	if strings.HasPrefix(pat, "!") {
		p.IsNegation = true
		pat = pat[1:]
	}
	if strings.HasSuffix(pat, "/") {
		p.IsDirectory = true
		pat = pat[:len(pat)-1]
	}
	if strings.HasPrefix(pat, "/") {
		p.IsAnchored = true
		pat = pat[1:]
	}

	p.Raw = pat
	return p
}

// Matches reports whether path (relative to the repo root, forward slashes)
// satisfies this pattern.
func (p Pattern) Matches(path string, isDir bool) bool {
	if p.IsDirectory && !isDir {
		dir := path
		for {
			i := strings.LastIndex(dir, "/")
			if i < 0 {
				return false
			}
			dir = dir[:i]
			if p.Matches(dir, true) {
				return true
			}
		}
	}

	if p.IsAnchored {
		return path == p.Raw || strings.HasPrefix(path, p.Raw+"/")
	}

	if ok, _ := doublestar.Match(p.Raw, path); ok {
		return true
	}

	for _, part := range strings.Split(path, "/") {
		if ok, _ := doublestar.Match(p.Raw, part); ok {
			return true
		}
	}

	if ok, _ := doublestar.Match("**/"+p.Raw, path); ok {
		return true
	}

	return false
}
