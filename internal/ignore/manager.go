package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stats summarizes the patterns a Manager is holding.
type Stats struct {
	TotalPatterns   int
	IncludePatterns int
	ExcludePatterns int
	Sources         []string
}

// Manager merges default-ignore and .gitignore patterns with CLI-supplied
// include/exclude overrides and decides whether a given path should be
// skipped during scanning.
type Manager struct {
	repoRoot string

	patterns        []Pattern
	includePatterns []Pattern
	excludePatterns []Pattern

	loaded bool
}

// NewManager creates a Manager rooted at repoRoot. Call Load before
// ShouldIgnore to pick up default and .gitignore patterns.
func NewManager(repoRoot string) *Manager {
	return &Manager{repoRoot: repoRoot}
}

// Load reads defaultIgnorePath (if non-empty and present) and then
// gitignorePath (falling back to <repoRoot>/.gitignore when empty). Load is
// idempotent; calling it twice is a no-op.
func (m *Manager) Load(defaultIgnorePath, gitignorePath string) error {
	if m.loaded {
		return nil
	}

	if defaultIgnorePath != "" {
		if err := m.loadFile(defaultIgnorePath, "default"); err != nil {
			return err
		}
	} else {
		m.LoadDefaults()
	}

	gi := gitignorePath
	if gi == "" {
		gi = filepath.Join(m.repoRoot, ".gitignore")
	}
	if err := m.loadFile(gi, "gitignore"); err != nil {
		return err
	}

	m.loaded = true
	return nil
}

func (m *Manager) loadFile(path, source string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ignore file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, NewPattern(line, source))
	}
	return scanner.Err()
}

// AddConfigPattern registers a pattern from .canopy/config.json's
// ignore.patterns list. It participates in the same default/gitignore tier
// as file-sourced patterns (later patterns and negations can override it),
// rather than forcing a decision the way AddInclude/AddExclude do.
func (m *Manager) AddConfigPattern(pattern string) {
	m.patterns = append(m.patterns, NewPattern(pattern, "config"))
}

// AddInclude registers a CLI pattern that forces matching paths to be kept
// regardless of default/gitignore/exclude rules.
func (m *Manager) AddInclude(pattern string) {
	m.includePatterns = append(m.includePatterns, NewPattern(pattern, "cli-include"))
}

// AddExclude registers a CLI pattern that forces matching paths to be
// dropped, overriding default/gitignore rules but not includes.
func (m *Manager) AddExclude(pattern string) {
	m.excludePatterns = append(m.excludePatterns, NewPattern(pattern, "cli-exclude"))
}

// ShouldIgnore decides whether path should be skipped, applying precedence
// in order: CLI includes, CLI excludes, hidden-file default, then
// default/gitignore patterns (later patterns and negations override
// earlier ones, matching gitignore semantics).
func (m *Manager) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	for _, p := range m.includePatterns {
		if p.Matches(path, isDir) {
			return false
		}
	}

	for _, p := range m.excludePatterns {
		if p.Matches(path, isDir) {
			return true
		}
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	ignored := false
	for _, p := range m.patterns {
		if p.Matches(path, isDir) {
			ignored = !p.IsNegation
		}
	}
	return ignored
}

// Stats reports counts of loaded patterns, for diagnostics.
func (m *Manager) Stats() Stats {
	sourceSet := make(map[string]struct{})
	for _, p := range m.patterns {
		sourceSet[p.Source] = struct{}{}
	}
	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}

	return Stats{
		TotalPatterns:   len(m.patterns),
		IncludePatterns: len(m.includePatterns),
		ExcludePatterns: len(m.excludePatterns),
		Sources:         sources,
	}
}
