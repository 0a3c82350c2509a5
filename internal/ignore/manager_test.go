package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreHiddenFilesByDefault(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load("", ""))
	require.True(t, m.ShouldIgnore(".env", false))
	require.False(t, m.ShouldIgnore("main.go", false))
}

func TestShouldIgnoreDefaultPatterns(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load("", ""))
	require.True(t, m.ShouldIgnore("node_modules/react/index.js", false))
	require.True(t, m.ShouldIgnore("vendor/lib/thing.go", false))
	require.False(t, m.ShouldIgnore("internal/store/store.go", false))
}

func TestGitignoreNegationOverridesEarlierPattern(t *testing.T) {
	dir := t.TempDir()
	gi := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(gi, []byte("*.log\n!keep.log\n"), 0o644))

	m := NewManager(dir)
	require.NoError(t, m.Load("", gi))
	require.True(t, m.ShouldIgnore("debug.log", false))
	require.False(t, m.ShouldIgnore("keep.log", false))
}

func TestCLIExcludeOverridesGitignore(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load("", filepath.Join(dir, ".gitignore")))
	m.AddExclude("*.proto")
	require.True(t, m.ShouldIgnore("api.proto", false))
}

func TestCLIIncludeOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load("", filepath.Join(dir, ".gitignore")))
	m.AddExclude("*.proto")
	m.AddInclude("api.proto")
	require.False(t, m.ShouldIgnore("api.proto", false))
}

func TestAnchoredPatternMatchesOnlyAtRoot(t *testing.T) {
	dir := t.TempDir()
	gi := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(gi, []byte("/build\n"), 0o644))

	m := NewManager(dir)
	require.NoError(t, m.Load("", gi))
	require.True(t, m.ShouldIgnore("build", true))
	require.False(t, m.ShouldIgnore("src/build", true))
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load("", ""))
	before := m.Stats().TotalPatterns
	require.NoError(t, m.Load("", ""))
	require.Equal(t, before, m.Stats().TotalPatterns)
}
