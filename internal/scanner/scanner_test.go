package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopyhq/canopy/internal/ignore"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanSkipsIgnoredAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, ".hidden.go"), "package main\n")
	writeFile(t, filepath.Join(root, "vendor", "dep.go"), "package dep\n")

	mgr := ignore.NewManager(root)
	require.NoError(t, mgr.Load("", ""))

	candidates, err := Scan(Options{Root: root, Ignore: mgr})
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, c := range candidates {
		paths[c.Path] = true
	}
	require.True(t, paths["main.go"])
	require.False(t, paths[".hidden.go"])
	require.False(t, paths["vendor/dep.go"])
}

func TestScanAssignsLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "script.py"), "print(1)\n")

	mgr := ignore.NewManager(root)
	require.NoError(t, mgr.Load("", ""))

	candidates, err := Scan(Options{Root: root, Ignore: mgr})
	require.NoError(t, err)

	byPath := map[string]Candidate{}
	for _, c := range candidates {
		byPath[c.Path] = c
	}
	require.Equal(t, "go", byPath["main.go"].Language)
	require.Equal(t, "python", byPath["script.py"].Language)
}

func TestScanRespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.go"), "package main\n// padding padding padding\n")

	mgr := ignore.NewManager(root)
	require.NoError(t, mgr.Load("", ""))

	candidates, err := Scan(Options{Root: root, Ignore: mgr, MaxFileSize: 5})
	require.NoError(t, err)
	require.Empty(t, candidates)
}
