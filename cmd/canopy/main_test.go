package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRepoRootDirectGitDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	assert.Equal(t, root, findRepoRoot(root))
}

func TestFindRepoRootNestedSubdirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, root, findRepoRoot(deep))
}

func TestFindRepoRootNoGitAncestorFallsBackToStart(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, findRepoRoot(dir))
}

func TestResolveDBPathDefault(t *testing.T) {
	flagDB = ""
	root := "/repo"
	assert.Equal(t, filepath.Join(root, ".canopy", "index.db"), resolveDBPath(root))
}

func TestResolveDBPathRelativeFlag(t *testing.T) {
	flagDB = "custom.db"
	defer func() { flagDB = "" }()
	root := "/repo"
	assert.Equal(t, filepath.Join(root, "custom.db"), resolveDBPath(root))
}

func TestResolveDBPathAbsoluteFlag(t *testing.T) {
	flagDB = "/var/data/index.db"
	defer func() { flagDB = "" }()
	assert.Equal(t, "/var/data/index.db", resolveDBPath("/repo"))
}

func TestResolveTargetDirDefaultsToCwd(t *testing.T) {
	dir, err := resolveTargetDir(nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}

func TestResolveTargetDirRejectsMissingPath(t *testing.T) {
	_, err := resolveTargetDir([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestResolveTargetDirRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := resolveTargetDir([]string{file})
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("markdown"))
	assert.Error(t, validateFormat("yaml"))
}
