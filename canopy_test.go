package canopy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/canopyhq/canopy/internal/lock"
	"github.com/stretchr/testify/require"
)

func writeRepo(t *testing.T, root string) {
	t.Helper()
	src := "def f():\n    pass\n\n\ndef g():\n    f()\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "m.py"), []byte(src), 0o644))
}

func TestNewCreatesCanopyDirAndStore(t *testing.T) {
	root := t.TempDir()
	writeRepo(t, root)

	e, err := New(root)
	require.NoError(t, err)
	defer e.Close()

	require.DirExists(t, filepath.Join(root, ".canopy"))
	require.NotNil(t, e.Store())
}

func TestIndexThenRepoMapAndZoomAndImpact(t *testing.T) {
	root := t.TempDir()
	writeRepo(t, root)

	e, err := New(root)
	require.NoError(t, err)
	defer e.Close()

	stats, err := e.Index(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesNew)

	rm, err := e.RepoMap(0, "")
	require.NoError(t, err)
	require.Contains(t, rm.DirectoryTree, "m.py")

	zoom, err := e.Zoom("g", 0)
	require.NoError(t, err)
	require.NotNil(t, zoom)
	require.Equal(t, "g", zoom.TargetSymbol.Name)
	require.Len(t, zoom.Callees, 1)

	impact, err := e.Impact([]string{"f"}, 2, 0)
	require.NoError(t, err)
	require.NotNil(t, impact)
	require.NotEmpty(t, impact.AffectedSymbols)
}

func TestIndexHeldLockReturnsErrHeld(t *testing.T) {
	root := t.TempDir()
	writeRepo(t, root)

	e, err := New(root)
	require.NoError(t, err)
	defer e.Close()

	held, err := lock.Acquire(filepath.Join(root, ".canopy", "index.lock"))
	require.NoError(t, err)
	defer held.Release()

	_, err = e.Index(context.Background(), false)
	require.ErrorIs(t, err, lock.ErrHeld)
}

func TestWithLanguagesRestrictsIndexing(t *testing.T) {
	root := t.TempDir()
	writeRepo(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "m.go"), []byte("package m\n\nfunc F() {}\n"), 0o644))

	e, err := New(root, WithLanguages("go"))
	require.NoError(t, err)
	defer e.Close()

	stats, err := e.Index(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesNew)

	file, err := e.Store().FileByPath("m.py")
	require.NoError(t, err)
	require.Nil(t, file)
}
