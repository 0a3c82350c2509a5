package packs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopyhq/canopy/internal/graph"
	"github.com/canopyhq/canopy/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func sig(s string) *string { return &s }

func seedRepo(t *testing.T, s *store.Store, repoRoot string) (fFileID, gFileID int64) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "core"), 0o755))
	coreSrc := "def f():\n    pass\n\n\ndef g():\n    f()\n"
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "core", "m.py"), []byte(coreSrc), 0o644))

	fFileID, err := s.UpsertFile("core/m.py", 1, int64(len(coreSrc)), "h1", "python")
	require.NoError(t, err)

	fID, err := s.AddSymbol(&store.Symbol{FileID: fFileID, Name: "f", Kind: store.KindFunction, StartLine: 1, Signature: sig("def f():")})
	require.NoError(t, err)
	gID, err := s.AddSymbol(&store.Symbol{FileID: fFileID, Name: "g", Kind: store.KindFunction, StartLine: 5, Signature: sig("def g():")})
	require.NoError(t, err)
	_, err = s.AddEdge(gID, fID, store.EdgeCall, fFileID, 0.95, nil)
	require.NoError(t, err)

	testSrc := "def test_g():\n    g()\n"
	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "tests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "tests", "test_m.py"), []byte(testSrc), 0o644))
	gFileID, err = s.UpsertFile("tests/test_m.py", 1, int64(len(testSrc)), "h2", "python")
	require.NoError(t, err)
	testGID, err := s.AddSymbol(&store.Symbol{FileID: gFileID, Name: "test_g", Kind: store.KindFunction, StartLine: 1, Signature: sig("def test_g():")})
	require.NoError(t, err)
	_, err = s.AddEdge(testGID, gID, store.EdgeCall, gFileID, 0.9, nil)
	require.NoError(t, err)

	return fFileID, gFileID
}

func TestRepoMapIncludesDirectoryTreeAndSymbols(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)

	gen := NewRepoMapGenerator(s)
	pack, err := gen.Generate(4000, "")
	require.NoError(t, err)

	require.Contains(t, pack.DirectoryTree, "core")
	require.Contains(t, pack.DirectoryTree, "tests")
	require.Equal(t, 2, pack.DependencySummary.FileCount)
	require.Equal(t, 3, pack.DependencySummary.SymbolCount)

	text := pack.Text()
	require.Contains(t, text, "# Repository Overview")
	require.Contains(t, text, "core/m.py")
}

func TestRepoMapFocusFiltersFiles(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)

	gen := NewRepoMapGenerator(s)
	pack, err := gen.Generate(4000, "core")
	require.NoError(t, err)

	require.Len(t, pack.TopFiles, 1)
}

func TestRepoMapTruncatesUnderTinyBudget(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)

	gen := NewRepoMapGenerator(s)
	pack, err := gen.Generate(10, "")
	require.NoError(t, err)
	require.LessOrEqual(t, len(pack.TopFiles), 5)
}

func TestZoomResolvesByNameAndIncludesCallers(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)
	eng := graph.NewEngine(s)

	gen := NewZoomGenerator(s, eng, repoRoot)
	pack, err := gen.Generate("g", 4000)
	require.NoError(t, err)
	require.NotNil(t, pack)

	require.Equal(t, "g", pack.TargetSymbol.Name)
	require.Contains(t, pack.CodeSlice, "def g():")
	require.Len(t, pack.Callees, 1)
	require.Equal(t, "f", pack.Callees[0].Name)
	require.Len(t, pack.Callers, 1)
	require.Equal(t, "test_g", pack.Callers[0].Name)
}

func TestZoomResolvesByFileLine(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)
	eng := graph.NewEngine(s)

	gen := NewZoomGenerator(s, eng, repoRoot)
	pack, err := gen.Generate("core/m.py:1", 4000)
	require.NoError(t, err)
	require.NotNil(t, pack)
	require.Equal(t, "f", pack.TargetSymbol.Name)
}

func TestZoomReturnsNilForUnknownTarget(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)
	eng := graph.NewEngine(s)

	gen := NewZoomGenerator(s, eng, repoRoot)
	pack, err := gen.Generate("does_not_exist", 4000)
	require.NoError(t, err)
	require.Nil(t, pack)
}

func TestImpactIncludesAffectedTestsAndRanking(t *testing.T) {
	repoRoot := t.TempDir()
	s := newTestStore(t)
	seedRepo(t, s, repoRoot)
	eng := graph.NewEngine(s)

	gen := NewImpactGenerator(eng)
	pack, err := gen.Generate([]string{"f"}, 2, 4000)
	require.NoError(t, err)

	require.Contains(t, pack.AffectedTests, "tests/test_m.py")
	require.NotEmpty(t, pack.RankedInspection)

	text := pack.Text()
	require.Contains(t, text, "# Impact Analysis")
}
