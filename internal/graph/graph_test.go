package graph

import (
	"path/filepath"
	"testing"

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

// seed builds: m.py has f() and g() with edge g -> f (call).
// t/test_m.py has test_g() with edge test_g -> g (call).
func seedCallGraph(t *testing.T, s *store.Store) (fID, gID, testGID int64) {
	t.Helper()
	fileID, err := s.UpsertFile("m.py", 1, 1, "h1", "python")
	require.NoError(t, err)
	fID, err = s.AddSymbol(&store.Symbol{FileID: fileID, Name: "f", Kind: store.KindFunction, StartLine: 1})
	require.NoError(t, err)
	gID, err = s.AddSymbol(&store.Symbol{FileID: fileID, Name: "g", Kind: store.KindFunction, StartLine: 2})
	require.NoError(t, err)
	_, err = s.AddEdge(gID, fID, store.EdgeCall, fileID, 0.95, nil)
	require.NoError(t, err)

	testFileID, err := s.UpsertFile("t/test_m.py", 1, 1, "h2", "python")
	require.NoError(t, err)
	testGID, err = s.AddSymbol(&store.Symbol{FileID: testFileID, Name: "test_g", Kind: store.KindFunction, StartLine: 1})
	require.NoError(t, err)
	_, err = s.AddEdge(testGID, gID, store.EdgeCall, testFileID, 0.95, nil)
	require.NoError(t, err)

	return fID, gID, testGID
}

func TestCallersAndCallees(t *testing.T) {
	s := newTestStore(t)
	fID, gID, _ := seedCallGraph(t, s)
	e := NewEngine(s)

	callers, err := e.Callers(fID, 1, 0)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	require.Equal(t, "g", callers[0].Name)

	callees, err := e.Callees(gID, 1, 0)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	require.Equal(t, "f", callees[0].Name)
}

func TestImpactIncludesTransitiveCallersAndTests(t *testing.T) {
	s := newTestStore(t)
	_, _, _ = seedCallGraph(t, s)
	e := NewEngine(s)

	result, err := e.Impact([]string{"g"}, 2)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, n := range result.AffectedSymbols {
		names[n.Name] = true
	}
	require.True(t, names["test_g"])
	require.Contains(t, result.AffectedTests, "t/test_m.py")
}

func TestCallersExcludesCyclesAndSelf(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile("c.py", 1, 1, "h", "python")
	require.NoError(t, err)
	aID, _ := s.AddSymbol(&store.Symbol{FileID: fileID, Name: "a", Kind: store.KindFunction, StartLine: 1})
	bID, _ := s.AddSymbol(&store.Symbol{FileID: fileID, Name: "b", Kind: store.KindFunction, StartLine: 2})
	_, err = s.AddEdge(aID, bID, store.EdgeCall, fileID, 0.9, nil)
	require.NoError(t, err)
	_, err = s.AddEdge(bID, aID, store.EdgeCall, fileID, 0.9, nil)
	require.NoError(t, err)

	e := NewEngine(s)
	callers, err := e.Callers(aID, 10, 0)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	require.Equal(t, "b", callers[0].Name)
}

func TestEdgeConfidenceFloorsByKind(t *testing.T) {
	call := &store.Edge{Kind: store.EdgeCall, Confidence: 0.5}
	require.Equal(t, 0.9, edgeConfidence(call))

	imp := &store.Edge{Kind: store.EdgeImport, Confidence: 0.5}
	require.Equal(t, 0.85, edgeConfidence(imp))

	capped := &store.Edge{Kind: store.EdgeCall, Confidence: 1.5}
	require.Equal(t, 1.0, edgeConfidence(capped))
}
