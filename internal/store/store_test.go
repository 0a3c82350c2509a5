package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestUpsertFileStableID(t *testing.T) {
	s := newTestStore(t)
	id1, err := s.UpsertFile("a.py", 100, 10, "hash1", "python")
	require.NoError(t, err)

	id2, err := s.UpsertFile("a.py", 200, 20, "hash2", "python")
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	f, err := s.FileByPath("a.py")
	require.NoError(t, err)
	require.Equal(t, "hash2", f.ContentHash)
	require.Equal(t, int64(200), f.Mtime)
}

func TestDeleteFileCascades(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile("a.py", 1, 1, "h", "python")
	require.NoError(t, err)

	symID, err := s.AddSymbol(&Symbol{FileID: fileID, Name: "f", Kind: KindFunction, StartLine: 1})
	require.NoError(t, err)
	_, err = s.AddEdge(symID, symID, EdgeCall, fileID, 0.9, nil)
	require.NoError(t, err)

	ok, err := s.DeleteFile("a.py")
	require.NoError(t, err)
	require.True(t, ok)

	syms, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	require.Empty(t, syms)

	edges, err := s.OutgoingEdges(symID)
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile("a.py", 1, 1, "h", "python")
	require.NoError(t, err)
	s1, _ := s.AddSymbol(&Symbol{FileID: fileID, Name: "f", Kind: KindFunction, StartLine: 1})
	s2, _ := s.AddSymbol(&Symbol{FileID: fileID, Name: "g", Kind: KindFunction, StartLine: 2})

	id1, err := s.AddEdge(s2, s1, EdgeCall, fileID, 0.9, nil)
	require.NoError(t, err)
	id2, err := s.AddEdge(s2, s1, EdgeCall, fileID, 0.9, nil)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	edges, err := s.OutgoingEdges(s2)
	require.NoError(t, err)
	require.Len(t, edges, 1)
}

func TestSearchSymbolsFTS(t *testing.T) {
	s := newTestStore(t)
	fileID, _ := s.UpsertFile("a.py", 1, 1, "h", "python")
	_, err := s.AddSymbol(&Symbol{FileID: fileID, Name: "handle_request", Kind: KindFunction, StartLine: 1})
	require.NoError(t, err)
	_, err = s.AddSymbol(&Symbol{FileID: fileID, Name: "other", Kind: KindFunction, StartLine: 2})
	require.NoError(t, err)

	results, err := s.SearchSymbols("handle*", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "handle_request", results[0].Name)
}

func TestHashIsDeterministic(t *testing.T) {
	h1 := HashBytes([]byte("hello world"))
	h2 := HashBytes([]byte("hello world"))
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, HashBytes([]byte("hello world!")))
}

func TestSchemaVersionNewerRejected(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.setMeta("schema_version", "999"))
	err := s.Migrate()
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestCommitBatchRemapsFakeIDs(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile("a.py", 1, 1, "h", "python")
	require.NoError(t, err)

	batch := NewBatchedStore(s)
	parentID := batch.InsertSymbol(&Symbol{FileID: fileID, Name: "Outer", Kind: KindClass, StartLine: 1})
	childFake := batch.InsertSymbol(&Symbol{FileID: fileID, Name: "inner", Kind: KindMethod, StartLine: 2, ParentSymbolID: &parentID})
	batch.InsertEdge(&Edge{SourceID: childFake, TargetID: parentID, Kind: EdgeCall, FileID: fileID, Confidence: 0.9})

	require.NoError(t, s.CommitBatch(batch))

	syms, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	require.Len(t, syms, 2)

	var child *Symbol
	for _, sym := range syms {
		if sym.Name == "inner" {
			child = sym
		}
	}
	require.NotNil(t, child)
	require.NotNil(t, child.ParentSymbolID)
	require.Positive(t, *child.ParentSymbolID)
}
