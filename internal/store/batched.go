package store

import "sync"

// BatchedStore buffers extraction writes in memory using fake (negative)
// ids, so a file's parser result can reference symbols it just produced
// (parent_symbol_id, call edges) before any of them have a real rowid.
// CommitBatch flushes the buffer in one transaction, remapping fake ids to
// real ones as it goes.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	Symbols   []Symbol
	Edges     []Edge
	Callsites []Callsite

	nextFakeID int64 // starts at -1, decrements
}

// NewBatchedStore creates a BatchedStore backed by store for passthrough
// reads (cross-file symbol lookups during resolution).
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{store: s, nextFakeID: -1}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

// InsertSymbol buffers a symbol and returns its fake id.
func (b *BatchedStore) InsertSymbol(sym *Symbol) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	sym.ID = b.allocFakeID()
	b.Symbols = append(b.Symbols, *sym)
	return sym.ID
}

// InsertEdge buffers an edge and returns its fake id. sourceID/targetID may
// be fake (intra-batch) or real (cross-file, already committed).
func (b *BatchedStore) InsertEdge(e *Edge) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.ID = b.allocFakeID()
	b.Edges = append(b.Edges, *e)
	return e.ID
}

// InsertCallsite buffers a callsite and returns its fake id.
func (b *BatchedStore) InsertCallsite(cs *Callsite) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs.ID = b.allocFakeID()
	b.Callsites = append(b.Callsites, *cs)
	return cs.ID
}

// SymbolsByName passes through to the underlying Store for cross-file name
// resolution (import/call target lookups against already-committed files).
func (b *BatchedStore) SymbolsByName(name string) ([]*Symbol, error) {
	return b.store.SymbolsByName(name)
}

// SymbolsByFile merges buffered (not yet committed) symbols for fileID with
// whatever is already in the database, so same-file parent/target lookups
// see the in-flight extraction result.
func (b *BatchedStore) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	dbSyms, err := b.store.SymbolsByFile(fileID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Symbols {
		if b.Symbols[i].FileID == fileID {
			dbSyms = append(dbSyms, &b.Symbols[i])
		}
	}
	return dbSyms, nil
}
