package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) ids are remapped to real
// AUTOINCREMENT ids as each table commits, in FK-dependency order:
//  1. Symbols (parent_symbol_id may be fake or already-real)
//  2. Edges (source/target/file may be fake or already-real)
//  3. Callsites (edge_id may be fake or already-real)
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64)
	resolve := func(id int64) int64 {
		if id >= 0 {
			return id
		}
		return fakeToReal[id]
	}

	for _, sym := range batch.Symbols {
		if sym.ParentSymbolID != nil && *sym.ParentSymbolID < 0 {
			real := resolve(*sym.ParentSymbolID)
			sym.ParentSymbolID = &real
		}
		realID, err := insertSymbolTx(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
	}

	for _, e := range batch.Edges {
		e.SourceID = resolve(e.SourceID)
		e.TargetID = resolve(e.TargetID)
		e.FileID = resolve(e.FileID)
		realID, err := insertEdgeTx(tx, &e)
		if err != nil {
			return fmt.Errorf("commit batch: edge %d->%d: %w", e.SourceID, e.TargetID, err)
		}
		fakeToReal[e.ID] = realID
	}

	for _, cs := range batch.Callsites {
		cs.EdgeID = resolve(cs.EdgeID)
		if err := insertCallsiteTx(tx, &cs); err != nil {
			return fmt.Errorf("commit batch: callsite: %w", err)
		}
	}

	return tx.Commit()
}

func insertSymbolTx(tx *sql.Tx, sym *Symbol) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO symbols (file_id, name, kind, start_line, end_line, start_col, end_col,
			signature, docstring, parent_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind, sym.StartLine, sym.EndLine, sym.StartCol, sym.EndCol,
		sym.Signature, sym.Docstring, sym.ParentSymbolID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertEdgeTx(tx *sql.Tx, e *Edge) (int64, error) {
	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO edges (source_id, target_id, kind, file_id, confidence, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, kind, file_id) DO NOTHING`,
		e.SourceID, e.TargetID, e.Kind, e.FileID, e.Confidence, meta,
	)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return res.LastInsertId()
	}
	var id int64
	err = tx.QueryRow(
		"SELECT id FROM edges WHERE source_id = ? AND target_id = ? AND kind = ? AND file_id = ?",
		e.SourceID, e.TargetID, e.Kind, e.FileID,
	).Scan(&id)
	return id, err
}

func insertCallsiteTx(tx *sql.Tx, cs *Callsite) error {
	_, err := tx.Exec(
		"INSERT INTO callsites (edge_id, line, column, context) VALUES (?, ?, ?, ?)",
		cs.EdgeID, cs.Line, cs.Column, cs.Context,
	)
	return err
}
