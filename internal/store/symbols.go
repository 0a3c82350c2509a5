package store

import (
	"database/sql"
	"fmt"
)

// AddSymbol appends a new Symbol row. The symbols_fts shadow table stays in
// sync automatically via the triggers created in Migrate.
func (s *Store) AddSymbol(sym *Symbol) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symbols (file_id, name, kind, start_line, end_line, start_col, end_col,
			signature, docstring, parent_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind, sym.StartLine, sym.EndLine, sym.StartCol, sym.EndCol,
		sym.Signature, sym.Docstring, sym.ParentSymbolID,
	)
	if err != nil {
		return 0, fmt.Errorf("add symbol %q: %w", sym.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add symbol %q: %w", sym.Name, err)
	}
	sym.ID = id
	return id, nil
}

// DeleteSymbolsForFile cascade-removes all Symbols (and their Edges/
// Callsites, via ON DELETE CASCADE) under a file. Returns the count removed.
func (s *Store) DeleteSymbolsForFile(fileID int64) (int, error) {
	res, err := s.db.Exec("DELETE FROM symbols WHERE file_id = ?", fileID)
	if err != nil {
		return 0, fmt.Errorf("delete symbols for file %d: %w", fileID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete symbols for file %d: %w", fileID, err)
	}
	return int(n), nil
}

const symbolCols = `id, file_id, name, kind, start_line, end_line, start_col, end_col, signature, docstring, parent_symbol_id`

func scanSymbol(row interface{ Scan(...any) error }) (*Symbol, error) {
	sym := &Symbol{}
	var endLine, startCol, endCol sql.NullInt64
	var signature, docstring sql.NullString
	var parentID sql.NullInt64
	if err := row.Scan(
		&sym.ID, &sym.FileID, &sym.Name, &sym.Kind, &sym.StartLine,
		&endLine, &startCol, &endCol, &signature, &docstring, &parentID,
	); err != nil {
		return nil, err
	}
	if endLine.Valid {
		v := int(endLine.Int64)
		sym.EndLine = &v
	}
	if startCol.Valid {
		v := int(startCol.Int64)
		sym.StartCol = &v
	}
	if endCol.Valid {
		v := int(endCol.Int64)
		sym.EndCol = &v
	}
	if signature.Valid {
		sym.Signature = &signature.String
	}
	if docstring.Valid {
		sym.Docstring = &docstring.String
	}
	if parentID.Valid {
		sym.ParentSymbolID = &parentID.Int64
	}
	return sym, nil
}

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var syms []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}

// SymbolsByFile returns every symbol defined in a file.
func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE file_id = ? ORDER BY start_line", fileID)
}

// SymbolsByName returns every symbol with an exact name match.
func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE name = ?", name)
}

// SymbolByID looks up a single symbol. Returns nil, nil if not found.
func (s *Store) SymbolByID(id int64) (*Symbol, error) {
	row := s.db.QueryRow("SELECT "+symbolCols+" FROM symbols WHERE id = ?", id)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbol by id %d: %w", id, err)
	}
	return sym, nil
}

// SymbolsByIDs bulk-loads symbols by id in a single round trip.
func (s *Store) SymbolsByIDs(ids []int64) ([]*Symbol, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := placeholderList(ids)
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE id IN ("+placeholders+")", args...)
}

// AllSymbols returns every symbol in the store.
func (s *Store) AllSymbols() ([]*Symbol, error) {
	return s.querySymbols("SELECT " + symbolCols + " FROM symbols")
}

// SymbolAt returns the narrowest symbol in file whose line range contains
// line (1-indexed), or nil if none does. Ties broken by smallest range.
func (s *Store) SymbolAt(fileID int64, line int) (*Symbol, error) {
	row := s.db.QueryRow(
		`SELECT `+symbolCols+` FROM symbols
		 WHERE file_id = ? AND start_line <= ? AND (end_line IS NULL OR end_line >= ?)
		 ORDER BY (COALESCE(end_line, start_line) - start_line) ASC
		 LIMIT 1`,
		fileID, line, line,
	)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbol at %d:%d: %w", fileID, line, err)
	}
	return sym, nil
}

// SearchSymbols performs a full-text search over symbol names using FTS5's
// native MATCH syntax (including prefix queries with a trailing '*'),
// ordered by bm25 relevance rank.
func (s *Store) SearchSymbols(query string, limit int) ([]*Symbol, error) {
	rows, err := s.db.Query(
		`SELECT `+prefixCols("s", symbolCols)+`
		 FROM symbols_fts f
		 JOIN symbols s ON s.id = f.rowid
		 WHERE symbols_fts MATCH ?
		 ORDER BY bm25(symbols_fts)
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search symbols %q: %w", query, err)
	}
	defer rows.Close()
	var syms []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}

// CountSymbolsInFile returns the number of symbols in a file, without
// loading the rows.
func (s *Store) CountSymbolsInFile(fileID int64) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM symbols WHERE file_id = ?", fileID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count symbols in file %d: %w", fileID, err)
	}
	return n, nil
}
