package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// AddEdge is idempotent by (source, target, kind, file): inserting the same
// tuple repeatedly returns the existing row's id rather than a duplicate.
func (s *Store) AddEdge(sourceID, targetID int64, kind string, fileID int64, confidence float64, metadata map[string]any) (int64, error) {
	meta, err := marshalMetadata(metadata)
	if err != nil {
		return 0, fmt.Errorf("add edge: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO edges (source_id, target_id, kind, file_id, confidence, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, kind, file_id) DO NOTHING`,
		sourceID, targetID, kind, fileID, confidence, meta,
	)
	if err != nil {
		return 0, fmt.Errorf("add edge: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("add edge: %w", err)
		}
		return id, nil
	}

	var id int64
	err = s.db.QueryRow(
		"SELECT id FROM edges WHERE source_id = ? AND target_id = ? AND kind = ? AND file_id = ?",
		sourceID, targetID, kind, fileID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add edge: lookup existing: %w", err)
	}
	return id, nil
}

func marshalMetadata(m map[string]any) (*string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func unmarshalMetadata(raw sql.NullString) (map[string]any, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}

const edgeCols = `id, source_id, target_id, kind, file_id, confidence, metadata`

func scanEdge(row interface{ Scan(...any) error }) (*Edge, error) {
	e := &Edge{}
	var meta sql.NullString
	if err := row.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Kind, &e.FileID, &e.Confidence, &meta); err != nil {
		return nil, err
	}
	m, err := unmarshalMetadata(meta)
	if err != nil {
		return nil, err
	}
	e.Metadata = m
	return e, nil
}

func (s *Store) queryEdges(query string, args ...any) ([]*Edge, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []*Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// OutgoingEdges returns edges where symbolID is the source.
func (s *Store) OutgoingEdges(symbolID int64) ([]*Edge, error) {
	return s.queryEdges("SELECT "+edgeCols+" FROM edges WHERE source_id = ?", symbolID)
}

// IncomingEdges returns edges where symbolID is the target.
func (s *Store) IncomingEdges(symbolID int64) ([]*Edge, error) {
	return s.queryEdges("SELECT "+edgeCols+" FROM edges WHERE target_id = ?", symbolID)
}

// AllEdges returns every edge in the store.
func (s *Store) AllEdges() ([]*Edge, error) {
	return s.queryEdges("SELECT " + edgeCols + " FROM edges")
}

// FanIn returns the number of distinct incoming edges to a symbol.
func (s *Store) FanIn(symbolID int64) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM edges WHERE target_id = ?", symbolID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("fan in %d: %w", symbolID, err)
	}
	return n, nil
}

// AddCallsite records one textual occurrence of an Edge. Callsites are not
// deduplicated.
func (s *Store) AddCallsite(cs *Callsite) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO callsites (edge_id, line, column, context) VALUES (?, ?, ?, ?)",
		cs.EdgeID, cs.Line, cs.Column, cs.Context,
	)
	if err != nil {
		return 0, fmt.Errorf("add callsite: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add callsite: %w", err)
	}
	cs.ID = id
	return id, nil
}

// CallsitesByEdge returns all callsites for an edge.
func (s *Store) CallsitesByEdge(edgeID int64) ([]*Callsite, error) {
	rows, err := s.db.Query("SELECT id, edge_id, line, column, context FROM callsites WHERE edge_id = ?", edgeID)
	if err != nil {
		return nil, fmt.Errorf("callsites by edge %d: %w", edgeID, err)
	}
	defer rows.Close()
	var sites []*Callsite
	for rows.Next() {
		cs := &Callsite{}
		var col sql.NullInt64
		var ctx sql.NullString
		if err := rows.Scan(&cs.ID, &cs.EdgeID, &cs.Line, &col, &ctx); err != nil {
			return nil, fmt.Errorf("scan callsite: %w", err)
		}
		if col.Valid {
			v := int(col.Int64)
			cs.Column = &v
		}
		if ctx.Valid {
			cs.Context = &ctx.String
		}
		sites = append(sites, cs)
	}
	return sites, rows.Err()
}
