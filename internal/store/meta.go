package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

func (s *Store) setMeta(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

func (s *Store) getMeta(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return v, nil
}

// Stats is the aggregate count view over the store, mirroring the original
// implementation's get_stats() shape (files/symbols/edges/callsites).
type Stats struct {
	Files     int
	Symbols   int
	Edges     int
	Callsites int
}

// UpdateStats stamps the Meta table with the last-index time and aggregate
// counts, then returns the freshly computed Stats.
func (s *Store) UpdateStats() (*Stats, error) {
	stats := &Stats{}
	for table, dst := range map[string]*int{
		"files": &stats.Files, "symbols": &stats.Symbols,
		"edges": &stats.Edges, "callsites": &stats.Callsites,
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(dst); err != nil {
			return nil, fmt.Errorf("update stats: count %s: %w", table, err)
		}
	}

	if err := s.setMeta("last_indexed_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.setMeta("files_count", strconv.Itoa(stats.Files)); err != nil {
		return nil, err
	}
	if err := s.setMeta("symbols_count", strconv.Itoa(stats.Symbols)); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetStats reads the current aggregate counts directly from the tables
// (not the cached Meta stamp), matching RepoMap's dependency summary.
func (s *Store) GetStats() (*Stats, error) {
	return s.UpdateStats()
}
