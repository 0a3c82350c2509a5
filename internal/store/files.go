package store

import (
	"database/sql"
	"fmt"
	"time"
)

// UpsertFile creates or updates the file row keyed by path, returning a
// stable id that is unchanged across updates.
func (s *Store) UpsertFile(path string, mtime, size int64, contentHash, language string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO files (path, mtime, size, content_hash, indexed_at, language)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   mtime=excluded.mtime, size=excluded.size, content_hash=excluded.content_hash,
		   indexed_at=excluded.indexed_at, language=excluded.language`,
		path, mtime, size, contentHash, now, language,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert file %q: %w", path, err)
	}
	_ = res
	// last_insert_rowid() is unreliable across the UPSERT's insert/update
	// branches, so the id is always resolved by a lookup on the unique key.
	f, err := s.FileByPath(path)
	if err != nil {
		return 0, fmt.Errorf("upsert file %q: %w", path, err)
	}
	if f == nil {
		return 0, fmt.Errorf("upsert file %q: row missing after upsert", path)
	}
	return f.ID, nil
}

// DeleteFile cascade-deletes the file and every descendant Symbol/Edge/
// Callsite. Returns whether anything was removed.
func (s *Store) DeleteFile(path string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return false, fmt.Errorf("delete file %q: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete file %q: %w", path, err)
	}
	return n > 0, nil
}

const fileCols = `id, path, mtime, size, content_hash, indexed_at, language`

func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var lang sql.NullString
	if err := row.Scan(&f.ID, &f.Path, &f.Mtime, &f.Size, &f.ContentHash, &f.IndexedAt, &lang); err != nil {
		return nil, err
	}
	f.Language = lang.String
	return f, nil
}

// FileByPath looks up a file by its repository-relative path. Returns nil,
// nil if not found.
func (s *Store) FileByPath(path string) (*File, error) {
	row := s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE path = ?", path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path %q: %w", path, err)
	}
	return f, nil
}

// FileByID looks up a file by id. Returns nil, nil if not found.
func (s *Store) FileByID(id int64) (*File, error) {
	row := s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE id = ?", id)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by id %d: %w", id, err)
	}
	return f, nil
}

// AllFiles returns every file row (used by the Indexer's vanished-file
// check and by RepoMap).
func (s *Store) AllFiles() ([]*File, error) {
	rows, err := s.db.Query("SELECT " + fileCols + " FROM files")
	if err != nil {
		return nil, fmt.Errorf("all files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// AllPaths returns every currently tracked file path.
func (s *Store) AllPaths() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM files")
	if err != nil {
		return nil, fmt.Errorf("all paths: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
