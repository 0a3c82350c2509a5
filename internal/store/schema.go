package store

// schemaVersion is the sole migration anchor, stamped into meta on first
// connect and checked on every subsequent open. Grounded in the original
// implementation's db.py SCHEMA_VERSION constant and CREATE_TABLES_SQL.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id           INTEGER PRIMARY KEY,
  path         TEXT NOT NULL UNIQUE,
  mtime        INTEGER NOT NULL,
  size         INTEGER NOT NULL,
  content_hash TEXT NOT NULL,
  indexed_at   TIMESTAMP NOT NULL,
  language     TEXT
);

CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  file_id          INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  name             TEXT NOT NULL,
  kind             TEXT NOT NULL,
  start_line       INTEGER NOT NULL,
  end_line         INTEGER,
  start_col        INTEGER,
  end_col          INTEGER,
  signature        TEXT,
  docstring        TEXT,
  parent_symbol_id INTEGER REFERENCES symbols(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
  id         INTEGER PRIMARY KEY,
  source_id  INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
  target_id  INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
  kind       TEXT NOT NULL,
  file_id    INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  confidence REAL NOT NULL DEFAULT 0.8,
  metadata   TEXT,
  UNIQUE(source_id, target_id, kind, file_id)
);

CREATE TABLE IF NOT EXISTS callsites (
  id      INTEGER PRIMARY KEY,
  edge_id INTEGER NOT NULL REFERENCES edges(id) ON DELETE CASCADE,
  line    INTEGER NOT NULL,
  column  INTEGER,
  context TEXT
);

CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_parent ON symbols(parent_symbol_id);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_edges_file ON edges(file_id);
CREATE INDEX IF NOT EXISTS idx_callsites_edge ON callsites(edge_id);
`

// ftsDDL creates the FTS5 shadow table over symbol names plus the triggers
// that keep it in sync. Grounded in the original implementation's
// CREATE_FTS_SQL (db.py): content table 'symbols', content_rowid 'id',
// porter tokenizer, ai/ad/au sync triggers.
const ftsDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
  name,
  content='symbols',
  content_rowid='id',
  tokenize='porter'
);

CREATE TRIGGER IF NOT EXISTS symbols_ai AFTER INSERT ON symbols BEGIN
  INSERT INTO symbols_fts(rowid, name) VALUES (new.id, new.name);
END;

CREATE TRIGGER IF NOT EXISTS symbols_ad AFTER DELETE ON symbols BEGIN
  INSERT INTO symbols_fts(symbols_fts, rowid, name) VALUES('delete', old.id, old.name);
END;

CREATE TRIGGER IF NOT EXISTS symbols_au AFTER UPDATE ON symbols BEGIN
  INSERT INTO symbols_fts(symbols_fts, rowid, name) VALUES('delete', old.id, old.name);
  INSERT INTO symbols_fts(rowid, name) VALUES (new.id, new.name);
END;
`
