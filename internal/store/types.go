// Package store is the persistent backend: a SQLite-backed, single-writer
// store of Files, Symbols, Edges, Callsites, and a Meta key-value table.
package store

import "time"

// File is a single source file tracked by the store, unique by path.
type File struct {
	ID          int64
	Path        string
	Mtime       int64 // unix seconds, from the filesystem at scan time
	Size        int64
	ContentHash string // hex-encoded SHA-256
	IndexedAt   time.Time
	Language    string // empty when undetected
}

// Symbol kinds recognized across all supported languages. Language-specific
// variants (struct, trait, enum, interface) collapse to KindClass.
const (
	KindFunction  = "function"
	KindMethod    = "method"
	KindClass     = "class"
	KindFile      = "file"
	KindNamespace = "namespace"
)

// Symbol is a named definition located in exactly one File.
type Symbol struct {
	ID            int64
	FileID        int64
	Name          string
	Kind          string
	StartLine     int // 1-indexed
	EndLine       *int
	StartCol      *int // 0-indexed
	EndCol        *int
	Signature     *string
	Docstring     *string
	ParentSymbolID *int64
}

// Edge kinds.
const (
	EdgeCall    = "call"
	EdgeImport  = "import"
	EdgeInherit = "inherit" // reserved
)

// Edge is a directed, typed relation between two Symbols.
type Edge struct {
	ID         int64
	SourceID   int64
	TargetID   int64
	Kind       string
	FileID     int64
	Confidence float64
	Metadata   map[string]any
}

// Callsite is a specific textual occurrence belonging to an Edge. Callsites
// are not deduplicated; an Edge may have zero or more.
type Callsite struct {
	ID      int64
	EdgeID  int64
	Line    int
	Column  *int
	Context *string
}

// Node is a Symbol enriched for Graph engine results: the owning file path
// and the confidence/depth at which it was reached during traversal.
type Node struct {
	Symbol
	FilePath   string
	Confidence float64
	Depth      int
}
