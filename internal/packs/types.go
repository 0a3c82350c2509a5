// Package packs assembles Store and Graph queries into three token-budgeted
// output packs: RepoMap (repository overview), Zoom (single-symbol detail),
// and Impact (change impact analysis).
package packs

import (
	"github.com/canopyhq/canopy/internal/store"
)

// FileScore is one entry in RepoMap's importance-ranked file list.
type FileScore struct {
	Path        string  `json:"path"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	SymbolCount int     `json:"symbol_count"`
}

// FileSymbol is one entry in RepoMap's per-file key-symbols listing.
type FileSymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Line      int    `json:"line"`
}

// DependencySummary is RepoMap's aggregate-counts section.
type DependencySummary struct {
	FileCount     int `json:"file_count"`
	SymbolCount   int `json:"symbol_count"`
	EdgeCount     int `json:"edge_count"`
	CallsiteCount int `json:"callsites"`
}

// RepoMapPack is a budget-bounded repository overview.
type RepoMapPack struct {
	DirectoryTree     string                  `json:"directory_tree"`
	TopFiles          []FileScore             `json:"top_files"`
	FileSymbols       map[string][]FileSymbol `json:"file_symbols"`
	FileSymbolsOrder  []string                `json:"-"` // insertion order, for stable text/JSON rendering
	DependencySummary DependencySummary       `json:"dependency_summary"`
}

// NodeRef is a caller/callee reference in a ZoomPack.
type NodeRef struct {
	Name       string  `json:"name"`
	FilePath   string  `json:"file_path"`
	Confidence float64 `json:"confidence"`
}

// SymbolIdentity is the target-symbol identity block in a ZoomPack.
type SymbolIdentity struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	FilePath  string `json:"file_path"`
	LineStart int    `json:"line_start"`
}

// ZoomPack is a focused, budget-bounded view of a single symbol.
type ZoomPack struct {
	TargetSymbol SymbolIdentity `json:"target_symbol"`
	Signature    string         `json:"signature"`
	Docstring    string         `json:"docstring,omitempty"`
	CodeSlice    string         `json:"code_slice"`
	Callers      []NodeRef      `json:"callers"`
	Callees      []NodeRef      `json:"callees"`
	FileContext  string         `json:"file_context"`
}

// ImpactPack is the result of a change-impact traversal, budget-bounded.
type ImpactPack struct {
	ChangedItems     []string         `json:"changed_items"`
	AffectedSymbols  []store.Node     `json:"affected_symbols"`
	AffectedFiles    []string         `json:"affected_files"`
	AffectedTests    []string         `json:"affected_tests"`
	RankedInspection []RankedFile     `json:"ranked_inspection"`
}

// RankedFile is one entry in Impact's recommended-inspection-order list.
type RankedFile struct {
	Path   string  `json:"path"`
	Score  float64 `json:"score"`
	FanIn  int     `json:"fan_in"`
	Reason string  `json:"reason"`
}
