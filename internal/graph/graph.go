// Package graph implements cycle-safe traversal over the Edge table:
// upstream callers, downstream callees, and impact-closure analysis with
// fan-in ranking.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/canopyhq/canopy/internal/store"
)

// confidence floors by edge kind, applied before a hop's confidence is
// folded into the running path product. An edge with no usable metadata
// confidence defaults to 0.8 before the floor is applied.
const (
	defaultEdgeConfidence = 0.8
	callConfidenceFloor   = 0.9
	importConfidenceFloor = 0.85
)

// Engine answers graph queries against a Store, caching symbol and file
// lookups for the Engine's lifetime; the caches are filled on demand and
// shared by every query run on the same Engine.
type Engine struct {
	store *store.Store

	symbolCache map[int64]*store.Symbol
	fileCache   map[int64]string
}

// NewEngine builds a graph Engine over s.
func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store:       s,
		symbolCache: make(map[int64]*store.Symbol),
		fileCache:   make(map[int64]string),
	}
}

func (e *Engine) symbol(id int64) (*store.Symbol, error) {
	if sym, ok := e.symbolCache[id]; ok {
		return sym, nil
	}
	sym, err := e.store.SymbolByID(id)
	if err != nil {
		return nil, fmt.Errorf("graph: load symbol %d: %w", id, err)
	}
	e.symbolCache[id] = sym
	return sym, nil
}

func (e *Engine) filePath(fileID int64) (string, error) {
	if path, ok := e.fileCache[fileID]; ok {
		return path, nil
	}
	f, err := e.store.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("graph: load file %d: %w", fileID, err)
	}
	if f == nil {
		return "unknown", nil
	}
	e.fileCache[fileID] = f.Path
	return f.Path, nil
}

// edgeConfidence extracts an edge's own confidence, defaulting to 0.8 when
// unset, then applies the kind floor and the [0,1] cap. This happens once
// per edge, before the result is multiplied into a traversal's running
// path confidence; the product itself is never reclamped afterward.
func edgeConfidence(e *store.Edge) float64 {
	conf := e.Confidence
	if conf == 0 {
		conf = defaultEdgeConfidence
	}
	switch e.Kind {
	case store.EdgeCall:
		conf = maxF(conf, callConfidenceFloor)
	case store.EdgeImport:
		conf = maxF(conf, importConfidenceFloor)
	}
	return minF(conf, 1.0)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

type queueEntry struct {
	symbolID int64
	depth    int
	conf     float64
}

// Callers returns the symbols reachable by following incoming edges from
// target, up to depth hops, excluding target itself and anything below
// minConf. Results are sorted by confidence descending, then name
// ascending.
func (e *Engine) Callers(targetID int64, depth int, minConf float64) ([]store.Node, error) {
	return e.traverse(targetID, depth, minConf, e.store.IncomingEdges, func(edge *store.Edge) int64 { return edge.SourceID })
}

// Callees is the symmetric counterpart of Callers, following outgoing
// edges.
func (e *Engine) Callees(targetID int64, depth int, minConf float64) ([]store.Node, error) {
	return e.traverse(targetID, depth, minConf, e.store.OutgoingEdges, func(edge *store.Edge) int64 { return edge.TargetID })
}

func (e *Engine) traverse(
	targetID int64, depth int, minConf float64,
	edgesFor func(int64) ([]*store.Edge, error),
	neighbor func(*store.Edge) int64,
) ([]store.Node, error) {
	results := make(map[int64]store.Node)
	queue := []queueEntry{{symbolID: targetID, depth: 0, conf: 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= depth {
			continue
		}

		edges, err := edgesFor(cur.symbolID)
		if err != nil {
			return nil, fmt.Errorf("graph: traverse: %w", err)
		}

		for _, edge := range edges {
			nextID := neighbor(edge)
			if nextID == targetID {
				continue
			}
			if _, seen := results[nextID]; seen {
				continue
			}

			aggregated := cur.conf * edgeConfidence(edge)
			if aggregated < minConf {
				continue
			}

			sym, err := e.symbol(nextID)
			if err != nil {
				return nil, err
			}
			if sym == nil {
				continue
			}
			path, err := e.filePath(sym.FileID)
			if err != nil {
				return nil, err
			}

			results[nextID] = store.Node{
				Symbol:     *sym,
				FilePath:   path,
				Confidence: aggregated,
				Depth:      cur.depth + 1,
			}
			queue = append(queue, queueEntry{symbolID: nextID, depth: cur.depth + 1, conf: aggregated})
		}
	}

	nodes := make([]store.Node, 0, len(results))
	for _, n := range results {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Confidence != nodes[j].Confidence {
			return nodes[i].Confidence > nodes[j].Confidence
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes, nil
}

var testFilePatterns = []string{
	"test_", "_test.", "_spec.", ".spec.", "tests/", "/tests/", "__tests__/", "/__tests__/",
}

// IsTestFile reports whether path matches one of the recognized test-file
// naming conventions.
func IsTestFile(path string) bool {
	lower := strings.ToLower(path)
	for _, pat := range testFilePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
