package graph

import (
	"fmt"
	"sort"

	"github.com/canopyhq/canopy/internal/store"
)

// FileRank is one entry in an impact analysis's ranked inspection queue.
type FileRank struct {
	Path        string
	Score       float64
	FanIn       int
	SymbolCount int
	IsTest      bool
	Reason      string
}

// ImpactResult is the transitive upstream closure of a set of changed
// symbols or files.
type ImpactResult struct {
	AffectedSymbols  []store.Node
	AffectedFiles    []string
	AffectedTests    []string
	RankedInspection []FileRank
	TotalFanIn       map[int64]int
}

// Impact resolves each target (an exact symbol name or a file path; a file
// path seeds every symbol defined in that file) and computes the upstream
// closure reachable via incoming edges, up to depth hops.
func (e *Engine) Impact(targets []string, depth int) (*ImpactResult, error) {
	result := &ImpactResult{TotalFanIn: make(map[int64]int)}

	startIDs, changedFiles, err := e.resolveTargets(targets)
	if err != nil {
		return nil, err
	}
	if len(startIDs) == 0 {
		return result, nil
	}

	affected := make(map[int64]store.Node)

	for start := range startIDs {
		visited := map[int64]bool{start: true}
		queue := []queueEntry{{symbolID: start, depth: 0}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			sym, err := e.symbol(cur.symbolID)
			if err != nil {
				return nil, err
			}
			if sym == nil {
				continue
			}

			if _, ok := affected[cur.symbolID]; !ok {
				path, err := e.filePath(sym.FileID)
				if err != nil {
					return nil, err
				}
				affected[cur.symbolID] = store.Node{Symbol: *sym, FilePath: path, Depth: cur.depth}
			}

			if cur.depth >= depth {
				continue
			}

			callers, err := e.store.IncomingEdges(cur.symbolID)
			if err != nil {
				return nil, fmt.Errorf("impact: incoming edges: %w", err)
			}
			result.TotalFanIn[cur.symbolID] = len(callers)

			for _, edge := range callers {
				if visited[edge.SourceID] {
					continue
				}
				visited[edge.SourceID] = true
				queue = append(queue, queueEntry{symbolID: edge.SourceID, depth: cur.depth + 1})
			}
		}
	}

	for _, n := range affected {
		result.AffectedSymbols = append(result.AffectedSymbols, n)
	}

	fileSet := make(map[string]struct{})
	for _, n := range result.AffectedSymbols {
		fileSet[n.FilePath] = struct{}{}
	}
	for f := range fileSet {
		result.AffectedFiles = append(result.AffectedFiles, f)
	}
	sort.Strings(result.AffectedFiles)

	for _, f := range result.AffectedFiles {
		if IsTestFile(f) {
			result.AffectedTests = append(result.AffectedTests, f)
		}
	}

	result.RankedInspection = rankForInspection(result.AffectedFiles, result.AffectedSymbols, result.TotalFanIn, changedFiles)

	return result, nil
}

// resolveTargets turns target strings into a seed set of symbol ids, per
// target: try an exact symbol-name match first, then fall back to treating
// it as a file path (seeding every symbol defined in that file).
func (e *Engine) resolveTargets(targets []string) (map[int64]struct{}, map[string]struct{}, error) {
	startIDs := make(map[int64]struct{})
	changedFiles := make(map[string]struct{})

	for _, target := range targets {
		syms, err := e.store.SymbolsByName(target)
		if err != nil {
			return nil, nil, fmt.Errorf("impact: resolve %q: %w", target, err)
		}
		if len(syms) > 0 {
			for _, s := range syms {
				startIDs[s.ID] = struct{}{}
				path, err := e.filePath(s.FileID)
				if err != nil {
					return nil, nil, err
				}
				changedFiles[path] = struct{}{}
			}
			continue
		}

		f, err := e.store.FileByPath(target)
		if err != nil {
			return nil, nil, fmt.Errorf("impact: resolve file %q: %w", target, err)
		}
		if f == nil {
			continue
		}
		changedFiles[f.Path] = struct{}{}
		fileSyms, err := e.store.SymbolsByFile(f.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("impact: symbols in %q: %w", target, err)
		}
		for _, s := range fileSyms {
			startIDs[s.ID] = struct{}{}
		}
	}

	return startIDs, changedFiles, nil
}

// rankForInspection scores every affected file not already in the changed
// set: primary weight is normalized fan-in, secondary is test-file
// proximity, tertiary is symbol-count centrality.
func rankForInspection(files []string, symbols []store.Node, fanIn map[int64]int, changedFiles map[string]struct{}) []FileRank {
	type metrics struct {
		fanIn       int
		symbolCount int
		isTest      bool
	}
	byFile := make(map[string]*metrics, len(files))
	for _, f := range files {
		byFile[f] = &metrics{isTest: IsTestFile(f)}
	}

	for _, sym := range symbols {
		m, ok := byFile[sym.FilePath]
		if !ok {
			continue
		}
		m.symbolCount++
		m.fanIn += fanIn[sym.ID]
	}

	var ranked []FileRank
	for f, m := range byFile {
		if _, changed := changedFiles[f]; changed {
			continue
		}

		fanInScore := minF(float64(m.fanIn)/10.0, 1.0)
		testScore := 0.0
		if m.isTest {
			testScore = 0.3
		}
		centralityScore := minF(float64(m.symbolCount)/5.0, 1.0) * 0.2

		ranked = append(ranked, FileRank{
			Path:        f,
			Score:       fanInScore + testScore + centralityScore,
			FanIn:       m.fanIn,
			SymbolCount: m.symbolCount,
			IsTest:      m.isTest,
			Reason:      rankReason(m.isTest, fanInScore),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}

func rankReason(isTest bool, fanInScore float64) string {
	switch {
	case isTest:
		return "test_file"
	case fanInScore > 0.7:
		return "high_fan_in"
	case fanInScore > 0.3:
		return "moderate_fan_in"
	default:
		return "low_fan_in"
	}
}
