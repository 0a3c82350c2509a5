package packs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/canopyhq/canopy/internal/store"
	"github.com/canopyhq/canopy/internal/tokens"
)

// RepoMapGenerator builds repository overview packs from a Store.
type RepoMapGenerator struct {
	store *store.Store
}

// NewRepoMapGenerator builds a RepoMapGenerator over s.
func NewRepoMapGenerator(s *store.Store) *RepoMapGenerator {
	return &RepoMapGenerator{store: s}
}

// Generate builds a RepoMapPack bounded to budgetTokens. focus, when
// non-empty, restricts the tree and rankings to files under that path
// prefix.
func (g *RepoMapGenerator) Generate(budgetTokens int, focus string) (*RepoMapPack, error) {
	files, err := g.store.AllFiles()
	if err != nil {
		return nil, err
	}

	if focus != "" {
		prefix := strings.TrimSuffix(focus, "/")
		filtered := files[:0:0]
		for _, f := range files {
			if strings.HasPrefix(f.Path, prefix) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	tree := buildDirectoryTree(files, 4)

	ranked, err := g.rankFiles(files)
	if err != nil {
		return nil, err
	}

	top := ranked
	if len(top) > 20 {
		top = top[:20]
	}
	fileSymbols, order, err := g.fileSymbols(top, 5)
	if err != nil {
		return nil, err
	}

	stats, err := g.store.GetStats()
	if err != nil {
		return nil, err
	}

	pack := &RepoMapPack{
		DirectoryTree:    tree,
		TopFiles:         ranked,
		FileSymbols:      fileSymbols,
		FileSymbolsOrder: order,
		DependencySummary: DependencySummary{
			FileCount:     stats.Files,
			SymbolCount:   stats.Symbols,
			EdgeCount:     stats.Edges,
			CallsiteCount: stats.Callsites,
		},
	}

	if tokens.EstimateTokens(pack.Text(), true) > budgetTokens {
		truncateRepoMap(pack, budgetTokens)
	}

	return pack, nil
}

func (g *RepoMapGenerator) rankFiles(files []*store.File) ([]FileScore, error) {
	scored := make([]FileScore, 0, len(files))

	for _, f := range files {
		symbols, err := g.store.SymbolsByFile(f.ID)
		if err != nil {
			return nil, err
		}
		symbolCount := len(symbols)

		score := 0.0
		var reasons []string

		if symbolCount > 0 {
			score += minF(float64(symbolCount)/10.0, 1.0) * 0.3
			reasons = append(reasons, strconv.Itoa(symbolCount)+" symbols")
		}

		if hasAnySuffix(f.Path, "__init__.py", "main.py", "app.py", "index.js") {
			score += 0.5
			reasons = append(reasons, "entry point")
		}

		if containsAny(f.Path, "core/", "lib/", "utils/", "common/") {
			score += 0.2
			reasons = append(reasons, "core module")
		}

		if hasAnySuffix(f.Path, ".json", ".yaml", ".yml", ".toml") {
			score += 0.1
		}

		reason := "standard file"
		if len(reasons) > 0 {
			reason = strings.Join(reasons, ", ")
		}

		scored = append(scored, FileScore{
			Path:        f.Path,
			Score:       round3(score),
			Reason:      reason,
			SymbolCount: symbolCount,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Path < scored[j].Path
	})
	return scored, nil
}

func (g *RepoMapGenerator) fileSymbols(files []FileScore, maxSymbols int) (map[string][]FileSymbol, []string, error) {
	result := make(map[string][]FileSymbol, len(files))
	order := make([]string, 0, len(files))

	for _, f := range files {
		fileRecord, err := g.store.FileByPath(f.Path)
		if err != nil {
			return nil, nil, err
		}
		if fileRecord == nil {
			continue
		}

		symbols, err := g.store.SymbolsByFile(fileRecord.ID)
		if err != nil {
			return nil, nil, err
		}

		sort.SliceStable(symbols, func(i, j int) bool {
			pi, pj := symbolPriority(symbols[i]), symbolPriority(symbols[j])
			if pi != pj {
				return pi < pj
			}
			return sigLen(symbols[i]) > sigLen(symbols[j])
		})

		limit := symbols
		if len(limit) > maxSymbols {
			limit = limit[:maxSymbols]
		}

		entries := make([]FileSymbol, 0, len(limit))
		for _, s := range limit {
			sig := s.Name
			if s.Signature != nil && *s.Signature != "" {
				sig = *s.Signature
			}
			entries = append(entries, FileSymbol{
				Name:      s.Name,
				Kind:      s.Kind,
				Signature: sig,
				Line:      s.StartLine,
			})
		}

		result[f.Path] = entries
		order = append(order, f.Path)
	}

	return result, order, nil
}

func symbolPriority(s *store.Symbol) int {
	if s.Kind == store.KindClass || s.Kind == store.KindFunction {
		return 0
	}
	return 1
}

func sigLen(s *store.Symbol) int {
	if s.Signature == nil {
		return 0
	}
	return len(*s.Signature)
}

// truncateRepoMap mirrors the Python implementation's two-pass reduction:
// drop trailing top-files one at a time, then drop trailing per-file
// symbols down to a floor of 2, re-checking the budget after each step.
func truncateRepoMap(pack *RepoMapPack, budgetTokens int) {
	for len(pack.TopFiles) > 5 {
		pack.TopFiles = pack.TopFiles[:len(pack.TopFiles)-1]

		kept := make(map[string]bool, len(pack.TopFiles))
		for _, f := range pack.TopFiles {
			kept[f.Path] = true
		}
		newOrder := pack.FileSymbolsOrder[:0:0]
		for _, p := range pack.FileSymbolsOrder {
			if kept[p] {
				newOrder = append(newOrder, p)
			} else {
				delete(pack.FileSymbols, p)
			}
		}
		pack.FileSymbolsOrder = newOrder

		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}

	if tokens.EstimateTokens(pack.Text(), true) > budgetTokens {
		for _, path := range pack.FileSymbolsOrder {
			for len(pack.FileSymbols[path]) > 2 {
				syms := pack.FileSymbols[path]
				pack.FileSymbols[path] = syms[:len(syms)-1]
				if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
					return
				}
			}
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

