package packs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/canopyhq/canopy/internal/graph"
	"github.com/canopyhq/canopy/internal/store"
	"github.com/canopyhq/canopy/internal/tokens"
)

// ZoomGenerator builds single-symbol detail packs.
type ZoomGenerator struct {
	store    *store.Store
	graph    *graph.Engine
	repoRoot string
}

// NewZoomGenerator builds a ZoomGenerator rooted at repoRoot.
func NewZoomGenerator(s *store.Store, g *graph.Engine, repoRoot string) *ZoomGenerator {
	return &ZoomGenerator{store: s, graph: g, repoRoot: repoRoot}
}

// Generate resolves target (a bare symbol name, or a "path:line" pair) and
// returns a ZoomPack, or nil if the target does not resolve to a symbol.
func (g *ZoomGenerator) Generate(target string, budgetTokens int) (*ZoomPack, error) {
	sym, filePath, err := g.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	if sym == nil {
		return nil, nil
	}

	codeSlice := g.loadCodeSlice(filePath, sym)

	callers, err := g.graph.Callers(sym.ID, 1, 0)
	if err != nil {
		return nil, err
	}
	callees, err := g.graph.Callees(sym.ID, 1, 0)
	if err != nil {
		return nil, err
	}

	fileContext, err := g.fileContext(filePath, sym)
	if err != nil {
		return nil, err
	}

	sig := sym.Name
	if sym.Signature != nil && *sym.Signature != "" {
		sig = *sym.Signature
	}
	var doc string
	if sym.Docstring != nil {
		doc = *sym.Docstring
	}

	pack := &ZoomPack{
		TargetSymbol: SymbolIdentity{
			Name:      sym.Name,
			Kind:      sym.Kind,
			FilePath:  filePath,
			LineStart: sym.StartLine,
		},
		Signature:   sig,
		Docstring:   doc,
		CodeSlice:   codeSlice,
		Callers:     toNodeRefs(callers),
		Callees:     toNodeRefs(callees),
		FileContext: fileContext,
	}

	if tokens.EstimateTokens(pack.Text(), true) > budgetTokens {
		truncateZoom(pack, budgetTokens)
	}

	return pack, nil
}

func toNodeRefs(nodes []store.Node) []NodeRef {
	refs := make([]NodeRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, NodeRef{Name: n.Name, FilePath: n.FilePath, Confidence: n.Confidence})
	}
	return refs
}

// resolveTarget tries a "path:line" pair first, then a bare symbol name.
func (g *ZoomGenerator) resolveTarget(target string) (*store.Symbol, string, error) {
	if idx := strings.LastIndex(target, ":"); idx >= 0 {
		filePath, lineStr := target[:idx], target[idx+1:]
		if line, err := strconv.Atoi(lineStr); err == nil {
			f, err := g.store.FileByPath(filePath)
			if err != nil {
				return nil, "", err
			}
			if f != nil {
				sym, err := g.store.SymbolAt(f.ID, line)
				if err != nil {
					return nil, "", err
				}
				if sym != nil {
					return sym, filePath, nil
				}
			}
		}
	}

	syms, err := g.store.SymbolsByName(target)
	if err != nil {
		return nil, "", err
	}
	if len(syms) == 0 {
		return nil, "", nil
	}
	sym := syms[0]
	f, err := g.store.FileByID(sym.FileID)
	if err != nil {
		return nil, "", err
	}
	path := "unknown"
	if f != nil {
		path = f.Path
	}
	return sym, path, nil
}

// loadCodeSlice reads the symbol's defining lines plus two lines of context
// on either side, clamped to file bounds.
func (g *ZoomGenerator) loadCodeSlice(filePath string, sym *store.Symbol) string {
	lines, err := readLines(filepath.Join(g.repoRoot, filePath))
	if err != nil {
		return fmt.Sprintf("// file not found: %s", filePath)
	}

	lineStart := sym.StartLine - 1 // 0-indexed
	lineEnd := lineStart + 1
	if sym.EndLine != nil {
		lineEnd = *sym.EndLine
	}

	contextStart := maxI(0, lineStart-2)
	contextEnd := minI(len(lines), lineEnd+2)
	if contextStart >= contextEnd {
		return ""
	}
	return strings.Join(lines[contextStart:contextEnd], "\n")
}

// fileContext builds a line-ordered skeleton of the other class/function/
// method symbols in the target's file, up to 10 entries.
func (g *ZoomGenerator) fileContext(filePath string, target *store.Symbol) (string, error) {
	f, err := g.store.FileByPath(filePath)
	if err != nil {
		return "", err
	}
	if f == nil {
		return "", nil
	}

	symbols, err := g.store.SymbolsByFile(f.ID)
	if err != nil {
		return "", err
	}

	var context []*store.Symbol
	for _, s := range symbols {
		if s.ID == target.ID {
			continue
		}
		if s.Kind == store.KindClass || s.Kind == store.KindFunction || s.Kind == store.KindMethod {
			context = append(context, s)
		}
	}
	sortSymbolsByLine(context)

	if len(context) > 10 {
		context = context[:10]
	}
	if len(context) == 0 {
		return "(no other major symbols)", nil
	}

	lines := make([]string, 0, len(context))
	for _, s := range context {
		sig := s.Name
		if s.Signature != nil && *s.Signature != "" {
			sig = *s.Signature
		}
		lines = append(lines, fmt.Sprintf("Line %d: %s", s.StartLine, sig))
	}
	return strings.Join(lines, "\n"), nil
}

func sortSymbolsByLine(symbols []*store.Symbol) {
	for i := 1; i < len(symbols); i++ {
		for j := i; j > 0 && symbols[j-1].StartLine > symbols[j].StartLine; j-- {
			symbols[j-1], symbols[j] = symbols[j], symbols[j-1]
		}
	}
}

// truncateZoom mirrors the Python implementation's reduction order: shrink
// the code slice in shrinking windows, then drop trailing callers, then
// trailing callees, then drop the docstring entirely.
func truncateZoom(pack *ZoomPack, budgetTokens int) {
	maxCodeLines := 50
	codeLines := strings.Split(pack.CodeSlice, "\n")

	for len(codeLines) > maxCodeLines {
		codeLines = codeLines[:maxCodeLines]
		pack.CodeSlice = strings.Join(codeLines, "\n") + "\n// ... truncated"

		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
		maxCodeLines -= 10
		if maxCodeLines <= 0 {
			break
		}
	}

	for len(pack.Callers) > 3 {
		pack.Callers = pack.Callers[:len(pack.Callers)-1]
		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}

	for len(pack.Callees) > 3 {
		pack.Callees = pack.Callees[:len(pack.Callees)-1]
		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}

	if tokens.EstimateTokens(pack.Text(), true) > budgetTokens {
		pack.Docstring = ""
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
