// Package indexer orchestrates a single index pass: scan, diff against the
// stored file set, parse changed files with a bounded worker pool, and
// commit the results through a single writer.
package indexer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/canopyhq/canopy/internal/config"
	"github.com/canopyhq/canopy/internal/ignore"
	"github.com/canopyhq/canopy/internal/parser"
	"github.com/canopyhq/canopy/internal/scanner"
	"github.com/canopyhq/canopy/internal/store"
	"golang.org/x/sync/errgroup"
)

// perFileSymbolCap and perSymbolEdgeCap bound a single file's contribution
// to the graph, per the concurrency/resource model: a pathological file
// cannot blow up the store with unbounded symbols or fan-out.
const (
	perFileSymbolCap = 1000
	perSymbolEdgeCap = 100

	// parseWorkers bounds the Parser's worker pool; per the concurrency
	// model only parsing is parallelized, the Store always has one writer.
	parseWorkers = 8
)

// FileError records a single file's indexing failure without aborting the
// run.
type FileError struct {
	Path string
	Err  error
}

// Stats is the IndexStats record returned by a completed run.
type Stats struct {
	FilesScanned   int
	FilesNew       int
	FilesChanged   int
	FilesUnchanged int
	FilesDeleted   int
	FilesErrored   int
	SymbolsAdded   int
	EdgesAdded     int
	Duration       time.Duration
	Errors         []FileError
}

// Options configures an index pass.
type Options struct {
	RepoRoot string
	Config   config.Config
	Force    bool
	Ignore   *ignore.Manager

	// Languages restricts indexing to the given language tags. A file of a
	// filtered-out language is neither (re)parsed nor deleted from the
	// store — it is simply left untouched, matching a scoped re-run rather
	// than a partial reindex.
	Languages []string
}

// Run performs one index pass against s.
func Run(ctx context.Context, s *store.Store, opts Options) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	candidates, err := scanner.Scan(scanner.Options{
		Root:           opts.RepoRoot,
		Ignore:         opts.Ignore,
		MaxFileSize:    opts.Config.Indexing.MaxFileSize,
		FollowSymlinks: opts.Config.Indexing.FollowSymlinks,
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: scan: %w", err)
	}
	stats.FilesScanned = len(candidates)

	candidateByPath := make(map[string]scanner.Candidate, len(candidates))
	for _, c := range candidates {
		candidateByPath[c.Path] = c
	}

	existing, err := s.AllFiles()
	if err != nil {
		return nil, fmt.Errorf("indexer: load existing files: %w", err)
	}
	existingByPath := make(map[string]*store.File, len(existing))
	for _, f := range existing {
		existingByPath[f.Path] = f
	}

	// Files present in the store but no longer among the scanned
	// candidates (removed, or newly ignored) are deleted up front.
	for path := range existingByPath {
		if _, ok := candidateByPath[path]; !ok {
			if _, err := s.DeleteFile(path); err != nil {
				return nil, fmt.Errorf("indexer: delete %s: %w", path, err)
			}
			stats.FilesDeleted++
		}
	}

	var languageFilter map[string]bool
	if len(opts.Languages) > 0 {
		languageFilter = make(map[string]bool, len(opts.Languages))
		for _, l := range opts.Languages {
			languageFilter[l] = true
		}
	}

	var toProcess []scanner.Candidate
	for _, c := range candidates {
		if languageFilter != nil && !languageFilter[c.Language] {
			continue
		}
		row, had := existingByPath[c.Path]
		changed, err := needsReindex(c, row, had, opts.Force)
		if err != nil {
			stats.FilesErrored++
			stats.Errors = append(stats.Errors, FileError{Path: c.Path, Err: err})
			continue
		}
		if !changed {
			stats.FilesUnchanged++
			continue
		}
		if had {
			stats.FilesChanged++
		} else {
			stats.FilesNew++
		}
		toProcess = append(toProcess, c)
	}

	if len(toProcess) > 0 {
		if err := processFiles(ctx, s, opts, toProcess, stats); err != nil {
			return nil, err
		}
	}

	if _, err := s.UpdateStats(); err != nil {
		return nil, fmt.Errorf("indexer: update stats: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// needsReindex decides whether a candidate must be (re)parsed: absent from
// the store, forced, mtime/size mismatch, or a content-hash mismatch (the
// final, authoritative check).
func needsReindex(c scanner.Candidate, row *store.File, had bool, force bool) (bool, error) {
	if !had || force {
		return true, nil
	}
	if c.Mtime != row.Mtime || c.Size != row.Size {
		return true, nil
	}

	hash, err := store.HashFile(c.AbsPath)
	if err != nil {
		return false, err
	}
	return hash != row.ContentHash, nil
}

type parseOutcome struct {
	candidate scanner.Candidate
	content   []byte
	hash      string
	result    *parser.Result
	err       error
}

// processFiles parses toProcess with a bounded worker pool and hands every
// outcome to a single writer goroutine, which is the sole writer against
// the store (one BatchedStore, committed in batch_size-sized groups).
func processFiles(ctx context.Context, s *store.Store, opts Options, toProcess []scanner.Candidate, stats *Stats) error {
	registry := parser.New()

	outcomes := make(chan parseOutcome, len(toProcess))
	g, gctx := errgroup.WithContext(ctx)

	sem := make(chan struct{}, parseWorkers)
	var wg sync.WaitGroup

	for _, c := range toProcess {
		c := c
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes <- parseOne(gctx, registry, c)
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	batchSize := opts.Config.Indexing.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	g.Go(func() error {
		batch := store.NewBatchedStore(s)
		pending := 0

		flush := func() error {
			if pending == 0 {
				return nil
			}
			if err := s.CommitBatch(batch); err != nil {
				return err
			}
			batch = store.NewBatchedStore(s)
			pending = 0
			return nil
		}

		for outcome := range outcomes {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if outcome.err != nil {
				stats.FilesErrored++
				stats.Errors = append(stats.Errors, FileError{Path: outcome.candidate.Path, Err: outcome.err})
				continue
			}

			added, edgesAdded, err := writeFile(s, batch, outcome)
			if err != nil {
				return fmt.Errorf("indexer: write %s: %w", outcome.candidate.Path, err)
			}
			stats.SymbolsAdded += added
			stats.EdgesAdded += edgesAdded
			pending++

			if pending >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		return flush()
	})

	return g.Wait()
}

func parseOne(ctx context.Context, registry *parser.Registry, c scanner.Candidate) parseOutcome {
	content, err := os.ReadFile(c.AbsPath)
	if err != nil {
		return parseOutcome{candidate: c, err: err}
	}

	result, err := registry.Extract(ctx, c.AbsPath, content)
	if err != nil {
		return parseOutcome{candidate: c, err: err}
	}

	return parseOutcome{
		candidate: c,
		content:   content,
		hash:      store.HashBytes(content),
		result:    result,
	}
}

// writeFile performs one file's atomic replacement: the file row is
// upserted, its prior symbols/edges are deleted, and the new extraction is
// buffered into batch (committed later by the caller). Returns the number
// of symbols and resolved edges added.
func writeFile(s *store.Store, batch *store.BatchedStore, outcome parseOutcome) (int, int, error) {
	c := outcome.candidate

	fileID, err := s.UpsertFile(c.Path, c.Mtime, c.Size, outcome.hash, c.Language)
	if err != nil {
		return 0, 0, err
	}
	if _, err := s.DeleteSymbolsForFile(fileID); err != nil {
		return 0, 0, err
	}

	if outcome.result == nil {
		return 0, 0, nil
	}
	res := outcome.result

	symbols := res.Symbols
	if len(symbols) > perFileSymbolCap {
		symbols = symbols[:perFileSymbolCap]
	}

	baseIdx := len(batch.Symbols)
	localIDs := make([]int64, len(symbols))
	nameToID := make(map[string][]int64, len(symbols))
	for i, sym := range symbols {
		startCol, endCol := sym.StartCol, sym.EndCol
		localIDs[i] = batch.InsertSymbol(&store.Symbol{
			FileID:    fileID,
			Name:      sym.Name,
			Kind:      sym.Kind,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
			StartCol:  &startCol,
			EndCol:    &endCol,
			Signature: strPtrOrNil(sym.Signature),
			Docstring: sym.Docstring,
		})
		nameToID[sym.Name] = append(nameToID[sym.Name], localIDs[i])
	}

	for i, sym := range symbols {
		if sym.ParentIndex < 0 || sym.ParentIndex >= len(symbols) {
			continue
		}
		parentID := localIDs[sym.ParentIndex]
		batch.Symbols[baseIdx+i].ParentSymbolID = &parentID
	}

	edgesAdded := 0
	edgeCounts := make(map[int64]int)

	for _, cs := range res.Callsites {
		if cs.ScopeSymbolIdx < 0 || cs.ScopeSymbolIdx >= len(symbols) {
			continue
		}
		sourceID := localIDs[cs.ScopeSymbolIdx]
		if edgeCounts[sourceID] >= perSymbolEdgeCap {
			continue
		}

		targetID, ok := resolveCallee(batch, nameToID, cs.Callee)
		if !ok {
			continue
		}

		edgeID := batch.InsertEdge(&store.Edge{
			SourceID:   sourceID,
			TargetID:   targetID,
			Kind:       store.EdgeCall,
			FileID:     fileID,
			Confidence: cs.Confidence,
		})
		batch.InsertCallsite(&store.Callsite{
			EdgeID: edgeID,
			Line:   cs.Line,
			Column: intPtr(cs.Column),
		})
		edgeCounts[sourceID]++
		edgesAdded++
	}

	for _, imp := range res.Imports {
		targetID, ok := resolveImport(batch, imp.Module)
		if !ok || len(symbols) == 0 {
			continue
		}
		// attribute the import edge to the file's first top-level symbol,
		// matching a per-file rather than per-symbol import relation
		sourceID := localIDs[0]
		batch.InsertEdge(&store.Edge{
			SourceID:   sourceID,
			TargetID:   targetID,
			Kind:       store.EdgeImport,
			FileID:     fileID,
			Confidence: 0.85,
		})
		edgesAdded++
	}

	return len(symbols), edgesAdded, nil
}

// resolveCallee finds the symbol id a callsite's callee text refers to:
// same-file symbols first (by exact name or dotted last segment), then any
// already-committed symbol elsewhere in the store.
func resolveCallee(batch *store.BatchedStore, nameToID map[string][]int64, callee string) (int64, bool) {
	name := lastSegment(callee)

	if ids, ok := nameToID[name]; ok && len(ids) > 0 {
		return ids[0], true
	}

	syms, err := batch.SymbolsByName(name)
	if err != nil || len(syms) == 0 {
		return 0, false
	}
	return syms[0].ID, true
}

// resolveImport matches an import's module text against a top-level Symbol
// name, trying the full module text and its last path/namespace segment.
func resolveImport(batch *store.BatchedStore, module string) (int64, bool) {
	candidates := []string{module, lastSegment(module)}
	for _, name := range candidates {
		if name == "" {
			continue
		}
		syms, err := batch.SymbolsByName(name)
		if err == nil && len(syms) > 0 {
			return syms[0].ID, true
		}
	}
	return 0, false
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "()")
	if i := strings.LastIndexAny(s, "./:"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func intPtr(i int) *int {
	return &i
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
