package canopy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/canopyhq/canopy/internal/config"
	"github.com/canopyhq/canopy/internal/graph"
	"github.com/canopyhq/canopy/internal/ignore"
	"github.com/canopyhq/canopy/internal/indexer"
	"github.com/canopyhq/canopy/internal/lock"
	"github.com/canopyhq/canopy/internal/packs"
	"github.com/canopyhq/canopy/internal/store"
)

// Engine orchestrates the canopy pipeline: repository scanning, indexing
// into a Store, and the RepoMap/Zoom/Impact query families built on top of
// it.
type Engine struct {
	repoRoot string
	dbPath   string
	lockPath string

	config config.Config
	ignore *ignore.Manager

	store *store.Store
	graph *graph.Engine

	repoMap *packs.RepoMapGenerator
	zoom    *packs.ZoomGenerator
	impact  *packs.ImpactGenerator
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	dbPath    string
	languages []string
}

// WithDBPath overrides the database path (default: <repoRoot>/.canopy/index.db).
func WithDBPath(path string) Option {
	return func(o *options) { o.dbPath = path }
}

// WithLanguages restricts indexing to the given language tags.
func WithLanguages(languages ...string) Option {
	return func(o *options) { o.languages = languages }
}

// New opens (creating if absent) the canopy index for the repository rooted
// at repoRoot: it loads .canopy/config.json (falling back to defaults),
// builds the ignore manager from the default/gitignore/config-pattern
// tiers, opens the Store, and migrates its schema.
func New(repoRoot string, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	canopyDir := filepath.Join(repoRoot, ".canopy")
	if err := os.MkdirAll(canopyDir, 0o755); err != nil {
		return nil, fmt.Errorf("canopy: create %s: %w", canopyDir, err)
	}

	cfg, cfgErr := config.Load(filepath.Join(canopyDir, "config.json"))
	// A malformed config file degrades to defaults rather than aborting;
	// the caller can inspect the wrapped error for logging if it wants to.
	_ = cfgErr

	dbPath := o.dbPath
	if dbPath == "" {
		dbPath = filepath.Join(canopyDir, "index.db")
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("canopy: open store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("canopy: migrate: %w", err)
	}

	mgr := ignore.NewManager(repoRoot)
	if err := mgr.Load("", ""); err != nil {
		s.Close()
		return nil, fmt.Errorf("canopy: load ignore patterns: %w", err)
	}
	for _, p := range cfg.Ignore.Patterns {
		mgr.AddConfigPattern(p)
	}
	for _, p := range cfg.Ignore.Include {
		mgr.AddInclude(p)
	}
	for _, p := range cfg.Ignore.Exclude {
		mgr.AddExclude(p)
	}

	if len(o.languages) > 0 {
		cfg.Languages.Enabled = o.languages
	}

	g := graph.NewEngine(s)

	e := &Engine{
		repoRoot: repoRoot,
		dbPath:   dbPath,
		lockPath: filepath.Join(canopyDir, "index.lock"),
		config:   cfg,
		ignore:   mgr,
		store:    s,
		graph:    g,
		repoMap:  packs.NewRepoMapGenerator(s),
		zoom:     packs.NewZoomGenerator(s, g, repoRoot),
		impact:   packs.NewImpactGenerator(g),
	}
	return e, cfgErr
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Config returns the merged configuration this Engine was opened with.
func (e *Engine) Config() config.Config {
	return e.config
}

// Index performs one index pass over the repository, holding the
// single-writer lock for its duration. If the lock is currently held by
// another live process, Index returns lock.ErrHeld immediately rather than
// blocking.
func (e *Engine) Index(ctx context.Context, force bool) (*indexer.Stats, error) {
	l, err := lock.Acquire(e.lockPath)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	return indexer.Run(ctx, e.store, indexer.Options{
		RepoRoot:  e.repoRoot,
		Config:    e.config,
		Force:     force,
		Ignore:    e.ignore,
		Languages: e.config.Languages.Enabled,
	})
}

// RepoMap builds a repository-overview pack within budgetTokens, optionally
// scoped to files under focus (a path prefix). An empty focus covers the
// whole repository.
func (e *Engine) RepoMap(budgetTokens int, focus string) (*packs.RepoMapPack, error) {
	if budgetTokens <= 0 {
		budgetTokens = e.config.Budgets.RepoMap
	}
	return e.repoMap.Generate(budgetTokens, focus)
}

// Zoom builds a single-symbol detail pack within budgetTokens. target may be
// a bare symbol name or a "path:line" location.
func (e *Engine) Zoom(target string, budgetTokens int) (*packs.ZoomPack, error) {
	if budgetTokens <= 0 {
		budgetTokens = e.config.Budgets.Zoom
	}
	return e.zoom.Generate(target, budgetTokens)
}

// Impact builds a change-impact pack within budgetTokens for the given
// changed symbol/file targets, traversing the call graph to depth.
func (e *Engine) Impact(targets []string, depth, budgetTokens int) (*packs.ImpactPack, error) {
	if budgetTokens <= 0 {
		budgetTokens = e.config.Budgets.Impact
	}
	if depth <= 0 {
		depth = 2
	}
	return e.impact.Generate(targets, depth, budgetTokens)
}
