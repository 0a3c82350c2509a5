package main

import (
	"fmt"
	"os"

	"github.com/canopyhq/canopy"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the canopy index",
	Long:  "Build a token-budgeted pack (repomap, zoom, or impact) from an indexed repository.",
}

func init() {
	queryCmd.AddCommand(repoMapCmd)
	queryCmd.AddCommand(zoomCmd)
	queryCmd.AddCommand(impactCmd)
}

// openEngine opens the Engine rooted at the repository containing cwd,
// failing with a clear message if no index exists yet.
func openEngine() (*canopy.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'canopy index' first)", dbPath)
	}

	var opts []canopy.Option
	if flagDB != "" {
		opts = append(opts, canopy.WithDBPath(dbPath))
	}
	engine, err := canopy.New(repoRoot, opts...)
	if engine == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return engine, nil
}

var flagRepoMapBudget int
var flagRepoMapFocus string

var repoMapCmd = &cobra.Command{
	Use:   "repomap",
	Short: "Build a repository-overview pack",
	RunE:  runRepoMap,
}

func init() {
	repoMapCmd.Flags().IntVar(&flagRepoMapBudget, "budget", 0, "token budget (default: config budgets.repomap)")
	repoMapCmd.Flags().StringVar(&flagRepoMapFocus, "focus", "", "restrict to files under this path prefix")
}

func runRepoMap(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("query repomap", err)
	}
	defer e.Close()

	pack, err := e.RepoMap(flagRepoMapBudget, flagRepoMapFocus)
	if err != nil {
		return outputError("query repomap", err)
	}
	return outputResult("query repomap", pack)
}

var flagZoomBudget int

var zoomCmd = &cobra.Command{
	Use:   "zoom <target>",
	Short: "Build a single-symbol detail pack",
	Long:  "target is a bare symbol name or a path:line location.",
	Args:  cobra.ExactArgs(1),
	RunE:  runZoom,
}

func init() {
	zoomCmd.Flags().IntVar(&flagZoomBudget, "budget", 0, "token budget (default: config budgets.zoom)")
}

func runZoom(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("query zoom", err)
	}
	defer e.Close()

	pack, err := e.Zoom(args[0], flagZoomBudget)
	if err != nil {
		return outputError("query zoom", err)
	}
	if pack == nil {
		return outputError("query zoom", fmt.Errorf("no symbol found for target %q", args[0]))
	}
	return outputResult("query zoom", pack)
}

var (
	flagImpactBudget int
	flagImpactDepth  int
)

var impactCmd = &cobra.Command{
	Use:   "impact <target>...",
	Short: "Build a change-impact pack",
	Long:  "Each target is a changed symbol name or file path; the pack reports what transitively depends on them.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImpact,
}

func init() {
	impactCmd.Flags().IntVar(&flagImpactBudget, "budget", 0, "token budget (default: config budgets.impact)")
	impactCmd.Flags().IntVar(&flagImpactDepth, "depth", 2, "traversal depth through the call graph")
}

func runImpact(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("query impact", err)
	}
	defer e.Close()

	pack, err := e.Impact(args, flagImpactDepth, flagImpactBudget)
	if err != nil {
		return outputError("query impact", err)
	}
	return outputResult("query impact", pack)
}
