package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/canopyhq/canopy"
	"github.com/canopyhq/canopy/internal/lock"
	"github.com/canopyhq/canopy/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		if errors.Is(err, store.ErrSchemaMismatch) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "canopy",
	Short:         "Token-budgeted code repository indexing for LLM context assembly",
	Long:          "Canopy indexes a source repository into a SQLite symbol/call graph and serves RepoMap, Zoom, and Impact query packs sized to a token budget.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .canopy/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "markdown", "output format: markdown|json")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

var (
	flagForce     bool
	flagLanguages string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a repository into the canopy database",
	Long:  "Scans the repository, parses changed files, and writes the resulting symbols/edges to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "reindex every file regardless of mtime/hash")
	indexCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,python)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("index", err)
	}
	repoRoot := findRepoRoot(targetDir)

	var opts []canopy.Option
	if flagDB != "" {
		opts = append(opts, canopy.WithDBPath(resolveDBPath(repoRoot)))
	}
	if flagLanguages != "" {
		langs := strings.Split(flagLanguages, ",")
		for i := range langs {
			langs[i] = strings.TrimSpace(langs[i])
		}
		opts = append(opts, canopy.WithLanguages(langs...))
	}

	engine, err := canopy.New(repoRoot, opts...)
	if engine == nil {
		return outputError("index", fmt.Errorf("opening engine: %w", err))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer engine.Close()

	stats, err := engine.Index(cmd.Context(), flagForce)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return outputError("index", fmt.Errorf("another canopy index is already running for %s", repoRoot))
		}
		return outputError("index", fmt.Errorf("indexing: %w", err))
	}

	duration := time.Since(start)

	if flagFormat == "markdown" {
		fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d new, %d changed, %d unchanged, %d deleted, %d errored)\n",
			targetDir, duration.Round(time.Millisecond),
			stats.FilesNew, stats.FilesChanged, stats.FilesUnchanged, stats.FilesDeleted, stats.FilesErrored)
		return nil
	}

	return outputResultJSON("index", stats)
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".canopy", "index.db")
}
