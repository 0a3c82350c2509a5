// Package scanner walks a repository, honoring an ignore engine, and
// yields the identity (path, mtime, size, language) of each candidate file
// without reading its contents.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/canopyhq/canopy/internal/ignore"
	"github.com/canopyhq/canopy/internal/parser"
)

// Candidate is one file the indexer should consider. Language is empty when
// the extension is unrecognized; such candidates are still yielded (the
// caller decides whether to skip them).
type Candidate struct {
	Path     string // relative to Root
	AbsPath  string
	Mtime    int64 // unix seconds
	Size     int64
	Language string
}

// Options configures a Scan.
type Options struct {
	Root           string
	Ignore         *ignore.Manager
	MaxFileSize    int64 // bytes; 0 means no limit
	FollowSymlinks bool
}

// Scan walks Root and returns every non-ignored, non-oversized file,
// skipping symlinks unless FollowSymlinks is set.
func Scan(opts Options) ([]Candidate, error) {
	var candidates []Candidate

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == opts.Root {
			return nil
		}

		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			return relErr
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		if isSymlink && !opts.FollowSymlinks {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if opts.Ignore != nil && opts.Ignore.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.Ignore != nil && opts.Ignore.ShouldIgnore(rel, false) {
			return nil
		}

		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			return nil
		}

		language, _ := parser.LanguageForPath(path)
		candidates = append(candidates, Candidate{
			Path:     filepath.ToSlash(rel),
			AbsPath:  path,
			Mtime:    info.ModTime().Unix(),
			Size:     info.Size(),
			Language: language,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.Root, err)
	}

	return candidates, nil
}
