// Package config loads and merges .canopy/config.json, the user-facing
// configuration surface for budgets, language enablement, indexing behavior,
// ignore overrides, and output formatting.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Budgets holds per-query-family token ceilings.
type Budgets struct {
	RepoMap int `json:"repomap"`
	Zoom    int `json:"zoom"`
	Impact  int `json:"impact"`
	Find    int `json:"find"`
}

// Languages controls which languages are indexed and how extensions map to
// language tags.
type Languages struct {
	Enabled    []string          `json:"enabled"`
	Extensions map[string]string `json:"extensions"`
}

// Indexing controls scan/parse behavior.
type Indexing struct {
	BatchSize      int   `json:"batch_size"`
	MaxFileSize    int64 `json:"max_file_size"`
	FollowSymlinks bool  `json:"follow_symlinks"`
	IncludeHidden  bool  `json:"include_hidden"`
}

// Ignore holds CLI-level ignore overrides layered atop the default and
// .gitignore patterns.
type Ignore struct {
	Patterns []string `json:"patterns"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude"`
}

// Output controls pack rendering.
type Output struct {
	Format  string `json:"format"`
	Verbose bool   `json:"verbose"`
	Color   bool   `json:"color"`
}

// rawConfig mirrors Config but with pointer types for every field whose zero
// value is a meaningful default, so merge can tell "omitted" from
// "explicitly set to the zero value".
type rawConfig struct {
	Version   *int         `json:"version"`
	Budgets   *Budgets     `json:"budgets"`
	Languages *Languages   `json:"languages"`
	Indexing  *rawIndexing `json:"indexing"`
	Ignore    *Ignore      `json:"ignore"`
	Output    *rawOutput   `json:"output"`
}

type rawIndexing struct {
	BatchSize      *int   `json:"batch_size"`
	MaxFileSize    *int64 `json:"max_file_size"`
	FollowSymlinks *bool  `json:"follow_symlinks"`
	IncludeHidden  *bool  `json:"include_hidden"`
}

type rawOutput struct {
	Format  *string `json:"format"`
	Verbose *bool   `json:"verbose"`
	Color   *bool   `json:"color"`
}

// Config is the full, merged configuration surface.
type Config struct {
	Version   int       `json:"version"`
	Budgets   Budgets   `json:"budgets"`
	Languages Languages `json:"languages"`
	Indexing  Indexing  `json:"indexing"`
	Ignore    Ignore    `json:"ignore"`
	Output    Output    `json:"output"`
}

// Default returns the built-in configuration applied before any file is
// merged in.
func Default() Config {
	return Config{
		Version: 1,
		Budgets: Budgets{RepoMap: 4000, Zoom: 4000, Impact: 4000, Find: 2000},
		Languages: Languages{
			Enabled: []string{"go", "python", "javascript", "typescript", "rust", "c", "cpp"},
		},
		Indexing: Indexing{
			BatchSize:      100,
			MaxFileSize:    1 << 20, // 1 MiB
			FollowSymlinks: false,
			IncludeHidden:  false,
		},
		Output: Output{
			Format:  "markdown",
			Verbose: false,
			Color:   true,
		},
	}
}

// Load reads path and merges it onto Default(). A missing file returns the
// defaults unchanged. Malformed JSON, an unknown top-level key, or a read
// failure other than not-exist returns the defaults plus the error, so the
// caller can log a warning and proceed rather than abort indexing.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err == nil {
		for k := range keys {
			switch k {
			case "version", "budgets", "languages", "indexing", "ignore", "output":
			default:
				return cfg, fmt.Errorf("parse config %s: unknown key %q", path, k)
			}
		}
	}

	merge(&cfg, &raw)
	return cfg, nil
}

// merge overlays only the keys explicitly present in raw onto cfg, so a
// config file that sets only `budgets.zoom` leaves every other default
// (including a true-by-default boolean like output.color) intact.
func merge(cfg *Config, raw *rawConfig) {
	if raw.Version != nil {
		cfg.Version = *raw.Version
	}
	if raw.Budgets != nil {
		if raw.Budgets.RepoMap != 0 {
			cfg.Budgets.RepoMap = raw.Budgets.RepoMap
		}
		if raw.Budgets.Zoom != 0 {
			cfg.Budgets.Zoom = raw.Budgets.Zoom
		}
		if raw.Budgets.Impact != 0 {
			cfg.Budgets.Impact = raw.Budgets.Impact
		}
		if raw.Budgets.Find != 0 {
			cfg.Budgets.Find = raw.Budgets.Find
		}
	}
	if raw.Languages != nil {
		if len(raw.Languages.Enabled) > 0 {
			cfg.Languages.Enabled = raw.Languages.Enabled
		}
		if len(raw.Languages.Extensions) > 0 {
			cfg.Languages.Extensions = raw.Languages.Extensions
		}
	}
	if raw.Indexing != nil {
		if raw.Indexing.BatchSize != nil {
			cfg.Indexing.BatchSize = *raw.Indexing.BatchSize
		}
		if raw.Indexing.MaxFileSize != nil {
			cfg.Indexing.MaxFileSize = *raw.Indexing.MaxFileSize
		}
		if raw.Indexing.FollowSymlinks != nil {
			cfg.Indexing.FollowSymlinks = *raw.Indexing.FollowSymlinks
		}
		if raw.Indexing.IncludeHidden != nil {
			cfg.Indexing.IncludeHidden = *raw.Indexing.IncludeHidden
		}
	}
	if raw.Ignore != nil {
		if len(raw.Ignore.Patterns) > 0 {
			cfg.Ignore.Patterns = raw.Ignore.Patterns
		}
		if len(raw.Ignore.Include) > 0 {
			cfg.Ignore.Include = raw.Ignore.Include
		}
		if len(raw.Ignore.Exclude) > 0 {
			cfg.Ignore.Exclude = raw.Ignore.Exclude
		}
	}
	if raw.Output != nil {
		if raw.Output.Format != nil {
			cfg.Output.Format = *raw.Output.Format
		}
		if raw.Output.Verbose != nil {
			cfg.Output.Verbose = *raw.Output.Verbose
		}
		if raw.Output.Color != nil {
			cfg.Output.Color = *raw.Output.Color
		}
	}
}
