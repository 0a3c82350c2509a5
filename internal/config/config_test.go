package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMergesOnlySpecifiedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"budgets": {"zoom": 8000}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Budgets.Zoom)
	require.Equal(t, 4000, cfg.Budgets.RepoMap)
	require.True(t, cfg.Output.Color)
}

func TestLoadPreservesTrueDefaultBooleanWhenOutputOmitsColor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"output": {"verbose": true}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Output.Verbose)
	require.True(t, cfg.Output.Color)
}

func TestLoadExplicitFalseOverridesTrueDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"output": {"color": false}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.False(t, cfg.Output.Color)
}

func TestLoadMalformedJSONReturnsDefaultsAndError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	cfg, err := Load(path)
	require.Error(t, err)
	require.Equal(t, Default(), cfg)
}
