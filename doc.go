// Package canopy indexes a source repository into a SQLite-backed symbol
// and call graph, and serves it back through three token-budgeted query
// families: RepoMap (repository overview), Zoom (single-symbol detail),
// and Impact (change impact analysis).
package canopy
