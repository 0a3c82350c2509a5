package store

import "errors"

// Fatal errors surfaced to the caller rather than folded into per-file stats.
var (
	ErrSchemaMismatch   = errors.New("store: schema version is newer than this build supports")
	ErrStoreUnavailable = errors.New("store: database connection unavailable")
)
