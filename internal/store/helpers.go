package store

import "strings"

// placeholderList builds a "?,?,?" placeholder group and the matching args
// slice for an IN (...) clause over int64 ids.
func placeholderList(ids []int64) (string, []any) {
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return placeholders, args
}

// prefixCols rewrites a comma-separated column list to be qualified by
// alias, e.g. prefixCols("s", "id, name") -> "s.id, s.name".
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
