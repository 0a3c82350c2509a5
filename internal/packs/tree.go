package packs

import (
	"sort"
	"strings"

	"github.com/canopyhq/canopy/internal/store"
)

// buildDirectoryTree collapses file paths into a sorted, box-drawn directory
// tree, truncating each path to maxDepth components.
func buildDirectoryTree(files []*store.File, maxDepth int) string {
	if len(files) == 0 {
		return "(no files)"
	}

	type node = map[string]any

	tree := node{}
	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		if len(parts) > maxDepth {
			parts = parts[:maxDepth]
		}
		cur := tree
		for _, part := range parts {
			child, ok := cur[part]
			if !ok {
				child = node{}
				cur[part] = child
			}
			cur = child.(node)
		}
	}

	var lines []string
	var render func(n node, prefix string)
	render = func(n node, prefix string) {
		names := make([]string, 0, len(n))
		for name := range n {
			names = append(names, name)
		}
		sort.Strings(names)

		for i, name := range names {
			isLast := i == len(names)-1
			connector := "├── "
			if isLast {
				connector = "└── "
			}
			lines = append(lines, prefix+connector+name)

			children := n[name].(node)
			if len(children) > 0 {
				extension := "│   "
				if isLast {
					extension = "    "
				}
				render(children, prefix+extension)
			}
		}
	}
	render(tree, "")

	if len(lines) == 0 {
		return "(empty)"
	}
	return strings.Join(lines, "\n")
}
