package packs

import (
	"fmt"
	"strings"
)

// Text renders a RepoMapPack as markdown, mirroring the Python
// implementation's section order and per-list head limits.
func (p *RepoMapPack) Text() string {
	var b strings.Builder
	b.WriteString("# Repository Overview\n\n")
	b.WriteString("## Directory Structure\n\n")
	b.WriteString(p.DirectoryTree)
	b.WriteString("\n\n## Top Files by Importance\n\n")

	topFiles := p.TopFiles
	if len(topFiles) > 20 {
		topFiles = topFiles[:20]
	}
	for i, f := range topFiles {
		reason := f.Reason
		if reason == "" {
			reason = "N/A"
		}
		fmt.Fprintf(&b, "%d. `%s` - %s\n", i+1, f.Path, reason)
	}

	b.WriteString("\n## Key Symbols by File\n\n")
	order := p.FileSymbolsOrder
	if len(order) > 10 {
		order = order[:10]
	}
	for _, path := range order {
		syms := p.FileSymbols[path]
		fmt.Fprintf(&b, "### %s\n", path)
		limit := syms
		if len(limit) > 5 {
			limit = limit[:5]
		}
		for _, s := range limit {
			sig := s.Signature
			if sig == "" {
				sig = s.Name
			}
			fmt.Fprintf(&b, "- `%s` (%s)\n", sig, s.Kind)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Dependency Summary\n\n")
	fmt.Fprintf(&b, "Total files: %d\n", p.DependencySummary.FileCount)
	fmt.Fprintf(&b, "Total symbols: %d\n", p.DependencySummary.SymbolCount)
	fmt.Fprintf(&b, "Total edges: %d\n", p.DependencySummary.EdgeCount)

	return strings.TrimRight(b.String(), "\n")
}

// Text renders a ZoomPack as markdown.
func (p *ZoomPack) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Zoom: %s\n\n", p.TargetSymbol.Name)
	fmt.Fprintf(&b, "**File:** `%s`\n", orUnknown(p.TargetSymbol.FilePath))
	fmt.Fprintf(&b, "**Kind:** %s\n", orUnknown(p.TargetSymbol.Kind))
	fmt.Fprintf(&b, "**Line:** %d\n\n", p.TargetSymbol.LineStart)
	b.WriteString("## Signature\n\n```\n")
	sig := p.Signature
	if sig == "" {
		sig = orUnknown(p.TargetSymbol.Name)
	}
	b.WriteString(sig)
	b.WriteString("\n```\n")

	if p.Docstring != "" {
		b.WriteString("\n## Documentation\n\n")
		b.WriteString(p.Docstring)
		b.WriteString("\n")
	}

	b.WriteString("\n## Code\n\n```\n")
	b.WriteString(p.CodeSlice)
	b.WriteString("\n```\n\n## Callers\n\n")
	writeRefs(&b, p.Callers)

	b.WriteString("\n## Callees\n\n")
	writeRefs(&b, p.Callees)

	return strings.TrimRight(b.String(), "\n")
}

func writeRefs(b *strings.Builder, refs []NodeRef) {
	shown := refs
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, r := range shown {
		fmt.Fprintf(b, "- `%s` in `%s` (confidence: %.2f)\n", r.Name, r.FilePath, r.Confidence)
	}
	if len(refs) > 10 {
		fmt.Fprintf(b, "- ... and %d more\n", len(refs)-10)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Text renders an ImpactPack as markdown.
func (p *ImpactPack) Text() string {
	var b strings.Builder
	b.WriteString("# Impact Analysis\n\n## Changed Items\n\n")
	for _, item := range p.ChangedItems {
		fmt.Fprintf(&b, "- `%s`\n", item)
	}

	fmt.Fprintf(&b, "\n## Affected Files\n\nTotal: %d\n\n", len(p.AffectedFiles))
	files := p.AffectedFiles
	shown := files
	if len(shown) > 30 {
		shown = shown[:30]
	}
	for _, f := range shown {
		fmt.Fprintf(&b, "- `%s`\n", f)
	}
	if len(files) > 30 {
		fmt.Fprintf(&b, "- ... and %d more\n", len(files)-30)
	}

	b.WriteString("\n## Affected Tests\n\n")
	if len(p.AffectedTests) == 0 {
		b.WriteString("No affected tests found.\n")
	} else {
		tests := p.AffectedTests
		shownTests := tests
		if len(shownTests) > 20 {
			shownTests = shownTests[:20]
		}
		for _, f := range shownTests {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		if len(tests) > 20 {
			fmt.Fprintf(&b, "- ... and %d more\n", len(tests)-20)
		}
	}

	b.WriteString("\n## Recommended Inspection Order\n\n")
	b.WriteString("Files ranked by importance (fan-in, test proximity, centrality):\n\n")
	ranked := p.RankedInspection
	if len(ranked) > 20 {
		ranked = ranked[:20]
	}
	for i, item := range ranked {
		fmt.Fprintf(&b, "%d. `%s` (score: %.3f, fan-in: %d, reason: %s)\n",
			i+1, item.Path, item.Score, item.FanIn, item.Reason)
	}

	return strings.TrimRight(b.String(), "\n")
}
