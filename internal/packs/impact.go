package packs

import (
	"github.com/canopyhq/canopy/internal/graph"
	"github.com/canopyhq/canopy/internal/tokens"
)

// ImpactGenerator builds change-impact analysis packs.
type ImpactGenerator struct {
	graph *graph.Engine
}

// NewImpactGenerator builds an ImpactGenerator over g.
func NewImpactGenerator(g *graph.Engine) *ImpactGenerator {
	return &ImpactGenerator{graph: g}
}

// Generate runs an upstream impact traversal for targets (symbol names or
// file paths) up to depth hops, returning a budget-bounded ImpactPack.
func (g *ImpactGenerator) Generate(targets []string, depth, budgetTokens int) (*ImpactPack, error) {
	result, err := g.graph.Impact(targets, depth)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedFile, 0, len(result.RankedInspection))
	for _, r := range result.RankedInspection {
		ranked = append(ranked, RankedFile{
			Path:   r.Path,
			Score:  round3(r.Score),
			FanIn:  r.FanIn,
			Reason: r.Reason,
		})
	}

	pack := &ImpactPack{
		ChangedItems:     targets,
		AffectedSymbols:  result.AffectedSymbols,
		AffectedFiles:    result.AffectedFiles,
		AffectedTests:    result.AffectedTests,
		RankedInspection: ranked,
	}

	if tokens.EstimateTokens(pack.Text(), true) > budgetTokens {
		truncateImpact(pack, budgetTokens)
	}

	return pack, nil
}

// truncateImpact mirrors the Python implementation's reduction order:
// affected symbols first, then affected files, then the ranked inspection
// queue.
func truncateImpact(pack *ImpactPack, budgetTokens int) {
	for len(pack.AffectedSymbols) > 20 {
		pack.AffectedSymbols = pack.AffectedSymbols[:len(pack.AffectedSymbols)-1]
		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}

	for len(pack.AffectedFiles) > 15 {
		pack.AffectedFiles = pack.AffectedFiles[:len(pack.AffectedFiles)-1]
		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}

	for len(pack.RankedInspection) > 10 {
		pack.RankedInspection = pack.RankedInspection[:len(pack.RankedInspection)-1]
		if tokens.EstimateTokens(pack.Text(), true) <= budgetTokens {
			return
		}
	}
}
