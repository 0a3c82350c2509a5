package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateTokensEmpty(t *testing.T) {
	require.Equal(t, 0, EstimateTokens("", false))
}

func TestEstimateTokensMinimumOne(t *testing.T) {
	require.Equal(t, 1, EstimateTokens("a", false))
}

func TestEstimateTokensCodeIsDenser(t *testing.T) {
	text := strings.Repeat("x", 30)
	prose := EstimateTokens(text, false)
	code := EstimateTokens(text, true)
	require.Greater(t, code, prose)
}

func TestParseSectionsByHeaderLevel(t *testing.T) {
	text := "# Title\n\nintro\n\n## Section A\n\ncontent a\n\n### Sub\n\ndeep content"
	sections := ParseSections(text)
	require.Len(t, sections, 3)
	require.Equal(t, "# Title", sections[0].Header)
	require.Equal(t, 10, sections[0].Priority)
	require.Equal(t, "## Section A", sections[1].Header)
	require.Equal(t, 5, sections[1].Priority)
	require.Equal(t, "### Sub", sections[2].Header)
	require.Equal(t, 3, sections[2].Priority)
}

func TestTruncateToBudgetWithinBudgetReturnsUnchanged(t *testing.T) {
	text := "## Header\n\nshort"
	result := TruncateToBudget(text, 1000, false)
	require.Equal(t, text, result)
}

func TestTruncateToBudgetDropsLowPrioritySectionsFirst(t *testing.T) {
	title := "# Title\n\n" + strings.Repeat("important ", 20)
	minor := "\n\n### Minor\n\n" + strings.Repeat("filler ", 500)
	text := title + minor

	result := TruncateToBudget(text, 100, false)
	require.Contains(t, result, "# Title")
	require.NotContains(t, result, "### Minor")
}

func TestTruncateToBudgetNoSectionsFallsBackToSimple(t *testing.T) {
	text := strings.Repeat("word ", 500)
	result := TruncateToBudget(text, 10, false)
	require.Less(t, len(result), len(text))
	require.Contains(t, result, "truncated")
}

func TestCalculateBudgetAllocationProportional(t *testing.T) {
	allocations := CalculateBudgetAllocation(4000, map[string]float64{
		"header":        0.1,
		"signature":     0.15,
		"documentation": 0.2,
		"code":          0.55,
	})
	require.Equal(t, 400, allocations["header"])
	require.Equal(t, 600, allocations["signature"])
	require.Equal(t, 800, allocations["documentation"])
	require.Equal(t, 2200, allocations["code"])
}

func TestGetBudgetStatusOverBudget(t *testing.T) {
	status := GetBudgetStatus(strings.Repeat("x", 1000), 10, false)
	require.False(t, status.WithinBudget)
	require.Negative(t, status.Remaining)
	require.Greater(t, status.Utilization, 1.0)
}
