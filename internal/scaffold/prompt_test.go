package scaffold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmap-scaffold/backend/internal/cmap"
)

func testAnalysis() *cmap.Analysis {
	return &cmap.Analysis{
		ConceptCount:      5,
		RelationshipCount: 3,
		ConnectivityRatio: 0.6,
		IsolatedConcepts:  []string{"Orphan"},
		CentralConcepts:   []string{"Hub"},
		HasRelationLabels: true,
	}
}

func testMap() *cmap.Map {
	return &cmap.Map{
		Concepts: []cmap.Concept{
			{ID: "c1", Label: "Supply"},
			{ID: "c2", Label: "Demand"},
		},
	}
}

func TestSelectAvoidsRepetition(t *testing.T) {
	engine := NewPromptEngine(NewLibrary())
	analysis := testAnalysis()
	m := testMap()

	bucketSize := len(engine.library.Prompts(Strategic, Medium))
	require.Greater(t, bucketSize, 1)

	seen := make(map[string]bool)
	for i := 0; i < bucketSize; i++ {
		prompt := engine.Select(Strategic, Medium, analysis, m, 1)
		assert.False(t, seen[prompt], "prompt repeated before pool exhaustion: %q", prompt)
		seen[prompt] = true
	}

	// Pool exhausted: the next selection resets and may repeat.
	prompt := engine.Select(Strategic, Medium, analysis, m, 1)
	assert.NotEmpty(t, prompt)
	assert.True(t, seen[prompt])
}

func TestSelectAlwaysReturnsText(t *testing.T) {
	library := &Library{
		prompts:     map[Category]map[Intensity][]string{},
		followUps:   map[Category][]string{},
		conclusions: map[Category][]string{},
		defaults:    defaultFallbacks(),
	}
	engine := NewPromptEngine(library)

	prompt := engine.Select(Conceptual, High, nil, nil, 0)
	assert.Equal(t, defaultFallbacks()[Conceptual], prompt)
}

func TestSelectFillsAllPlaceholders(t *testing.T) {
	engine := NewPromptEngine(NewLibrary())
	analysis := testAnalysis()
	m := testMap()

	for _, c := range Categories {
		for _, i := range []Intensity{Low, Medium, High} {
			for range engine.library.Prompts(c, i) {
				prompt := engine.Select(c, i, analysis, m, 1)
				assert.NotContains(t, prompt, "{", "unfilled placeholder in %s/%s: %q", c, i, prompt)
			}
		}
	}
}

func TestFillPlaceholders(t *testing.T) {
	filled := fillPlaceholders(
		"{observation} Your map has {node_count} concepts and {edge_count} links around {concept} and {another_concept}.",
		testAnalysis(), testMap(),
	)

	assert.Contains(t, filled, "Orphan")
	assert.Contains(t, filled, "5 concepts")
	assert.Contains(t, filled, "3 links")
	assert.Contains(t, filled, "Supply")
	assert.Contains(t, filled, "Demand")
}

func TestFillPlaceholdersFallsBackToGenericText(t *testing.T) {
	filled := fillPlaceholders("Think about {concept} and {another_concept}.", nil, nil)

	assert.Equal(t, "Think about one of your concepts and another concept.", filled)
}

func TestSynthesizeObservationPreference(t *testing.T) {
	t.Run("isolated concepts first", func(t *testing.T) {
		obs := synthesizeObservation(testAnalysis())
		assert.Contains(t, obs, "Orphan")
	})

	t.Run("low connectivity next", func(t *testing.T) {
		obs := synthesizeObservation(&cmap.Analysis{ConnectivityRatio: 0.5})
		assert.Contains(t, obs, "more concepts than connections")
	})

	t.Run("stalled growth next", func(t *testing.T) {
		obs := synthesizeObservation(&cmap.Analysis{
			ConnectivityRatio: 1.5,
			Growth:            &cmap.Growth{Concepts: 0, Relationships: 0},
		})
		assert.Contains(t, obs, "has not grown")
	})

	t.Run("generic fallback", func(t *testing.T) {
		obs := synthesizeObservation(&cmap.Analysis{ConnectivityRatio: 1.5})
		assert.Contains(t, obs, "Looking at your map")
	})
}

func TestScoreTemplatePrefersBroadOnOpeningTurn(t *testing.T) {
	broad := "What would you like to work on?"
	specific := "Your map has {node_count} concepts."

	analysis := testAnalysis()
	m := testMap()

	assert.Greater(t, scoreTemplate(broad, analysis, m, 0), scoreTemplate(broad, analysis, m, 1))
	assert.Greater(t, scoreTemplate(specific, analysis, m, 1), scoreTemplate(specific, analysis, m, 0))
}

func TestUsageMemoryReset(t *testing.T) {
	memory := NewUsageMemory()

	assert.Equal(t, []int{0, 1, 2}, memory.Unused(Strategic, Low, 3))

	memory.MarkUsed(Strategic, Low, 0)
	memory.MarkUsed(Strategic, Low, 2)
	assert.Equal(t, []int{1}, memory.Unused(Strategic, Low, 3))

	memory.MarkUsed(Strategic, Low, 1)
	assert.Equal(t, []int{0, 1, 2}, memory.Unused(Strategic, Low, 3), "exhausted bucket must reset")
}

func TestFollowUpAndConclusionNonEmpty(t *testing.T) {
	engine := NewPromptEngine(NewLibrary())
	src := &fixedSource{ints: []int{0}}

	for _, c := range Categories {
		assert.NotEmpty(t, strings.TrimSpace(engine.FollowUp(c, src)))
		assert.NotEmpty(t, strings.TrimSpace(engine.Conclusion(c, src)))
	}
}
