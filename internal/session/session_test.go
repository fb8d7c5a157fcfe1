package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/scaffold"
)

func TestSubmitMapTracksPrevious(t *testing.T) {
	state := NewState(4)

	assert.Nil(t, state.PreviousMap())

	first := &cmap.Map{Concepts: []cmap.Concept{{ID: "c1", Label: "A"}}}
	state.SubmitMap(first)
	assert.Nil(t, state.PreviousMap())
	assert.Equal(t, first, state.CurrentMap)

	second := &cmap.Map{Concepts: []cmap.Concept{{ID: "c1", Label: "A"}, {ID: "c2", Label: "B"}}}
	state.SubmitMap(second)
	assert.Equal(t, first, state.PreviousMap())
	assert.Equal(t, second, state.CurrentMap)
}

func TestAppendInteractionAdvancesRound(t *testing.T) {
	state := NewState(4)

	sel := &scaffold.Selection{Category: scaffold.Conceptual, Intensity: scaffold.High}
	analysis := &cmap.Analysis{ConceptCount: 6, ConnectivityRatio: 0.5}
	interaction := NewInteraction(0, sel, analysis)
	require.NotEmpty(t, interaction.ID)
	assert.Equal(t, analysis, interaction.Analysis)

	state.AppendInteraction(interaction)

	assert.Equal(t, 1, state.CurrentRound)
	assert.Len(t, state.History, 1)
	assert.Equal(t, scaffold.High, state.Intensities[scaffold.Conceptual])
	assert.False(t, interaction.ConcludedAt.IsZero())
}

func TestRecentCategories(t *testing.T) {
	state := NewState(4)

	for _, c := range []scaffold.Category{scaffold.Strategic, scaffold.Conceptual, scaffold.Procedural, scaffold.Metacognitive} {
		state.AppendInteraction(NewInteraction(0, &scaffold.Selection{Category: c, Intensity: scaffold.Medium}, nil))
	}

	recent := state.RecentCategories(3)
	assert.Equal(t, []scaffold.Category{scaffold.Conceptual, scaffold.Procedural, scaffold.Metacognitive}, recent)

	all := state.RecentCategories(10)
	assert.Len(t, all, 4)
}

func TestAverageResponseLength(t *testing.T) {
	interaction := NewInteraction(0, &scaffold.Selection{Category: scaffold.Strategic, Intensity: scaffold.Low}, nil)

	assert.Zero(t, interaction.AverageResponseLength())

	interaction.Responses = []string{"abcd", "abcdefgh"}
	assert.InDelta(t, 6.0, interaction.AverageResponseLength(), 1e-9)
}

func TestManager(t *testing.T) {
	m := NewManager[int]()

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	m.Put("a", 1)
	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, m.Count())

	m.Delete("a")
	assert.Equal(t, 0, m.Count())
}
