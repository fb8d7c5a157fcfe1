package cmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"concepts": [
			{"id": "c1", "label": "Supply", "x": 10, "y": 20},
			{"id": "c2", "label": "Demand", "x": 30, "y": 40}
		],
		"relationships": [
			{"id": "r1", "source": "c1", "target": "c2", "label": "influences"}
		]
	}`)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, m.Concepts, 2)
	assert.Len(t, m.Relationships, 1)
	assert.Equal(t, "Supply", m.ConceptLabel("c1"))
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestNormalizeDropsDanglingRelationships(t *testing.T) {
	m := &Map{
		Concepts: []Concept{
			{ID: "c1", Label: "A"},
			{ID: "c2", Label: "B"},
		},
		Relationships: []Relationship{
			{ID: "r1", Source: "c1", Target: "c2"},
			{ID: "r2", Source: "c1", Target: "missing"},
			{ID: "r3", Source: "ghost", Target: "c2"},
		},
	}

	m.Normalize()

	require.Len(t, m.Relationships, 1)
	assert.Equal(t, "r1", m.Relationships[0].ID)
}

func TestConceptLabelFallsBackToID(t *testing.T) {
	m := &Map{Concepts: []Concept{{ID: "c1"}}}
	assert.Equal(t, "c1", m.ConceptLabel("c1"))
	assert.Equal(t, "unknown", m.ConceptLabel("unknown"))
}

func TestHasConceptLabel(t *testing.T) {
	m := &Map{Concepts: []Concept{{ID: "c1", Label: "Market Entry"}}}
	assert.True(t, m.HasConceptLabel("market entry"))
	assert.True(t, m.HasConceptLabel("  Market Entry "))
	assert.False(t, m.HasConceptLabel("exit"))
}
