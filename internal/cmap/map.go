package cmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Concept struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type Relationship struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

type Map struct {
	Concepts      []Concept      `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}

func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse concept map: %w", err)
	}

	m.Normalize()
	return &m, nil
}

// Normalize drops relationships whose endpoints do not reference a known
// concept id. Dangling edges are discarded, not treated as errors.
func (m *Map) Normalize() {
	known := make(map[string]bool, len(m.Concepts))
	for _, c := range m.Concepts {
		known[c.ID] = true
	}

	kept := m.Relationships[:0]
	for _, r := range m.Relationships {
		if known[r.Source] && known[r.Target] {
			kept = append(kept, r)
		}
	}
	m.Relationships = kept
}

func (m *Map) ConceptLabel(id string) string {
	for _, c := range m.Concepts {
		if c.ID == id {
			if c.Label != "" {
				return c.Label
			}
			return c.ID
		}
	}
	return id
}

func (m *Map) ConceptLabels() []string {
	labels := make([]string, 0, len(m.Concepts))
	for _, c := range m.Concepts {
		if c.Label != "" {
			labels = append(labels, c.Label)
		} else {
			labels = append(labels, c.ID)
		}
	}
	return labels
}

func (m *Map) HasConceptLabel(label string) bool {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, c := range m.Concepts {
		if strings.ToLower(strings.TrimSpace(c.Label)) == needle {
			return true
		}
	}
	return false
}
