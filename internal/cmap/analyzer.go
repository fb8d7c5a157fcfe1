package cmap

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/pkg/logger"
)

type Growth struct {
	Concepts      int
	Relationships int
}

type Diff struct {
	AddedConcepts        []string
	RemovedConcepts      []string
	AddedRelationships   []string
	RemovedRelationships []string
}

type ExpertComparison struct {
	MatchingConcepts     []string
	MissingConcepts      []string
	ExtraConcepts        []string
	ConceptCoverage      float64
	RelationshipCoverage float64
}

type Analysis struct {
	ConceptCount      int
	RelationshipCount int
	ConnectivityRatio float64
	IsolatedConcepts  []string
	CentralConcepts   []string
	HasRelationLabels bool
	Growth            *Growth
	Diff              *Diff
	Expert            *ExpertComparison
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze derives the diagnostic record for one submission. Previous and
// expert maps are optional; empty maps yield all-zero statistics.
func (a *Analyzer) Analyze(current, previous, expert *Map) *Analysis {
	analysis := &Analysis{
		ConceptCount:      len(current.Concepts),
		RelationshipCount: len(current.Relationships),
		IsolatedConcepts:  []string{},
		CentralConcepts:   []string{},
	}

	denominator := len(current.Concepts)
	if denominator < 1 {
		denominator = 1
	}
	analysis.ConnectivityRatio = float64(len(current.Relationships)) / float64(denominator)

	degrees := make(map[string]int, len(current.Concepts))
	for _, r := range current.Relationships {
		degrees[r.Source]++
		degrees[r.Target]++
		if strings.TrimSpace(r.Label) != "" {
			analysis.HasRelationLabels = true
		}
	}

	for _, c := range current.Concepts {
		if degrees[c.ID] == 0 {
			analysis.IsolatedConcepts = append(analysis.IsolatedConcepts, current.ConceptLabel(c.ID))
		}
	}

	analysis.CentralConcepts = centralConcepts(current, degrees)

	if previous != nil {
		analysis.Growth = &Growth{
			Concepts:      len(current.Concepts) - len(previous.Concepts),
			Relationships: len(current.Relationships) - len(previous.Relationships),
		}
		analysis.Diff = diffMaps(current, previous)
	}

	if expert != nil {
		analysis.Expert = compareToExpert(current, expert)
	}

	logger.Debug("Concept map analyzed",
		zap.Int("concepts", analysis.ConceptCount),
		zap.Int("relationships", analysis.RelationshipCount),
		zap.Float64("connectivity_ratio", analysis.ConnectivityRatio),
		zap.Int("isolated", len(analysis.IsolatedConcepts)),
	)

	return analysis
}

// centralConcepts returns the top 3 concepts by degree, descending, with
// ties broken by appearance order in the map.
func centralConcepts(m *Map, degrees map[string]int) []string {
	type entry struct {
		id     string
		degree int
		order  int
	}

	entries := make([]entry, 0, len(m.Concepts))
	for i, c := range m.Concepts {
		if degrees[c.ID] > 0 {
			entries = append(entries, entry{id: c.ID, degree: degrees[c.ID], order: i})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].degree != entries[j].degree {
			return entries[i].degree > entries[j].degree
		}
		return entries[i].order < entries[j].order
	})

	if len(entries) > 3 {
		entries = entries[:3]
	}

	central := make([]string, 0, len(entries))
	for _, e := range entries {
		central = append(central, m.ConceptLabel(e.id))
	}
	return central
}

func diffMaps(current, previous *Map) *Diff {
	diff := &Diff{
		AddedConcepts:        []string{},
		RemovedConcepts:      []string{},
		AddedRelationships:   []string{},
		RemovedRelationships: []string{},
	}

	currentConcepts := labelSet(current)
	previousConcepts := labelSet(previous)

	for _, c := range current.Concepts {
		if !previousConcepts[normalizeLabel(current.ConceptLabel(c.ID))] {
			diff.AddedConcepts = append(diff.AddedConcepts, current.ConceptLabel(c.ID))
		}
	}
	for _, c := range previous.Concepts {
		if !currentConcepts[normalizeLabel(previous.ConceptLabel(c.ID))] {
			diff.RemovedConcepts = append(diff.RemovedConcepts, previous.ConceptLabel(c.ID))
		}
	}

	currentRels := relationshipSet(current)
	previousRels := relationshipSet(previous)

	for key := range currentRels {
		if !previousRels[key] {
			diff.AddedRelationships = append(diff.AddedRelationships, key)
		}
	}
	for key := range previousRels {
		if !currentRels[key] {
			diff.RemovedRelationships = append(diff.RemovedRelationships, key)
		}
	}

	sort.Strings(diff.AddedRelationships)
	sort.Strings(diff.RemovedRelationships)

	return diff
}

func compareToExpert(current, expert *Map) *ExpertComparison {
	comparison := &ExpertComparison{
		MatchingConcepts: []string{},
		MissingConcepts:  []string{},
		ExtraConcepts:    []string{},
	}

	currentConcepts := labelSet(current)
	expertConcepts := labelSet(expert)

	for _, c := range expert.Concepts {
		label := expert.ConceptLabel(c.ID)
		if currentConcepts[normalizeLabel(label)] {
			comparison.MatchingConcepts = append(comparison.MatchingConcepts, label)
		} else {
			comparison.MissingConcepts = append(comparison.MissingConcepts, label)
		}
	}
	for _, c := range current.Concepts {
		label := current.ConceptLabel(c.ID)
		if !expertConcepts[normalizeLabel(label)] {
			comparison.ExtraConcepts = append(comparison.ExtraConcepts, label)
		}
	}

	if len(expert.Concepts) > 0 {
		comparison.ConceptCoverage = float64(len(comparison.MatchingConcepts)) / float64(len(expert.Concepts))
	}

	if len(expert.Relationships) > 0 {
		currentRels := relationshipSet(current)
		matched := 0
		for key := range relationshipSet(expert) {
			if currentRels[key] {
				matched++
			}
		}
		comparison.RelationshipCoverage = float64(matched) / float64(len(expert.Relationships))
	}

	return comparison
}

func labelSet(m *Map) map[string]bool {
	set := make(map[string]bool, len(m.Concepts))
	for _, c := range m.Concepts {
		set[normalizeLabel(m.ConceptLabel(c.ID))] = true
	}
	return set
}

func relationshipSet(m *Map) map[string]bool {
	set := make(map[string]bool, len(m.Relationships))
	for _, r := range m.Relationships {
		key := normalizeLabel(m.ConceptLabel(r.Source)) + " -> " + normalizeLabel(m.ConceptLabel(r.Target))
		set[key] = true
	}
	return set
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
