package scaffold

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

var ErrNoneAvailable = errors.New("no scaffolding categories available")

// Selection is the outcome of one category draw.
type Selection struct {
	Category      Category
	Intensity     Intensity
	Justification string
}

// Selector draws the next scaffolding category. Weights combine static
// base weights with the current ZPD needs, discounted for categories used
// recently so one category does not dominate a session.
type Selector struct {
	enabled     []Category
	baseWeights map[Category]float64
	src         Source
}

func NewSelector(enabled []Category, baseWeights map[Category]float64, src Source) *Selector {
	if len(enabled) == 0 {
		enabled = nil
	}
	weights := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		w, ok := baseWeights[c]
		if !ok || w <= 0 {
			w = 1.0
		}
		weights[c] = w
	}
	return &Selector{enabled: enabled, baseWeights: weights, src: src}
}

// Select draws a category given the current needs, the map diagnostics,
// and the category history of the session, most recent last. Only the last
// three interactions count toward the recency discount.
func (s *Selector) Select(needs map[Category]Intensity, analysis *cmap.Analysis, history []Category) (*Selection, error) {
	if len(s.enabled) == 0 {
		return nil, ErrNoneAvailable
	}

	recentCounts := recencyCounts(history)
	weights := s.normalizedWeights(needs, recentCounts)

	idx := WeightedChoice(s.src, weights)
	if idx < 0 {
		return nil, ErrNoneAvailable
	}

	category := s.enabled[idx]
	need := Medium
	if n, ok := needs[category]; ok {
		need = n
	}
	intensity := IntensityForNeed(need.Value())

	selection := &Selection{
		Category:      category,
		Intensity:     intensity,
		Justification: buildJustification(category, need, analysis, recentCounts[category], weights[idx]),
	}

	logger.Debug("Scaffolding category selected",
		zap.String("category", category.String()),
		zap.String("intensity", intensity.String()),
		zap.Float64("weight", weights[idx]),
	)

	return selection, nil
}

// recencyCounts tallies the categories of the last three interactions.
func recencyCounts(history []Category) map[Category]int {
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	counts := make(map[Category]int, len(recent))
	for _, c := range recent {
		counts[c]++
	}
	return counts
}

// normalizedWeights returns the per-enabled-category draw distribution:
// base weight boosted by need, discounted 0.8 per recent use, then scaled
// to sum to one.
func (s *Selector) normalizedWeights(needs map[Category]Intensity, recentCounts map[Category]int) []float64 {
	weights := make([]float64, len(s.enabled))
	total := 0.0
	for i, c := range s.enabled {
		need := Medium
		if n, ok := needs[c]; ok {
			need = n
		}
		w := s.baseWeights[c] * (1.0 + need.Value())
		for j := 0; j < recentCounts[c]; j++ {
			w *= 0.8
		}
		weights[i] = w
		total += w
	}

	if total > 0 {
		for i := range weights {
			weights[i] /= total
		}
	}
	return weights
}

// buildJustification names the deciding statistic behind the draw so the
// selection can be audited after the fact.
func buildJustification(c Category, need Intensity, analysis *cmap.Analysis, recentUses int, weight float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "selected %s scaffolding: ZPD need is %s (weight %.2f)", c, need, weight)

	if analysis != nil {
		switch c {
		case Metacognitive:
			fmt.Fprintf(&b, "; connectivity ratio is %.2f", analysis.ConnectivityRatio)
		case Conceptual:
			fmt.Fprintf(&b, "; map has %d concepts", analysis.ConceptCount)
			if analysis.Expert != nil && len(analysis.Expert.MissingConcepts) > 0 {
				fmt.Fprintf(&b, " with %d expert concepts missing", len(analysis.Expert.MissingConcepts))
			}
		case Procedural:
			if !analysis.HasRelationLabels {
				b.WriteString("; relationships are unlabeled")
			} else {
				fmt.Fprintf(&b, "; map has %d relationships", analysis.RelationshipCount)
			}
		case Strategic:
			if len(analysis.IsolatedConcepts) > 0 {
				fmt.Fprintf(&b, "; %d isolated concept(s)", len(analysis.IsolatedConcepts))
			} else if analysis.Growth != nil {
				fmt.Fprintf(&b, "; growth of %+d concepts since last round", analysis.Growth.Concepts)
			}
		}
	}

	if recentUses > 0 {
		fmt.Fprintf(&b, ", discounted for %d recent use(s)", recentUses)
	}
	return b.String()
}
