package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource replays scripted values so draws are deterministic.
type fixedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *fixedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *fixedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

func allMediumNeeds() map[Category]Intensity {
	return map[Category]Intensity{
		Strategic:     Medium,
		Metacognitive: Medium,
		Procedural:    Medium,
		Conceptual:    Medium,
	}
}

func TestSelectEmptyCategorySet(t *testing.T) {
	selector := NewSelector(nil, nil, &fixedSource{})

	_, err := selector.Select(allMediumNeeds(), nil, nil)
	assert.ErrorIs(t, err, ErrNoneAvailable)
}

func TestSelectHighNeedDominates(t *testing.T) {
	needs := map[Category]Intensity{
		Strategic:     Low,
		Metacognitive: Low,
		Procedural:    Low,
		Conceptual:    High,
	}

	// Weights: 1.2, 1.2, 1.2, 1.8 -> conceptual holds the top third of the
	// distribution, so a draw of 0.7 lands on it.
	src := &fixedSource{floats: []float64{0.7}}
	selector := NewSelector(Categories, nil, src)

	sel, err := selector.Select(needs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Conceptual, sel.Category)
	assert.Equal(t, High, sel.Intensity)
	assert.Contains(t, sel.Justification, "conceptual")
}

func TestSelectIntensityFollowsNeed(t *testing.T) {
	needs := map[Category]Intensity{
		Strategic:     Low,
		Metacognitive: Low,
		Procedural:    Low,
		Conceptual:    Low,
	}

	src := &fixedSource{floats: []float64{0.0}}
	selector := NewSelector(Categories, nil, src)

	sel, err := selector.Select(needs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Strategic, sel.Category)
	assert.Equal(t, Low, sel.Intensity)
}

func TestSelectRecencyPenalty(t *testing.T) {
	// Three consecutive conceptual interactions compound the 0.8 discount
	// to 0.512. With equal needs, a draw of 0.84 would hit conceptual in an
	// unpenalized distribution but lands on procedural here.
	history := []Category{Conceptual, Conceptual, Conceptual}

	src := &fixedSource{floats: []float64{0.84}}
	selector := NewSelector(Categories, nil, src)

	sel, err := selector.Select(allMediumNeeds(), nil, history)
	require.NoError(t, err)
	assert.Equal(t, Procedural, sel.Category)
}

func TestSelectOnlyLastThreeInteractionsCount(t *testing.T) {
	// Older history entries beyond the last three must not compound.
	history := []Category{Conceptual, Conceptual, Conceptual, Strategic, Metacognitive, Procedural}

	src := &fixedSource{floats: []float64{0.95}}
	selector := NewSelector(Categories, nil, src)

	sel, err := selector.Select(allMediumNeeds(), nil, history)
	require.NoError(t, err)
	// Each of the last three categories is discounted once; conceptual is
	// not discounted at all and owns the tail of the distribution.
	assert.Equal(t, Conceptual, sel.Category)
}

func TestSelectZeroNeedStillPossible(t *testing.T) {
	needs := map[Category]Intensity{
		Strategic:     Low,
		Metacognitive: High,
		Procedural:    High,
		Conceptual:    High,
	}

	src := &fixedSource{floats: []float64{0.01}}
	selector := NewSelector(Categories, nil, src)

	sel, err := selector.Select(needs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Strategic, sel.Category)
}

func TestWeightedChoice(t *testing.T) {
	t.Run("empty weights", func(t *testing.T) {
		assert.Equal(t, -1, WeightedChoice(&fixedSource{}, nil))
	})

	t.Run("all zero falls back to uniform", func(t *testing.T) {
		src := &fixedSource{ints: []int{2}}
		assert.Equal(t, 2, WeightedChoice(src, []float64{0, 0, 0}))
	})

	t.Run("negative weights ignored", func(t *testing.T) {
		src := &fixedSource{floats: []float64{0.1}}
		assert.Equal(t, 1, WeightedChoice(src, []float64{-5, 1, 0}))
	})

	t.Run("draw lands proportionally", func(t *testing.T) {
		src := &fixedSource{floats: []float64{0.6}}
		assert.Equal(t, 1, WeightedChoice(src, []float64{1, 1}))
	})
}

func TestNormalizedWeightsSumToOne(t *testing.T) {
	selector := NewSelector(Categories, map[Category]float64{
		Strategic:     2.0,
		Metacognitive: 0.5,
	}, &fixedSource{})

	needs := map[Category]Intensity{
		Strategic:     High,
		Metacognitive: Low,
		Procedural:    Medium,
		Conceptual:    High,
	}
	history := []Category{Conceptual, Conceptual, Strategic}

	weights := selector.normalizedWeights(needs, recencyCounts(history))
	require.Len(t, weights, len(Categories))

	sum := 0.0
	for _, w := range weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
