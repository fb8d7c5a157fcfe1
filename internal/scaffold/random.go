package scaffold

import (
	"math/rand"
	"time"
)

// Source isolates every non-deterministic choice (weighted category draw,
// follow-up probability, pattern phrasing) so tests can inject fixed
// sequences.
type Source interface {
	Float64() float64
	Intn(n int) int
}

type seededSource struct {
	rng *rand.Rand
}

// NewSource returns a Source seeded with the given value. A zero seed is
// replaced with the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}

func (s *seededSource) Intn(n int) int {
	return s.rng.Intn(n)
}

// WeightedChoice draws one index from a weight vector. Negative weights are
// treated as zero; an all-zero vector degrades to a uniform draw.
func WeightedChoice(src Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	if total == 0 {
		return src.Intn(len(weights))
	}

	target := src.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
