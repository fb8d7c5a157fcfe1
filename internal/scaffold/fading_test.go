package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFadingNeverExceedsNeedCeiling(t *testing.T) {
	policy := NewFadingPolicy()

	next := policy.Next(Conceptual, High, Low, true, 1, 0)
	assert.Equal(t, Low, next)

	next = policy.Next(Conceptual, Medium, Low, true, 1, 30)
	assert.Equal(t, Low, next)
}

func TestFadingRoundDecayWithoutNeed(t *testing.T) {
	policy := NewFadingPolicy()

	tests := []struct {
		name     string
		current  Intensity
		round    int
		expected Intensity
	}{
		{"high holds on round 1", High, 1, High},
		{"high decays on round 2", High, 2, Medium},
		{"medium holds on round 2", Medium, 2, Medium},
		{"medium decays on round 3", Medium, 3, Low},
		{"low stays low", Low, 5, Low},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := policy.Next(Strategic, tt.current, Medium, false, tt.round, 100)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestFadingReplyLengthNudges(t *testing.T) {
	policy := NewFadingPolicy()

	t.Run("long replies fade down", func(t *testing.T) {
		next := policy.Next(Metacognitive, Medium, Medium, false, 1, 180)
		assert.Equal(t, Low, next)
	})

	t.Run("short replies step up", func(t *testing.T) {
		next := policy.Next(Metacognitive, Low, High, true, 1, 30)
		assert.Equal(t, Medium, next)
	})

	t.Run("no replies leave intensity alone", func(t *testing.T) {
		next := policy.Next(Metacognitive, Medium, Medium, false, 1, 0)
		assert.Equal(t, Medium, next)
	})
}

func TestFadingNeverIncreasesMoreThanOneStep(t *testing.T) {
	policy := NewFadingPolicy()

	next := policy.Next(Procedural, Low, High, true, 1, 30)
	assert.Equal(t, Medium, next)
}

func TestFadingShortRepliesCannotBreakCeiling(t *testing.T) {
	policy := NewFadingPolicy()

	next := policy.Next(Procedural, Low, Low, true, 2, 10)
	assert.Equal(t, Low, next)
}
