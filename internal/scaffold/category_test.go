package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("mystical")
	assert.Error(t, err)
}

func TestIntensityOrdering(t *testing.T) {
	assert.True(t, Low < Medium)
	assert.True(t, Medium < High)
}

func TestIntensitySteps(t *testing.T) {
	assert.Equal(t, Medium, High.StepDown())
	assert.Equal(t, Low, Medium.StepDown())
	assert.Equal(t, Low, Low.StepDown())

	assert.Equal(t, Medium, Low.StepUp())
	assert.Equal(t, High, Medium.StepUp())
	assert.Equal(t, High, High.StepUp())
}

func TestIntensityValue(t *testing.T) {
	assert.InDelta(t, 0.2, Low.Value(), 1e-9)
	assert.InDelta(t, 0.5, Medium.Value(), 1e-9)
	assert.InDelta(t, 0.8, High.Value(), 1e-9)
}

func TestIntensityForNeed(t *testing.T) {
	tests := []struct {
		need     float64
		expected Intensity
	}{
		{0.8, High},
		{0.71, High},
		{0.7, Medium},
		{0.5, Medium},
		{0.3, Medium},
		{0.29, Low},
		{0.2, Low},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IntensityForNeed(tt.need), "need %.2f", tt.need)
	}
}
