package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, "gpt-4o", cfg.LLM.PrimaryModel)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.FallbackModel)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)

	assert.ElementsMatch(t,
		[]string{"strategic", "metacognitive", "procedural", "conceptual"},
		cfg.Scaffolding.EnabledCategories,
	)
	assert.Equal(t, 4, cfg.Scaffolding.MaxRounds)
	assert.Equal(t, 3, cfg.Scaffolding.PromptsPerInteraction)

	assert.Equal(t, "info", cfg.Logging.Level)
}
