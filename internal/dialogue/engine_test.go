package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/scaffold"
)

func testEngine() *Engine {
	return NewEngine(nil, Options{RandomSeed: 42})
}

func testMap() *cmap.Map {
	return &cmap.Map{
		Concepts: []cmap.Concept{
			{ID: "c1", Label: "Supply"},
			{ID: "c2", Label: "Demand"},
			{ID: "c3", Label: "Price"},
			{ID: "c4", Label: "Competition"},
		},
		Relationships: []cmap.Relationship{
			{ID: "r1", Source: "c1", Target: "c2", Label: "balances"},
			{ID: "r2", Source: "c2", Target: "c3", Label: "drives"},
			{ID: "r3", Source: "c3", Target: "c4", Label: "attracts"},
		},
	}
}

func TestConductInteractionWithoutMap(t *testing.T) {
	engine := testEngine()

	outcome := engine.ConductInteraction(context.Background(), nil, nil, nil, "")
	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, StateIdle, engine.DialogState())
	assert.Empty(t, engine.State().History)
}

func TestConductInteractionProducesPrompts(t *testing.T) {
	engine := testEngine()

	outcome := engine.ConductInteraction(context.Background(), testMap(), nil, nil, "I'm a beginner")
	require.Equal(t, StatusSuccess, outcome.Status)

	assert.Len(t, outcome.Prompts, 3)
	for _, prompt := range outcome.Prompts {
		assert.NotEmpty(t, prompt)
		assert.NotContains(t, prompt, "{")
	}
	assert.NotEmpty(t, outcome.Category)
	assert.NotEmpty(t, outcome.Intensity)
	assert.NotEmpty(t, outcome.Justification)
	assert.Equal(t, StateAwaitingResponse, engine.DialogState())
	assert.Equal(t, "I'm a beginner", engine.State().LearnerProfile)
}

func TestConductInteractionWhileActive(t *testing.T) {
	engine := testEngine()

	first := engine.ConductInteraction(context.Background(), testMap(), nil, nil, "")
	require.Equal(t, StatusSuccess, first.Status)

	second := engine.ConductInteraction(context.Background(), testMap(), nil, nil, "")
	assert.Equal(t, StatusError, second.Status)
}

func TestConductInteractionNoCategoriesEnabled(t *testing.T) {
	engine := NewEngine(nil, Options{
		EnabledCategories: []scaffold.Category{},
		RandomSeed:        42,
	})

	outcome := engine.ConductInteraction(context.Background(), testMap(), nil, nil, "")
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "no scaffolding available", outcome.Message)
	assert.Empty(t, outcome.Prompts)
	assert.Equal(t, StateIdle, engine.DialogState())
}

func TestProcessResponseWithoutInteraction(t *testing.T) {
	engine := testEngine()

	outcome := engine.ProcessLearnerResponse(context.Background(), "hello")
	assert.Equal(t, StatusError, outcome.Status)
}

func TestPatternResponseDoesNotAdvanceInteraction(t *testing.T) {
	engine := testEngine()

	require.Equal(t, StatusSuccess, engine.ConductInteraction(context.Background(), testMap(), nil, nil, "").Status)

	outcome := engine.ProcessLearnerResponse(context.Background(), "asdf asdf asdf")
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "gibberish", outcome.Pattern)
	assert.NotEmpty(t, outcome.Response)

	interaction := engine.InteractionByID(engine.CurrentInteractionID())
	require.NotNil(t, interaction)
	assert.Empty(t, interaction.Responses, "pattern replies must not be recorded as responses")
	assert.Equal(t, StateAwaitingResponse, engine.DialogState())
}

func TestConfusedResponseForcesFollowUp(t *testing.T) {
	engine := testEngine()

	require.Equal(t, StatusSuccess, engine.ConductInteraction(context.Background(), testMap(), nil, nil, "").Status)

	outcome := engine.ProcessLearnerResponse(context.Background(), "honestly i'm a bit confused about where the new ideas fit")
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.True(t, outcome.FollowUp)
	assert.NotEmpty(t, outcome.Response)

	// Only one follow-up per interaction; the next reply is just recorded.
	second := engine.ProcessLearnerResponse(context.Background(), "i will keep thinking about it and try to restructure things")
	require.Equal(t, StatusSuccess, second.Status)
	assert.False(t, second.FollowUp)
	assert.Equal(t, "response recorded", second.Message)

	interaction := engine.InteractionByID(engine.CurrentInteractionID())
	require.NotNil(t, interaction)
	assert.Len(t, interaction.Responses, 2)
	assert.Len(t, interaction.FollowUps, 1)
}

func TestConcludeInteraction(t *testing.T) {
	engine := testEngine()

	require.Equal(t, StatusSuccess, engine.ConductInteraction(context.Background(), testMap(), nil, nil, "").Status)
	engine.ProcessLearnerResponse(context.Background(), "honestly i'm a bit confused about where the new ideas fit")

	outcome := engine.ConcludeInteraction(context.Background())
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.NotEmpty(t, outcome.Conclusion)

	assert.Equal(t, StateIdle, engine.DialogState())
	assert.Empty(t, engine.CurrentInteractionID())
	assert.Equal(t, 1, engine.State().CurrentRound)
	require.Len(t, engine.State().History, 1)
	assert.NotEmpty(t, engine.State().History[0].Conclusion)
}

func TestConcludeWithoutInteraction(t *testing.T) {
	engine := testEngine()

	outcome := engine.ConcludeInteraction(context.Background())
	assert.Equal(t, StatusError, outcome.Status)
}

func TestEvaluateEffectiveness(t *testing.T) {
	engine := testEngine()

	t.Run("no history", func(t *testing.T) {
		outcome := engine.EvaluateEffectiveness()
		assert.Equal(t, StatusSuccess, outcome.Status)
		assert.Empty(t, outcome.Scores)
	})

	require.Equal(t, StatusSuccess, engine.ConductInteraction(context.Background(), testMap(), nil, nil, "").Status)
	engine.ProcessLearnerResponse(context.Background(), "honestly i'm a bit confused about where the new ideas fit")
	engine.ProcessLearnerResponse(context.Background(), "i will keep thinking about it and try to restructure things")
	require.Equal(t, StatusSuccess, engine.ConcludeInteraction(context.Background()).Status)

	outcome := engine.EvaluateEffectiveness()
	require.Equal(t, StatusSuccess, outcome.Status)

	category := engine.State().History[0].CategoryName
	assert.InDelta(t, 0.5, outcome.Scores[category], 1e-9)
	assert.InDelta(t, 0.5, outcome.Scores["overall"], 1e-9)
}

func TestFullSessionAcrossRounds(t *testing.T) {
	engine := testEngine()
	ctx := context.Background()

	for round := 0; round < 3; round++ {
		outcome := engine.ConductInteraction(ctx, testMap(), nil, nil, "")
		require.Equal(t, StatusSuccess, outcome.Status, "round %d", round)

		engine.ProcessLearnerResponse(ctx, "honestly i'm a bit confused about where the new ideas fit")
		require.Equal(t, StatusSuccess, engine.ConcludeInteraction(ctx).Status, "round %d", round)
	}

	assert.Equal(t, 3, engine.State().CurrentRound)
	assert.Len(t, engine.State().History, 3)
	assert.Len(t, engine.State().PreviousMaps, 2)
}

func TestFinalAssessment(t *testing.T) {
	engine := testEngine()

	require.Equal(t, StatusSuccess, engine.ConductInteraction(context.Background(), testMap(), nil, nil, "").Status)
	engine.ProcessLearnerResponse(context.Background(), "honestly i'm a bit confused about where the new ideas fit")
	require.Equal(t, StatusSuccess, engine.ConcludeInteraction(context.Background()).Status)

	assessment := engine.FinalAssessment()
	assert.Contains(t, assessment, "1 map revision(s)")
	assert.Contains(t, assessment, "grasp of the domain concepts")
}

func TestInteractionKeepsOwnAnalysisSnapshot(t *testing.T) {
	engine := testEngine()
	ctx := context.Background()

	require.Equal(t, StatusSuccess, engine.ConductInteraction(ctx, testMap(), nil, nil, "").Status)
	engine.ProcessLearnerResponse(ctx, "honestly i'm a bit confused about where the new ideas fit")
	require.Equal(t, StatusSuccess, engine.ConcludeInteraction(ctx).Status)

	grown := testMap()
	grown.Concepts = append(grown.Concepts, cmap.Concept{ID: "c5", Label: "Regulation"})
	require.Equal(t, StatusSuccess, engine.ConductInteraction(ctx, grown, nil, nil, "").Status)

	// The concluded interaction must retain the diagnostics it was
	// generated from, not the later round's.
	first := engine.State().History[0]
	require.NotNil(t, first.Analysis)
	assert.Equal(t, 4, first.Analysis.ConceptCount)
	assert.Equal(t, 5, engine.State().Analysis.ConceptCount)
}
