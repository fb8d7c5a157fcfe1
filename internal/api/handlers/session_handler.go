package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/dialogue"
	"github.com/cmap-scaffold/backend/internal/metrics"
	"github.com/cmap-scaffold/backend/internal/session"
	"github.com/cmap-scaffold/backend/internal/storage/models"
	"github.com/cmap-scaffold/backend/internal/storage/sqlite"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// EngineFactory builds a fresh dialogue engine for a new session.
type EngineFactory func() *dialogue.Engine

type SessionHandler struct {
	manager *session.Manager[*dialogue.Engine]
	store   *sqlite.Client
	factory EngineFactory
}

func NewSessionHandler(manager *session.Manager[*dialogue.Engine], store *sqlite.Client, factory EngineFactory) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		store:   store,
		factory: factory,
	}
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req struct {
		Profile string `json:"profile"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	engine := h.factory()
	state := engine.State()
	if req.Profile != "" {
		state.LearnerProfile = req.Profile
	}

	h.manager.Put(state.ID, engine)
	metrics.SessionsActive.Set(float64(h.manager.Count()))

	h.persistSession(engine)

	logger.Info("Session created", zap.String("session_id", state.ID))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": state.ID,
		"max_rounds": state.MaxRounds,
	})
}

func (h *SessionHandler) ConductInteraction(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var req struct {
		ConceptMap  json.RawMessage `json:"concept_map"`
		PreviousMap json.RawMessage `json:"previous_map"`
		ExpertMap   json.RawMessage `json:"expert_map"`
		Profile     string          `json:"profile"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.ConceptMap) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "concept_map is required",
		})
	}

	current, err := cmap.Parse(req.ConceptMap)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid concept map format",
		})
	}

	var previous, expert *cmap.Map
	if len(req.PreviousMap) > 0 {
		if previous, err = cmap.Parse(req.PreviousMap); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid previous map format",
			})
		}
	}
	if len(req.ExpertMap) > 0 {
		if expert, err = cmap.Parse(req.ExpertMap); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid expert map format",
			})
		}
	}

	outcome := engine.ConductInteraction(c.Context(), current, previous, expert, req.Profile)
	if outcome.Status == dialogue.StatusError {
		return c.Status(fiber.StatusBadRequest).JSON(outcome)
	}

	h.persistSnapshot(engine, req.ConceptMap)
	h.persistInteraction(engine, engine.CurrentInteractionID())
	h.persistSession(engine)

	return c.JSON(outcome)
}

func (h *SessionHandler) ProcessResponse(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	interactionID := engine.CurrentInteractionID()
	outcome := engine.ProcessLearnerResponse(c.Context(), req.Text)
	if outcome.Status == dialogue.StatusError {
		return c.Status(fiber.StatusBadRequest).JSON(outcome)
	}

	if h.store != nil && interactionID != "" {
		if err := h.store.SaveResponse(&models.ResponseRecord{
			InteractionID: interactionID,
			Text:          req.Text,
			Tag:           outcome.Pattern,
			PatternReply:  outcome.Response,
		}); err != nil {
			logger.Error("Failed to persist response", zap.Error(err))
		}
	}

	return c.JSON(outcome)
}

func (h *SessionHandler) ConcludeInteraction(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	interactionID := engine.CurrentInteractionID()
	outcome := engine.ConcludeInteraction(c.Context())
	if outcome.Status == dialogue.StatusError {
		return c.Status(fiber.StatusBadRequest).JSON(outcome)
	}

	h.persistInteraction(engine, interactionID)
	h.persistSession(engine)

	return c.JSON(outcome)
}

func (h *SessionHandler) EvaluateEffectiveness(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(engine.EvaluateEffectiveness())
}

func (h *SessionHandler) GetSessionState(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	state := engine.State()
	return c.JSON(fiber.Map{
		"session_id":    state.ID,
		"current_round": state.CurrentRound,
		"max_rounds":    state.MaxRounds,
		"dialog_state":  engine.DialogState().String(),
		"zpd_estimate":  state.ZPD.ToMap(),
		"history":       state.History,
	})
}

// CloseSession removes the session from the registry after persisting its
// final state, returning the closing learner assessment.
func (h *SessionHandler) CloseSession(c *fiber.Ctx) error {
	engine, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	assessment := engine.FinalAssessment()
	scores := engine.EvaluateEffectiveness().Scores

	h.persistSession(engine)
	h.manager.Delete(c.Params("id"))
	metrics.SessionsActive.Set(float64(h.manager.Count()))

	logger.Info("Session closed", zap.String("session_id", c.Params("id")))

	return c.JSON(fiber.Map{
		"session_id":    c.Params("id"),
		"assessment":    assessment,
		"effectiveness": scores,
	})
}

func (h *SessionHandler) GetHistory(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Persistence is not enabled",
		})
	}

	interactions, err := h.store.GetInteractions(c.Params("id"))
	if err != nil {
		logger.Error("Failed to load interaction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load interaction history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id":   c.Params("id"),
		"interactions": interactions,
	})
}

func (h *SessionHandler) persistSession(engine *dialogue.Engine) {
	if h.store == nil {
		return
	}
	state := engine.State()
	estimate, err := json.Marshal(state.ZPD.ToMap())
	if err != nil {
		estimate = []byte("{}")
	}
	if err := h.store.UpsertSession(&models.SessionRecord{
		ID:             state.ID,
		LearnerProfile: state.LearnerProfile,
		MaxRounds:      state.MaxRounds,
		RoundsDone:     state.CurrentRound,
		ZPDEstimate:    string(estimate),
	}); err != nil {
		logger.Error("Failed to persist session", zap.Error(err))
	}
}

func (h *SessionHandler) persistInteraction(engine *dialogue.Engine, interactionID string) {
	if h.store == nil || interactionID == "" {
		return
	}

	state := engine.State()
	interaction := engine.InteractionByID(interactionID)
	if interaction == nil {
		return
	}

	if err := h.store.SaveInteraction(&models.InteractionRecord{
		ID:            interaction.ID,
		SessionID:     state.ID,
		Round:         interaction.Round,
		Category:      interaction.CategoryName,
		Intensity:     interaction.IntensityName,
		Justification: interaction.Justification,
		Prompts:       interaction.Prompts,
		FollowUps:     interaction.FollowUps,
		Conclusion:    interaction.Conclusion,
		StartedAt:     interaction.StartedAt,
		ConcludedAt:   interaction.ConcludedAt,
	}); err != nil {
		logger.Error("Failed to persist interaction", zap.Error(err))
	}
}

func (h *SessionHandler) persistSnapshot(engine *dialogue.Engine, mapJSON []byte) {
	if h.store == nil {
		return
	}
	state := engine.State()
	analysis := state.Analysis
	if analysis == nil {
		return
	}
	if err := h.store.SaveMapSnapshot(&models.MapSnapshot{
		SessionID:         state.ID,
		Round:             state.CurrentRound,
		MapJSON:           string(mapJSON),
		ConceptCount:      analysis.ConceptCount,
		RelationshipCount: analysis.RelationshipCount,
		ConnectivityRatio: analysis.ConnectivityRatio,
	}); err != nil {
		logger.Error("Failed to persist map snapshot", zap.Error(err))
	}
}
