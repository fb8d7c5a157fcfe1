package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/dialogue"
	"github.com/cmap-scaffold/backend/internal/session"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// WebSocketHandler drives one scaffolding dialogue over a live
// connection. The client sends typed messages; each maps onto one of the
// engine verbs.
type WebSocketHandler struct {
	manager *session.Manager[*dialogue.Engine]
}

func NewWebSocketHandler(manager *session.Manager[*dialogue.Engine]) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	sessionID := c.Params("id")
	logger.Info("WebSocket connection established", zap.String("session_id", sessionID))

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed", zap.String("session_id", sessionID))
	}()

	engine, err := h.manager.Get(sessionID)
	if err != nil {
		h.send(c, map[string]interface{}{
			"type":  "error",
			"error": "Session not found",
		})
		return
	}

	ctx := context.Background()

	for {
		var msg struct {
			Type       string          `json:"type"`
			Text       string          `json:"text"`
			ConceptMap json.RawMessage `json:"concept_map"`
			ExpertMap  json.RawMessage `json:"expert_map"`
			Profile    string          `json:"profile"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		var outcome *dialogue.Outcome

		switch msg.Type {
		case "submit_map":
			current, err := cmap.Parse(msg.ConceptMap)
			if err != nil {
				h.send(c, map[string]interface{}{
					"type":  "error",
					"error": "Invalid concept map format",
				})
				continue
			}
			var expert *cmap.Map
			if len(msg.ExpertMap) > 0 {
				if expert, err = cmap.Parse(msg.ExpertMap); err != nil {
					h.send(c, map[string]interface{}{
						"type":  "error",
						"error": "Invalid expert map format",
					})
					continue
				}
			}
			outcome = engine.ConductInteraction(ctx, current, nil, expert, msg.Profile)

		case "response":
			outcome = engine.ProcessLearnerResponse(ctx, msg.Text)

		case "conclude":
			outcome = engine.ConcludeInteraction(ctx)

		case "evaluate":
			outcome = engine.EvaluateEffectiveness()

		default:
			h.send(c, map[string]interface{}{
				"type":  "error",
				"error": "Unrecognized message type: " + msg.Type,
			})
			continue
		}

		h.send(c, map[string]interface{}{
			"type":    msg.Type + "_result",
			"outcome": outcome,
		})
	}
}

func (h *WebSocketHandler) send(c *websocket.Conn, payload map[string]interface{}) {
	if err := c.WriteJSON(payload); err != nil {
		logger.Error("Failed to write WebSocket message", zap.Error(err))
	}
}
