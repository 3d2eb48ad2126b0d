package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/pipeline"
	"github.com/docuassist/backend/pkg/logger"
)

// WebSocketHandler streams answers word by word over a chat socket.
type WebSocketHandler struct {
	orchestrator *pipeline.Orchestrator
}

func NewWebSocketHandler(orchestrator *pipeline.Orchestrator) *WebSocketHandler {
	return &WebSocketHandler{
		orchestrator: orchestrator,
	}
}

type socketMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg socketMessage

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		if err := h.streamResponse(c, msg.Content, msg.UserID); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.send(c, map[string]interface{}{
				"type":  "error",
				"error": "Failed to process query",
			})
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, queryText, userID string) error {
	if err := h.send(c, map[string]interface{}{
		"type":    "status",
		"content": "Processing query...",
	}); err != nil {
		return err
	}

	outcome := h.orchestrator.ProcessQuery(context.Background(), queryText, userID, "")

	words := strings.Fields(outcome.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		if err := h.send(c, map[string]interface{}{
			"type":    "chunk",
			"content": chunk,
		}); err != nil {
			return err
		}
	}

	return h.send(c, map[string]interface{}{
		"type":                "complete",
		"query_id":            outcome.QueryID,
		"retrieved_documents": outcome.RetrievedDocuments,
		"metrics":             outcome.Metrics,
		"success":             outcome.Success,
		"mode":                outcome.Mode,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}
