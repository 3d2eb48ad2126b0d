package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/pipeline"
	"github.com/docuassist/backend/pkg/logger"
)

type QueryHandler struct {
	orchestrator *pipeline.Orchestrator
}

func NewQueryHandler(orchestrator *pipeline.Orchestrator) *QueryHandler {
	return &QueryHandler{
		orchestrator: orchestrator,
	}
}

type queryRequest struct {
	Query        string `json:"query"`
	UserID       string `json:"user_id"`
	SystemPrompt string `json:"system_prompt"`
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req queryRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}
	if len(query) > 1000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is too long (max 1000 characters)",
		})
	}

	outcome := h.orchestrator.ProcessQuery(c.Context(), query, req.UserID, req.SystemPrompt)

	if !outcome.Success {
		logger.Error("Query processing failed",
			zap.String("query_id", outcome.QueryID),
			zap.String("error", outcome.Error),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(outcome)
	}

	return c.JSON(outcome)
}

func (h *QueryHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" || len(userID) > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	history := h.orchestrator.History(userID)

	return c.JSON(fiber.Map{
		"user_id":       userID,
		"message_count": len(history),
		"messages":      history,
	})
}

func (h *QueryHandler) GetChatHealth(c *fiber.Ctx) error {
	return c.JSON(h.orchestrator.Health(c.Context()))
}
