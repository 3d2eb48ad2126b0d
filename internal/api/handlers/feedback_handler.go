package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/feedback"
	"github.com/docuassist/backend/internal/pipeline"
	"github.com/docuassist/backend/pkg/logger"
)

type FeedbackHandler struct {
	orchestrator *pipeline.Orchestrator
	sink         *feedback.Sink
}

func NewFeedbackHandler(orchestrator *pipeline.Orchestrator, sink *feedback.Sink) *FeedbackHandler {
	return &FeedbackHandler{
		orchestrator: orchestrator,
		sink:         sink,
	}
}

type feedbackRequest struct {
	QueryID      string `json:"query_id"`
	UserID       string `json:"user_id"`
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedback_text"`
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req feedbackRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse feedback body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ok, err := h.orchestrator.CollectFeedback(c.Context(), req.QueryID, req.UserID, req.Rating, req.FeedbackText)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record feedback",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Thank you! Your %d-star rating has been recorded.", req.Rating),
	})
}

func (h *FeedbackHandler) GetFeedbackMetrics(c *fiber.Ctx) error {
	stats, err := h.sink.Stats(c.Context())
	if err != nil {
		logger.Error("Failed to read feedback stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve metrics",
		})
	}

	return c.JSON(fiber.Map{
		"feedback_count": stats.Count,
		"average_rating": stats.AverageRating,
	})
}
