package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/ingestion"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/internal/retrieval"
	"github.com/docuassist/backend/pkg/logger"
)

type DocumentHandler struct {
	processor *ingestion.Processor
	retriever *retrieval.Client
}

func NewDocumentHandler(processor *ingestion.Processor, retriever *retrieval.Client) *DocumentHandler {
	return &DocumentHandler{
		processor: processor,
		retriever: retriever,
	}
}

type uploadRequest struct {
	Documents []rag.Document `json:"documents"`
}

func (h *DocumentHandler) UploadDocuments(c *fiber.Ctx) error {
	if h.processor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Document indexing unavailable in demo mode",
		})
	}

	var req uploadRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse upload body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Documents) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No documents provided",
		})
	}

	count, err := h.processor.IndexDocuments(c.Context(), req.Documents)
	if err != nil {
		logger.Error("Document indexing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"documents_indexed": count,
		"message":           fmt.Sprintf("Successfully indexed %d documents", count),
	})
}

func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	if h.processor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Document indexing unavailable in demo mode",
		})
	}

	docID := c.Params("id")
	if docID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Document ID is required",
		})
	}

	if !h.processor.DeleteDocument(c.Context(), docID) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete document",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Document %s deleted", docID),
	})
}

func (h *DocumentHandler) GetStoreHealth(c *fiber.Ctx) error {
	if h.retriever == nil {
		return c.JSON(fiber.Map{
			"status": "unavailable",
			"mode":   rag.ModeDemo,
		})
	}

	return c.JSON(h.retriever.Health(c.Context()))
}
