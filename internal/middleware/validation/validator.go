package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQueryLength    int
	MaxFeedbackLength int
	Logger            *zap.Logger
}

// Middleware rejects malformed chat and feedback payloads before they
// reach the pipeline.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 1000
	}
	if cfg.MaxFeedbackLength == 0 {
		cfg.MaxFeedbackLength = 500
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		path := c.Path()

		if strings.HasSuffix(path, "/chat/query") {
			var req struct {
				Query string `json:"query"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			query := strings.TrimSpace(req.Query)
			if query == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query is required and must be a non-empty string",
				})
			}
			if len(query) > cfg.MaxQueryLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query exceeds maximum length",
				})
			}
			if scriptPattern.MatchString(query) {
				cfg.Logger.Warn("Rejected suspicious query content",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid query content",
				})
			}
		}

		if strings.HasSuffix(path, "/feedback") {
			var req struct {
				QueryID      string `json:"query_id"`
				UserID       string `json:"user_id"`
				Rating       int    `json:"rating"`
				FeedbackText string `json:"feedback_text"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if req.QueryID == "" || len(req.QueryID) > 100 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid query ID",
				})
			}
			if req.UserID == "" || len(req.UserID) > 100 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid user ID",
				})
			}
			if req.Rating < 1 || req.Rating > 5 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Rating must be an integer between 1 and 5",
				})
			}
			if len(req.FeedbackText) > cfg.MaxFeedbackLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Feedback text is too long (max 500 characters)",
				})
			}
		}

		return c.Next()
	}
}
