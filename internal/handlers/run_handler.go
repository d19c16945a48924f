package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/repositories"
)

type RunHandler struct {
	runRepo repositories.RunRepository
}

func NewRunHandler(runRepo repositories.RunRepository) *RunHandler {
	return &RunHandler{
		runRepo: runRepo,
	}
}

// HandleListRuns handles GET /api/v1/runs
func (h *RunHandler) HandleListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	runs, err := h.runRepo.FindRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screening history",
		})
	}

	return c.JSON(fiber.Map{
		"runs": runs,
	})
}
