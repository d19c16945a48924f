package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/services"
)

type ScreeningHandler struct {
	screeningService services.ScreeningService
}

func NewScreeningHandler(screeningService services.ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{
		screeningService: screeningService,
	}
}

// HandleSubmit handles POST /submit. Validation and dispatch failures surface as
// notices on the next render, so the browser is always sent back to the page.
func (h *ScreeningHandler) HandleSubmit(c *fiber.Ctx) error {
	err := h.screeningService.Submit(sessionID(c))
	switch {
	case err == nil,
		errors.Is(err, services.ErrMissingFiles),
		errors.Is(err, services.ErrSubmissionInFlight):
	default:
		return fiber.NewError(fiber.StatusServiceUnavailable, "screening is temporarily unavailable")
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleReset handles POST /reset
func (h *ScreeningHandler) HandleReset(c *fiber.Ctx) error {
	h.screeningService.Reset(sessionID(c))
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleGetScreening handles GET /api/v1/screening
func (h *ScreeningHandler) HandleGetScreening(c *fiber.Ctx) error {
	return c.JSON(h.screeningService.Snapshot(sessionID(c)))
}
