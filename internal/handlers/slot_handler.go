package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type SlotHandler struct {
	screeningService services.ScreeningService
}

func NewSlotHandler(screeningService services.ScreeningService) *SlotHandler {
	return &SlotHandler{
		screeningService: screeningService,
	}
}

// HandleAddFiles handles POST /slots/:slot/files
func (h *SlotHandler) HandleAddFiles(c *fiber.Ctx) error {
	slot := models.SlotKind(c.Params("slot"))
	if !slot.Valid() {
		return fiber.NewError(fiber.StatusNotFound, "unknown slot")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}

	// an empty pick or drop leaves the slot untouched
	files := form.File["files"]
	if len(files) > 0 {
		dropped := c.FormValue("source") == "drop"
		h.screeningService.AddFiles(sessionID(c), slot, files, dropped)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleRemoveFile handles POST /slots/:slot/files/:index/delete
func (h *SlotHandler) HandleRemoveFile(c *fiber.Ctx) error {
	slot := models.SlotKind(c.Params("slot"))
	if !slot.Valid() {
		return fiber.NewError(fiber.StatusNotFound, "unknown slot")
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid file index")
	}

	h.screeningService.RemoveFile(sessionID(c), slot, index)

	return c.Redirect("/", fiber.StatusSeeOther)
}
