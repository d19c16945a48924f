package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

type SlotView struct {
	Kind        models.SlotKind
	Title       string
	Description string
	Multiple    bool
	Capacity    int
	Files       []models.FileHandle
}

type PageData struct {
	services.PageSnapshot
	Slots []SlotView
}

type PageHandler struct {
	screeningService services.ScreeningService
	tmpl             *template.Template
}

func NewPageHandler(screeningService services.ScreeningService) (*PageHandler, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"sizeMB": func(f models.FileHandle) string {
			return fmt.Sprintf("%.2f MB", f.SizeMB())
		},
		"plural": func(n int) string {
			if n == 1 {
				return ""
			}
			return "s"
		},
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &PageHandler{
		screeningService: screeningService,
		tmpl:             tmpl,
	}, nil
}

// HandlePage handles GET /
func (h *PageHandler) HandlePage(c *fiber.Ctx) error {
	snap := h.screeningService.Snapshot(sessionID(c))

	data := PageData{
		PageSnapshot: snap,
		Slots: []SlotView{
			{
				Kind:        models.SlotJobDescription,
				Title:       "Job Description",
				Description: "Upload the job description PDF to define requirements",
				Capacity:    services.JobDescriptionCapacity,
				Files:       snap.JobDescription,
			},
			{
				Kind:        models.SlotResumes,
				Title:       "Resume Collection",
				Description: "Upload candidate resumes for AI screening",
				Multiple:    true,
				Capacity:    snap.ResumeCapacity,
				Files:       snap.Resumes,
			},
		},
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
