package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type RouterConfig struct {
	BodyLimit  int
	SessionTTL time.Duration
	AccessLog  bool
}

// NewApp builds the fiber app with every route. runRepo may be nil when history is off.
func NewApp(
	screeningService services.ScreeningService,
	runRepo repositories.RunRepository,
	cfg RouterConfig,
) (*fiber.App, error) {
	pageHandler, err := NewPageHandler(screeningService)
	if err != nil {
		return nil, err
	}
	slotHandler := NewSlotHandler(screeningService)
	screeningHandler := NewScreeningHandler(screeningService)

	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Screener",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	api := app.Group("/api/v1")
	api.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	if runRepo != nil {
		api.Get("/runs", NewRunHandler(runRepo).HandleListRuns)
	}

	app.Use(SessionMiddleware(cfg.SessionTTL))

	api.Get("/screening", screeningHandler.HandleGetScreening)

	app.Get("/", pageHandler.HandlePage)
	app.Post("/slots/:slot/files", slotHandler.HandleAddFiles)
	app.Post("/slots/:slot/files/:index/delete", slotHandler.HandleRemoveFile)
	app.Post("/submit", screeningHandler.HandleSubmit)
	app.Post("/reset", screeningHandler.HandleReset)

	return app, nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
