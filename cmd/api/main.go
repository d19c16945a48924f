package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg := config.Load()
	if cfg.Server.Env != "development" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Msg("✅ Config loaded successfully")

	// History is optional; without it nothing is persisted
	var runRepo repositories.RunRepository
	if cfg.History.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to initialize database")
		}
		runRepo = repositories.NewRunRepository(db)
		log.Info().Msg("✅ Screening history enabled")
	}

	// Initialize services
	storageService := services.NewStorageService(
		cfg.Storage.UploadPath,
		cfg.Storage.MaxFileSize,
		services.NewPDFInspector(),
	)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create upload directory")
	}

	screeningClient := services.NewScreeningClient(cfg.ScreeningEndpoint(), cfg.Screening.Timeout)

	screeningService := services.NewScreeningService(
		screeningClient,
		storageService,
		runRepo,
		services.ScreeningServiceConfig{
			ResumeCapacity:    cfg.Screening.ResumeCapacity,
			Timeout:           cfg.Screening.Timeout,
			SessionTTL:        cfg.Session.TTL,
			CleanupInterval:   cfg.Session.CleanupInterval,
			WorkerConcurrency: cfg.Worker.Concurrency,
			WorkerQueueSize:   cfg.Worker.QueueSize,
		},
	)
	log.Info().Str("endpoint", cfg.ScreeningEndpoint()).Msg("✅ Services initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	screeningService.Start(ctx)

	// Resumes plus one job description per request
	bodyLimit := int(cfg.Storage.MaxFileSize) * (cfg.Screening.ResumeCapacity + 1)

	app, err := handlers.NewApp(screeningService, runRepo, handlers.RouterConfig{
		BodyLimit:  bodyLimit,
		SessionTTL: cfg.Session.TTL,
		AccessLog:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to build HTTP app")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("🛑 Shutting down server...")
		cancel()
		screeningService.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("❌ Server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("🚀 Server starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start server")
	}
}
