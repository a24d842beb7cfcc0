// Package app assembles the service from its parts
package app

import (
	"context"

	"github.com/gofiber/fiber/v2"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glrv/reviewd/internal/api/v1/handlers"
	"github.com/glrv/reviewd/internal/api/v1/middleware"
	"github.com/glrv/reviewd/internal/api/v1/routes"
	"github.com/glrv/reviewd/internal/config"
	"github.com/glrv/reviewd/internal/db"
	"github.com/glrv/reviewd/internal/db/repos"
	"github.com/glrv/reviewd/internal/gitlab"
	"github.com/glrv/reviewd/internal/llm"
	"github.com/glrv/reviewd/internal/services"
)

// App is the assembled service: the HTTP surface plus the background worker
// pool it feeds.
type App struct {
	cfg   *config.Config
	fiber *fiber.App
	pool  *services.Pool
}

// New builds the full service from configuration
func New(cfg *config.Config) (*App, error) {
	gdb, err := db.New(db.Options{
		Host:       cfg.DBHost,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		Port:       cfg.DBPort,
		SSLEnabled: cfg.DBSSLMode,
		LogLevel:   gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}

	reviewRepo := repos.NewReviewRepository(gdb)
	repoRepo := repos.NewRepositoryRepository(gdb)
	notificationRepo := repos.NewNotificationRepository(gdb)
	webhookLogRepo := repos.NewWebhookLogRepository(gdb)
	userRepo := repos.NewUserRepository(gdb)

	gl, err := gitlab.NewClient(cfg.GitlabURL, cfg.GitlabRootToken)
	if err != nil {
		return nil, err
	}

	toolbox := llm.NewRepositoryToolbox(gl)
	orchestrator := llm.NewOrchestrator(
		llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey),
		cfg.OpenAIModel,
		cfg.OpenAIMaxTurns,
		toolbox,
	)

	pool := services.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, cfg.WorkerSubmitTimeout)
	dispatcher := services.NewDispatcher(
		services.NewEmailChannel(cfg, notificationRepo),
		services.NewWebhookChannel(notificationRepo),
	)

	reviewService := services.NewReviewService(reviewRepo, repoRepo, orchestrator, dispatcher, pool)
	ingestor := services.NewIngestor(cfg.GitlabWebhookToken, webhookLogRepo, gl, reviewService)
	notificationService := services.NewNotificationService(notificationRepo)

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	h := handlers.NewHandler(ingestor, reviewService, notificationService)
	routes.Register(fiberApp, h, middleware.NewAuth(userRepo))

	return &App{cfg: cfg, fiber: fiberApp, pool: pool}, nil
}

// Listen serves HTTP until Shutdown is called or the listener fails
func (a *App) Listen() error {
	return a.fiber.Listen(a.cfg.ListenAddr)
}

// Shutdown stops the HTTP listener and drains the worker pool
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.fiber.ShutdownWithContext(ctx); err != nil {
		return err
	}
	return a.pool.Shutdown(ctx)
}
