package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/config"
	"alfredoptarigan/resume-reviewer/internal/handlers"
	"alfredoptarigan/resume-reviewer/internal/logger"
	"alfredoptarigan/resume-reviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()
	if err := cfg.EnvFileError(); err != nil {
		log.Info("no .env file found, using environment and defaults", zap.Error(err))
	}
	log.Info("config loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("review_endpoint", cfg.ReviewEndpoint()),
	)

	client := services.NewReviewClient(cfg.ReviewEndpoint(), cfg.Web.RequestTimeout)

	shell := services.NewShell(client, services.ShellOptions{
		RequestTimeout: cfg.Web.RequestTimeout,
		SessionTTL:     cfg.Web.SessionTTL,
		Concurrency:    cfg.Worker.Concurrency,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shell.Start(ctx)
	log.Info("review dispatcher started", zap.Int("concurrency", cfg.Worker.Concurrency))

	webHandler := handlers.NewWebHandler(shell, cfg.Web.RefreshInterval, log)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Reviewer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// Routes
	app.Get("/", webHandler.HandleIndex)
	app.Post("/review", webHandler.HandleSubmit)
	app.Post("/review/cancel", webHandler.HandleCancel)
	app.Post("/review/reset", webHandler.HandleReset)
	app.Get("/api/session", webHandler.HandleSessionState)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		shell.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.WebPort)
	log.Info("web frontend starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
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
