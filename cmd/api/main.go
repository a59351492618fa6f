package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/config"
	"alfredoptarigan/resume-reviewer/internal/handlers"
	"alfredoptarigan/resume-reviewer/internal/logger"
	"alfredoptarigan/resume-reviewer/internal/models"
	"alfredoptarigan/resume-reviewer/internal/repositories"
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
	log.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Audit database is optional
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	var auditRepo repositories.ReviewAuditRepository
	if db != nil {
		auditRepo = repositories.NewReviewAuditRepository(db)
		log.Info("review audit repository initialized")
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		log.Fatal("failed to initialize Gemini AI", zap.Error(err))
	}
	log.Info("gemini initialized", zap.String("model", cfg.Gemini.Model))

	reviewer := services.NewReviewerService(
		geminiService,
		cfg.Gemini.MaxPromptChars,
		services.RetryPolicy{
			MaxAttempts:  cfg.Worker.RetryMaxAttempts,
			InitialDelay: cfg.Worker.RetryInitialDelay,
			MaxDelay:     cfg.Worker.RetryMaxDelay,
		},
		log,
	)
	extractor := services.NewTextExtractor()

	reviewHandler := handlers.NewReviewAPIHandler(
		extractor,
		reviewer,
		auditRepo,
		cfg.Upload.MaxFileSize,
		log,
	)

	// Create Fiber app. The body limit leaves room for the multipart
	// envelope so oversized files reach the handler and get a 413 detail.
	app := fiber.New(fiber.Config{
		AppName:      "Resume Reviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout*time.Duration(max(cfg.Worker.RetryMaxAttempts, 1)) + 30*time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileSize) + 1<<20,
		ErrorHandler: apiErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now(),
			"auditing": auditRepo != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/review-resume/", reviewHandler.HandleReviewResume)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.APIPort)
	log.Info("review API starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// apiErrorHandler keeps every error body in the {"detail": ...} shape the
// frontend reads.
func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := fmt.Sprintf("An internal server error occurred: %v", err)

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		detail = e.Message
	}

	return c.Status(code).JSON(models.ErrorResponse{Detail: detail})
}
