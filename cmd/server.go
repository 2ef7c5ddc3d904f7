package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account/accountapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/admin/adminapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application/applicationapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match/matchapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting/postingapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/ranking/rankingapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumeapi"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

func main() {
	_ = godotenv.Load()

	logx.SetLevel(logx.LevelInfo)
	logx.Info("Starting SkilSync API Server...")

	container := NewContainer()
	defer container.DB.Close()
	defer container.Redis.Close()

	app := fiber.New(fiber.Config{
		AppName:               "SkilSync Matching API",
		DisableStartupMessage: true,
		BodyLimit:             15 << 20, // resume and posting uploads
		ErrorHandler:          globalErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Configure for production
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"db":     container.DB.Ping() == nil,
			"redis":  container.Redis.Ping(c.Context()).Err() == nil,
		})
	})

	// Role middlewares
	authenticated := auth.Middleware(container.TokenService)
	studentOnly := auth.Middleware(container.TokenService, auth.RoleStudent)
	companyOnly := auth.Middleware(container.TokenService, auth.RoleCompany)
	adminOnly := auth.Middleware(container.TokenService, auth.RoleAdmin)

	// Routes
	accountapi.RegisterRoutes(app, container.AccountHandlers, authenticated)
	resumeapi.RegisterRoutes(app, container.ResumeHandlers, studentOnly)
	postingapi.RegisterRoutes(app, container.PostingHandlers, authenticated, companyOnly)
	matchapi.RegisterRoutes(app, container.MatchHandlers, studentOnly)
	applicationapi.RegisterRoutes(app, container.ApplicationHandlers, studentOnly, companyOnly)
	rankingapi.RegisterRoutes(app, container.RankingHandlers, companyOnly)
	adminapi.RegisterRoutes(app, container.AdminHandlers, adminOnly)

	// Background recompute worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	container.Worker.Start(workerCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	logx.Info("Shutting down server...")

	stopWorker()
	container.Worker.Wait()

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}

	if e, ok := err.(*errx.Error); ok {
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
