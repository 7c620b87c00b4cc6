package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/config"
	"github.com/estately/estately/internal/database"
	"github.com/estately/estately/internal/handlers"
	"github.com/estately/estately/internal/middleware"

	_ "github.com/estately/estately/docs/api" // Swagger docs
)

// @title Estately API
// @version 1.0.0
// @description Listing and chat data service
// @contact.name API Support
// @contact.url https://github.com/estately/estately

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("estately")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Auth: authManager, CookieExpiry: cfg.JWTExpiry}
	postHandler := &handlers.PostHandler{DB: db, Auth: authManager}
	chatHandler := &handlers.ChatHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	requireAuth := middleware.RequireAuth(authManager)

	// Health
	api.Get("/health", healthHandler.Health)

	// Auth routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	// Post routes (public reads, owner-scoped writes)
	api.Get("/posts", postHandler.ListPosts)
	api.Get("/posts/:id", postHandler.GetPost)
	api.Post("/posts", requireAuth, postHandler.CreatePost)
	api.Put("/posts/:id", requireAuth, postHandler.UpdatePost)
	api.Delete("/posts/:id", requireAuth, postHandler.DeletePost)
	api.Post("/posts/:id/save", requireAuth, postHandler.SavePost)

	// Chat routes (participants only)
	api.Get("/chats", requireAuth, chatHandler.ListChats)
	api.Post("/chats", requireAuth, chatHandler.CreateChat)
	api.Get("/chats/:id", requireAuth, chatHandler.GetChat)
	api.Put("/chats/:id/read", requireAuth, chatHandler.ReadChat)
	api.Post("/chats/:id/messages", requireAuth, chatHandler.AddMessage)

	// Admin routes
	api.Delete("/admin/users/:userId", requireAuth, adminHandler.DeleteUser)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
