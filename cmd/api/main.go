package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/handlers"
	"github.com/rocaconstrucciones/backend/internal/middleware"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	authService := services.NewAuthService(db, redisClient, cfg)
	adminService := services.NewAdminService(db, cfg)
	userService := services.NewUserService(db, cfg)
	storageService := services.NewStorageService(cfg)
	mediaService := services.NewMediaService(cfg)
	projectService := services.NewProjectService(db, mediaService)
	galleryService := services.NewGalleryService(db, mediaService)
	botService := services.NewBotService(db, cfg)
	contentService := services.NewContentService(db)

	// Provision the admin account from configuration
	if err := adminService.EnsureAdminUser(); err != nil {
		log.Fatalf("Failed to provision admin user: %v", err)
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	uploadHandler := handlers.NewUploadHandler(storageService, mediaService)
	projectHandler := handlers.NewProjectHandler(projectService)
	galleryHandler := handlers.NewGalleryHandler(galleryService, storageService, mediaService)
	userHandler := handlers.NewUserHandler(userService)
	botHandler := handlers.NewBotHandler(botService)
	publicHandler := handlers.NewPublicHandler(contentService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Processed uploads are served straight from disk
	router.Static("/upload", cfg.UploadDir)

	authGate := middleware.Auth(authService, cfg.SessionCookie)

	api := router.Group("/api")
	{
		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Auth
		auth := api.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(redisClient, "login", cfg.RateLimitRequests, cfg.RateLimitDuration),
				authHandler.Login)
			auth.POST("/logout", authGate, authHandler.Logout)
			auth.GET("/me", authGate, authHandler.Me)
		}

		// Public content
		api.GET("/services", publicHandler.GetServices)
		api.GET("/projects", projectHandler.GetProjects)
		api.GET("/gallery/active", galleryHandler.GetActiveGallery)

		// Chatbot: context is capability-token authorized, chat is the
		// widget's webhook proxy
		api.GET("/bot/context/:token", botHandler.GetContext)
		api.POST("/bot/chat", botHandler.Chat)

		// Uploads (rate limited on top of the session gate)
		upload := api.Group("/upload")
		upload.Use(authGate)
		upload.Use(middleware.RateLimit(redisClient, "upload", cfg.RateLimitRequests, cfg.RateLimitDuration))
		{
			upload.POST("/image", uploadHandler.UploadImage)
			upload.POST("/video", uploadHandler.UploadVideo)
		}

		// Projects (mutations gated)
		projects := api.Group("/projects")
		projects.Use(authGate)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Gallery (everything except /active gated)
		gallery := api.Group("/gallery")
		gallery.Use(authGate)
		{
			gallery.GET("", galleryHandler.GetGallery)
			gallery.POST("", galleryHandler.CreateGalleryImage)
			gallery.PUT("/reorder/batch", galleryHandler.ReorderGallery)
			gallery.PUT("/:id", galleryHandler.UpdateGalleryImage)
			gallery.DELETE("/:id", galleryHandler.DeleteGalleryImage)
		}

		// Users (admin management surface)
		users := api.Group("/users")
		users.Use(authGate)
		users.Use(middleware.AdminOnly())
		{
			users.GET("", userHandler.GetUsers)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.PUT("/:id/password", userHandler.ChangePassword)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Bot config
		bot := api.Group("/bot")
		bot.Use(authGate)
		{
			bot.GET("/config", botHandler.GetConfig)
			bot.PUT("/config", botHandler.UpdateConfig)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // generous for video uploads
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
