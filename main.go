package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"medibook-server/internal/ai"
	"medibook-server/internal/config"
	"medibook-server/internal/mailer"
	"medibook-server/internal/models"
	"medibook-server/internal/repository"
	"medibook-server/internal/routes"
	"medibook-server/internal/services"
	"medibook-server/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database connection
	db, err := models.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	// Staging area for multipart uploads before they reach remote storage
	if err := os.MkdirAll(cfg.UploadTempDir, 0o755); err != nil {
		log.Fatalf("Error creating upload temp dir: %v", err)
	}

	// Outbound collaborators
	m := mailer.New(cfg.Mailer)
	uploader, err := storage.NewS3Uploader(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Error initializing S3 uploader: %v", err)
	}
	aiClient := ai.NewClient(cfg.Gemini)

	// Core services
	appointmentService := services.NewAppointmentService(
		repository.NewAppointmentRepository(db),
		repository.NewUserDirectory(db),
		m,
	)
	documentService := services.NewDocumentService(repository.NewDocumentRepository(db), uploader)

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, m, appointmentService, documentService, aiClient)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Printf("Server running on port %s\n", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
