package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medibook-server/internal/ai"
	"medibook-server/internal/config"
	"medibook-server/internal/handlers"
	"medibook-server/internal/mailer"
	"medibook-server/internal/middleware"
	"medibook-server/internal/models"
	"medibook-server/internal/services"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, m *mailer.Mailer,
	appointments *services.AppointmentService, documents *services.DocumentService, aiClient *ai.Client) {

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, m)
	appointmentHandler := handlers.NewAppointmentHandler(appointments)
	profileHandler := handlers.NewProfileHandler(db, cfg, documents)
	communityHandler := handlers.NewCommunityHandler(db)
	aiHandler := handlers.NewAIHandler(aiClient)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.SessionMiddleware(db, cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/me", authHandler.GetMe)
		}

		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", authHandler.GetDoctors)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleUser), appointmentHandler.Create)
			appointmentRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleUser), appointmentHandler.GetMyAppointments)
			appointmentRoutes.GET("/doctor", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.GetDoctorAppointments)
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.UpdateStatus)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.Cancel)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.Reschedule)
		}

		// Health profile routes
		profileRoutes := private.Group("/health-profile")
		{
			profileRoutes.POST("", profileHandler.CreateProfile)
			profileRoutes.PATCH("", profileHandler.UpdateProfile)
			profileRoutes.GET("", profileHandler.GetProfile)
			profileRoutes.GET("/user/:userId", profileHandler.GetUserHistory)

			profileRoutes.POST("/documents", profileHandler.UploadDocuments)
			profileRoutes.PATCH("/documents/:docId/visibility", profileHandler.ToggleDocumentVisibility)
			profileRoutes.DELETE("/documents/:docId", profileHandler.DeleteDocument)
		}

		// Doctor practice profile routes
		doctorRoutes := private.Group("/doctors/profile")
		doctorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
		{
			doctorRoutes.PUT("", profileHandler.UpsertDoctorProfile)
			doctorRoutes.GET("", profileHandler.GetDoctorProfile)
		}

		// Community board routes
		communityRoutes := private.Group("/community")
		{
			communityRoutes.POST("/posts", middleware.RoleAuthMiddleware(models.RoleDoctor), communityHandler.CreatePost)
			communityRoutes.GET("/posts", communityHandler.GetPosts)
		}

		// AI assistance routes
		aiRoutes := private.Group("/ai")
		{
			aiRoutes.POST("/bmi-advice", aiHandler.BMIAdvice)
			aiRoutes.POST("/recipes", aiHandler.RecipeSuggestions)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
