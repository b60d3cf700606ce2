package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vetclinic-server/internal/config"
	"vetclinic-server/internal/handlers"
	"vetclinic-server/internal/middleware"
	"vetclinic-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	mascotaHandler := handlers.NewMascotaHandler(db)
	citaHandler := handlers.NewCitaHandler(db)
	statsHandler := handlers.NewStatsHandler(db, rdb)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Pet routes: owner-scoped, plus an admin listing with owner identity
		mascotaRoutes := private.Group("/mascotas")
		{
			mascotaRoutes.GET("", mascotaHandler.GetMascotas)
			mascotaRoutes.POST("", mascotaHandler.CreateMascota)
			mascotaRoutes.GET("/admin/all", middleware.RoleAuthMiddleware(models.RolAdmin), mascotaHandler.GetAllMascotas)
			mascotaRoutes.GET("/:id", mascotaHandler.GetMascotaByID)
			mascotaRoutes.PUT("/:id", mascotaHandler.UpdateMascota)
			mascotaRoutes.DELETE("/:id", mascotaHandler.DeleteMascota)
		}

		// Appointment routes
		citaRoutes := private.Group("/citas")
		{
			citaRoutes.GET("", citaHandler.GetCitas)
			citaRoutes.POST("", citaHandler.CreateCita)
			citaRoutes.GET("/admin/all", middleware.RoleAuthMiddleware(models.RolAdmin), citaHandler.GetAllCitas)
			citaRoutes.GET("/:id", citaHandler.GetCitaByID)      // owner/admin check in handler
			citaRoutes.PUT("/:id", citaHandler.UpdateCita)       // client vs admin rules in handler
			citaRoutes.POST("/:id/cancel", citaHandler.CancelCita)
			citaRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RolAdmin), citaHandler.DeleteCita)
		}

		// User management routes (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RolAdmin))
		{
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Admin dashboard stats
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RolAdmin))
		{
			adminRoutes.GET("/stats", statsHandler.GetStats)
		}
	}

	// Simple health check endpoint
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "Backend up"})
	})
}
