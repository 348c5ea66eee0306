package main

import (
	"log"
	"os"

	"github.com/alumnihub/alumnihub/pkg/portal/admin"
	"github.com/alumnihub/alumnihub/pkg/portal/albums"
	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/database"
	"github.com/alumnihub/alumnihub/pkg/portal/events"
	"github.com/alumnihub/alumnihub/pkg/portal/groups"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/posts"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title AlumniHub API
// @version 1.0
// @description Alumni community portal with group-scoped content, post moderation, events and photo albums.

// @contact.name AlumniHub Support
// @contact.url https://github.com/alumnihub/alumnihub

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("ALUMNIHUB_DB_PATH")
	if dbPath == "" {
		dbPath = "alumnihub.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		log.Fatalf("Failed to ensure admin user exists: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "alumnihub",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		requireAuth := auth.AuthMiddleware()
		requireAdmin := auth.RequireAdmin()

		// Groups routes (reads for all authenticated users, mutations admin-only)
		groupsHandler := groups.NewHandler(database.GetDB())
		groupsGroup := api.Group("/groups")
		groupsGroup.Use(requireAuth)
		groupsHandler.RegisterRoutes(groupsGroup, requireAdmin)
		groupsHandler.RegisterMemberRoutes(groupsGroup, requireAdmin)

		typesGroup := api.Group("/group-types")
		typesGroup.Use(requireAuth)
		groupsHandler.RegisterTypeRoutes(typesGroup, requireAdmin)

		// Posts, comments and likes (protected)
		postsHandler := posts.NewHandler(database.GetDB())
		postsHandler.RegisterRoutes(api.Group("", requireAuth), requireAdmin)

		// Events (protected)
		eventsHandler := events.NewHandler(database.GetDB())
		eventsHandler.RegisterRoutes(api.Group("", requireAuth), requireAdmin)

		// Albums and media (protected)
		albumsHandler := albums.NewHandler(database.GetDB())
		albumsHandler.RegisterRoutes(api.Group("", requireAuth), requireAdmin)

		// Admin console (JWT, admin role required)
		adminHandler := admin.NewHandler(database.GetDB())
		adminGroup := api.Group("/admin")
		adminGroup.Use(requireAuth, requireAdmin)
		adminHandler.RegisterRoutes(adminGroup)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting AlumniHub server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists creates a default admin user if no admin exists in the
// database. The default admin is pre-approved so it can log in immediately.
func ensureAdminExists() error {
	db := database.GetDB()

	// Check if any admin user exists
	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	// Create default admin user
	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Phone:        "+10000000000",
		Name:         "Admin",
		PasswordHash: hashedPassword,
		Status:       models.UserStatusApproved,
		SystemRole:   models.SystemRoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("Created default admin user: +10000000000 (password: changeme)")
	return nil
}
