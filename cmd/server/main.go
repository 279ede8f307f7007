package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/config"
	"github.com/fieldcheck/checklist-api/internal/constants"
	"github.com/fieldcheck/checklist-api/internal/database"
	"github.com/fieldcheck/checklist-api/internal/handlers"
	"github.com/fieldcheck/checklist-api/internal/middleware"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/services"
	"github.com/fieldcheck/checklist-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize object storage for photo and signature uploads
	store, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	sessionStore, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	// Wire repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo)
	templateService := services.NewTemplateService(templateRepo, orgRepo)
	submissionService := services.NewSubmissionService(submissionRepo, templateRepo, orgRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	uploadHandler := handlers.NewUploadHandler(store)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Checklist API is running",
		})
	})

	// Uploaded files are served straight from the upload directory
	r.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("/join", orgHandler.JoinOrganization)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(), orgHandler.GetOrganization)
			orgs.PUT("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationPermission(permissions.ActionEdit, permissions.ResourceOrganization), orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationPermission(permissions.ActionDelete, permissions.ResourceOrganization), orgHandler.DeleteOrganization)
			orgs.POST("/:id/regenerate-code", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationPermission(permissions.ActionCreate, permissions.ResourceMember), orgHandler.RegenerateInviteCode)
			orgs.PATCH("/:id/members/:user_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationPermission(permissions.ActionEdit, permissions.ResourceMember), orgHandler.UpdateMember)
			orgs.DELETE("/:id/members/:user_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationPermission(permissions.ActionDelete, permissions.ResourceMember), orgHandler.RemoveMember)
		}

		// Template routes (protected)
		templates := api.Group("/templates")
		templates.Use(middleware.RequireAuth())
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("/:id", templateHandler.GetTemplate)
			templates.PUT("/:id", templateHandler.UpdateTemplate)
			templates.DELETE("/:id", templateHandler.DeleteTemplate)
			templates.POST("/:id/sections/swap", templateHandler.SwapSections)
			templates.POST("/:id/fields/swap", templateHandler.SwapFields)
		}

		// Submission routes (protected)
		submissions := api.Group("/submissions")
		submissions.Use(middleware.RequireAuth())
		{
			submissions.GET("", submissionHandler.ListSubmissions)
			submissions.POST("", submissionHandler.CreateSubmission)
			submissions.GET("/:id", submissionHandler.GetSubmission)
			submissions.PATCH("/:id", submissionHandler.UpdateSubmission)
			submissions.DELETE("/:id", submissionHandler.DeleteSubmission)
		}

		// Upload route (protected)
		api.POST("/uploads", middleware.RequireAuth(), uploadHandler.Upload)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
