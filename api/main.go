package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devonochie/academia-ai/api/config"
	"github.com/devonochie/academia-ai/api/db"
	"github.com/devonochie/academia-ai/api/handlers"
	"github.com/devonochie/academia-ai/api/middleware"
	"github.com/devonochie/academia-ai/api/services"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	log.Info().Str("db_path", cfg.DBPath).Msg("Database initialized")

	// Create Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimiter(cfg.RateLimitMax))

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientOrigin, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize handlers
	var aiProvider services.AIProvider
	if cfg.ModelProvider == "openai" {
		aiProvider = services.NewAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		aiProvider = services.NewAIProvider("groq", cfg.GroqAPIKey, cfg.GroqModel)
	}
	h := handlers.New(database, cfg, aiProvider)

	// Health check
	router.GET("/api/health", h.Health)

	api := router.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.POST("/auth/forgot-password", h.ForgotPassword)
		api.POST("/auth/reset-password/:token", h.ResetPassword)
		api.POST("/auth/refresh-token", h.RefreshToken)
	}

	authed := router.Group("/api")
	authed.Use(middleware.Auth(database, cfg.JWTSecret))
	{
		authed.GET("/auth/me", h.Me)

		// Curriculum routes
		authed.POST("/curricula/generate", h.GenerateCurriculum)
		authed.GET("/curricula", h.GetCurricula)
		authed.GET("/curricula/:curriculumId", h.GetCurriculum)
		authed.PUT("/curricula/:curriculumId", h.UpdateCurriculum)

		// Lesson routes
		authed.POST("/curricula/:curriculumId/modules/:moduleId/lessons/:lessonId/generate-content", h.GenerateLessonContent)
		authed.POST("/curricula/:curriculumId/modules/:moduleId/lessons/:lessonId/assessment", h.SubmitLessonAssessment)
		authed.GET("/curricula/:curriculumId/lessons/:lessonId/content", h.GetLessonContent)

		// Assessment routes
		authed.POST("/assessments/generate", h.GenerateAssessment)
		authed.GET("/assessments/:assessmentId", h.GetAssessment)
		authed.POST("/assessments/:assessmentId/submit", h.SubmitAssessment)

		// Progress routes
		authed.POST("/progress", h.UpdateProgress)
		authed.GET("/progress", h.GetUserProgress)

		// Recommendation routes
		authed.POST("/recommendations", h.GenerateRecommendations)
		authed.GET("/recommendations", h.GetUserRecommendations)

		// Paraphraser routes
		authed.POST("/paraphrase", h.ParaphraseContent)
		authed.POST("/paraphrase/batch", h.BatchParaphrase)
		authed.POST("/paraphrase/document", h.ParaphraseDocument)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown endpoint"})
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().
		Str("port", cfg.Port).
		Str("model_provider", cfg.ModelProvider).
		Msg("Starting Academia AI server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
