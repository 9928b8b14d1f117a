package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"erp-assistant-backend/internal/ai"
	"erp-assistant-backend/internal/config"
	"erp-assistant-backend/internal/database"
	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/internal/telemetry"
	"erp-assistant-backend/middleware"
	"erp-assistant-backend/routes"
	"erp-assistant-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("erp-assistant-api", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}

	ctx := context.Background()

	// All online paths run on the read-only pool.
	pool, err := config.ConnectReadOnly(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer pool.Close()

	// Redis backs the answer cache and the task queue. The cache is
	// optional; the server still answers without it.
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, answer cache disabled", "error", err)
		rdb = nil
	}

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer aiClient.Close()

	// Assemble the pipeline.
	schemaCache := services.NewSchemaCache(pool)
	store := database.NewKnowledgeStore(pool)
	runner := database.NewRunner(pool)
	filter := services.NewContaminationFilter(cfg.LocalityTokens)

	router := services.NewIntentRouter(aiClient, cfg.RouterModel)
	docs := services.NewRAGEngine(aiClient, store, aiClient, cfg.ChatModel, cfg.RetrievalLimit, filter)
	data := services.NewSQLEngine(aiClient, schemaCache, runner, cfg.SQLModel, cfg.ChatModel)
	assistant := services.NewAssistant(router, docs, data, rdb, cfg.AnswerCacheTTL)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.TracingMiddleware())
	engine.Use(middleware.RequestIDMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)

	routes.SetupAskRoutes(engine, assistant)
	routes.SetupAdminRoutes(engine, authMiddleware.RequireAdmin(), queueClient)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
