package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"yawlit/config"
	"yawlit/database"
	"yawlit/database/repository"
	"yawlit/handlers"
	"yawlit/middleware"
	"yawlit/routes"
	"yawlit/services/conversation"
	ai "yawlit/services/intelligence"
	"yawlit/services/response"
	"yawlit/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitContextCache()

	// Artifact store: MongoDB in production, JSON file dumps by default.
	var requestRepo repository.ServiceRequestRepository
	switch config.AppConfig.ArtifactStore {
	case "mongo":
		database.InitDB()
		requestRepo = repository.NewMongoServiceRequestRepo()
	default:
		var err error
		requestRepo, err = repository.NewFileServiceRequestRepo(config.AppConfig.DatadumpDir)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize file artifact store: %v", err)
		}
	}

	// Conversation engine.
	settings := conversation.SettingsFromConfig(config.AppConfig)

	ctxStore := conversation.NewRedisContextStore(
		utils.GetContextCacheClient(),
		time.Duration(config.AppConfig.ContextTTLMinutes)*time.Minute,
	)
	manager := conversation.NewManager(ctxStore)

	var extractor conversation.Extractor
	if config.AppConfig.GeminiAPIKey != "" {
		var err error
		extractor, err = ai.NewGeminiExtractor(context.Background(),
			config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini extractor: %v", err)
		}
	} else {
		logger.Sugar().Warn("main: no GEMINI_API_KEY set, running on pattern extraction only")
	}

	coordinator := conversation.NewExtractionCoordinator(extractor, settings)
	workflow := conversation.NewConfirmationWorkflow(settings, requestRepo)
	orchestrator := conversation.NewOrchestrator(settings, manager, coordinator,
		workflow, response.NewScriptedComposer())

	chatHandler := handlers.NewChatHandler(orchestrator, requestRepo)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, chatHandler)

	utils.StartHealthMonitor([]*redis.Client{utils.GetContextCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
