package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/NomadCrew/nomad-crew-planner/config"
	"github.com/NomadCrew/nomad-crew-planner/handlers"
	"github.com/NomadCrew/nomad-crew-planner/internal/gemini"
	"github.com/NomadCrew/nomad-crew-planner/internal/places"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/backend"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/models/trip"
	"github.com/NomadCrew/nomad-crew-planner/pkg/pexels"
	"github.com/NomadCrew/nomad-crew-planner/router"
	"github.com/NomadCrew/nomad-crew-planner/services"
)

// @title Nomad Crew Planner API
// @version 1.0
// @description Trip itineraries, free-text extraction, place suggestions and packing lists.
// @BasePath /v1
func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	features := config.GetFeatureFlags()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc := time.UTC
	if cfg.Server.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Server.Timezone)
		if err != nil {
			log.Fatalf("Invalid timezone %q: %v", cfg.Server.Timezone, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	tripStore, err := backend.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open trip store: %v", err)
	}

	writer := services.NewPersistenceWriter(tripStore, cfg.Persistence)
	writer.Start()

	metrics := services.NewAdapterMetrics()

	var imageSearcher services.ImageSearcher
	if features.EnableCoverLookup {
		imageSearcher = pexels.NewClient(cfg.ExternalServices.PexelsAPIKey)
	}
	covers := services.NewCoverImageService(imageSearcher, metrics)

	tripModel := trip.NewTripModel(writer, covers, trip.WithLocation(loc))
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = tripModel.Load(ctx, tripStore)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load trips: %v", err)
	}

	placesClient := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithTimeout(time.Duration(cfg.Places.TimeoutSeconds)*time.Second),
		places.WithLanguageCode(cfg.Places.LanguageCode),
		places.WithPhotoMaxWidth(cfg.Places.PhotoMaxWidth),
	)
	geminiClient := gemini.NewClient(cfg.Gemini.APIKey,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second),
		gemini.WithSearchTool(cfg.Gemini.UseSearchTool),
	)

	tracker := services.NewRequestTracker()
	extractionService := services.NewExtractionService(geminiClient, tripModel, tracker, metrics)
	suggestionService := services.NewSuggestionService(placesClient, geminiClient, tripModel, tracker, metrics,
		services.SuggestionOptions{
			MaxResults:      cfg.Places.MaxResults,
			PhotoMaxWidth:   cfg.Places.PhotoMaxWidth,
			SuggestionCount: cfg.Gemini.SuggestionCount,
		})

	healthService := services.NewHealthService(cfg.Server.Version)
	healthService.Register("store", services.PingCheck("store", tripStore))
	healthService.Register("persistence", services.QueueCheck(writer.QueueDepth, cfg.Persistence.QueueSize))
	healthService.Register("places", services.ConfiguredCheck(placesClient.Enabled))
	healthService.Register("gemini", services.ConfiguredCheck(geminiClient.Enabled))
	if features.EnableCoverLookup {
		healthService.Register("pexels", services.ConfiguredCheck(imageSearcher.Enabled))
	}

	r := router.SetupRouter(router.Dependencies{
		Config:           cfg,
		Features:         features,
		TripHandler:      handlers.NewTripHandler(tripModel),
		ChecklistHandler: handlers.NewChecklistHandler(tripModel),
		PlannerHandler:   handlers.NewPlannerHandler(extractionService, suggestionService, tripModel),
		HealthHandler:    handlers.NewHealthHandler(healthService),
		Logger:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Persistence.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := writer.Shutdown(ctx); err != nil {
		log.Errorw("Pending trip writes abandoned", "error", err)
	}
	if err := tripStore.Close(); err != nil {
		log.Errorw("Failed to close trip store", "error", err)
	}
	log.Info("Server exited")
}
