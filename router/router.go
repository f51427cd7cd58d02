package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/config"
	"github.com/NomadCrew/nomad-crew-planner/handlers"
	"github.com/NomadCrew/nomad-crew-planner/middleware"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config           *config.Config
	Features         config.FeatureFlags
	TripHandler      *handlers.TripHandler
	ChecklistHandler *handlers.ChecklistHandler
	PlannerHandler   *handlers.PlannerHandler
	HealthHandler    *handlers.HealthHandler
	Logger           *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		deps.Logger.Warnw("Invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.ErrorHandler())

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.Features.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	tripRoutes := v1.Group("/trips")
	{
		tripRoutes.POST("", deps.TripHandler.CreateTripHandler)
		tripRoutes.GET("", deps.TripHandler.ListTripsHandler)
		tripRoutes.GET("/:id", deps.TripHandler.GetTripHandler)
		tripRoutes.PATCH("/:id", deps.TripHandler.UpdateTripHandler)
		tripRoutes.DELETE("/:id", deps.TripHandler.DeleteTripHandler)

		// Itinerary and its projections
		tripRoutes.PUT("/:id/itinerary", deps.TripHandler.UpsertActivityHandler)
		tripRoutes.DELETE("/:id/itinerary/:itemId", deps.TripHandler.RemoveActivityHandler)
		tripRoutes.GET("/:id/timeline", deps.TripHandler.TimelineHandler)
		tripRoutes.GET("/:id/map", deps.TripHandler.MapHandler)
		tripRoutes.GET("/:id/default-start", deps.TripHandler.DefaultStartHandler)
		tripRoutes.GET("/:id/selection", deps.TripHandler.GetSelectionHandler)
		tripRoutes.POST("/:id/selection", deps.TripHandler.SelectionEventHandler)

		checklistRoutes := tripRoutes.Group("/:id/checklist")
		{
			checklistRoutes.GET("", deps.ChecklistHandler.GetChecklistHandler)
			checklistRoutes.POST("", deps.ChecklistHandler.AddChecklistItemHandler)
			checklistRoutes.POST("/suggested", deps.ChecklistHandler.AddSuggestedItemHandler)
			checklistRoutes.PATCH("/:itemId/toggle", deps.ChecklistHandler.ToggleChecklistItemHandler)
			checklistRoutes.DELETE("/:itemId", deps.ChecklistHandler.RemoveChecklistItemHandler)
		}

		// Free-text extraction
		tripRoutes.POST("/:id/extract", deps.PlannerHandler.ExtractHandler)
		tripRoutes.POST("/:id/extract/bookings", deps.PlannerHandler.ExtractBookingsHandler)
		tripRoutes.GET("/:id/extraction", deps.PlannerHandler.ExtractionStateHandler)
		tripRoutes.PUT("/:id/extraction/selection", deps.PlannerHandler.ExtractionSelectionHandler)
		tripRoutes.POST("/:id/extraction/commit", deps.PlannerHandler.CommitExtractionHandler)
		tripRoutes.DELETE("/:id/extraction", deps.PlannerHandler.ClearExtractionHandler)

		// Suggestions
		tripRoutes.POST("/:id/places/search", deps.PlannerHandler.SearchPlacesHandler)
		tripRoutes.GET("/:id/suggestions", deps.PlannerHandler.GetSuggestionsHandler)

		if deps.Features.EnableAISuggestions {
			tripRoutes.POST("/:id/extract/itinerary", deps.PlannerHandler.GenerateItineraryHandler)
			tripRoutes.POST("/:id/suggestions", deps.PlannerHandler.RefreshSuggestionsHandler)
		}
	}

	return r
}
