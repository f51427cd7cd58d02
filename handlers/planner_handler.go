package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/services"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// PlannerHandler exposes the extraction and suggestion adapters.
type PlannerHandler struct {
	extraction  ExtractionService
	suggestions SuggestionService
	trips       TripService
}

func NewPlannerHandler(extraction ExtractionService, suggestions SuggestionService, trips TripService) *PlannerHandler {
	return &PlannerHandler{
		extraction:  extraction,
		suggestions: suggestions,
		trips:       trips,
	}
}

// CommitResponse reports the outcome of committing extracted candidates.
type CommitResponse struct {
	Trip    *types.Trip `json:"trip"`
	Added   int         `json:"added"`
	Dropped int         `json:"dropped"`
}

// SuggestionsRequest refreshes the AI suggestion cache.
type SuggestionsRequest struct {
	Interests []string `json:"interests"`
}

// SuggestionsResponse is the cached suggestion list.
type SuggestionsResponse struct {
	Suggestions []types.AISuggestion `json:"suggestions"`
	InFlight    bool                 `json:"inFlight"`
}

// ExtractHandler godoc
// @Summary Extract activities from free text
// @Description Candidates are buffered until committed; all start selected. A response overtaken by a newer request returns 409.
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.ExtractionRequest true "Text"
// @Success 200 {object} types.ExtractionState
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /trips/{id}/extract [post]
func (h *PlannerHandler) ExtractHandler(c *gin.Context) {
	var req types.ExtractionRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	state, err := h.extraction.Extract(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ExtractBookingsHandler godoc
// @Summary Extract activities from booking confirmations
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.BookingParseRequest true "Flight and hotel text"
// @Success 200 {object} types.ExtractionState
// @Router /trips/{id}/extract/bookings [post]
func (h *PlannerHandler) ExtractBookingsHandler(c *gin.Context) {
	var req types.BookingParseRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	state, err := h.extraction.ExtractBookings(c.Request.Context(), c.Param("id"), req.Flight, req.Hotel)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GenerateItineraryHandler godoc
// @Summary Draft an itinerary for the destination
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.ItineraryGenerateRequest true "Days (1-14)"
// @Success 200 {object} types.ExtractionState
// @Router /trips/{id}/extract/itinerary [post]
func (h *PlannerHandler) GenerateItineraryHandler(c *gin.Context) {
	var req types.ItineraryGenerateRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	state, err := h.extraction.GenerateItinerary(c.Request.Context(), c.Param("id"), req.Days)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ExtractionStateHandler godoc
// @Summary Current candidate buffer
// @Tags extraction
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.ExtractionState
// @Router /trips/{id}/extraction [get]
func (h *PlannerHandler) ExtractionStateHandler(c *gin.Context) {
	tripID := c.Param("id")
	if _, err := h.trips.GetTrip(tripID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.extraction.State(tripID))
}

// ExtractionSelectionHandler godoc
// @Summary Choose which candidates to commit
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.SelectionUpdate true "Candidate indices"
// @Success 200 {object} types.ExtractionState
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips/{id}/extraction/selection [put]
func (h *PlannerHandler) ExtractionSelectionHandler(c *gin.Context) {
	var req types.SelectionUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	state, err := h.extraction.SetSelection(c.Param("id"), req.Indices)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CommitExtractionHandler godoc
// @Summary Insert the selected candidates
// @Description Candidates without a resolvable start time are dropped and counted
// @Tags extraction
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} CommitResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips/{id}/extraction/commit [post]
func (h *PlannerHandler) CommitExtractionHandler(c *gin.Context) {
	trip, added, dropped, err := h.extraction.Commit(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, CommitResponse{Trip: trip, Added: added, Dropped: dropped})
}

// ClearExtractionHandler godoc
// @Summary Discard the candidate buffer
// @Tags extraction
// @Param id path string true "Trip ID"
// @Success 204
// @Router /trips/{id}/extraction [delete]
func (h *PlannerHandler) ClearExtractionHandler(c *gin.Context) {
	h.extraction.Clear(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// SearchPlacesHandler godoc
// @Summary Type-scoped place search
// @Description Location defaults to the trip destination. provider=ai uses the generative backend.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param provider query string false "places (default) or ai"
// @Param request body types.PlaceQuery true "Query"
// @Success 200 {array} types.PlaceSuggestion
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /trips/{id}/places/search [post]
func (h *PlannerHandler) SearchPlacesHandler(c *gin.Context) {
	var q types.PlaceQuery
	if !bindJSONOrError(c, &q) {
		return
	}
	provider := services.SuggestionProvider(c.DefaultQuery("provider", string(services.ProviderPlaces)))
	if provider != services.ProviderPlaces && provider != services.ProviderAI {
		_ = c.Error(apperrors.ValidationFailed("invalid provider", "provider must be places or ai"))
		return
	}
	results, err := h.suggestions.SearchPlaces(c.Request.Context(), c.Param("id"), q, provider)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetSuggestionsHandler godoc
// @Summary Cached AI suggestions
// @Tags suggestions
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} SuggestionsResponse
// @Router /trips/{id}/suggestions [get]
func (h *PlannerHandler) GetSuggestionsHandler(c *gin.Context) {
	tripID := c.Param("id")
	trip, err := h.trips.GetTrip(tripID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SuggestionsResponse{
		Suggestions: trip.Suggestions,
		InFlight:    h.suggestions.SuggestionsInFlight(tripID),
	})
}

// RefreshSuggestionsHandler godoc
// @Summary Regenerate AI suggestions
// @Description Replaces the cache wholesale. Malformed model output yields an empty list and keeps the cache.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body SuggestionsRequest false "Interests"
// @Success 200 {object} SuggestionsResponse
// @Router /trips/{id}/suggestions [post]
func (h *PlannerHandler) RefreshSuggestionsHandler(c *gin.Context) {
	var req SuggestionsRequest
	if c.Request.ContentLength != 0 && !bindJSONOrError(c, &req) {
		return
	}
	suggestions, err := h.suggestions.RefreshAISuggestions(c.Request.Context(), c.Param("id"), req.Interests)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}
