package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/models/mapview"
	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/models/timeline"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// TripHandler serves trips, their itinerary and the two projections.
type TripHandler struct {
	trips TripService
}

func NewTripHandler(trips TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// SelectionEvent is one user interaction with the timeline or the map.
type SelectionEvent struct {
	// Action is one of activate, clear, enter, leave, map.
	Action  string                `json:"action" binding:"required"`
	ID      string                `json:"id,omitempty"`
	Pointer selection.PointerType `json:"pointer,omitempty"`
	Visible bool                  `json:"visible,omitempty"`
}

// DefaultStartResponse is the suggested start of a new activity.
type DefaultStartResponse struct {
	StartTime time.Time `json:"startTime"`
}

// CreateTripHandler godoc
// @Summary Create a trip
// @Description Days defaults to 1; the cover image is looked up from the destination
// @Tags trips
// @Accept json
// @Produce json
// @Param request body types.TripCreate true "Trip details"
// @Success 201 {object} types.Trip
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips [post]
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	var req types.TripCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Trip created", "tripID", trip.ID, "destination", trip.Destination)
	c.JSON(http.StatusCreated, trip)
}

// ListTripsHandler godoc
// @Summary List trips
// @Tags trips
// @Produce json
// @Success 200 {array} types.Trip
// @Router /trips [get]
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.trips.ListTrips())
}

// GetTripHandler godoc
// @Summary Get a trip
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.Trip
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id} [get]
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, err := h.trips.GetTrip(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateTripHandler godoc
// @Summary Update trip header fields
// @Tags trips
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.TripUpdate true "Fields to change"
// @Success 200 {object} types.Trip
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id} [patch]
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	var upd types.TripUpdate
	if !bindJSONOrError(c, &upd) {
		return
	}
	trip, err := h.trips.UpdateTrip(c.Param("id"), upd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTripHandler godoc
// @Summary Delete a trip
// @Tags trips
// @Param id path string true "Trip ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id} [delete]
func (h *TripHandler) DeleteTripHandler(c *gin.Context) {
	if err := h.trips.DeleteTrip(c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertActivityHandler godoc
// @Summary Add or replace an activity
// @Description An activity with a known id replaces the stored one; the itinerary stays sorted by start time
// @Tags itinerary
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.ActivityInput true "Activity"
// @Success 200 {object} types.ItineraryItem
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/itinerary [put]
func (h *TripHandler) UpsertActivityHandler(c *gin.Context) {
	var in types.ActivityInput
	if !bindJSONOrError(c, &in) {
		return
	}
	item, err := h.trips.UpsertInput(c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveActivityHandler godoc
// @Summary Remove an activity
// @Tags itinerary
// @Param id path string true "Trip ID"
// @Param itemId path string true "Activity ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/itinerary/{itemId} [delete]
func (h *TripHandler) RemoveActivityHandler(c *gin.Context) {
	if err := h.trips.RemoveItem(c.Param("id"), c.Param("itemId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TimelineHandler godoc
// @Summary Itinerary grouped by day
// @Tags views
// @Produce json
// @Param id path string true "Trip ID"
// @Param tz query string false "IANA zone used to group days"
// @Success 200 {object} timeline.View
// @Router /trips/{id}/timeline [get]
func (h *TripHandler) TimelineHandler(c *gin.Context) {
	loc, ok := locationParam(c)
	if !ok {
		return
	}
	view, err := h.trips.Timeline(c.Param("id"), loc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MapHandler godoc
// @Summary Itinerary as map markers and path
// @Tags views
// @Produce json
// @Param id path string true "Trip ID"
// @Param width query number false "Viewport width in pixels"
// @Param height query number false "Viewport height in pixels"
// @Success 200 {object} mapview.View
// @Router /trips/{id}/map [get]
func (h *TripHandler) MapHandler(c *gin.Context) {
	width, ok := floatParam(c, "width")
	if !ok {
		return
	}
	height, ok := floatParam(c, "height")
	if !ok {
		return
	}
	view, err := h.trips.MapView(c.Param("id"), mapview.Viewport{Width: width, Height: height})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DefaultStartHandler godoc
// @Summary Suggested start for a new activity
// @Description One hour after the activity named by after, or one hour before the first activity of day
// @Tags views
// @Produce json
// @Param id path string true "Trip ID"
// @Param after query string false "Activity ID to insert after"
// @Param day query string false "Day key YYYY-MM-DD"
// @Param tz query string false "IANA zone"
// @Success 200 {object} DefaultStartResponse
// @Router /trips/{id}/default-start [get]
func (h *TripHandler) DefaultStartHandler(c *gin.Context) {
	loc, ok := locationParam(c)
	if !ok {
		return
	}
	anchor := timeline.Anchor{AfterID: c.Query("after"), Day: c.Query("day")}
	start, err := h.trips.DefaultStart(c.Param("id"), anchor, loc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, DefaultStartResponse{StartTime: start})
}

// GetSelectionHandler godoc
// @Summary Shared selection state
// @Tags views
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} selection.State
// @Router /trips/{id}/selection [get]
func (h *TripHandler) GetSelectionHandler(c *gin.Context) {
	sel, err := h.trips.Selection(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

// SelectionEventHandler godoc
// @Summary Apply a selection event
// @Description Touch pointers never hover
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body SelectionEvent true "Event"
// @Success 200 {object} selection.State
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips/{id}/selection [post]
func (h *TripHandler) SelectionEventHandler(c *gin.Context) {
	var ev SelectionEvent
	if !bindJSONOrError(c, &ev) {
		return
	}

	var fn func(selection.State) selection.State
	switch ev.Action {
	case "activate":
		fn = func(s selection.State) selection.State { return s.Activate(ev.ID) }
	case "clear":
		fn = selection.State.ClearActive
	case "enter":
		pointer := ev.Pointer
		if pointer == "" {
			pointer = selection.PointerMouse
		}
		fn = func(s selection.State) selection.State { return s.PointerEnter(ev.ID, pointer) }
	case "leave":
		fn = func(s selection.State) selection.State { return s.PointerLeave(ev.ID) }
	case "map":
		fn = func(s selection.State) selection.State { return s.SetMapVisible(ev.Visible) }
	default:
		_ = c.Error(apperrors.ValidationFailed("invalid selection event", "unknown action "+ev.Action))
		return
	}

	sel, err := h.trips.UpdateSelection(c.Param("id"), fn)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sel)
}
