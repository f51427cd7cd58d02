package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

type ChecklistHandler struct {
	trips TripService
}

func NewChecklistHandler(trips TripService) *ChecklistHandler {
	return &ChecklistHandler{trips: trips}
}

// SuggestedItemRequest adds one of the built-in suggestions.
type SuggestedItemRequest struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// SuggestedItemResponse reports whether the suggestion was new.
type SuggestedItemResponse struct {
	Added bool `json:"added"`
}

// GetChecklistHandler godoc
// @Summary Checklist grouped by category with progress
// @Tags checklist
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} checklist.Summary
// @Router /trips/{id}/checklist [get]
func (h *ChecklistHandler) GetChecklistHandler(c *gin.Context) {
	summary, err := h.trips.ChecklistSummary(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddChecklistItemHandler godoc
// @Summary Add a checklist entry
// @Tags checklist
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.ChecklistCreate true "Entry"
// @Success 201 {object} types.ChecklistItem
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips/{id}/checklist [post]
func (h *ChecklistHandler) AddChecklistItemHandler(c *gin.Context) {
	var req types.ChecklistCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	item, err := h.trips.AddChecklistItem(c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// AddSuggestedItemHandler godoc
// @Summary Add a suggested checklist entry
// @Description Entries already on the list, compared case-insensitively, are not added twice
// @Tags checklist
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body SuggestedItemRequest true "Suggestion"
// @Success 200 {object} SuggestedItemResponse
// @Router /trips/{id}/checklist/suggested [post]
func (h *ChecklistHandler) AddSuggestedItemHandler(c *gin.Context) {
	var req SuggestedItemRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	added, err := h.trips.AddSuggestedChecklistItem(c.Param("id"), req.Text, types.ParseChecklistCategory(req.Category))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SuggestedItemResponse{Added: added})
}

// ToggleChecklistItemHandler godoc
// @Summary Flip the checked flag of an entry
// @Tags checklist
// @Param id path string true "Trip ID"
// @Param itemId path string true "Entry ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/checklist/{itemId}/toggle [patch]
func (h *ChecklistHandler) ToggleChecklistItemHandler(c *gin.Context) {
	if err := h.trips.ToggleChecklistItem(c.Param("id"), c.Param("itemId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveChecklistItemHandler godoc
// @Summary Remove a checklist entry
// @Tags checklist
// @Param id path string true "Trip ID"
// @Param itemId path string true "Entry ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/checklist/{itemId} [delete]
func (h *ChecklistHandler) RemoveChecklistItemHandler(c *gin.Context) {
	if err := h.trips.RemoveChecklistItem(c.Param("id"), c.Param("itemId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
