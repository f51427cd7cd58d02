package handlers

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-crew-planner/models/checklist"
	"github.com/NomadCrew/nomad-crew-planner/models/mapview"
	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/models/timeline"
	"github.com/NomadCrew/nomad-crew-planner/services"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// TripService is the trip model as seen by the HTTP layer.
type TripService interface {
	CreateTrip(ctx context.Context, req types.TripCreate) (*types.Trip, error)
	GetTrip(tripID string) (*types.Trip, error)
	ListTrips() []*types.Trip
	UpdateTrip(tripID string, upd types.TripUpdate) (*types.Trip, error)
	DeleteTrip(tripID string) error

	UpsertInput(tripID string, in types.ActivityInput) (types.ItineraryItem, error)
	RemoveItem(tripID, itemID string) error

	AddChecklistItem(tripID string, req types.ChecklistCreate) (types.ChecklistItem, error)
	AddSuggestedChecklistItem(tripID, text string, category types.ChecklistCategory) (bool, error)
	ToggleChecklistItem(tripID, itemID string) error
	RemoveChecklistItem(tripID, itemID string) error
	ChecklistSummary(tripID string) (checklist.Summary, error)

	Selection(tripID string) (selection.State, error)
	UpdateSelection(tripID string, fn func(selection.State) selection.State) (selection.State, error)
	Timeline(tripID string, loc *time.Location) (timeline.View, error)
	MapView(tripID string, vp mapview.Viewport) (mapview.View, error)
	DefaultStart(tripID string, anchor timeline.Anchor, loc *time.Location) (time.Time, error)
}

// ExtractionService turns free text into candidate activities.
type ExtractionService interface {
	Extract(ctx context.Context, tripID, text string) (types.ExtractionState, error)
	ExtractBookings(ctx context.Context, tripID, flight, hotel string) (types.ExtractionState, error)
	GenerateItinerary(ctx context.Context, tripID string, days int) (types.ExtractionState, error)
	State(tripID string) types.ExtractionState
	SetSelection(tripID string, indices []int) (types.ExtractionState, error)
	Commit(tripID string) (*types.Trip, int, int, error)
	Clear(tripID string)
}

// SuggestionService searches places and refreshes AI suggestions.
type SuggestionService interface {
	SearchPlaces(ctx context.Context, tripID string, q types.PlaceQuery, provider services.SuggestionProvider) ([]types.PlaceSuggestion, error)
	RefreshAISuggestions(ctx context.Context, tripID string, interests []string) ([]types.AISuggestion, error)
	SuggestionsInFlight(tripID string) bool
}
