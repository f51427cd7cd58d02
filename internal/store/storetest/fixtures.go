// Package storetest holds fixtures shared by the TripStore backend tests.
package storetest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

// SampleTrip returns a fully populated trip whose JSON form decodes back to
// an identical value.
func SampleTrip(id string) *types.Trip {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * 24 * time.Hour)
	louvreEnd := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rating := 4.7
	budget, _ := decimal.NewFromString("1500.5")

	return &types.Trip{
		ID:          id,
		Destination: "Paris",
		StartDate:   start,
		EndDate:     end,
		CoverImage:  "https://picsum.photos/seed/Paris/800/600",
		Budget:      &budget,
		Itinerary: []types.ItineraryItem{
			{
				ID:        "louvre",
				Type:      types.ActivityAttraction,
				Title:     "Louvre",
				Location:  "Rue de Rivoli, Paris",
				StartTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
				EndTime:   &louvreEnd,
				Lat:       48.8606,
				Lng:       2.3376,
				Rating:    &rating,
			},
			{
				ID:                 "flight",
				Type:               types.ActivityFlight,
				Title:              "Flight home",
				Location:           "CDG",
				StartTime:          time.Date(2025, 6, 6, 18, 30, 0, 0, time.UTC),
				ConfirmationNumber: "ABC123",
				FlightInfo: &types.FlightInfo{
					DepartureAirport: "CDG",
					ArrivalAirport:   "JFK",
					FlightNumber:     "AF22",
				},
			},
		},
		Suggestions: []types.AISuggestion{
			{
				Title:    "Musée d'Orsay",
				Type:     types.ActivityAttraction,
				Location: "Paris",
				Reason:   "Impressionist collection",
			},
		},
		Checklist: []types.ChecklistItem{
			{ID: "c1", Text: "Passport", Checked: true, Category: types.ChecklistDocuments},
		},
	}
}

// EmptyTrip has empty, non-nil collections.
func EmptyTrip(id string) *types.Trip {
	return &types.Trip{
		ID:          id,
		Destination: "Lisbon",
		StartDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC),
		Itinerary:   []types.ItineraryItem{},
		Suggestions: []types.AISuggestion{},
		Checklist:   []types.ChecklistItem{},
	}
}
