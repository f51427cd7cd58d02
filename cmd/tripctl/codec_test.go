package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

func sampleTrips() []*types.Trip {
	budget := decimal.RequireFromString("1250.50")
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []*types.Trip{{
		ID:          "t1",
		Destination: "Kyoto, Japan",
		StartDate:   start,
		EndDate:     start.Add(72 * time.Hour),
		Budget:      &budget,
		Itinerary: []types.ItineraryItem{{
			ID:        "a1",
			Type:      types.ActivityAttraction,
			Title:     "Fushimi Inari",
			Location:  "Fushimi",
			StartTime: start.Add(9 * time.Hour),
			Lat:       34.9671,
			Lng:       135.7727,
		}},
		Suggestions: []types.AISuggestion{},
		Checklist:   []types.ChecklistItem{{ID: "c1", Text: "Passport", Category: types.ChecklistDocuments}},
	}}
}

func TestEncodeDecodeTrips(t *testing.T) {
	for _, f := range []format{formatJSON, formatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := encodeTrips(sampleTrips(), f)
			require.NoError(t, err)

			trips, detected, err := decodeTrips(data)
			require.NoError(t, err)
			assert.Equal(t, f, detected)
			require.Len(t, trips, 1)

			got := trips[0]
			assert.Equal(t, "Kyoto, Japan", got.Destination)
			assert.True(t, got.StartDate.Equal(sampleTrips()[0].StartDate))
			require.NotNil(t, got.Budget)
			assert.True(t, got.Budget.Equal(decimal.RequireFromString("1250.50")))
			require.Len(t, got.Itinerary, 1)
			assert.Equal(t, "Fushimi Inari", got.Itinerary[0].Title)
			assert.Equal(t, types.ChecklistDocuments, got.Checklist[0].Category)
		})
	}
}

func TestDecodeTrips_Invalid(t *testing.T) {
	_, _, err := decodeTrips([]byte("destination: [unclosed"))
	assert.Error(t, err)

	_, _, err = decodeTrips([]byte(`{"id": "not a list"}`))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, formatYAML, f)

	_, err = parseFormat("csv")
	assert.Error(t, err)
}
