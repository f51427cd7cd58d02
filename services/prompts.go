package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/nomad-crew-planner/internal/gemini"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const promptDateLayout = "Monday 2 January 2006"

func candidateSchema(required ...string) *gemini.Schema {
	return gemini.ArrayOf(gemini.Object(map[string]*gemini.Schema{
		"title":              gemini.String(),
		"type":               {Type: gemini.TypeString, Enum: activityTypeNames()},
		"location":           gemini.String(),
		"startTime":          {Type: gemini.TypeString, Description: "local time as YYYY-MM-DDTHH:MM"},
		"endTime":            {Type: gemini.TypeString, Description: "local time as YYYY-MM-DDTHH:MM"},
		"description":        gemini.String(),
		"lat":                gemini.Number(),
		"lng":                gemini.Number(),
		"imageUrl":           gemini.String(),
		"confirmationNumber": gemini.String(),
		"flightInfo": gemini.Object(map[string]*gemini.Schema{
			"departureAirport": gemini.String(),
			"arrivalAirport":   gemini.String(),
			"flightNumber":     gemini.String(),
		}),
	}, required...))
}

var aiSuggestionSchema = gemini.ArrayOf(gemini.Object(map[string]*gemini.Schema{
	"title":         gemini.String(),
	"description":   gemini.String(),
	"type":          {Type: gemini.TypeString, Enum: activityTypeNames()},
	"location":      gemini.String(),
	"rating":        gemini.Number(),
	"googleMapsUrl": gemini.String(),
	"priceRange":    {Type: gemini.TypeString, Enum: []string{"$", "$$", "$$$", "$$$$"}},
	"estimatedCost": gemini.String(),
	"reason":        gemini.String(),
}, "title", "description", "type", "location", "rating", "googleMapsUrl", "priceRange", "reason"))

var placeSuggestionSchema = gemini.ArrayOf(gemini.Object(map[string]*gemini.Schema{
	"title":         gemini.String(),
	"location":      gemini.String(),
	"description":   gemini.String(),
	"lat":           gemini.Number(),
	"lng":           gemini.Number(),
	"rating":        gemini.Number(),
	"priceRange":    {Type: gemini.TypeString, Enum: []string{"$", "$$", "$$$", "$$$$"}},
	"googleMapsUrl": gemini.String(),
}, "title", "location", "lat", "lng", "googleMapsUrl", "rating", "priceRange"))

func activityTypeNames() []string {
	return []string{
		string(types.ActivityFlight),
		string(types.ActivityHotel),
		string(types.ActivityRestaurant),
		string(types.ActivityAttraction),
		string(types.ActivityTransport),
		string(types.ActivityOther),
	}
}

func tripWindow(trip *types.Trip, loc *time.Location) string {
	return fmt.Sprintf("The trip to %s runs from %s to %s.",
		trip.Destination,
		trip.StartDate.In(loc).Format(promptDateLayout),
		trip.EndDate.In(loc).Format(promptDateLayout))
}

func extractionPrompt(text string, trip *types.Trip, loc *time.Location) string {
	return fmt.Sprintf(`Extract ALL travel activities, meals, tours and transfers from this text: %q.
%s

Rules:
1. Extract dates and times accurately. If only a time is mentioned, pick a reasonable day within the trip.
2. Categorize each as flight, hotel, restaurant, attraction, transport or other.
3. Use search to find approximate locations (city area or address) and coordinates for named places.
4. Write times as local times in the format YYYY-MM-DDTHH:MM.

Return a JSON array of activity objects.`, text, tripWindow(trip, loc))
}

func bookingPrompt(flight, hotel string, trip *types.Trip, loc *time.Location) string {
	if flight == "" {
		flight = "None"
	}
	if hotel == "" {
		hotel = "None"
	}
	return fmt.Sprintf(`Extract structured travel events from the following booking text provided by a user.
Identify any flights or hotel stays.
%s

Flight info provided: %s
Hotel info provided: %s

For flights, identify the departure and arrival airports and the flight number.
Include the booking confirmation number when present.
Write times as local times in the format YYYY-MM-DDTHH:MM.`, tripWindow(trip, loc), flight, hotel)
}

func itineraryPrompt(trip *types.Trip, days int, loc *time.Location) string {
	start := trip.StartDate.In(loc).Format("2006-01-02")
	return fmt.Sprintf(`Generate a %d-day travel itinerary for %s starting on %s.
Plan three to five activities per day with realistic times.
Output a JSON array of activities with title, type, location, startTime (YYYY-MM-DDTHH:MM), lat and lng.`,
		days, trip.Destination, start)
}

func aiSuggestionsPrompt(destination string, interests []string, count int) string {
	about := "sightseeing, food and local culture"
	if len(interests) > 0 {
		about = strings.Join(interests, ", ")
	}
	return fmt.Sprintf(`Suggest %d high-quality, real-world attractions or hidden gems in %s for someone interested in %s.

Data:
- 'priceRange' ($, $$, $$$, $$$$).
- Include rating and Google Maps URL.
- 'reason' explains why it fits the interests.`, count, destination, about)
}

func typeSuggestionsPrompt(q types.PlaceQuery, max int) string {
	return fmt.Sprintf(`Using search, find exactly %d high-quality, REAL-WORLD %ss currently operating in %s that match: %q.

Data:
- 'priceRange' ($, $$, $$$, $$$$).
- Average rating, address, lat/lng and Google Maps URL.

Return the results in a JSON array.`, max, q.ActivityType, q.Location, q.Query)
}
