package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const (
	PlaceholderTitle    = "Activity"
	PlaceholderLocation = "Location"
)

// Layouts carrying an explicit offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// Layouts read in the caller's location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ResolveTime parses a user or model supplied timestamp. Values without an
// offset are read in loc (UTC when nil). The result is always UTC.
func ResolveTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// FromInput converts the string-typed wire shape into an item. An
// unresolvable start time leaves StartTime zero so the engine rejects it; an
// unresolvable end time is dropped.
func FromInput(in types.ActivityInput, loc *time.Location) types.ItineraryItem {
	item := types.ItineraryItem{
		ID:                 in.ID,
		Type:               types.ParseActivityType(in.Type),
		Title:              in.Title,
		Location:           in.Location,
		Description:        in.Description,
		ImageURL:           in.ImageURL,
		Rating:             in.Rating,
		PriceRange:         in.PriceRange,
		GoogleMapsURL:      in.GoogleMapsURL,
		ConfirmationNumber: in.ConfirmationNumber,
		FlightInfo:         in.FlightInfo,
	}
	if in.Lat != nil {
		item.Lat = *in.Lat
	}
	if in.Lng != nil {
		item.Lng = *in.Lng
	}
	if start, err := ResolveTime(in.StartTime, loc); err == nil {
		item.StartTime = start
	}
	if in.EndTime != "" {
		if end, err := ResolveTime(in.EndTime, loc); err == nil {
			item.EndTime = &end
		}
	}
	return item
}

// Normalize fills placeholders and repairs fields the engine can fix on its
// own. It does not touch StartTime.
func Normalize(item types.ItineraryItem) types.ItineraryItem {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		item.Title = PlaceholderTitle
	}
	item.Location = strings.TrimSpace(item.Location)
	if item.Location == "" {
		item.Location = PlaceholderLocation
	}
	item.Type = types.ParseActivityType(string(item.Type))
	if !item.StartTime.IsZero() {
		item.StartTime = item.StartTime.UTC()
	}
	if item.EndTime != nil {
		end := item.EndTime.UTC()
		item.EndTime = &end
		if !item.StartTime.IsZero() && end.Before(item.StartTime) {
			logger.GetLogger().Warnw("Dropping end time earlier than start time",
				"itemId", item.ID,
				"startTime", item.StartTime,
				"endTime", end,
			)
			item.EndTime = nil
		}
	}
	return item
}
