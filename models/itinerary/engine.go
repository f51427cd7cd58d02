// Package itinerary keeps a trip's activity list in chronological order.
// Every operation returns a fresh slice and never modifies its input.
package itinerary

import (
	"sort"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// Validate reports whether item can enter an itinerary.
func Validate(item types.ItineraryItem) error {
	if item.StartTime.IsZero() {
		return errors.ValidationFailed(
			"invalid activity",
			"start time is missing or could not be resolved",
		)
	}
	return nil
}

// Upsert replaces the entry with the same id in place, or appends a new one,
// then re-sorts. The stored form of item is returned alongside the list.
// An invalid item leaves items untouched.
func Upsert(items []types.ItineraryItem, item types.ItineraryItem) ([]types.ItineraryItem, types.ItineraryItem, error) {
	if err := Validate(item); err != nil {
		return items, types.ItineraryItem{}, err
	}
	item = Normalize(item)

	out := clone(items, 1)
	replaced := false
	for i := range out {
		if out[i].ID == item.ID {
			out[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		out = append(out, item)
	}
	Sort(out)
	return out, item, nil
}

// BulkInsert appends every valid item and sorts once. Invalid items are
// dropped and counted; they do not fail the batch.
func BulkInsert(items []types.ItineraryItem, batch []types.ItineraryItem) ([]types.ItineraryItem, int) {
	out := clone(items, len(batch))
	dropped := 0
	for _, item := range batch {
		if Validate(item) != nil {
			dropped++
			continue
		}
		out = append(out, Normalize(item))
	}
	Sort(out)
	return out, dropped
}

// Remove filters out the entry with the given id. Order of the rest is kept.
func Remove(items []types.ItineraryItem, id string) ([]types.ItineraryItem, bool) {
	out := make([]types.ItineraryItem, 0, len(items))
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

// Find returns the entry with the given id.
func Find(items []types.ItineraryItem, id string) (types.ItineraryItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return types.ItineraryItem{}, false
}

// Sort orders items by start time. Equal start times keep their relative
// order.
func Sort(items []types.ItineraryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime.Before(items[j].StartTime)
	})
}

// IsSorted reports whether items are in non-decreasing start time order.
func IsSorted(items []types.ItineraryItem) bool {
	for i := 1; i < len(items); i++ {
		if items[i].StartTime.Before(items[i-1].StartTime) {
			return false
		}
	}
	return true
}

func clone(items []types.ItineraryItem, extra int) []types.ItineraryItem {
	out := make([]types.ItineraryItem, len(items), len(items)+extra)
	copy(out, items)
	return out
}
