// Package checklist manages a trip's packing list.
package checklist

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const maxTextLength = 255

// SuggestedItems are the quick-add entries offered per category.
var SuggestedItems = map[types.ChecklistCategory][]string{
	types.ChecklistDocuments:   {"Passport", "Travel insurance", "Flight tickets", "Hotel confirmation", "ID card", "Visa documents"},
	types.ChecklistClothing:    {"T-shirts", "Pants/shorts", "Underwear", "Socks", "Jacket", "Comfortable shoes", "Sleepwear", "Swimsuit"},
	types.ChecklistToiletries:  {"Toothbrush", "Toothpaste", "Shampoo", "Sunscreen", "Deodorant", "Medications", "First aid kit"},
	types.ChecklistElectronics: {"Phone charger", "Power bank", "Camera", "Headphones", "Travel adapter", "Laptop"},
	types.ChecklistOther:       {"Cash/cards", "Snacks", "Water bottle", "Travel pillow", "Umbrella", "Sunglasses", "Books/entertainment"},
}

// Add appends a new unchecked entry. Unknown categories become "other".
func Add(items []types.ChecklistItem, text string, category string) ([]types.ChecklistItem, types.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return items, types.ChecklistItem{}, errors.ValidationFailed("invalid checklist item", "text is required")
	}
	if len(text) > maxTextLength {
		return items, types.ChecklistItem{}, errors.ValidationFailed("invalid checklist item", "text exceeds 255 characters")
	}

	entry := types.ChecklistItem{
		ID:       uuid.NewString(),
		Text:     text,
		Category: types.ParseChecklistCategory(category),
	}
	out := make([]types.ChecklistItem, len(items), len(items)+1)
	copy(out, items)
	return append(out, entry), entry, nil
}

// AddSuggested adds a suggested entry unless one with the same text exists.
// added is false for the no-op case.
func AddSuggested(items []types.ChecklistItem, text string, category types.ChecklistCategory) ([]types.ChecklistItem, bool, error) {
	if Contains(items, text) {
		return items, false, nil
	}
	out, _, err := Add(items, text, string(category))
	if err != nil {
		return items, false, err
	}
	return out, true, nil
}

// Toggle flips the checked flag of id.
func Toggle(items []types.ChecklistItem, id string) ([]types.ChecklistItem, error) {
	out := make([]types.ChecklistItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == id {
			out[i].Checked = !out[i].Checked
			return out, nil
		}
	}
	return items, errors.NotFound("Checklist item", id)
}

// Remove deletes id.
func Remove(items []types.ChecklistItem, id string) ([]types.ChecklistItem, error) {
	out := make([]types.ChecklistItem, 0, len(items))
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		return items, errors.NotFound("Checklist item", id)
	}
	return out, nil
}

// Contains matches text case-insensitively.
func Contains(items []types.ChecklistItem, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	for _, item := range items {
		if strings.ToLower(item.Text) == needle {
			return true
		}
	}
	return false
}

type Group struct {
	Category  types.ChecklistCategory `json:"category"`
	Items     []types.ChecklistItem   `json:"items"`
	Suggested []string                `json:"suggested"`
	Checked   int                     `json:"checked"`
}

type Summary struct {
	Groups   []Group `json:"groups"`
	Checked  int     `json:"checked"`
	Total    int     `json:"total"`
	Progress int     `json:"progress"`
}

// Summarize groups entries by category in display order and lists the
// suggestions not yet on the list.
func Summarize(items []types.ChecklistItem) Summary {
	s := Summary{Groups: make([]Group, 0, len(types.ChecklistCategories)), Total: len(items)}
	for _, cat := range types.ChecklistCategories {
		g := Group{Category: cat, Items: []types.ChecklistItem{}, Suggested: []string{}}
		for _, item := range items {
			if item.Category != cat {
				continue
			}
			g.Items = append(g.Items, item)
			if item.Checked {
				g.Checked++
			}
		}
		for _, text := range SuggestedItems[cat] {
			if !Contains(items, text) {
				g.Suggested = append(g.Suggested, text)
			}
		}
		s.Checked += g.Checked
		s.Groups = append(s.Groups, g)
	}
	if s.Total > 0 {
		s.Progress = int(math.Round(float64(s.Checked) / float64(s.Total) * 100))
	}
	return s
}
