// Package timeline groups an itinerary by local calendar day.
package timeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NomadCrew/nomad-crew-planner/models/itinerary"
	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const dayLayout = "2006-01-02"

// DefaultGap is how far after an anchor item a new activity starts.
const DefaultGap = time.Hour

type Entry struct {
	Item            types.ItineraryItem `json:"item"`
	Active          bool                `json:"active"`
	Hovered         bool                `json:"hovered"`
	DisplayImageURL string              `json:"displayImageUrl"`
}

type Day struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

type View struct {
	Days      []Day  `json:"days"`
	ActiveID  string `json:"activeId"`
	HoveredID string `json:"hoveredId"`
	ResizeSeq uint64 `json:"resizeSeq"`
	// DailyBudget is the trip budget split per planned day, set by the
	// trip model when the trip has a budget.
	DailyBudget []decimal.Decimal `json:"dailyBudget,omitempty"`
}

// Project builds the grouped view. Items keep their input order inside a
// day; days are ascending.
func Project(items []types.ItineraryItem, sel selection.State, loc *time.Location) View {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[string]int)
	days := make([]Day, 0)
	for _, item := range items {
		key := DayKey(item.StartTime, loc)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, Day{Date: key})
		}
		days[i].Entries = append(days[i].Entries, Entry{
			Item:            item,
			Active:          sel.IsActive(item.ID),
			Hovered:         sel.IsHovered(item.ID),
			DisplayImageURL: itinerary.DisplayImageURL(item.Title, item.Location, item.ImageURL),
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return View{
		Days:      days,
		ActiveID:  sel.ActiveID,
		HoveredID: sel.HoveredID,
		ResizeSeq: sel.ResizeSeq,
	}
}

// DayKey is the local calendar date of t.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// DefaultStartAfter is the suggested start for an activity added after item.
func DefaultStartAfter(item types.ItineraryItem) time.Time {
	return item.StartTime.Add(DefaultGap)
}

// DefaultStartBeforeDay is the suggested start for an activity added at the
// top of day. ok is false for an empty day.
func DefaultStartBeforeDay(day Day) (time.Time, bool) {
	if len(day.Entries) == 0 {
		return time.Time{}, false
	}
	return day.Entries[0].Item.StartTime, true
}

// Anchor says where a new activity is being inserted. Both fields empty
// means no anchor.
type Anchor struct {
	AfterID string
	Day     string
}

// DefaultStart resolves the suggested start time for a new activity. It
// falls back to now when the anchor matches nothing.
func DefaultStart(items []types.ItineraryItem, anchor Anchor, loc *time.Location, now func() time.Time) time.Time {
	if anchor.AfterID != "" {
		if item, ok := itinerary.Find(items, anchor.AfterID); ok {
			return DefaultStartAfter(item)
		}
	}
	if anchor.Day != "" {
		for _, day := range Project(items, selection.State{}, loc).Days {
			if day.Date == anchor.Day {
				if t, ok := DefaultStartBeforeDay(day); ok {
					return t
				}
			}
		}
	}
	if now == nil {
		now = time.Now
	}
	return now().UTC()
}
