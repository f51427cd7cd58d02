package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

func at(id, ts string) types.ItineraryItem {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return types.ItineraryItem{ID: id, Title: id, Location: "Tokyo", StartTime: t}
}

func TestProject_GroupsByLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	items := []types.ItineraryItem{
		at("a", "2025-06-01T10:00:00Z"), // 19:00 Tokyo, June 1
		at("b", "2025-06-01T16:00:00Z"), // 01:00 Tokyo, June 2
		at("c", "2025-06-01T20:00:00Z"), // 05:00 Tokyo, June 2
	}

	utcView := Project(items, selection.State{}, time.UTC)
	require.Len(t, utcView.Days, 1)
	assert.Len(t, utcView.Days[0].Entries, 3)

	view := Project(items, selection.State{}, tokyo)
	require.Len(t, view.Days, 2)
	assert.Equal(t, "2025-06-01", view.Days[0].Date)
	assert.Equal(t, "2025-06-02", view.Days[1].Date)
	require.Len(t, view.Days[1].Entries, 2)
	assert.Equal(t, "b", view.Days[1].Entries[0].Item.ID)
	assert.Equal(t, "c", view.Days[1].Entries[1].Item.ID)
}

func TestProject_FlagsSelection(t *testing.T) {
	items := []types.ItineraryItem{
		at("a", "2025-06-01T10:00:00Z"),
		at("b", "2025-06-01T11:00:00Z"),
	}
	sel := selection.State{ActiveID: "a", HoveredID: "b", ResizeSeq: 3}

	view := Project(items, sel, nil)
	entries := view.Days[0].Entries
	assert.True(t, entries[0].Active)
	assert.False(t, entries[0].Hovered)
	assert.False(t, entries[1].Active)
	assert.True(t, entries[1].Hovered)
	assert.Equal(t, uint64(3), view.ResizeSeq)
}

func TestProject_DisplayImage(t *testing.T) {
	withImage := at("a", "2025-06-01T10:00:00Z")
	withImage.ImageURL = "https://example.com/a.jpg"
	without := at("b", "2025-06-01T11:00:00Z")

	view := Project([]types.ItineraryItem{withImage, without}, selection.State{}, nil)
	assert.Equal(t, "https://example.com/a.jpg", view.Days[0].Entries[0].DisplayImageURL)
	assert.Contains(t, view.Days[0].Entries[1].DisplayImageURL, "https://picsum.photos/seed/b-Tokyo/")
}

func TestProject_Empty(t *testing.T) {
	view := Project(nil, selection.State{}, nil)
	assert.NotNil(t, view.Days)
	assert.Empty(t, view.Days)
}

func TestDefaultStart(t *testing.T) {
	items := []types.ItineraryItem{
		at("a", "2025-06-01T09:00:00Z"),
		at("b", "2025-06-02T08:30:00Z"),
		at("c", "2025-06-02T12:00:00Z"),
	}
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	tests := []struct {
		name     string
		anchor   Anchor
		expected time.Time
	}{
		{
			name:     "after an item adds an hour",
			anchor:   Anchor{AfterID: "a"},
			expected: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "before a day uses its first item",
			anchor:   Anchor{Day: "2025-06-02"},
			expected: time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "unknown item falls back to now",
			anchor:   Anchor{AfterID: "zzz"},
			expected: fixed,
		},
		{
			name:     "unknown day falls back to now",
			anchor:   Anchor{Day: "2025-07-01"},
			expected: fixed,
		},
		{
			name:     "no anchor",
			expected: fixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultStart(items, tt.anchor, time.UTC, now)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestDefaultStartBeforeDay_Empty(t *testing.T) {
	_, ok := DefaultStartBeforeDay(Day{Date: "2025-06-01"})
	assert.False(t, ok)
}
