package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

func TestAdd(t *testing.T) {
	items, entry, err := Add(nil, "  Passport  ", "documents")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Passport", entry.Text)
	assert.Equal(t, types.ChecklistDocuments, entry.Category)
	assert.False(t, entry.Checked)
	assert.NotEmpty(t, entry.ID)

	_, entry, err = Add(items, "Kite", "hobbies")
	require.NoError(t, err)
	assert.Equal(t, types.ChecklistOther, entry.Category)
}

func TestAdd_RejectsEmptyText(t *testing.T) {
	items, _, err := Add(nil, "   ", "other")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ValidationError))
	assert.Empty(t, items)
}

func TestAddSuggested_DedupesCaseInsensitively(t *testing.T) {
	items, _, err := Add(nil, "passport", "documents")
	require.NoError(t, err)

	out, added, err := AddSuggested(items, "Passport", types.ChecklistDocuments)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, out, 1)

	out, added, err = AddSuggested(out, "Visa documents", types.ChecklistDocuments)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, out, 2)
}

func TestToggleAndRemove(t *testing.T) {
	items, entry, err := Add(nil, "Socks", "clothing")
	require.NoError(t, err)

	items, err = Toggle(items, entry.ID)
	require.NoError(t, err)
	assert.True(t, items[0].Checked)

	items, err = Toggle(items, entry.ID)
	require.NoError(t, err)
	assert.False(t, items[0].Checked)

	_, err = Toggle(items, "missing")
	assert.True(t, errors.IsType(err, errors.NotFoundError))

	items, err = Remove(items, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = Remove(items, entry.ID)
	assert.True(t, errors.IsType(err, errors.NotFoundError))
}

func TestSummarize(t *testing.T) {
	items := []types.ChecklistItem{
		{ID: "1", Text: "Passport", Category: types.ChecklistDocuments, Checked: true},
		{ID: "2", Text: "socks", Category: types.ChecklistClothing},
		{ID: "3", Text: "Camera", Category: types.ChecklistElectronics, Checked: true},
	}

	s := Summarize(items)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Checked)
	assert.Equal(t, 67, s.Progress)

	require.Len(t, s.Groups, len(types.ChecklistCategories))
	docs := s.Groups[0]
	assert.Equal(t, types.ChecklistDocuments, docs.Category)
	assert.Len(t, docs.Items, 1)
	assert.Equal(t, 1, docs.Checked)
	assert.NotContains(t, docs.Suggested, "Passport")
	assert.Contains(t, docs.Suggested, "Travel insurance")

	clothing := s.Groups[1]
	assert.NotContains(t, clothing.Suggested, "Socks")
	assert.Len(t, clothing.Suggested, len(SuggestedItems[types.ChecklistClothing])-1)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, 0, s.Total)
	for _, g := range s.Groups {
		assert.Empty(t, g.Items)
		assert.NotEmpty(t, g.Suggested)
	}
}
