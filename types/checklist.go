package types

// ChecklistCategory groups packing list entries.
type ChecklistCategory string

const (
	ChecklistDocuments   ChecklistCategory = "documents"
	ChecklistClothing    ChecklistCategory = "clothing"
	ChecklistToiletries  ChecklistCategory = "toiletries"
	ChecklistElectronics ChecklistCategory = "electronics"
	ChecklistOther       ChecklistCategory = "other"
)

// ChecklistCategories lists the categories in display order.
var ChecklistCategories = []ChecklistCategory{
	ChecklistDocuments,
	ChecklistClothing,
	ChecklistToiletries,
	ChecklistElectronics,
	ChecklistOther,
}

// ParseChecklistCategory returns the matching category, or ChecklistOther.
func ParseChecklistCategory(s string) ChecklistCategory {
	for _, c := range ChecklistCategories {
		if string(c) == s {
			return c
		}
	}
	return ChecklistOther
}

type ChecklistItem struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Checked  bool              `json:"checked"`
	Category ChecklistCategory `json:"category"`
}

type ChecklistCreate struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category"`
}
