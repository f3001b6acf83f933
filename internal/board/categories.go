package board

import "github.com/mark3labs/taskdeck/internal/api"

// Uncategorized is shown for tasks with no category or a dangling one.
const Uncategorized = "Uncategorized"

// Color is a category colour token.
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
)

// Colors lists the known tokens.
var Colors = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorPink, ColorGray}

// ParseColor returns the token, or gray when s is not a known token.
func ParseColor(s string) Color {
	for _, c := range Colors {
		if string(c) == s {
			return c
		}
	}
	return ColorGray
}

// CategoryIndex resolves category ids for display.
type CategoryIndex struct {
	byID  map[int64]api.Category
	order []api.Category
}

// NewCategoryIndex builds an index over cats.
func NewCategoryIndex(cats []api.Category) CategoryIndex {
	idx := CategoryIndex{byID: make(map[int64]api.Category, len(cats)), order: cats}
	for _, c := range cats {
		idx.byID[c.ID] = c
	}
	return idx
}

// Lookup returns the category a task points to, if it exists.
func (idx CategoryIndex) Lookup(id *int64) (api.Category, bool) {
	if id == nil {
		return api.Category{}, false
	}
	c, ok := idx.byID[*id]
	return c, ok
}

// Name returns the display name, falling back to Uncategorized.
func (idx CategoryIndex) Name(id *int64) string {
	if c, ok := idx.Lookup(id); ok {
		return c.Name
	}
	return Uncategorized
}

// Color returns the display colour, falling back to gray.
func (idx CategoryIndex) Color(id *int64) Color {
	if c, ok := idx.Lookup(id); ok {
		return ParseColor(c.Color)
	}
	return ColorGray
}

// All returns the categories in server order.
func (idx CategoryIndex) All() []api.Category {
	return idx.order
}

// NextFilter cycles the selector through all, then each category in order.
func (idx CategoryIndex) NextFilter(current *int64) *int64 {
	if len(idx.order) == 0 {
		return nil
	}
	if current == nil {
		id := idx.order[0].ID
		return &id
	}
	for i, c := range idx.order {
		if c.ID == *current {
			if i+1 < len(idx.order) {
				id := idx.order[i+1].ID
				return &id
			}
			return nil
		}
	}
	return nil
}
