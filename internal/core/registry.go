package core

import (
	"fmt"
	"sort"
)

// DefaultFormatID is the format selected when none is given.
const DefaultFormatID = "5160"

var registry = make(map[string]Geometry)

func init() {
	register(Geometry{
		ID:             "5160",
		Name:           "Avery 5160",
		Description:    "1\" × 2⅝\" - Address Labels",
		Rows:           10,
		Cols:           3,
		LabelsPerSheet: 30,
		PageSize:       Size{Width: 8.5, Height: 11},
		PageMargin:     Edges{Top: 0.5, Right: 0.1875, Bottom: 0.5, Left: 0.1875},
		LabelSize:      Size{Width: 2.625, Height: 1},
		LabelPadding:   Edges{Top: 0.125, Right: 0.3, Bottom: 0, Left: 0.3},
		LabelMargin:    Gutter{Right: 0.125, Bottom: 0},
	})
	register(Geometry{
		ID:             "5163",
		Name:           "Avery 5163",
		Description:    "2\" × 4\" - Shipping Labels",
		Rows:           5,
		Cols:           2,
		LabelsPerSheet: 10,
		PageSize:       Size{Width: 8.5, Height: 11},
		PageMargin:     Edges{Top: 0.5, Right: 0.15625, Bottom: 0.5, Left: 0.15625},
		LabelSize:      Size{Width: 4, Height: 2},
		LabelPadding:   Edges{Top: 0.15, Right: 0.15, Bottom: 0.15, Left: 0.15},
		LabelMargin:    Gutter{Right: 0.1875, Bottom: 0},
	})
	register(Geometry{
		ID:             "5164",
		Name:           "Avery 5164",
		Description:    "3⅓\" × 4\" - Shipping Labels",
		Rows:           3,
		Cols:           2,
		LabelsPerSheet: 6,
		PageSize:       Size{Width: 8.5, Height: 11},
		PageMargin:     Edges{Top: 0.5, Right: 0.15625, Bottom: 0.5, Left: 0.15625},
		LabelSize:      Size{Width: 4, Height: 3.3333},
		LabelPadding:   Edges{Top: 0.2, Right: 0.2, Bottom: 0.2, Left: 0.2},
		LabelMargin:    Gutter{Right: 0.1875, Bottom: 0},
	})
	register(Geometry{
		ID:             "5167",
		Name:           "Avery 5167",
		Description:    "½\" × 1¾\" - Return Address Labels",
		Rows:           20,
		Cols:           4,
		LabelsPerSheet: 80,
		PageSize:       Size{Width: 8.5, Height: 11},
		PageMargin:     Edges{Top: 0.5, Right: 0.3, Bottom: 0.5, Left: 0.3},
		LabelSize:      Size{Width: 1.75, Height: 0.5},
		LabelPadding:   Edges{Top: 0.05, Right: 0.1, Bottom: 0.05, Left: 0.1},
		LabelMargin:    Gutter{Right: 0.3, Bottom: 0},
	})
}

// register adds a geometry to the registry at init time.
// Panics on a duplicate id or a geometry that does not add up to its page.
func register(g Geometry) {
	if _, exists := registry[g.ID]; exists {
		panic(fmt.Sprintf("label format already registered: %s", g.ID))
	}
	if err := g.Validate(); err != nil {
		panic(err)
	}
	registry[g.ID] = g
}

// Lookup returns the geometry for a format id.
// Returns false if not found.
func Lookup(id string) (Geometry, bool) {
	g, ok := registry[id]
	return g, ok
}

// Formats returns all registered geometries sorted by id.
func Formats() []Geometry {
	result := make([]Geometry, 0, len(registry))
	for _, g := range registry {
		result = append(result, g)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// FormatIDs returns the registered format ids, sorted.
func FormatIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
