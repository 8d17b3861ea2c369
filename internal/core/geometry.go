package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Length is a physical length in inches.
type Length float64

// String formats the length as a CSS length, e.g. "0.1875in".
// Values are rounded to 1/10000 inch, far below print tolerance.
func (l Length) String() string {
	v := math.Round(float64(l)*1e4) / 1e4
	if v == 0 {
		return "0in"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}

// MarshalText lets lengths serialize as CSS strings in JSON and YAML.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a length written as inches, with or without the
// "in" suffix.
func (l *Length) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(string(text)), "in"), 64)
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", text, err)
	}
	*l = Length(v)
	return nil
}

// Millimeters converts the length to millimeters.
func (l Length) Millimeters() float64 {
	return float64(l) * 25.4
}

// Size is a width and height.
type Size struct {
	Width  Length `json:"width"`
	Height Length `json:"height"`
}

// Edges holds per-side lengths (margins, padding).
type Edges struct {
	Top    Length `json:"top"`
	Right  Length `json:"right"`
	Bottom Length `json:"bottom"`
	Left   Length `json:"left"`
}

// Gutter is the space after each label horizontally and vertically.
type Gutter struct {
	Right  Length `json:"right"`
	Bottom Length `json:"bottom"`
}

// Geometry is the physical layout of a label sheet.
type Geometry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	LabelsPerSheet int    `json:"labelsPerSheet"`
	PageSize       Size   `json:"pageSize"`
	PageMargin     Edges  `json:"pageMargin"`
	LabelSize      Size   `json:"labelSize"`
	LabelPadding   Edges  `json:"labelPadding"`
	LabelMargin    Gutter `json:"labelMargin"`
}

// geometryTolerance is the allowed mismatch between the summed layout and the
// page size: 0.01in is about a quarter millimeter.
const geometryTolerance = 0.01

// ContentWidth is the printable width between the left and right page margins.
func (g Geometry) ContentWidth() Length {
	return g.PageSize.Width - g.PageMargin.Left - g.PageMargin.Right
}

// ContentHeight is the printable height between the top and bottom page margins.
func (g Geometry) ContentHeight() Length {
	return g.PageSize.Height - g.PageMargin.Top - g.PageMargin.Bottom
}

// gridWidth is the width taken by one row of labels and the gutters between them.
func (g Geometry) gridWidth() Length {
	return Length(g.Cols)*g.LabelSize.Width + Length(g.Cols-1)*g.LabelMargin.Right
}

// gridHeight is the height taken by one column of labels and the gutters between them.
func (g Geometry) gridHeight() Length {
	return Length(g.Rows)*g.LabelSize.Height + Length(g.Rows-1)*g.LabelMargin.Bottom
}

// Validate checks that the sheet geometry adds up on both axes.
func (g Geometry) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("geometry: missing id")
	}
	if g.Rows <= 0 || g.Cols <= 0 {
		return fmt.Errorf("geometry %s: rows (%d) and cols (%d) must be positive", g.ID, g.Rows, g.Cols)
	}
	if g.LabelsPerSheet != g.Rows*g.Cols {
		return fmt.Errorf("geometry %s: labelsPerSheet %d != rows*cols %d", g.ID, g.LabelsPerSheet, g.Rows*g.Cols)
	}
	if d := math.Abs(float64(g.gridWidth() - g.ContentWidth())); d > geometryTolerance {
		return fmt.Errorf("geometry %s: horizontal layout %s does not fit content width %s",
			g.ID, g.gridWidth(), g.ContentWidth())
	}
	if d := math.Abs(float64(g.gridHeight() - g.ContentHeight())); d > geometryTolerance {
		return fmt.Errorf("geometry %s: vertical layout %s does not fit content height %s",
			g.ID, g.gridHeight(), g.ContentHeight())
	}
	return nil
}
