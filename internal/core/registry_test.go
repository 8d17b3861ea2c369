package core

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestRegistryGeometryAddsUp(t *testing.T) {
	for _, g := range Formats() {
		t.Run(g.ID, func(t *testing.T) {
			if g.LabelsPerSheet != g.Rows*g.Cols {
				t.Errorf("LabelsPerSheet = %d, want %d", g.LabelsPerSheet, g.Rows*g.Cols)
			}

			width := g.PageMargin.Left + Length(g.Cols)*g.LabelSize.Width +
				Length(g.Cols-1)*g.LabelMargin.Right + g.PageMargin.Right
			if d := math.Abs(float64(width - g.PageSize.Width)); d > geometryTolerance {
				t.Errorf("width adds up to %s, page is %s", width, g.PageSize.Width)
			}

			height := g.PageMargin.Top + Length(g.Rows)*g.LabelSize.Height +
				Length(g.Rows-1)*g.LabelMargin.Bottom + g.PageMargin.Bottom
			if d := math.Abs(float64(height - g.PageSize.Height)); d > geometryTolerance {
				t.Errorf("height adds up to %s, page is %s", height, g.PageSize.Height)
			}

			if err := g.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	tests := []struct {
		id       string
		wantOK   bool
		wantRows int
		wantCols int
	}{
		{"5160", true, 10, 3},
		{"5163", true, 5, 2},
		{"5164", true, 3, 2},
		{"5167", true, 20, 4},
		{"9999", false, 0, 0},
		{"", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g, ok := Lookup(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if g.Rows != tt.wantRows || g.Cols != tt.wantCols {
				t.Errorf("Lookup(%q) grid = %dx%d, want %dx%d", tt.id, g.Rows, g.Cols, tt.wantRows, tt.wantCols)
			}
		})
	}
}

func TestFormatIDsSorted(t *testing.T) {
	want := []string{"5160", "5163", "5164", "5167"}
	if got := FormatIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatIDs() = %v, want %v", got, want)
	}
	if _, ok := Lookup(DefaultFormatID); !ok {
		t.Errorf("default format %s is not registered", DefaultFormatID)
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("register() did not panic on duplicate id")
		}
	}()
	g, _ := Lookup("5160")
	register(g)
}

func TestGeometryValidate(t *testing.T) {
	base, _ := Lookup("5160")

	tests := []struct {
		name    string
		mutate  func(*Geometry)
		wantErr string
	}{
		{"valid", func(*Geometry) {}, ""},
		{"missing id", func(g *Geometry) { g.ID = "" }, "missing id"},
		{"labels per sheet mismatch", func(g *Geometry) { g.LabelsPerSheet = 31 }, "labelsPerSheet"},
		{"width does not fit", func(g *Geometry) { g.LabelMargin.Right = 0.2 }, "horizontal"},
		{"height does not fit", func(g *Geometry) { g.PageMargin.Bottom = 0.25 }, "vertical"},
		{"zero cols", func(g *Geometry) { g.Cols = 0 }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base
			tt.mutate(&g)
			err := g.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLengthString(t *testing.T) {
	tests := []struct {
		in   Length
		want string
	}{
		{0, "0in"},
		{8.5, "8.5in"},
		{0.1875, "0.1875in"},
		{3.33333333, "3.3333in"},
		{1, "1in"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Length(%v).String() = %q, want %q", float64(tt.in), got, tt.want)
		}
	}
}

func TestLengthUnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{"8.5in", 8.5, false},
		{" 0.1875in ", 0.1875, false},
		{"2", 2, false},
		{"0in", 0, false},
		{"wide", 0, true},
	}

	for _, tt := range tests {
		var l Length
		err := l.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if l != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, float64(l), float64(tt.want))
		}
	}
}
