package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRenderEscapesText(t *testing.T) {
	labels := []Label{{SourceRow: 0, Lines: []string{"<script>alert(1)</script>", "Tom & Jerry \"Inc\""}}}

	doc, err := Render(labels, "5160")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if strings.Contains(doc, "<script>") {
		t.Error("rendered document contains a live <script> tag")
	}
	if !strings.Contains(doc, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("escaped script text missing from document")
	}
	if !strings.Contains(doc, "Tom &amp; Jerry &#34;Inc&#34;") {
		t.Errorf("ampersand and quotes not escaped:\n%s", doc)
	}
	if got := strings.Count(doc, `<div class="label">`); got != 1 {
		t.Errorf("label count = %d, want 1", got)
	}
}

func TestRenderGeometry(t *testing.T) {
	doc, err := Render([]Label{{Lines: []string{"Ada"}}}, "5160")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	wants := []string{
		"size: 8.5in 11in;",
		"margin: 0.5in 0.1875in 0.5in 0.1875in;",
		"width: 8.125in;",
		"width: 2.625in;",
		"height: 1in;",
		"padding: 0.125in 0.3in 0in 0.3in;",
		"margin-right: 0.125in;",
		".label:nth-child(3n)",
		`data-format="5160"`,
		`data-labels-per-sheet="30"`,
		"<title>Labels - Avery 5160</title>",
	}
	for _, want := range wants {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	if strings.Contains(doc, "http://") || strings.Contains(doc, "https://") || strings.Contains(doc, "<link") {
		t.Error("document references an external resource")
	}
}

func TestRenderLabelCountMatchesSheets(t *testing.T) {
	rows := make([]Record, 0, 40)
	for i := 0; i < 40; i++ {
		name := "Person"
		if i%4 == 0 {
			name = ""
		}
		rows = append(rows, Record{"Name": name})
	}
	labels := Layout(rows, Mapping{FieldName: "Name"})
	g, _ := Lookup("5160")

	doc, err := Render(labels, g.ID)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	boxes := strings.Count(doc, `<div class="label">`)
	if boxes != 30 {
		t.Fatalf("label boxes = %d, want 30", boxes)
	}
	if got := SheetsNeeded(boxes, g); got != 1 {
		t.Errorf("SheetsNeeded() = %d, want 1", got)
	}
	if got := Summarize(labels, g).SheetsNeeded; got != SheetsNeeded(boxes, g) {
		t.Errorf("Summarize().SheetsNeeded = %d, want %d", got, SheetsNeeded(boxes, g))
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer

	err := RenderTo(context.Background(), &buf, []Label{{Lines: []string{"Ada"}}}, "9999")

	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("RenderTo() error = %v, want ErrUnknownFormat", err)
	}
	var ufe *UnknownFormatError
	if !errors.As(err, &ufe) || ufe.ID != "9999" {
		t.Errorf("RenderTo() error = %#v, want UnknownFormatError{ID: 9999}", err)
	}
	if buf.Len() != 0 {
		t.Errorf("RenderTo() wrote %d bytes before failing", buf.Len())
	}

	doc, err := Render(nil, "nope")
	if err == nil || doc != "" {
		t.Errorf("Render() = %q, %v; want empty document and error", doc, err)
	}
}

func TestRenderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RenderTo(ctx, &bytes.Buffer{}, []Label{{Lines: []string{"Ada"}}}, "5160")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderTo() error = %v, want context.Canceled", err)
	}
}

func TestRenderEmptyLabels(t *testing.T) {
	doc, err := Render(nil, "5167")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(doc, `<div class="label">`) {
		t.Error("empty label set rendered label boxes")
	}
	if !strings.Contains(doc, "font-size: 7pt;") {
		t.Error("5167 should use the small font size")
	}
}

func TestOutputFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

	got := OutputFilename("5163", ts)

	if want := "labels-5163-2024-03-10.html"; got != want {
		t.Errorf("OutputFilename() = %q, want %q", got, want)
	}
}
