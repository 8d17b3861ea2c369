package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DocumentContentType is the media type of a rendered label document.
const DocumentContentType = "text/html; charset=utf-8"

// Render returns the printable HTML document for labels on the given format.
// An unknown format fails with [*UnknownFormatError] and no output.
func Render(labels []Label, formatID string) (string, error) {
	var b strings.Builder
	if err := RenderTo(context.Background(), &b, labels, formatID); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderTo writes the document to w. The format is resolved before anything
// is written, so an [*UnknownFormatError] leaves w untouched.
func RenderTo(ctx context.Context, w io.Writer, labels []Label, formatID string) error {
	g, ok := Lookup(formatID)
	if !ok {
		return &UnknownFormatError{ID: formatID}
	}
	return Document(labels, g).Render(ctx, w)
}

// Document is the label sheet as a templ component.
//
// Labels are emitted as one continuous flex-wrapped run. The body is exactly
// the printable width, so every Cols labels fill a row, and the fixed label
// height makes the page boundary fall between rows. No pagination markup is
// needed. Every line of label text and the title are HTML-escaped.
func Document(labels []Label, g Geometry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTMLWriter(w)

		h.Raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		h.Raw("<meta charset=\"UTF-8\">\n")
		h.Raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
		h.Raw("<title>Labels - ")
		h.Text(g.Name)
		h.Raw("</title>\n<style>\n")
		h.Raw(stylesheet(g))
		h.Raw("</style>\n</head>\n<body>\n")
		h.Printf("<div class=\"label-sheet\" data-format=\"%s\" data-labels-per-sheet=\"%d\">\n",
			templ.EscapeString(g.ID), g.LabelsPerSheet)

		for _, label := range labels {
			if err := ctx.Err(); err != nil {
				return err
			}
			h.Label(label.Lines)
			h.Raw("\n")
		}

		h.Raw("</div>\n</body>\n</html>\n")
		return h.Err()
	})
}

// stylesheet sizes every box in the geometry's physical units.
func stylesheet(g Geometry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@page {\n  size: %s %s;\n  margin: %s %s %s %s;\n}\n",
		g.PageSize.Width, g.PageSize.Height,
		g.PageMargin.Top, g.PageMargin.Right, g.PageMargin.Bottom, g.PageMargin.Left)
	b.WriteString("* {\n  margin: 0;\n  padding: 0;\n  box-sizing: border-box;\n}\n")
	fmt.Fprintf(&b, "body {\n  font-family: Arial, Helvetica, sans-serif;\n  font-size: %s;\n  line-height: 1.2;\n  width: %s;\n}\n",
		fontSize(g), g.ContentWidth())
	b.WriteString(".label-sheet {\n  display: flex;\n  flex-wrap: wrap;\n  align-content: flex-start;\n  width: 100%;\n}\n")
	fmt.Fprintf(&b, ".label {\n  width: %s;\n  height: %s;\n  padding: %s %s %s %s;\n  margin-right: %s;\n  margin-bottom: %s;\n  overflow: hidden;\n  break-inside: avoid;\n  page-break-inside: avoid;\n}\n",
		g.LabelSize.Width, g.LabelSize.Height,
		g.LabelPadding.Top, g.LabelPadding.Right, g.LabelPadding.Bottom, g.LabelPadding.Left,
		g.LabelMargin.Right, g.LabelMargin.Bottom)
	fmt.Fprintf(&b, ".label:nth-child(%dn) {\n  margin-right: 0;\n}\n", g.Cols)
	b.WriteString(".label-line {\n  white-space: nowrap;\n  overflow: hidden;\n  text-overflow: ellipsis;\n}\n")
	return b.String()
}

// fontSize scales text down for the small return-address formats.
func fontSize(g Geometry) string {
	switch {
	case g.LabelSize.Height <= 0.5:
		return "7pt"
	case g.LabelSize.Height <= 1:
		return "10pt"
	default:
		return "12pt"
	}
}
